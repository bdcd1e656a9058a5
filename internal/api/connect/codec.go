// Package connect provides Connect RPC service implementations.
package connect

import (
	"github.com/goccy/go-json"
)

// Codec encodes plain Go messages as JSON.
// It registers under the "json" name, replacing connect's protobuf JSON codec.
type Codec struct{}

// Name returns the codec name used in content types.
func (Codec) Name() string {
	return "json"
}

// Marshal encodes a message.
func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal decodes a message.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
