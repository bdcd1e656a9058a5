package connect

import (
	"context"
	"crypto/subtle"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
)

const (
	// AdminTokenHeader is the header name for admin authentication token.
	AdminTokenHeader = "X-Admin-Token"
)

// NewAdminAuthInterceptor creates an interceptor that validates admin tokens
// from request metadata for AdminService methods.
// An empty expected token rejects every call.
func NewAdminAuthInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			got := req.Header().Get(AdminTokenHeader)
			if got == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("missing admin token"))
			}

			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("invalid admin token"))
			}

			return next(ctx, req)
		}
	}
}
