package connect

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/osa030/moodbox/internal/api/wire"
)

// RecommendClient calls the RecommendService.
type RecommendClient struct {
	recommend *connect.Client[wire.RecommendRequest, wire.RecommendResponse]
}

// NewRecommendClient creates a client for the server at baseURL.
func NewRecommendClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *RecommendClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &RecommendClient{
		recommend: connect.NewClient[wire.RecommendRequest, wire.RecommendResponse](httpClient, baseURL+RecommendProcedure, opts...),
	}
}

// Recommend calls Recommend. A non-empty userToken is sent as a bearer token.
func (c *RecommendClient) Recommend(ctx context.Context, req *wire.RecommendRequest, userToken string) (*wire.RecommendResponse, error) {
	creq := connect.NewRequest(req)
	if userToken != "" {
		creq.Header().Set("Authorization", "Bearer "+userToken)
	}
	resp, err := c.recommend.CallUnary(ctx, creq)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// AdminClient calls the AdminService.
type AdminClient struct {
	token string
	stats *connect.Client[CacheStatsRequest, CacheStatsResponse]
	flush *connect.Client[FlushCachesRequest, FlushCachesResponse]
}

// NewAdminClient creates a client for the server at baseURL.
func NewAdminClient(httpClient connect.HTTPClient, baseURL, token string, opts ...connect.ClientOption) *AdminClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &AdminClient{
		token: token,
		stats: connect.NewClient[CacheStatsRequest, CacheStatsResponse](httpClient, baseURL+CacheStatsProcedure, opts...),
		flush: connect.NewClient[FlushCachesRequest, FlushCachesResponse](httpClient, baseURL+FlushCachesProcedure, opts...),
	}
}

// CacheStats calls CacheStats.
func (c *AdminClient) CacheStats(ctx context.Context) (*CacheStatsResponse, error) {
	req := connect.NewRequest(&CacheStatsRequest{})
	req.Header().Set(AdminTokenHeader, c.token)
	resp, err := c.stats.CallUnary(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// FlushCaches calls FlushCaches.
func (c *AdminClient) FlushCaches(ctx context.Context, names []string) (*FlushCachesResponse, error) {
	req := connect.NewRequest(&FlushCachesRequest{Names: names})
	req.Header().Set(AdminTokenHeader, c.token)
	resp, err := c.flush.CallUnary(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}
