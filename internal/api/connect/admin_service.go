package connect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/moodbox/internal/infra/cache"
)

const (
	// AdminServiceName is the fully-qualified name of the AdminService.
	AdminServiceName = "moodbox.v1.AdminService"
	// CacheStatsProcedure is the path of the CacheStats RPC.
	CacheStatsProcedure = "/" + AdminServiceName + "/CacheStats"
	// FlushCachesProcedure is the path of the FlushCaches RPC.
	FlushCachesProcedure = "/" + AdminServiceName + "/FlushCaches"
)

// CacheStatsRequest asks for the statistics of every cache.
type CacheStatsRequest struct{}

// CacheInfo describes one cache.
type CacheInfo struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
	Hits    int64  `json:"hits"`
	Misses  int64  `json:"misses"`
	Error   string `json:"error,omitempty"`
}

// CacheStatsResponse lists every cache.
type CacheStatsResponse struct {
	Caches []CacheInfo `json:"caches"`
}

// FlushCachesRequest names the caches to flush. Empty flushes all.
type FlushCachesRequest struct {
	Names []string `json:"names,omitempty"`
}

// FlushCachesResponse reports the flush outcome.
type FlushCachesResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Flushed []string `json:"flushed"`
}

// AdminService implements the AdminService RPC.
type AdminService struct {
	caches []cache.Store
}

// NewAdminService creates a new AdminService.
func NewAdminService(caches ...cache.Store) *AdminService {
	return &AdminService{
		caches: caches,
	}
}

// CacheStats returns entry counts and hit statistics.
func (s *AdminService) CacheStats(
	ctx context.Context,
	req *connect.Request[CacheStatsRequest],
) (*connect.Response[CacheStatsResponse], error) {
	infos := make([]CacheInfo, len(s.caches))
	for i, c := range s.caches {
		stats := c.Stats()
		infos[i] = CacheInfo{Name: c.Name(), Hits: stats.Hits, Misses: stats.Misses}
		n, err := c.Len(ctx)
		if err != nil {
			infos[i].Error = err.Error()
			continue
		}
		infos[i].Entries = n
	}

	return connect.NewResponse(&CacheStatsResponse{Caches: infos}), nil
}

// FlushCaches empties the named caches.
func (s *AdminService) FlushCaches(
	ctx context.Context,
	req *connect.Request[FlushCachesRequest],
) (*connect.Response[FlushCachesResponse], error) {
	targets, err := s.selectCaches(req.Msg.Names)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	flushed := make([]string, 0, len(targets))
	for _, c := range targets {
		if err := c.Flush(ctx); err != nil {
			zlog.Error().Msgf("failed to flush cache: cache=%s error=%v", c.Name(), err)
			return connect.NewResponse(&FlushCachesResponse{
				Success: false,
				Message: err.Error(),
				Flushed: flushed,
			}), nil
		}
		flushed = append(flushed, c.Name())
	}
	zlog.Info().Msgf("caches flushed: caches=%v", flushed)

	return connect.NewResponse(&FlushCachesResponse{
		Success: true,
		Message: "Caches flushed",
		Flushed: flushed,
	}), nil
}

func (s *AdminService) selectCaches(names []string) ([]cache.Store, error) {
	if len(names) == 0 {
		return s.caches, nil
	}
	byName := make(map[string]cache.Store, len(s.caches))
	for _, c := range s.caches {
		byName[c.Name()] = c
	}
	out := make([]cache.Store, 0, len(names))
	for _, name := range names {
		c, ok := byName[name]
		if !ok {
			return nil, errors.Newf("unknown cache: %s", name)
		}
		out = append(out, c)
	}
	return out, nil
}

// NewAdminServiceHandler builds an HTTP handler for the service.
func NewAdminServiceHandler(svc *AdminService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	statsHandler := connect.NewUnaryHandler(CacheStatsProcedure, svc.CacheStats, opts...)
	flushHandler := connect.NewUnaryHandler(FlushCachesProcedure, svc.FlushCaches, opts...)

	return "/" + AdminServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case CacheStatsProcedure:
			statsHandler.ServeHTTP(w, r)
		case FlushCachesProcedure:
			flushHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
