package connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/osa030/moodbox/internal/api/wire"
	"github.com/osa030/moodbox/internal/app/recommend"
)

const (
	// RecommendServiceName is the fully-qualified name of the RecommendService.
	RecommendServiceName = "moodbox.v1.RecommendService"
	// RecommendProcedure is the path of the Recommend RPC.
	RecommendProcedure = "/" + RecommendServiceName + "/Recommend"
)

// Recommender runs recommendation requests.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// RecommendService implements the RecommendService RPC.
type RecommendService struct {
	recommender Recommender
}

// NewRecommendService creates a new RecommendService.
func NewRecommendService(recommender Recommender) *RecommendService {
	return &RecommendService{
		recommender: recommender,
	}
}

// Recommend builds a playlist. The listener token travels in the
// Authorization header as a bearer token.
func (s *RecommendService) Recommend(
	ctx context.Context,
	req *connect.Request[wire.RecommendRequest],
) (*connect.Response[wire.RecommendResponse], error) {
	resp, err := s.recommender.Recommend(ctx, req.Msg.ToRequest(BearerToken(req.Header())))
	if err != nil {
		return nil, toConnectError(err)
	}
	body := wire.FromResponse(resp)
	return connect.NewResponse(&body), nil
}

// NewRecommendServiceHandler builds an HTTP handler for the service.
func NewRecommendServiceHandler(svc *RecommendService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	recommendHandler := connect.NewUnaryHandler(RecommendProcedure, svc.Recommend, opts...)

	return "/" + RecommendServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case RecommendProcedure:
			recommendHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// BearerToken extracts a bearer token from the Authorization header.
func BearerToken(h http.Header) string {
	v := strings.TrimSpace(h.Get("Authorization"))
	if len(v) < 7 || !strings.EqualFold(v[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(v[7:])
}

func toConnectError(err error) error {
	switch recommend.Kind(err) {
	case recommend.KindBadInput:
		return connect.NewError(connect.CodeInvalidArgument, err)
	case recommend.KindAuth:
		return connect.NewError(connect.CodeUnauthenticated, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
