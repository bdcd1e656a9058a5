package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/moodbox/internal/api/wire"
	"github.com/osa030/moodbox/internal/app/recommend"
	"github.com/osa030/moodbox/internal/domain/mood"
	"github.com/osa030/moodbox/internal/domain/track"
	"github.com/osa030/moodbox/internal/infra/spotify"
)

type fakeRecommender struct {
	got  recommend.Request
	resp *recommend.Response
	err  error
}

func (f *fakeRecommender) Recommend(_ context.Context, req recommend.Request) (*recommend.Response, error) {
	f.got = req
	return f.resp, f.err
}

func post(t *testing.T, h http.Handler, body string, header http.Header) (*httptest.ResponseRecorder, wire.RecommendResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out wire.RecommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestRecommend_OK(t *testing.T) {
	fake := &fakeRecommender{resp: &recommend.Response{
		Mood: mood.Happy,
		Tracks: []track.Track{
			{ID: "t1", Name: "Walking on Sunshine", Artists: []string{"Katrina and the Waves"}, Reason: "strong happy vibe"},
		},
		Meta: recommend.Meta{Source: recommend.SourcePersonalized, Confirmation: "Going with a happy mix.", RequestID: "r-1", Language: "any"},
	}}
	router := NewRouter(Config{}, fake)

	header := http.Header{}
	header.Set("Authorization", "Bearer listener-token")
	rec, out := post(t, router, `{"mood":"happy","limit":3,"exclude":["spotify:track:x"]}`, header)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, out.OK)
	assert.Equal(t, "Happy", out.Mood)
	require.Len(t, out.Tracks, 1)
	assert.Equal(t, "strong happy vibe", out.Tracks[0].Reason)
	require.NotNil(t, out.Meta)
	assert.Equal(t, "personalized", out.Meta.Source)
	assert.Equal(t, "r-1", out.Meta.RequestID)

	assert.Equal(t, "listener-token", fake.got.UserToken)
	assert.Equal(t, 3, fake.got.Limit)
	assert.Equal(t, []string{"spotify:track:x"}, fake.got.Exclude)
}

func TestRecommend_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		status  int
		message string
	}{
		{name: "invalid json", body: `{"mood":`, status: http.StatusBadRequest, message: "invalid JSON body"},
		{name: "bad input", body: `{}`, err: errors.Mark(errors.New("mood or prompt is required"), recommend.ErrBadInput), status: http.StatusBadRequest, message: "mood or prompt is required"},
		{name: "missing credentials", body: `{"mood":"sad"}`, err: errors.Wrap(spotify.ErrConfiguration, "client id"), status: http.StatusUnauthorized},
		{name: "auth", body: `{"mood":"sad"}`, err: errors.Mark(errors.New("invalid_client"), spotify.ErrAuth), status: http.StatusUnauthorized},
		{name: "internal", body: `{"mood":"sad"}`, err: errors.New("boom"), status: http.StatusInternalServerError, message: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(Config{}, &fakeRecommender{err: tt.err})
			rec, out := post(t, router, tt.body, nil)

			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, out.OK)
			assert.NotEmpty(t, out.Error)
			if tt.message != "" {
				assert.Equal(t, tt.message, out.Error)
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	router := NewRouter(Config{}, &fakeRecommender{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	fake := &fakeRecommender{resp: &recommend.Response{Mood: mood.Sad}}
	router := NewRouter(Config{RateLimitPerMinute: 2}, fake)

	codes := make([]int, 3)
	for i := range codes {
		rec, _ := post(t, router, `{"mood":"sad"}`, nil)
		codes[i] = rec.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestCORS(t *testing.T) {
	router := NewRouter(Config{CORSOrigins: []string{"https://moodbox.example"}}, &fakeRecommender{})

	req := httptest.NewRequest(http.MethodOptions, "/api/recommend", nil)
	req.Header.Set("Origin", "https://moodbox.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://moodbox.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
