package rest

import (
	"net/http"

	"github.com/goccy/go-json"
	zlog "github.com/rs/zerolog/log"

	apiconnect "github.com/osa030/moodbox/internal/api/connect"
	"github.com/osa030/moodbox/internal/api/wire"
	"github.com/osa030/moodbox/internal/app/recommend"
)

const maxBodyBytes = 64 << 10

type handler struct {
	recommender Recommender
}

func (h *handler) recommend(w http.ResponseWriter, r *http.Request) {
	var body wire.RecommendRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.recommender.Recommend(r.Context(), body.ToRequest(apiconnect.BearerToken(r.Header)))
	if err != nil {
		status := statusOf(err)
		if status == http.StatusInternalServerError {
			writeError(w, status, "internal error")
			return
		}
		writeJSON(w, status, wire.Failure(err))
		return
	}
	writeJSON(w, http.StatusOK, wire.FromResponse(resp))
}

func statusOf(err error) int {
	switch recommend.Kind(err) {
	case recommend.KindBadInput:
		return http.StatusBadRequest
	case recommend.KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, wire.RecommendResponse{OK: false, Tracks: []wire.Track{}, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Warn().Msgf("failed to write response: error=%v", err)
	}
}
