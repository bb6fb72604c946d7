package server

import (
	"net/http"

	"sonique/core/apperr"
)

// RecommendationsHandler returns songs scored against the caller's likes
// and listening history.
func (h *APIHandler) RecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	uid, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.Unauthorized("authentication required"))
		return
	}
	recs, err := h.recommender.Recommend(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// SearchHandler fans the q parameter across artists, albums and songs.
func (h *APIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	results, err := h.searcher.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
