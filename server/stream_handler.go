package server

import (
	"net/http"
	"time"

	"sonique/core/apperr"
	"sonique/model"
)

// CreateStreamHandler logs one play of a song and bumps its view
// counter. The play is attributed to the caller when a valid token is
// present and stays anonymous otherwise.
func (h *APIHandler) CreateStreamHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SongID int64 `json:"songId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.SongID <= 0 {
		writeError(w, apperr.Malformed("songId is required"))
		return
	}

	views, found, err := h.songs.IncrementViews(r.Context(), req.SongID)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if !found {
		writeError(w, apperr.NotFound("song %d not found", req.SongID))
		return
	}

	stream := &model.Stream{SongID: req.SongID, Timestamp: time.Now()}
	if uid, err := GetUserIDFromContext(r.Context()); err == nil {
		stream.UserID = &uid
	}
	id, err := h.streams.Create(r.Context(), stream)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	stream.ID = id

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"stream": stream,
		"views":  views,
	})
}

// RecentlyPlayedHandler returns the caller's distinct recently played
// songs, most recent first. Songs that no longer resolve are dropped.
func (h *APIHandler) RecentlyPlayedHandler(w http.ResponseWriter, r *http.Request) {
	uid, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.Unauthorized("authentication required"))
		return
	}

	ids, err := h.streams.RecentSongIDs(r.Context(), uid, 20)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	details, err := h.songs.DetailsByIDs(r.Context(), ids)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}

	// DetailsByIDs does not keep the recency ordering; restore it.
	byID := make(map[int64]*model.SongDetail, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}
	ordered := make([]*model.SongDetail, 0, len(details))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			ordered = append(ordered, d)
		}
	}
	writeJSON(w, http.StatusOK, ordered)
}
