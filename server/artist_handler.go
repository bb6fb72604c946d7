package server

import (
	"net/http"
	"strings"

	"sonique/cache"
	"sonique/core/apperr"
	"sonique/logger"
	"sonique/model"
)

// ListArtistsHandler returns every artist profile.
func (h *APIHandler) ListArtistsHandler(w http.ResponseWriter, r *http.Request) {
	artists, err := h.artists.List(r.Context())
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, artists)
}

type artistDetailResponse struct {
	*model.Artist
	Albums []*model.Album `json:"albums"`
	Songs  []*model.Song  `json:"songs"`
}

// GetArtistHandler returns an artist with their albums and songs.
func (h *APIHandler) GetArtistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	artist, err := h.artists.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if artist == nil {
		writeError(w, apperr.NotFound("artist %d not found", id))
		return
	}

	albums, err := h.albums.ListByArtist(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	songs, err := h.songs.ListByArtist(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}

	writeJSON(w, http.StatusOK, &artistDetailResponse{Artist: artist, Albums: albums, Songs: songs})
}

type updateArtistRequest struct {
	Name  *string `json:"name"`
	Bio   *string `json:"bio"`
	Image *string `json:"image"`
}

// UpdateArtistHandler edits an artist profile. Owner or admin.
func (h *APIHandler) UpdateArtistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	artist, err := h.artists.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if artist == nil {
		writeError(w, apperr.NotFound("artist %d not found", id))
		return
	}
	if !canActOn(r.Context(), artist.UserID) {
		writeError(w, apperr.Unauthorized("cannot edit another artist's profile"))
		return
	}

	var req updateArtistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		artist.Name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		artist.Bio = *req.Bio
	}
	if req.Image != nil {
		artist.Image = *req.Image
	}

	if err := h.artists.Update(r.Context(), artist); err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, artist)
}

// DeleteArtistHandler removes an artist with their songs, albums, social
// edges and owning user account in one transaction. Owner or admin.
func (h *APIHandler) DeleteArtistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	artist, err := h.artists.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if artist == nil {
		writeError(w, apperr.NotFound("artist %d not found", id))
		return
	}
	if !canActOn(r.Context(), artist.UserID) {
		writeError(w, apperr.Unauthorized("cannot delete another artist"))
		return
	}

	if err := h.artists.DeleteCascade(r.Context(), artist.ID, artist.UserID); err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	logger.Info("artist deleted",
		logger.Int64("artistId", artist.ID), logger.Int64("userId", artist.UserID))
	writeJSON(w, http.StatusOK, map[string]string{"message": "artist deleted"})
}

// FollowArtistHandler toggles the caller's follow on an artist and
// returns the resulting state.
func (h *APIHandler) FollowArtistHandler(w http.ResponseWriter, r *http.Request) {
	uid, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.Unauthorized("authentication required"))
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	following, err := h.social.ToggleFollow(r.Context(), uid, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"following": following})
}

// ArtistDashboardHandler returns the caller's artist dashboard, serving a
// cached snapshot when one is fresh enough.
func (h *APIHandler) ArtistDashboardHandler(w http.ResponseWriter, r *http.Request) {
	uid, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.Unauthorized("authentication required"))
		return
	}

	artist, err := h.artists.GetByUserID(r.Context(), uid)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if artist == nil {
		writeError(w, apperr.NotFound("no artist profile for user %d", uid))
		return
	}

	key := cache.ArtistDashboardKey(artist.ID)
	var cached map[string]interface{}
	if ok, err := cache.GetJSON(r.Context(), key, &cached); err != nil {
		logger.Warn("dashboard cache read", logger.ErrorField(err))
	} else if ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	dashboard, err := h.stats.ArtistDashboard(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := cache.SetJSON(r.Context(), key, dashboard, h.cfg.DashboardCacheTTL); err != nil {
		logger.Warn("dashboard cache write", logger.ErrorField(err))
	}
	writeJSON(w, http.StatusOK, dashboard)
}
