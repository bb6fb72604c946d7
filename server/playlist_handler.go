package server

import (
	"errors"
	"net/http"
	"strings"

	"sonique/core/apperr"
	"sonique/model"
	"sonique/repository"
)

// ownedPlaylist loads a playlist and checks the caller owns it. Playlists
// are strictly personal: unlike catalog entities, not even admins may
// mutate somebody else's.
func (h *APIHandler) ownedPlaylist(r *http.Request) (*model.Playlist, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}
	playlist, err := h.playlists.GetByID(r.Context(), id)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	if playlist == nil {
		return nil, apperr.NotFound("playlist %d not found", id)
	}
	uid, err := GetUserIDFromContext(r.Context())
	if err != nil || uid != playlist.UserID {
		return nil, apperr.Unauthorized("cannot modify another user's playlist")
	}
	return playlist, nil
}

// CreatePlaylistHandler creates an empty playlist for the caller.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	uid, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.Unauthorized("authentication required"))
		return
	}

	var req struct {
		Title string `json:"title"`
		Image string `json:"image"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, apperr.Malformed("playlist title is required"))
		return
	}

	playlist := &model.Playlist{Title: req.Title, Image: req.Image, UserID: uid}
	id, err := h.playlists.Create(r.Context(), playlist)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	playlist.ID = id
	writeJSON(w, http.StatusCreated, playlist)
}

// MyPlaylistsHandler returns the caller's playlists.
func (h *APIHandler) MyPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	uid, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.Unauthorized("authentication required"))
		return
	}
	playlists, err := h.playlists.ListByUser(r.Context(), uid)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

// GetPlaylistHandler returns a playlist with its songs in position order.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	playlist, err := h.playlists.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if playlist == nil {
		writeError(w, apperr.NotFound("playlist %d not found", id))
		return
	}

	ids, err := h.playlists.SongIDs(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	details, err := h.songs.DetailsByIDs(r.Context(), ids)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}

	byID := make(map[int64]*model.SongDetail, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}
	songs := make([]*model.SongDetail, 0, len(details))
	for _, songID := range ids {
		if d, ok := byID[songID]; ok {
			songs = append(songs, d)
		}
	}

	writeJSON(w, http.StatusOK, &model.PlaylistWithSongs{Playlist: *playlist, Songs: songs})
}

// UpdatePlaylistHandler renames a playlist or swaps its cover. Owner or
// admin.
func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.ownedPlaylist(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Title *string `json:"title"`
		Image *string `json:"image"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		playlist.Title = strings.TrimSpace(*req.Title)
	}
	if req.Image != nil {
		playlist.Image = *req.Image
	}

	if err := h.playlists.Update(r.Context(), playlist); err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

// DeletePlaylistHandler removes a playlist and its memberships. Owner or
// admin.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.ownedPlaylist(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.playlists.Delete(r.Context(), playlist.ID); err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "playlist deleted"})
}

// AddPlaylistSongHandler appends a song to the playlist. Adding a song
// twice is a conflict, not a silent no-op.
func (h *APIHandler) AddPlaylistSongHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.ownedPlaylist(r)
	if err != nil {
		writeError(w, err)
		return
	}
	songID, err := pathID(r, "songId")
	if err != nil {
		writeError(w, err)
		return
	}

	song, err := h.songs.GetByID(r.Context(), songID)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if song == nil {
		writeError(w, apperr.NotFound("song %d not found", songID))
		return
	}

	if err := h.playlists.AddSong(r.Context(), playlist.ID, songID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, apperr.Conflict("song %d is already in the playlist", songID))
			return
		}
		writeError(w, apperr.Unavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "song added"})
}

// RemovePlaylistSongHandler removes a song from the playlist.
func (h *APIHandler) RemovePlaylistSongHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.ownedPlaylist(r)
	if err != nil {
		writeError(w, err)
		return
	}
	songID, err := pathID(r, "songId")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.playlists.RemoveSong(r.Context(), playlist.ID, songID); err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "song removed"})
}
