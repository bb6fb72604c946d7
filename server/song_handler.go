package server

import (
	"net/http"
	"strconv"
	"strings"

	"sonique/core/apperr"
	"sonique/logger"
	"sonique/model"
	"sonique/storage"
)

// songOwner checks the caller owns the song's artist profile or is an
// admin.
func (h *APIHandler) songOwner(r *http.Request, song *model.Song) error {
	artist, err := h.artists.GetByID(r.Context(), song.ArtistID)
	if err != nil {
		return apperr.Unavailable(err)
	}
	if artist == nil || !canActOn(r.Context(), artist.UserID) {
		return apperr.Unauthorized("cannot modify another artist's song")
	}
	return nil
}

// UploadSongHandler creates a song for the calling artist. Multipart
// fields: name (required), desc, albumId, genre (must be in the genre
// enum), duration (seconds, positive), releaseDate, audioFile (required),
// imageFile.
func (h *APIHandler) UploadSongHandler(w http.ResponseWriter, r *http.Request) {
	artist, err := h.callerArtist(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, apperr.Malformed("invalid multipart form: %v", err))
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		writeError(w, apperr.Malformed("song name is required"))
		return
	}
	genre := r.FormValue("genre")
	if !model.ValidGenre(genre) {
		writeError(w, apperr.Malformed("invalid genre: %q", genre))
		return
	}
	duration, err := strconv.ParseFloat(r.FormValue("duration"), 64)
	if err != nil || duration <= 0 {
		writeError(w, apperr.Malformed("duration must be a positive number of seconds"))
		return
	}
	releaseDate, err := parseReleaseDate(r.FormValue("releaseDate"))
	if err != nil {
		writeError(w, err)
		return
	}

	var albumID int64
	if raw := strings.TrimSpace(r.FormValue("albumId")); raw != "" {
		albumID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || albumID <= 0 {
			writeError(w, apperr.Malformed("invalid albumId: %q", raw))
			return
		}
		album, err := h.albums.GetByID(r.Context(), albumID)
		if err != nil {
			writeError(w, apperr.Unavailable(err))
			return
		}
		if album == nil {
			writeError(w, apperr.NotFound("album %d not found", albumID))
			return
		}
		if album.ArtistID != artist.ID {
			writeError(w, apperr.Unauthorized("album %d belongs to another artist", albumID))
			return
		}
	}

	audioFile, audioHeader, err := r.FormFile("audioFile")
	if err != nil {
		writeError(w, apperr.Malformed("audioFile is required"))
		return
	}
	defer audioFile.Close()

	audioURL, err := storage.Upload(r.Context(), "audio", audioHeader.Filename, audioFile,
		audioHeader.Size, audioHeader.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}

	song := &model.Song{
		Name:        name,
		Desc:        r.FormValue("desc"),
		AlbumID:     albumID,
		ArtistID:    artist.ID,
		Genre:       genre,
		Duration:    duration,
		Audio:       audioURL,
		ReleaseDate: releaseDate,
	}

	if file, header, err := r.FormFile("imageFile"); err == nil {
		defer file.Close()
		url, err := storage.Upload(r.Context(), "covers", header.Filename, file,
			header.Size, header.Header.Get("Content-Type"))
		if err != nil {
			writeError(w, apperr.Unavailable(err))
			return
		}
		song.Image = url
	} else if err != http.ErrMissingFile {
		writeError(w, apperr.Malformed("invalid image file: %v", err))
		return
	}

	id, err := h.songs.Create(r.Context(), song)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	song.ID = id
	logger.Info("song uploaded", logger.Int64("songId", id), logger.Int64("artistId", artist.ID))
	writeJSON(w, http.StatusCreated, song)
}

// ListSongsHandler returns every song with display names, most viewed
// first.
func (h *APIHandler) ListSongsHandler(w http.ResponseWriter, r *http.Request) {
	songs, err := h.songs.List(r.Context())
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

// GetSongHandler returns a song with its album and artist names.
func (h *APIHandler) GetSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	details, err := h.songs.DetailsByIDs(r.Context(), []int64{id})
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if len(details) == 0 {
		writeError(w, apperr.NotFound("song %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, details[0])
}

type updateSongRequest struct {
	Name        *string  `json:"name"`
	Desc        *string  `json:"desc"`
	Genre       *string  `json:"genre"`
	Duration    *float64 `json:"duration"`
	ReleaseDate *string  `json:"releaseDate"`
	Image       *string  `json:"image"`
}

// UpdateSongHandler edits song metadata. Owning artist or admin.
func (h *APIHandler) UpdateSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	song, err := h.songs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if song == nil {
		writeError(w, apperr.NotFound("song %d not found", id))
		return
	}
	if err := h.songOwner(r, song); err != nil {
		writeError(w, err)
		return
	}

	var req updateSongRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		song.Name = strings.TrimSpace(*req.Name)
	}
	if req.Desc != nil {
		song.Desc = *req.Desc
	}
	if req.Genre != nil {
		if !model.ValidGenre(*req.Genre) {
			writeError(w, apperr.Malformed("invalid genre: %q", *req.Genre))
			return
		}
		song.Genre = *req.Genre
	}
	if req.Duration != nil {
		if *req.Duration <= 0 {
			writeError(w, apperr.Malformed("duration must be a positive number of seconds"))
			return
		}
		song.Duration = *req.Duration
	}
	if req.ReleaseDate != nil {
		t, err := parseReleaseDate(*req.ReleaseDate)
		if err != nil {
			writeError(w, err)
			return
		}
		song.ReleaseDate = t
	}
	if req.Image != nil {
		song.Image = *req.Image
	}

	if err := h.songs.Update(r.Context(), song); err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, song)
}

// DeleteSongHandler removes a song with its like edges and playlist
// memberships. Stream rows stay behind. Owning artist or admin.
func (h *APIHandler) DeleteSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	song, err := h.songs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if song == nil {
		writeError(w, apperr.NotFound("song %d not found", id))
		return
	}
	if err := h.songOwner(r, song); err != nil {
		writeError(w, err)
		return
	}

	if err := h.songs.Delete(r.Context(), id); err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	for _, fileURL := range []string{song.Audio, song.Image} {
		if err := storage.Remove(r.Context(), fileURL); err != nil {
			logger.Warn("remove song file", logger.Int64("songId", id), logger.ErrorField(err))
		}
	}
	logger.Info("song deleted", logger.Int64("songId", id))
	writeJSON(w, http.StatusOK, map[string]string{"message": "song deleted"})
}

// LikeSongHandler toggles the caller's like on a song and returns the
// resulting state.
func (h *APIHandler) LikeSongHandler(w http.ResponseWriter, r *http.Request) {
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

	liked, err := h.social.ToggleSongLike(r.Context(), uid, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}
