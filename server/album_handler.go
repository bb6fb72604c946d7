package server

import (
	"net/http"
	"strings"
	"time"

	"sonique/core/apperr"
	"sonique/logger"
	"sonique/model"
	"sonique/storage"
)

const maxUploadMemory = 32 << 20 // bytes held in memory while parsing multipart forms

func parseReleaseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperr.Malformed("invalid release date: %q", s)
	}
	return t, nil
}

// callerArtist resolves the calling user's artist profile.
func (h *APIHandler) callerArtist(r *http.Request) (*model.Artist, error) {
	uid, err := GetUserIDFromContext(r.Context())
	if err != nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	artist, err := h.artists.GetByUserID(r.Context(), uid)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	if artist == nil {
		return nil, apperr.NotFound("no artist profile for user %d", uid)
	}
	return artist, nil
}

// albumOwner checks the caller owns the album's artist profile or is an
// admin.
func (h *APIHandler) albumOwner(r *http.Request, album *model.Album) error {
	artist, err := h.artists.GetByID(r.Context(), album.ArtistID)
	if err != nil {
		return apperr.Unavailable(err)
	}
	if artist == nil || !canActOn(r.Context(), artist.UserID) {
		return apperr.Unauthorized("cannot modify another artist's album")
	}
	return nil
}

// CreateAlbumHandler creates an album for the calling artist. Multipart
// fields: name (required), desc, releaseDate, bgColor, imageFile.
func (h *APIHandler) CreateAlbumHandler(w http.ResponseWriter, r *http.Request) {
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
		writeError(w, apperr.Malformed("album name is required"))
		return
	}
	releaseDate, err := parseReleaseDate(r.FormValue("releaseDate"))
	if err != nil {
		writeError(w, err)
		return
	}

	album := &model.Album{
		Name:        name,
		Desc:        r.FormValue("desc"),
		ArtistID:    artist.ID,
		ReleaseDate: releaseDate,
		BgColor:     r.FormValue("bgColor"),
	}

	if file, header, err := r.FormFile("imageFile"); err == nil {
		defer file.Close()
		url, err := storage.Upload(r.Context(), "covers", header.Filename, file,
			header.Size, header.Header.Get("Content-Type"))
		if err != nil {
			writeError(w, apperr.Unavailable(err))
			return
		}
		album.Image = url
	} else if err != http.ErrMissingFile {
		writeError(w, apperr.Malformed("invalid image file: %v", err))
		return
	}

	id, err := h.albums.Create(r.Context(), album)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	album.ID = id
	logger.Info("album created", logger.Int64("albumId", id), logger.Int64("artistId", artist.ID))
	writeJSON(w, http.StatusCreated, album)
}

// ListAlbumsHandler returns every album, most liked first.
func (h *APIHandler) ListAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	albums, err := h.albums.List(r.Context())
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

type albumDetailResponse struct {
	*model.Album
	Songs []*model.Song `json:"songs"`
}

// GetAlbumHandler returns an album with its songs.
func (h *APIHandler) GetAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	album, err := h.albums.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if album == nil {
		writeError(w, apperr.NotFound("album %d not found", id))
		return
	}

	songs, err := h.songs.ListByAlbum(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, &albumDetailResponse{Album: album, Songs: songs})
}

type updateAlbumRequest struct {
	Name        *string `json:"name"`
	Desc        *string `json:"desc"`
	ReleaseDate *string `json:"releaseDate"`
	BgColor     *string `json:"bgColor"`
	Image       *string `json:"image"`
}

// UpdateAlbumHandler edits album metadata. Owning artist or admin.
func (h *APIHandler) UpdateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	album, err := h.albums.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if album == nil {
		writeError(w, apperr.NotFound("album %d not found", id))
		return
	}
	if err := h.albumOwner(r, album); err != nil {
		writeError(w, err)
		return
	}

	var req updateAlbumRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		album.Name = strings.TrimSpace(*req.Name)
	}
	if req.Desc != nil {
		album.Desc = *req.Desc
	}
	if req.ReleaseDate != nil {
		t, err := parseReleaseDate(*req.ReleaseDate)
		if err != nil {
			writeError(w, err)
			return
		}
		album.ReleaseDate = t
	}
	if req.BgColor != nil {
		album.BgColor = *req.BgColor
	}
	if req.Image != nil {
		album.Image = *req.Image
	}

	if err := h.albums.Update(r.Context(), album); err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, album)
}

// DeleteAlbumHandler removes an album and its like edges. Songs keep
// their album id and stop resolving an album name. Owning artist or
// admin.
func (h *APIHandler) DeleteAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	album, err := h.albums.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if album == nil {
		writeError(w, apperr.NotFound("album %d not found", id))
		return
	}
	if err := h.albumOwner(r, album); err != nil {
		writeError(w, err)
		return
	}

	if err := h.albums.Delete(r.Context(), id); err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if err := storage.Remove(r.Context(), album.Image); err != nil {
		logger.Warn("remove album cover", logger.Int64("albumId", id), logger.ErrorField(err))
	}
	logger.Info("album deleted", logger.Int64("albumId", id))
	writeJSON(w, http.StatusOK, map[string]string{"message": "album deleted"})
}

// LikeAlbumHandler toggles the caller's like on an album and returns the
// resulting state.
func (h *APIHandler) LikeAlbumHandler(w http.ResponseWriter, r *http.Request) {
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

	liked, err := h.social.ToggleAlbumLike(r.Context(), uid, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}
