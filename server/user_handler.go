package server

import (
	"net/http"
	"strings"

	"sonique/core/apperr"
	"sonique/logger"
	"sonique/model"
)

// ListUsersHandler returns every account. Admin only.
func (h *APIHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUserHandler returns a user's profile with the ids of their liked
// songs, liked albums and followed artists. Self or admin.
func (h *APIHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if !canActOn(r.Context(), id) {
		writeError(w, apperr.Unauthorized("cannot view another user's profile"))
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if user == nil {
		writeError(w, apperr.NotFound("user %d not found", id))
		return
	}

	likedSongs, err := h.users.LikedSongIDs(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	likedAlbums, err := h.users.LikedAlbumIDs(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	followed, err := h.users.FollowedArtistIDs(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}

	writeJSON(w, http.StatusOK, &model.UserProfile{
		User:            *user,
		LikedSongs:      likedSongs,
		LikedAlbums:     likedAlbums,
		FollowedArtists: followed,
	})
}

type updateUserRequest struct {
	Username   *string `json:"username"`
	Phone      *string `json:"phone"`
	DOB        *string `json:"dob"`
	Location   *string `json:"location"`
	ProfilePic *string `json:"profilePic"`
	Role       *string `json:"role"`
}

// UpdateUserHandler edits profile fields. Self or admin; role changes are
// admin only. Promoting a user to artist creates their artist profile in
// the same request.
func (h *APIHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if !canActOn(r.Context(), id) {
		writeError(w, apperr.Unauthorized("cannot edit another user's profile"))
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if user == nil {
		writeError(w, apperr.NotFound("user %d not found", id))
		return
	}

	if req.Username != nil && strings.TrimSpace(*req.Username) != "" {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.DOB != nil {
		user.DOB = *req.DOB
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.ProfilePic != nil {
		user.ProfilePic = *req.ProfilePic
	}

	promoted := false
	if req.Role != nil && *req.Role != user.Role {
		callerRole, roleErr := GetRoleFromContext(r.Context())
		if roleErr != nil || callerRole != model.RoleAdmin {
			writeError(w, apperr.Unauthorized("only admins can change roles"))
			return
		}
		if !model.ValidRole(*req.Role) {
			writeError(w, apperr.Malformed("invalid role: %q", *req.Role))
			return
		}
		promoted = *req.Role == model.RoleArtist && user.Role != model.RoleArtist
		user.Role = *req.Role
	}

	if err := h.users.Update(r.Context(), user); err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}

	// A freshly promoted artist gets a profile named after their account.
	if promoted {
		existing, err := h.artists.GetByUserID(r.Context(), user.ID)
		if err != nil {
			writeError(w, apperr.Unavailable(err))
			return
		}
		if existing == nil {
			artistID, err := h.artists.Create(r.Context(), &model.Artist{
				UserID: user.ID,
				Name:   user.Username,
				Image:  user.ProfilePic,
			})
			if err != nil {
				writeError(w, apperr.Unavailable(err))
				return
			}
			logger.Info("artist profile created",
				logger.Int64("userId", user.ID), logger.Int64("artistId", artistID))
		}
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteUserHandler removes an account with its likes, follows and
// playlists. Stream rows stay behind. Self or admin.
func (h *APIHandler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if !canActOn(r.Context(), id) {
		writeError(w, apperr.Unauthorized("cannot delete another user's account"))
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if user == nil {
		writeError(w, apperr.NotFound("user %d not found", id))
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	logger.Info("user deleted", logger.Int64("userId", id))
	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// LikedSongsHandler returns the caller's liked songs with display names.
func (h *APIHandler) LikedSongsHandler(w http.ResponseWriter, r *http.Request) {
	uid, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.Unauthorized("authentication required"))
		return
	}
	ids, err := h.users.LikedSongIDs(r.Context(), uid)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	songs, err := h.songs.DetailsByIDs(r.Context(), ids)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

// LikedAlbumsHandler returns the caller's liked albums.
func (h *APIHandler) LikedAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	uid, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.Unauthorized("authentication required"))
		return
	}
	ids, err := h.users.LikedAlbumIDs(r.Context(), uid)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	albums, err := h.albums.GetByIDs(r.Context(), ids)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

// FollowedArtistsHandler returns the artists the caller follows.
func (h *APIHandler) FollowedArtistsHandler(w http.ResponseWriter, r *http.Request) {
	uid, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.Unauthorized("authentication required"))
		return
	}
	ids, err := h.users.FollowedArtistIDs(r.Context(), uid)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	artists, err := h.artists.GetByIDs(r.Context(), ids)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, artists)
}
