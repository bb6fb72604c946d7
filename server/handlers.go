package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"sonique/config"
	"sonique/core/apperr"
	"sonique/core/auth"
	"sonique/core/discover"
	"sonique/core/social"
	"sonique/core/stats"
	"sonique/email"
	"sonique/logger"
	"sonique/model"
	"sonique/repository"

	"github.com/gorilla/mux"
)

// APIHandler carries the repositories and services behind every route.
type APIHandler struct {
	cfg         *config.Config
	users       repository.UserRepository
	artists     repository.ArtistRepository
	albums      repository.AlbumRepository
	songs       repository.SongRepository
	streams     repository.StreamRepository
	playlists   repository.PlaylistRepository
	stats       *stats.Service
	social      *social.Mutator
	recommender *discover.Recommender
	searcher    *discover.Searcher
	mailer      email.Mailer
}

// NewAPIHandler wires the handler over its dependencies.
func NewAPIHandler(
	cfg *config.Config,
	users repository.UserRepository,
	artists repository.ArtistRepository,
	albums repository.AlbumRepository,
	songs repository.SongRepository,
	streams repository.StreamRepository,
	playlists repository.PlaylistRepository,
	statsService *stats.Service,
	socialMutator *social.Mutator,
	recommender *discover.Recommender,
	searcher *discover.Searcher,
	mailer email.Mailer,
) *APIHandler {
	return &APIHandler{
		cfg:         cfg,
		users:       users,
		artists:     artists,
		albums:      albums,
		songs:       songs,
		streams:     streams,
		playlists:   playlists,
		stats:       statsService,
		social:      socialMutator,
		recommender: recommender,
		searcher:    searcher,
		mailer:      mailer,
	}
}

type contextKey string

const (
	userIDContextKey contextKey = "userID"
	roleContextKey   contextKey = "role"
)

// GetUserIDFromContext returns the authenticated user's id.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	id, ok := ctx.Value(userIDContextKey).(int64)
	if !ok {
		return 0, errors.New("no user id in context")
	}
	return id, nil
}

// GetRoleFromContext returns the authenticated user's role.
func GetRoleFromContext(ctx context.Context) (string, error) {
	role, ok := ctx.Value(roleContextKey).(string)
	if !ok {
		return "", errors.New("no role in context")
	}
	return role, nil
}

// AuthMiddleware rejects requests without a valid Bearer token and puts
// the caller's id and role on the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := h.bearerClaims(r)
		if !ok {
			writeError(w, apperr.Unauthorized("missing or invalid token"))
			return
		}
		ctx := context.WithValue(r.Context(), userIDContextKey, claims.UserID)
		ctx = context.WithValue(ctx, roleContextKey, claims.Role)
		next(w, r.WithContext(ctx))
	}
}

// OptionalAuthMiddleware attaches identity when a valid token is present
// but lets anonymous requests through.
func (h *APIHandler) OptionalAuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := h.bearerClaims(r); ok {
			ctx := context.WithValue(r.Context(), userIDContextKey, claims.UserID)
			ctx = context.WithValue(ctx, roleContextKey, claims.Role)
			r = r.WithContext(ctx)
		}
		next(w, r)
	}
}

// RequireRole gates a route on the caller's role. Compose inside
// AuthMiddleware.
func (h *APIHandler) RequireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		got, err := GetRoleFromContext(r.Context())
		if err != nil || got != role {
			writeError(w, apperr.Unauthorized("%s access required", role))
			return
		}
		next(w, r)
	}
}

func (h *APIHandler) bearerClaims(r *http.Request) (*auth.Claims, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil, false
	}
	return claims, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", logger.ErrorField(err))
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Internal detail
// stays in the log, not the response body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case apperr.KindNotFound:
			status = http.StatusNotFound
			message = appErr.Message
		case apperr.KindUnauthorized:
			status = http.StatusForbidden
			message = appErr.Message
		case apperr.KindMalformedInput:
			status = http.StatusBadRequest
			message = appErr.Message
		case apperr.KindConflict:
			status = http.StatusConflict
			message = appErr.Message
		}
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", logger.ErrorField(err))
	}
	writeJSON(w, status, map[string]string{"error": message})
}

// pathID parses the named mux variable as an id.
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Malformed("invalid %s: %q", name, raw)
	}
	return id, nil
}

func decodeJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return apperr.Malformed("invalid request body: %v", err)
	}
	return nil
}

// canActOn allows a user to touch their own resources, admins everything.
func canActOn(ctx context.Context, ownerID int64) bool {
	uid, err := GetUserIDFromContext(ctx)
	if err != nil {
		return false
	}
	if uid == ownerID {
		return true
	}
	role, err := GetRoleFromContext(ctx)
	return err == nil && role == model.RoleAdmin
}
