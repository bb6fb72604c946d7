package server

import (
	"errors"
	"net/http"
	"strings"

	"sonique/cache"
	"sonique/core/apperr"
	"sonique/core/auth"
	"sonique/email"
	"sonique/logger"
	"sonique/model"
	"sonique/repository"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// RegisterHandler creates an account. New accounts always start with the
// user role; promotion to artist or admin goes through user updates.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, apperr.Malformed("username, email and password are required"))
		return
	}
	if len(req.Password) < 6 {
		writeError(w, apperr.Malformed("password must be at least 6 characters"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	id, err := h.users.Create(r.Context(), user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, apperr.Conflict("username or email already registered"))
			return
		}
		writeError(w, apperr.Unavailable(err))
		return
	}
	user.ID = id

	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.TokenTTL)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	logger.Info("user registered", logger.Int64("userId", user.ID), logger.String("username", user.Username))
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

// LoginHandler exchanges credentials for a signed token.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, apperr.Malformed("email and password are required"))
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if user == nil || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		writeError(w, apperr.Unauthorized("invalid email or password"))
		return
	}

	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.TokenTTL)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

// ForgotPasswordHandler mints a reset token and mails it. The response is
// the same whether or not the address is registered, so the endpoint
// cannot be used to probe for accounts.
func (h *APIHandler) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		writeError(w, apperr.Malformed("email is required"))
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if user != nil {
		token, err := cache.NewResetToken(r.Context(), user.ID, h.cfg.ResetTokenTTL)
		if err != nil {
			writeError(w, apperr.Unavailable(err))
			return
		}
		body := email.ResetEmailBody(h.cfg.AppName, h.cfg.FrontendURL, token)
		if err := h.mailer.Send(user.Email, h.cfg.AppName+" password reset", body); err != nil {
			logger.Error("send reset email", logger.Int64("userId", user.ID), logger.ErrorField(err))
			writeError(w, apperr.Unavailable(err))
			return
		}
		logger.Info("reset email sent", logger.Int64("userId", user.ID))
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "if the address is registered, a reset link has been sent",
	})
}

// ResetPasswordHandler redeems a reset token and replaces the password.
// Tokens are single use and expire on their own.
func (h *APIHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Token == "" || req.Password == "" {
		writeError(w, apperr.Malformed("token and password are required"))
		return
	}
	if len(req.Password) < 6 {
		writeError(w, apperr.Malformed("password must be at least 6 characters"))
		return
	}

	userID, ok, err := cache.ConsumeResetToken(r.Context(), req.Token)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if !ok {
		writeError(w, apperr.Malformed("invalid or expired reset token"))
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	if user == nil {
		writeError(w, apperr.NotFound("user %d not found", userID))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	user.PasswordHash = hash
	if err := h.users.Update(r.Context(), user); err != nil {
		writeError(w, apperr.Unavailable(err))
		return
	}
	logger.Info("password reset", logger.Int64("userId", user.ID))
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
