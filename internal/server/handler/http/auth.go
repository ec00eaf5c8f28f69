// Package http provides the chi router and JSON handlers of the SchemeSeva API:
// scheme queries, phone authentication, the chat relay and video lookup.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/schemeseva/internal/guard"
	"github.com/atinyakov/schemeseva/internal/middleware"
	"github.com/atinyakov/schemeseva/internal/models"
	"github.com/atinyakov/schemeseva/internal/service"
	"github.com/atinyakov/schemeseva/internal/validate"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) (*models.Session, error)
	SignIn(ctx context.Context, phone, password string) (*models.Session, error)
	SetPassword(ctx context.Context, userID, password string) error
	Session(ctx context.Context, token string) (*models.Session, error)
	SignOut(ctx context.Context, token string) error
}

// AuthHandler handles the phone, OTP and password endpoints.
type AuthHandler struct {
	AuthService AuthService
	Log         *zap.Logger
}

// OTPRequest asks for a one-time code.
type OTPRequest struct {
	Phone string `json:"phone"`
}

// VerifyRequest submits a one-time code.
type VerifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// LoginRequest signs in with a password.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// PasswordRequest sets the password of the signed-in user.
// Confirm is checked when present.
type PasswordRequest struct {
	Password string `json:"password"`
	Confirm  string `json:"confirm,omitempty"`
}

// TokenResponse carries a new session.
type TokenResponse struct {
	Token string `json:"token"`
	Phone string `json:"phone"`
}

// SessionResponse describes the current session.
type SessionResponse struct {
	UserID    string    `json:"user_id"`
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SendOTP handles POST /api/auth/otp.
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req OTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.AuthService.SendOTP(r.Context(), req.Phone); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// VerifyOTP handles POST /api/auth/otp/verify.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	sess, err := h.AuthService.VerifyOTP(r.Context(), req.Phone, req.Code)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: sess.Token, Phone: sess.Phone})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	sess, err := h.AuthService.SignIn(r.Context(), req.Phone, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: sess.Token, Phone: sess.Phone})
}

// SetPassword handles POST /api/auth/password. Requires SessionAuth.
func (h *AuthHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Confirm != "" {
		if err := validate.NewPassword(req.Password, req.Confirm); err != nil {
			h.fail(w, err)
			return
		}
	}
	userID := middleware.GetUserIDFromContext(r.Context())
	if err := h.AuthService.SetPassword(r.Context(), userID, req.Password); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Logout handles POST /api/auth/logout. Requires SessionAuth.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.SignOut(r.Context(), middleware.BearerToken(r)); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/auth/session. Requires SessionAuth.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSessionFromContext(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, service.ErrUnauthorized.Error())
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{UserID: sess.UserID, Phone: sess.Phone, ExpiresAt: sess.ExpiresAt})
}

var validationErrors = []error{
	validate.ErrPhone,
	validate.ErrOTP,
	validate.ErrPassword,
	validate.ErrPasswordTooLong,
	validate.ErrPasswordMismatch,
	validate.ErrEmptyFields,
}

// fail maps a service error onto a status code.
func (h *AuthHandler) fail(w http.ResponseWriter, err error) {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			writeError(w, http.StatusBadRequest, v.Error())
			return
		}
	}

	var tooMany *service.TooManyAttemptsError
	switch {
	case errors.As(err, &tooMany):
		w.Header().Set("Retry-After", strconv.Itoa(guard.Seconds(tooMany.RetryAfter)))
		writeError(w, http.StatusTooManyRequests, tooMany.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrOTPInvalid),
		errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		h.Log.Error("auth request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
