package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/abhajavat-web/efvb/internal/httpx"
	"github.com/abhajavat-web/efvb/internal/platform/crypto"
)

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

type signupReq struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResp struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Signup handles POST /auth/signup.
func (h *HTTPHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", details)
		return
	}

	u, token, err := h.service.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyExists):
			httpx.JSONError(w, http.StatusConflict, "ALREADY_EXISTS", "an account with this email already exists", nil)
		case isWeakPassword(err):
			httpx.JSONError(w, http.StatusBadRequest, "WEAK_PASSWORD", err.Error(), nil)
		default:
			h.logger.Error("signup failed", zap.Error(err))
			httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to create account", nil)
		}
		return
	}
	httpx.JSONSuccessCreated(w, authResp{User: u, Token: token})
}

// Login handles POST /auth/login.
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.service.Login)
}

// AdminLogin handles POST /auth/admin/login.
func (h *HTTPHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.service.AdminLogin)
}

func (h *HTTPHandler) login(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, email, password string) (User, string, error)) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", details)
		return
	}

	u, token, err := fn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.JSONError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password", nil)
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to log in", nil)
		return
	}
	httpx.JSONSuccess(w, authResp{User: u, Token: token}, nil)
}

func isWeakPassword(err error) bool {
	return errors.Is(err, crypto.ErrPasswordTooShort) ||
		errors.Is(err, crypto.ErrPasswordNoUpper) ||
		errors.Is(err, crypto.ErrPasswordNoLower) ||
		errors.Is(err, crypto.ErrPasswordNoNumber)
}
