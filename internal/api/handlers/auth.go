package handlers

import (
	"net/http"

	"github.com/stocktrackhq/stocktrack-backend/internal/api/middleware"
	"github.com/stocktrackhq/stocktrack-backend/internal/api/request"
	"github.com/stocktrackhq/stocktrack-backend/internal/model"
	"github.com/stocktrackhq/stocktrack-backend/internal/service"
	"github.com/stocktrackhq/stocktrack-backend/internal/validation"
)

// AuthHandler handles registration, login and session HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginResponse represents the login response body
type LoginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Register creates a new user account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !parseJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateRegister(req); err != nil {
		respondServiceError(w, err)
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// Login checks credentials and issues a session token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !parseJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateLogin(req); err != nil {
		respondServiceError(w, err)
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// ChangePassword rotates the authenticated user's password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var req request.ChangePasswordRequest
	if !parseJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateChangePassword(req); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.authService.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
