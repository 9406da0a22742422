package handler

import (
	"net/http"
	"strings"

	"notes-service/internal/errs"
	"notes-service/internal/model"
	"notes-service/internal/service"

	"github.com/labstack/echo/v4"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both fields are present
func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" || r.Password == "" {
		return errs.New(errs.Validation, "Email and password are required")
	}
	return nil
}

// UserResponse is the user part of a login response
type UserResponse struct {
	ID         uint       `json:"id"`
	Email      string     `json:"email"`
	Role       model.Role `json:"role"`
	TenantID   uint       `json:"tenantId"`
	TenantSlug string     `json:"tenantSlug"`
	TenantPlan model.Plan `json:"tenantPlan"`
}

// LoginResponse is the body returned by a successful login
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// AuthHandler serves the login endpoint
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login exchanges email and password for a token
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	user := result.User
	return c.JSON(http.StatusOK, LoginResponse{
		Token: result.Token,
		User: UserResponse{
			ID:         user.ID,
			Email:      user.Email,
			Role:       user.Role,
			TenantID:   user.TenantID,
			TenantSlug: user.Tenant.Slug,
			TenantPlan: user.Tenant.Plan,
		},
	})
}
