package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/atriumhq/atriumpm/modules/core/domain"
	"github.com/atriumhq/atriumpm/modules/core/services"
	"github.com/atriumhq/atriumpm/pkg/application"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/httpapi"
)

// AuthController exposes login, refresh and logout. Login is on the tenant
// middleware's exempt list; the company comes from the request body. The
// refresh and logout routes run with a resolved tenant like any other.
type AuthController struct {
	app      application.Application
	basePath string
}

func NewAuthController(app application.Application) application.Controller {
	return &AuthController{
		app:      app,
		basePath: "/api/auth",
	}
}

func (c *AuthController) Key() string {
	return c.basePath
}

func (c *AuthController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/login", c.login).Methods(http.MethodPost)
	router.HandleFunc("/refresh", c.refresh).Methods(http.MethodPost)
	router.HandleFunc("/logout", c.logout).Methods(http.MethodPost)
}

type loginRequest struct {
	Subdomain string `json:"subdomain"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type loginResponse struct {
	tokenResponse
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
	Role     string `json:"role"`
}

func (c *AuthController) login(w http.ResponseWriter, r *http.Request) {
	logger := composables.UseLogger(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc := c.app.Service(services.AuthService{}).(*services.AuthService)
	result, err := svc.Login(r.Context(), services.LoginInput{
		Subdomain: req.Subdomain,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUserNotFound):
			_ = httpapi.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, domain.ErrTenantSuspended):
			_ = httpapi.WriteError(w, http.StatusForbidden, domain.ErrTenantSuspended.Error())
		default:
			logger.WithError(err).Error("login failed")
			_ = httpapi.WriteError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	_ = httpapi.WriteJSON(w, http.StatusOK, loginResponse{
		tokenResponse: tokenResponse{
			AccessToken:  result.Tokens.AccessToken,
			RefreshToken: result.Tokens.RefreshToken,
			ExpiresAt:    result.Tokens.ExpiresAt,
		},
		UserID:   result.User.ID.String(),
		TenantID: result.User.TenantID.String(),
		Role:     string(result.User.Role),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (c *AuthController) refresh(w http.ResponseWriter, r *http.Request) {
	logger := composables.UseLogger(r.Context())

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc := c.app.Service(services.AuthService{}).(*services.AuthService)
	pair, err := svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrUserNotFound) {
			_ = httpapi.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		logger.WithError(err).Error("token refresh failed")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "token refresh failed")
		return
	}

	_ = httpapi.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	})
}

func (c *AuthController) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc := c.app.Service(services.AuthService{}).(*services.AuthService)
	if err := svc.Logout(r.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			_ = httpapi.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		composables.UseLogger(r.Context()).WithError(err).Error("logout failed")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
