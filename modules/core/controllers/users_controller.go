package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/atriumhq/atriumpm/modules/core/domain"
	"github.com/atriumhq/atriumpm/modules/core/services"
	"github.com/atriumhq/atriumpm/pkg/application"
	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/httpapi"
	"github.com/atriumhq/atriumpm/pkg/serrors"
)

type UsersController struct {
	app      application.Application
	basePath string
}

func NewUsersController(app application.Application) application.Controller {
	return &UsersController{
		app:      app,
		basePath: "/api/users",
	}
}

func (c *UsersController) Key() string {
	return c.basePath
}

func (c *UsersController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.deactivate).Methods(http.MethodDelete)
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedDate,
	}
}

func (c *UsersController) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	svc := c.app.Service(services.UserService{}).(*services.UserService)
	users, err := svc.List(r.Context(), limit, offset)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to list users")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

type createUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

func (c *UsersController) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role := domain.UserRole(req.Role)
	switch role {
	case domain.RoleAdmin, domain.RoleManager, domain.RoleResident:
	default:
		_ = httpapi.WriteError(w, http.StatusBadRequest, "unknown role")
		return
	}

	svc := c.app.Service(services.UserService{}).(*services.UserService)
	u, err := svc.Create(r.Context(), services.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			_ = httpapi.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		var serr *serrors.Base
		if errors.As(err, &serr) {
			_ = httpapi.WriteCodedError(w, http.StatusBadRequest, serr.Code, serr.Message)
			return
		}
		composables.UseLogger(r.Context()).WithError(err).Error("failed to create user")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

func (c *UsersController) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	svc := c.app.Service(services.UserService{}).(*services.UserService)
	u, err := svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		composables.UseLogger(r.Context()).WithError(err).Error("failed to load user")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (c *UsersController) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	svc := c.app.Service(services.UserService{}).(*services.UserService)
	if err := svc.Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		composables.UseLogger(r.Context()).WithError(err).Error("failed to deactivate user")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "failed to deactivate user")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
