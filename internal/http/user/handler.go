package user

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/akozyrev/leadwell/internal/http/middleware"
	"github.com/akozyrev/leadwell/internal/http/respond"
	"github.com/akozyrev/leadwell/internal/permission"
	"github.com/akozyrev/leadwell/internal/user"
	"github.com/akozyrev/leadwell/internal/user/store"
)

type Handler struct {
	users *store.Store
	perms *permission.Manager
}

func NewHandler(users *store.Store, perms *permission.Manager) *Handler {
	return &Handler{users: users, perms: perms}
}

// User administration is admin-only, expressed as a permission so the
// wildcard grant covers it.
func (h *Handler) Routes(r chi.Router) {
	r.Use(middleware.RequirePermission(h.perms, "user.manage"))

	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/active", h.setActive)
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Roles     []string  `json:"roles"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     u.Roles,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

type createUserRequest struct {
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Password  string   `json:"password"`
	Roles     []string `json:"roles"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	u, err := user.New(req.Email, req.FirstName, req.LastName, req.Password, req.Roles...)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if err := h.users.Save(r.Context(), u); err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(u))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toResponse(u)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(u))
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if req.Active {
		u.Activate()
	} else {
		u.Deactivate()
	}

	if err := h.users.Save(r.Context(), u); err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(u))
}
