package http

import (
	"net/http"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/service"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	userSvc service.UserService
	roleSvc service.RoleService
}

func NewUserHandler(userSvc service.UserService, roleSvc service.RoleService) *UserHandler {
	return &UserHandler{userSvc: userSvc, roleSvc: roleSvc}
}

type userRequest struct {
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Dob       string          `json:"dob"`
	Email     string          `json:"email"`
	Address   string          `json:"address"`
	Country   string          `json:"country"`
	Role      domain.RoleName `json:"role"`
	Password  string          `json:"password"`
}

func (req userRequest) toDomain() (*domain.User, error) {
	dob, err := parseOptionalDate(req.Dob)
	if err != nil {
		return nil, badRequest("dob must be yyyy-mm-dd")
	}
	user := &domain.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Address:   req.Address,
		Country:   req.Country,
	}
	if dob != nil {
		user.Dob = *dob
	}
	return user, nil
}

func (h *UserHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/v1/users", h.Create).Methods(http.MethodPost).Name("users.create")
	r.HandleFunc("/api/v1/users", h.List).Methods(http.MethodGet).Name("users.list")
	r.HandleFunc("/api/v1/users/{id:[0-9]+}", h.Get).Methods(http.MethodGet).Name("users.get")
	r.HandleFunc("/api/v1/users/{id:[0-9]+}", h.Update).Methods(http.MethodPatch).Name("users.update")
	r.HandleFunc("/api/v1/users/{id:[0-9]+}", h.Delete).Methods(http.MethodDelete).Name("users.delete")
	r.HandleFunc("/api/v1/roles", h.ListRoles).Methods(http.MethodGet).Name("roles.list")
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	user, err := req.toDomain()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.userSvc.CreateUser(r.Context(), user, req.Role, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapUser(user))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userSvc.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUsers(users))
}

// selfOrAdmin resolves the path id and checks the caller may act on it.
func selfOrAdmin(w http.ResponseWriter, r *http.Request) (int32, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return 0, false
	}
	if id != GetUserIDFromContext(r.Context()) && !isAdmin(r.Context()) {
		writeError(w, http.StatusForbidden, "not allowed to access another user")
		return 0, false
	}
	return id, true
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := selfOrAdmin(w, r)
	if !ok {
		return
	}
	user, err := h.userSvc.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(user))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := selfOrAdmin(w, r)
	if !ok {
		return
	}
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if req.Password != "" {
		writeServiceError(w, r, badRequest("use /api/v1/auth/change-password to change the password"))
		return
	}
	user, err := req.toDomain()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	user.ID = id

	if req.Role != "" {
		if !isAdmin(r.Context()) {
			writeError(w, http.StatusForbidden, "only admins can change roles")
			return
		}
		role, err := h.roleSvc.GetRoleByName(r.Context(), req.Role)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		user.RoleID = role.ID
	}

	updated, err := h.userSvc.UpdateUser(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(updated))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.userSvc.DeleteUser(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleSvc.ListRoles(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roles)
}
