package http

import (
	"net/http"

	"rentacar-backend/internal/service"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
)

type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	User         *userResponse `json:"user,omitempty"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type confirmPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// Register mounts the auth routes. Every route runs behind limit.
func (h *AuthHandler) Register(r *mux.Router, limit alice.Chain) {
	r.Handle("/api/v1/auth/register", limit.ThenFunc(h.SignUp)).Methods(http.MethodPost).Name("auth.register")
	r.Handle("/api/v1/auth/login", limit.ThenFunc(h.Login)).Methods(http.MethodPost).Name("auth.login")
	r.Handle("/api/v1/auth/refresh", limit.ThenFunc(h.Refresh)).Methods(http.MethodPost).Name("auth.refresh")
	r.Handle("/api/v1/auth/forgot-password", limit.ThenFunc(h.ForgotPassword)).Methods(http.MethodPost).Name("auth.forgot-password")
	r.Handle("/api/v1/auth/confirm-password", limit.ThenFunc(h.ConfirmPassword)).Methods(http.MethodPost).Name("auth.confirm-password")
	r.Handle("/api/v1/auth/change-password", limit.ThenFunc(h.ChangePassword)).Methods(http.MethodPost).Name("auth.change-password")
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	dob, err := parseOptionalDate(req.Dob)
	if err != nil {
		writeServiceError(w, r, badRequest("dob must be yyyy-mm-dd"))
		return
	}
	in := service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Address:   req.Address,
		Country:   req.Country,
		Password:  req.Password,
	}
	if dob != nil {
		in.Dob = *dob
	}
	// Self-service sign-up always yields a renter.
	if req.Role != "" && req.Role != "user" {
		writeError(w, http.StatusForbidden, "only admins can assign roles")
		return
	}

	user, err := h.authSvc.Register(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapUser(user))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	user, access, refresh, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := mapUser(user)
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access, RefreshToken: refresh, User: &resp})
}

// Refresh exchanges the refresh token from the Authorization header for a
// new token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, _ := bearerToken(r)
	access, refresh, err := h.authSvc.RefreshToken(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access, RefreshToken: refresh})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}
	if err := h.authSvc.ChangePassword(r.Context(), claims.Email, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.authSvc.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "if the account exists a reset code has been sent"})
}

func (h *AuthHandler) ConfirmPassword(w http.ResponseWriter, r *http.Request) {
	var req confirmPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.authSvc.ConfirmPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
