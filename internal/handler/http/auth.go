package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Aphidet6/earth-bettashop/internal/service"
	"github.com/Aphidet6/earth-bettashop/pkg/httputil"
	"github.com/Aphidet6/earth-bettashop/pkg/middleware"
)

// maxBodyBytes caps JSON request bodies at 1MB.
const maxBodyBytes = 1 << 20

// AuthHandler handles HTTP requests for registration, login, and identity.
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

// LoginResponse is the JSON payload returned on successful login.
type LoginResponse struct {
	Token string `json:"token"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var input service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	user, err := h.service.Register(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, user)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var input service.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	_, token, err := h.service.Login(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, LoginResponse{Token: token})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.IdentityFromContext(r.Context())
	if user == nil {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Success: false,
			Error:   "unauthorized",
		})
		return
	}

	httputil.WriteData(w, http.StatusOK, user)
}
