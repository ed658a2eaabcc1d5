package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/merobill/merobill/internal/platform/httpx"
	"github.com/merobill/merobill/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *shared.SessionManager
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		sessions: sessions,
		validate: validator.New(),
	}
}

// MountRoutes registers authentication routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Get("/me", h.me)
	r.Post("/theme", h.setTheme)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Fail(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		h.logger.Error("login failed", slog.Any("error", err))
		httpx.Error(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Fail(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	sess.SetUser(user.ID)

	httpx.Saved(w, "Logged in.", map[string]any{"user": user})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.sessions.Destroy(sess)
	}
	httpx.Saved(w, "Logged out.", nil)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == 0 {
		httpx.Fail(w, http.StatusUnauthorized, "Login required.")
		return
	}
	user, err := h.service.Current(r.Context(), sess.User())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, map[string]any{"user": user, "companyId": sess.Company()})
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

func (h *Handler) setTheme(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == 0 {
		httpx.Fail(w, http.StatusUnauthorized, "Login required.")
		return
	}
	var req themeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Theme must be light or dark.")
		return
	}
	if err := h.service.SetTheme(r.Context(), sess.User(), req.Theme); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Saved(w, "Theme updated.", map[string]any{"theme": req.Theme})
}
