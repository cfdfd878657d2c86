package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/truthdare/truthdare-api/internal/apperror"
	"github.com/truthdare/truthdare-api/internal/auth"
	"github.com/truthdare/truthdare-api/internal/model"
	"github.com/truthdare/truthdare-api/internal/service"
)

// maxLoginBody caps the login request body.
const maxLoginBody = 4 << 10

// Authenticator exchanges the admin password for a token.
type Authenticator interface {
	Login(password string) (service.LoginResult, error)
}

// Reloader reloads cache content on demand.
type Reloader interface {
	Reload(ctx context.Context, trigger string, kinds ...model.Kind) (service.ReloadReport, error)
}

// AdminHandler serves the admin endpoints. Reload must be mounted behind
// auth.RequireAdmin.
type AdminHandler struct {
	admin    Authenticator
	reloader Reloader
	logger   *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(admin Authenticator, reloader Reloader, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, reloader: reloader, logger: logger}
}

type loginRequest struct {
	Password string `json:"password"`
}

// HandleLogin checks the admin password and returns a bearer token.
//
// HTTP: POST {prefix}/admin/login
// REQUEST BODY: {"password": "..."}
func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBody)).Decode(&req); err != nil {
		WriteError(w, apperror.ValidationFailed("body", "request body must be JSON with a password field"))
		return
	}

	res, err := h.admin.Login(req.Password)
	if err != nil {
		logUnexpected(h.logger, r, err)
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleReload reloads one kind (?kind=truth|dare) or both.
//
// HTTP: POST {prefix}/admin/reload
//
// A reload where any kind failed answers 500 with the per-kind report; the
// kinds that failed keep serving their previous snapshot.
func (h *AdminHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	var kinds []model.Kind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		kind, err := model.ParseKind(raw)
		if err != nil {
			WriteError(w, apperror.ValidationFailed("kind", err.Error()).WithDetails(map[string]any{
				"field": "kind",
				"value": raw,
			}))
			return
		}
		kinds = append(kinds, kind)
	}

	trigger := "admin"
	if sub, ok := auth.SubjectFromContext(r.Context()); ok {
		trigger = "admin:" + sub
	}

	report, err := h.reloader.Reload(r.Context(), trigger, kinds...)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			WriteError(w, appErr)
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":       "reload_failed",
			"message":     "one or more content kinds failed to reload",
			"details":     report,
			"status_code": http.StatusInternalServerError,
		})
		return
	}
	writeJSON(w, http.StatusOK, report)
}
