package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/jewelry-admin/api/responses"
	"github.com/angelmondragon/jewelry-admin/api/validators"
	"github.com/angelmondragon/jewelry-admin/internal/dashboard"
	"github.com/angelmondragon/jewelry-admin/internal/notifications"
	"github.com/angelmondragon/jewelry-admin/internal/session"
	"github.com/angelmondragon/jewelry-admin/internal/toasts"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ToastsList returns recent toasts. drain=true also clears them.
func ToastsList(svc *toasts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drain := false
		if raw := strings.TrimSpace(r.URL.Query().Get("drain")); raw != "" {
			value, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid drain value"))
				return
			}
			drain = value
		}
		limit, err := validators.ParseQueryInt(r, "limit", toasts.DefaultHistory, 1, toasts.DefaultHistory)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var items []toasts.Toast
		if drain {
			items = svc.Drain()
		} else {
			items = svc.Recent()
		}
		if len(items) > limit {
			items = items[len(items)-limit:]
		}
		responses.WriteSuccess(w, items)
	}
}

// NotificationsList returns the header notifications, refreshing on request.
func NotificationsList(svc *notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("refresh") == "true" {
			if err := svc.Refresh(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, svc.List())
	}
}

func NotificationMarkRead(svc *notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.List())
	}
}

// DashboardSummary loads the dashboard cards. Partial failures still return 200.
func DashboardSummary(svc *dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary := svc.Load(r.Context())
		var warnings []string
		for _, figure := range summary.Failed {
			warnings = append(warnings, "failed to load "+figure)
		}
		responses.WriteSuccessWithWarnings(w, http.StatusOK, summary, warnings)
	}
}

// AuthLogin exchanges admin credentials for a stored access token.
func AuthLogin(store *session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := store.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

func AuthStatus(store *session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := store.Status(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

func AuthLogout(store *session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Logout(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
