package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/jewelry-admin/pkg/logger"
)

// FormContext tags every log line of a form-scoped request with the form id.
func FormContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			formID := chi.URLParam(r, "formID")
			if formID == "" || logg == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(logg.WithFormID(r.Context(), formID)))
		})
	}
}
