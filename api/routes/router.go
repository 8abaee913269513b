package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/jewelry-admin/api/controllers"
	"github.com/angelmondragon/jewelry-admin/api/middleware"
	"github.com/angelmondragon/jewelry-admin/internal/catalog"
	"github.com/angelmondragon/jewelry-admin/internal/dashboard"
	"github.com/angelmondragon/jewelry-admin/internal/forms"
	"github.com/angelmondragon/jewelry-admin/internal/notifications"
	"github.com/angelmondragon/jewelry-admin/internal/session"
	"github.com/angelmondragon/jewelry-admin/internal/submission"
	"github.com/angelmondragon/jewelry-admin/internal/toasts"
	"github.com/angelmondragon/jewelry-admin/pkg/config"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
)

// Deps are the services the local API exposes.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	Gatherer      prometheus.Gatherer
	Ready         map[string]controllers.Pinger
	Forms         *forms.Registry
	Blobs         controllers.BlobSource
	Pipeline      *submission.Pipeline
	Catalog       *catalog.Catalog
	Toasts        *toasts.Service
	Notifications *notifications.Service
	Dashboard     *dashboard.Service
	Session       *session.Store
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	var panics middleware.PanicNotifier
	if deps.Toasts != nil {
		panics = deps.Toasts
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg, panics),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Ready))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/forms", func(r chi.Router) {
			r.Post("/", controllers.FormCreate(deps.Forms, logg))
			r.Route("/{formID}", func(r chi.Router) {
				r.Use(middleware.FormContext(logg))
				r.Get("/", controllers.FormGet(deps.Forms, logg))
				r.Delete("/", controllers.FormDiscard(deps.Forms, logg))
				r.Patch("/fields", controllers.FormSetFields(deps.Forms, logg))
				r.Post("/tags", controllers.FormToggleTag(deps.Forms, logg))
				r.Delete("/images/{slot}", controllers.FormRemoveImage(deps.Forms, logg))
				r.Post("/images/{slot}/recrop", controllers.CropRecrop(deps.Forms, logg))
				r.Post("/crop", controllers.CropOpen(deps.Forms, cfg.Media.MaxUploadBytes(), logg))
				r.Patch("/crop", controllers.CropAdjust(deps.Forms, logg))
				r.Post("/crop/save", controllers.CropSave(deps.Forms, logg))
				r.Delete("/crop", controllers.CropCancel(deps.Forms, logg))
				r.Post("/submit", controllers.FormSubmit(deps.Forms, deps.Pipeline, logg))
			})
		})

		r.Get("/blobs/{handle}", controllers.BlobGet(deps.Blobs, logg))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/{kind}", controllers.CatalogList(deps.Catalog, logg))
			r.Delete("/{kind}/view", controllers.CatalogUnmount(deps.Catalog, logg))
			r.Put("/{kind}/{id}", controllers.CatalogUpdateProduct(deps.Catalog, logg))
			r.Delete("/{kind}/{id}", controllers.CatalogDelete(deps.Pipeline, logg))
		})

		r.Get("/toasts", controllers.ToastsList(deps.Toasts, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationsList(deps.Notifications, logg))
			r.Post("/{id}/read", controllers.NotificationMarkRead(deps.Notifications, logg))
		})

		r.Get("/dashboard", controllers.DashboardSummary(deps.Dashboard, logg))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", controllers.AuthLogin(deps.Session, logg))
			r.Get("/session", controllers.AuthStatus(deps.Session, logg))
			r.Delete("/session", controllers.AuthLogout(deps.Session, logg))
		})
	})

	return r
}
