package app

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/jewelry-admin/api/controllers"
	"github.com/angelmondragon/jewelry-admin/api/routes"
	"github.com/angelmondragon/jewelry-admin/internal/catalog"
	"github.com/angelmondragon/jewelry-admin/internal/dashboard"
	"github.com/angelmondragon/jewelry-admin/internal/forms"
	"github.com/angelmondragon/jewelry-admin/internal/imagecodec"
	"github.com/angelmondragon/jewelry-admin/internal/localcache"
	"github.com/angelmondragon/jewelry-admin/internal/notifications"
	"github.com/angelmondragon/jewelry-admin/internal/remote"
	"github.com/angelmondragon/jewelry-admin/internal/session"
	"github.com/angelmondragon/jewelry-admin/internal/submission"
	"github.com/angelmondragon/jewelry-admin/internal/toasts"
	"github.com/angelmondragon/jewelry-admin/pkg/config"
	"github.com/angelmondragon/jewelry-admin/pkg/db"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
	"github.com/angelmondragon/jewelry-admin/pkg/metrics"
	"github.com/angelmondragon/jewelry-admin/pkg/redis"
)

// Options override pieces of the wiring. Zero values use the configured defaults.
type Options struct {
	// Backend replaces the cache driver selected by config.
	Backend localcache.Backend
	// HTTPClient is used for every call to the shop backend.
	HTTPClient *http.Client
	// Registry receives the prometheus collectors. A fresh registry is used when nil.
	Registry *prometheus.Registry
}

// App owns every long-lived service of the dashboard backend.
type App struct {
	Config        *config.Config
	Logger        *logger.Logger
	Registry      *prometheus.Registry
	Codec         *imagecodec.Codec
	Cache         *localcache.Reconciler
	Toasts        *toasts.Service
	Session       *session.Store
	Remote        *remote.Client
	Forms         *forms.Registry
	Catalog       *catalog.Catalog
	Pipeline      *submission.Pipeline
	Notifications *notifications.Service
	Dashboard     *dashboard.Service

	poller  *notifications.Poller
	ready   map[string]controllers.Pinger
	closers []func() error
}

// New wires the services. Call Close to release the cache backend.
func New(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "config required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	a := &App{
		Config:   cfg,
		Logger:   logg,
		Registry: reg,
		ready:    map[string]controllers.Pinger{},
	}

	backend := opts.Backend
	if backend == nil {
		var err error
		backend, err = a.openBackend(ctx)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	if err := a.wire(backend, opts.HTTPClient); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) openBackend(ctx context.Context) (localcache.Backend, error) {
	cfg := a.Config
	switch cfg.Cache.Driver {
	case config.CacheDriverSQLite:
		dbClient, err := db.New(ctx, cfg.Cache, a.Logger)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open sqlite cache")
		}
		a.ready["sqlite"] = dbClient
		a.closers = append(a.closers, dbClient.Close)
		return localcache.NewSQLiteBackend(dbClient.DB()), nil
	case config.CacheDriverRedis:
		redisClient, err := redis.New(ctx, cfg.Redis, a.Logger)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open redis cache")
		}
		a.ready["redis"] = redisClient
		a.closers = append(a.closers, redisClient.Close)
		return localcache.NewRedisBackend(redisClient), nil
	default:
		return localcache.NewMemoryBackend(), nil
	}
}

func (a *App) wire(backend localcache.Backend, httpClient *http.Client) error {
	cfg := a.Config
	logg := a.Logger

	pipelineMetrics := metrics.NewPipelineMetrics(a.Registry)
	jobMetrics := metrics.NewJobMetrics(a.Registry)

	a.Toasts = toasts.New(toasts.DefaultHistory, logg)

	cache, err := localcache.New(backend, logg, a.Toasts)
	if err != nil {
		return err
	}
	a.Cache = cache

	a.Session, err = session.NewStore(cache, nil, logg)
	if err != nil {
		return err
	}

	remoteOpts := []remote.Option{
		remote.WithTimeout(cfg.Remote.Timeout),
		remote.WithLogger(logg),
		remote.WithMetrics(pipelineMetrics),
	}
	if httpClient != nil {
		remoteOpts = append(remoteOpts, remote.WithHTTPClient(httpClient))
	}
	a.Remote, err = remote.NewClient(cfg.Remote.BaseURL, a.Session, remoteOpts...)
	if err != nil {
		return err
	}
	a.Session.SetAuthenticator(a.Remote)

	a.Codec = imagecodec.New(imagecodec.Options{
		MaxBytes: cfg.Media.MaxUploadBytes(),
		Quality:  cfg.Media.JPEGQuality,
	})

	a.Forms, err = forms.NewRegistry(a.Codec, logg, pipelineMetrics)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func() error {
		a.Forms.Close()
		return nil
	})

	a.Catalog, err = catalog.New(a.Remote, remote.HasRemote, cache, a.Toasts, logg)
	if err != nil {
		return err
	}

	a.Pipeline, err = submission.New(submission.Params{
		Remote:    a.Remote,
		HasRemote: remote.HasRemote,
		Cache:     cache,
		Views:     a.Catalog,
		Notifier:  a.Toasts,
		Logger:    logg,
		Metrics:   pipelineMetrics,
	})
	if err != nil {
		return err
	}

	a.Notifications, err = notifications.NewService(a.Remote, logg)
	if err != nil {
		return err
	}
	a.poller = notifications.NewPoller(notifications.PollerParams{
		Service:  a.Notifications,
		Logger:   logg,
		Metrics:  jobMetrics,
		Interval: cfg.Notifications.PollInterval,
	})

	a.Dashboard, err = dashboard.NewService(a.Remote, a.Toasts, logg)
	return err
}

// Handler builds the local HTTP API.
func (a *App) Handler() http.Handler {
	return routes.NewRouter(routes.Deps{
		Config:        a.Config,
		Logger:        a.Logger,
		Gatherer:      a.Registry,
		Ready:         a.ready,
		Forms:         a.Forms,
		Blobs:         a.Codec,
		Pipeline:      a.Pipeline,
		Catalog:       a.Catalog,
		Toasts:        a.Toasts,
		Notifications: a.Notifications,
		Dashboard:     a.Dashboard,
		Session:       a.Session,
	})
}

// StartPolling begins the notification refresh loop. Close stops it.
func (a *App) StartPolling(ctx context.Context) {
	a.poller.Start(ctx)
	a.closers = append(a.closers, func() error {
		a.poller.Stop()
		return nil
	})
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	a.closers = nil
	return err
}
