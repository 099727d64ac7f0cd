// Package web веб-хост: HTTP API на huma, живой мост через websocket
// и страница-оболочка для сайта.
package web

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	"natively/internal/app/host"
	callAPI "natively/internal/app/host/web/http/call"
	geofenceAPI "natively/internal/app/host/web/http/geofence"
	healthAPI "natively/internal/app/host/web/http/health"
	"natively/internal/app/host/web/http/middleware"
	"natively/internal/app/host/web/http/middleware/logger"
	"natively/internal/app/host/web/http/middleware/recovery"
	syncAPI "natively/internal/app/host/web/http/sync"
	"natively/internal/domain/offline"
)

// New создает *chi.Mux со всеми маршрутами веб-хоста
func New(app *host.App, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("Natively Host API", host.Version)
	API := humachi.New(mux, config)

	loggerMW := logger.New(log)
	recoveryMW := recovery.New(app.Crashes, log)
	middlewares := middleware.NewSet(loggerMW.Middleware(), recoveryMW.Middleware())

	healthAPI.NewHandler(app.Profile().Name, host.Version, app.Watcher, log, middlewares.With()).SetupRoutes(API)
	callAPI.NewHandler(app.Dispatcher, log, middlewares.With()).SetupRoutes(API)
	syncAPI.NewHandler(syncService{app: app}, log, middlewares.With()).SetupRoutes(API)
	geofenceAPI.NewHandler(app.Ops, log, middlewares.With()).SetupRoutes(API)

	mux.Group(func(r chi.Router) {
		r.Use(loggerMW.Handler)
		r.Get("/", indexHandler(app.Config().SiteURL, log))
		r.Get("/bridge/bootstrap.js", bootstrapHandler(app, log))
		r.Handle("/bridge/ws", socketHandler(app, log))
	})

	return mux
}

// syncService очередь хоста для HTTP API
type syncService struct {
	app *host.App
}

func (s syncService) Status(ctx context.Context) offline.Status {
	return s.app.Watcher.Status(ctx)
}

func (s syncService) Stats() *offline.SyncStats {
	return s.app.Syncer.GetStats()
}

func (s syncService) LastSync() time.Time {
	return s.app.Syncer.GetLastSyncTime()
}

func (s syncService) Trigger(ctx context.Context) (*offline.SyncResult, error) {
	return s.app.Watcher.TriggerSync(ctx)
}
