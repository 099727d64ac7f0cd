package geofence

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"natively/internal/bridge/ops"
)

// StatusSource источник статуса мониторинга
type StatusSource interface {
	GeofenceStatus(ctx context.Context) ops.GeofenceStatus
}

type Handler struct {
	source     StatusSource
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(source StatusSource, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		source:     source,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.getStatusOp(), h.getStatus)
}

func (h *Handler) getStatus(ctx context.Context, _ *getStatusInput) (*getStatusOutput, error) {
	return &getStatusOutput{Body: h.source.GeofenceStatus(ctx)}, nil
}
