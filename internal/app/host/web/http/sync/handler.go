package sync

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"natively/internal/domain/offline"
)

// Servicer очередь синхронизации хоста
type Servicer interface {
	Status(ctx context.Context) offline.Status
	Stats() *offline.SyncStats
	LastSync() time.Time
	Trigger(ctx context.Context) (*offline.SyncResult, error)
}

type Handler struct {
	service    Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.getStatusOp(), h.getStatus)
	huma.Register(api, h.triggerOp(), h.trigger)
}

func (h *Handler) getStatus(ctx context.Context, _ *getStatusInput) (*getStatusOutput, error) {
	status := h.service.Status(ctx)

	body := GetStatusResponse{
		IsSyncing: status.IsSyncing,
		QueueSize: status.QueueSize,
		IsOnline:  status.IsOnline,
		Stats:     *h.service.Stats(),
	}
	if last := h.service.LastSync(); !last.IsZero() {
		body.LastSync = &last
	}

	return &getStatusOutput{Body: body}, nil
}

func (h *Handler) trigger(ctx context.Context, _ *triggerInput) (*triggerOutput, error) {
	result, err := h.service.Trigger(ctx)
	if errors.Is(err, offline.ErrOffline) {
		return nil, huma.Error503ServiceUnavailable("no connectivity")
	}
	if errors.Is(err, offline.ErrSyncInProgress) {
		return nil, huma.Error409Conflict("sync already in progress")
	}
	if err != nil && result == nil {
		return &triggerOutput{
			Body: TriggerResponse{
				Status: "Error",
				Error:  err.Error(),
			},
		}, nil
	}

	body := TriggerResponse{
		Status:    "Ok",
		Applied:   result.Applied,
		Skipped:   result.Skipped,
		Remaining: result.Remaining,
		Errors:    result.Errors,
	}
	if !result.Success {
		body.Status = "Error"
	}
	if err != nil {
		body.Error = err.Error()
	}

	return &triggerOutput{Body: body}, nil
}
