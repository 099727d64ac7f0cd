package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Connectivity последний результат проверки связи
type Connectivity interface {
	IsOnline() bool
}

type Handler struct {
	platform     string
	version      string
	connectivity Connectivity
	log          *slog.Logger
	middleware   huma.Middlewares
}

func NewHandler(platform, version string, connectivity Connectivity, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		platform:     platform,
		version:      version,
		connectivity: connectivity,
		log:          log,
		middleware:   middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(_ context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	return &Output{
		Body: Response{
			Status:   "OK",
			Platform: h.platform,
			Version:  h.version,
			Online:   h.connectivity.IsOnline(),
		},
	}, nil
}
