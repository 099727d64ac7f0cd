package geofence

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) getStatusOp() huma.Operation {
	return huma.Operation{
		OperationID: "geofence-get-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/geofence/status",
		Summary:     "Статус мониторинга геозон",
		Tags:        []string{"geofence"},
		Middlewares: h.middleware,
	}
}
