package geofence

import (
	"natively/internal/bridge/ops"
)

type getStatusInput struct{}

type getStatusOutput struct {
	Body ops.GeofenceStatus
}
