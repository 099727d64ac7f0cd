package sync

import (
	"time"

	"natively/internal/domain/offline"
)

type getStatusInput struct{}

type getStatusOutput struct {
	Body GetStatusResponse
}

// GetStatusResponse состояние очереди и статистика синхронизации
type GetStatusResponse struct {
	IsSyncing bool              `json:"isSyncing"`
	QueueSize int               `json:"queueSize"`
	IsOnline  bool              `json:"isOnline"`
	LastSync  *time.Time        `json:"lastSync,omitempty" format:"date-time"`
	Stats     offline.SyncStats `json:"stats"`
}

type triggerInput struct{}

type triggerOutput struct {
	Body TriggerResponse
}

// TriggerResponse результат ручной синхронизации
type TriggerResponse struct {
	Status    string              `json:"status"`
	Error     string              `json:"error,omitempty"`
	Applied   int                 `json:"applied"`
	Skipped   int                 `json:"skipped"`
	Remaining int                 `json:"remaining"`
	Errors    []offline.SyncError `json:"errors,omitempty"`
}
