package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) getStatusOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-get-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/status",
		Summary:     "Получить статус синхронизации",
		Description: "Возвращает размер очереди, состояние связи и статистику проходов",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) triggerOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-trigger",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/trigger",
		Summary:     "Запустить синхронизацию",
		Description: "Проверяет связь и отправляет накопленные изменения. Без связи возвращает 503.",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}
