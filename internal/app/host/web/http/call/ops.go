package call

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) callOp() huma.Operation {
	return huma.Operation{
		OperationID: "bridge-call",
		Method:      http.MethodPost,
		Path:        "/api/v1/bridge",
		Summary:     "Вызов операции моста",
		Description: "Выполняет сообщение моста и возвращает единственный ответ с тем же id",
		Tags:        []string{"bridge"},
		Middlewares: h.middleware,
	}
}
