package call

import (
	"context"
	"encoding/json"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"natively/internal/bridge"
)

// Dispatcher таблица обработчиков моста
type Dispatcher interface {
	Has(msgType string) bool
	Handle(ctx context.Context, msg bridge.Message) (bridge.Response, bool)
}

type Handler struct {
	dispatcher Dispatcher
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(dispatcher Dispatcher, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.callOp(), h.call)
}

func (h *Handler) call(ctx context.Context, input *callInput) (*callOutput, error) {
	if !h.dispatcher.Has(input.Body.Type) {
		return nil, huma.Error404NotFound("unknown message type: " + input.Body.Type)
	}

	msg := bridge.Message{
		Type: input.Body.Type,
		ID:   input.Body.ID,
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if input.Body.Payload != nil {
		raw, err := json.Marshal(input.Body.Payload)
		if err != nil {
			return nil, huma.Error400BadRequest("malformed payload", err)
		}
		msg.Payload = raw
	}

	resp, ok := h.dispatcher.Handle(ctx, msg)
	if !ok {
		h.log.Warn("Вызов по HTTP отброшен", "type", msg.Type, "id", msg.ID)
		return nil, huma.Error409Conflict("message id is already in flight")
	}

	return &callOutput{
		Body: CallResponse{
			ID:      resp.ID,
			Type:    resp.Type,
			Payload: resp.Payload,
		},
	}, nil
}
