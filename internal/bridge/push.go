package bridge

import (
	"context"
	"encoding/json"
	"sync"

	"golang.org/x/exp/slog"
)

// Push сообщение без корреляции, доставляется странице как глобальное событие
type Push struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewPush сериализует полезную нагрузку
func NewPush(pushType string, payload any) (Push, error) {
	if payload == nil {
		return Push{Type: pushType}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Push{}, err
	}
	return Push{Type: pushType, Payload: raw}, nil
}

// NativeAppReady полезная нагрузка NATIVE_APP_READY
type NativeAppReady struct {
	Features []string `json:"features"`
	Platform string   `json:"platform"`
	Version  string   `json:"version"`
}

// TokenPayload полезная нагрузка PUSH_TOKEN
type TokenPayload struct {
	Token string `json:"token"`
}

// PermissionsStatus полезная нагрузка PERMISSIONS_STATUS
type PermissionsStatus struct {
	Contacts string `json:"contacts"`
	Location string `json:"location"`
}

// Pusher канал доставки push-сообщений на страницу
type Pusher interface {
	Push(ctx context.Context, p Push) error
}

// Hub рассылка push-сообщений всем подключенным страницам
type Hub struct {
	log *slog.Logger

	mu      sync.RWMutex
	nextID  uint64
	members map[uint64]Pusher
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:     log.With(slog.String("component", "bridge_hub")),
		members: make(map[uint64]Pusher),
	}
}

// Join подключает страницу; возвращенная функция отключает ее
func (h *Hub) Join(p Pusher) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.members[id] = p
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.members, id)
		h.mu.Unlock()
	}
}

// Len число подключенных страниц
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.members)
}

// Broadcast отправляет сообщение всем; ошибки доставки только логируются
func (h *Hub) Broadcast(ctx context.Context, pushType string, payload any) {
	push, err := NewPush(pushType, payload)
	if err != nil {
		h.log.Error("Не удалось сериализовать push", "type", pushType, "error", err)
		return
	}

	h.mu.RLock()
	members := make([]Pusher, 0, len(h.members))
	for _, m := range h.members {
		members = append(members, m)
	}
	h.mu.RUnlock()

	for _, m := range members {
		if err := m.Push(ctx, push); err != nil {
			h.log.Warn("Не удалось доставить push", "type", pushType, "error", err)
		}
	}
}
