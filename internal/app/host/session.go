package host

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"natively/internal/bridge"
)

// Channel канал одной страницы: ответы на вызовы и push-сообщения
type Channel interface {
	bridge.Responder
	bridge.Pusher
}

// Session подключенная страница
type Session struct {
	ID string

	app     *App
	channel Channel
	leave   func()
	log     *slog.Logger
}

// Attach подключает страницу к рассылке push-сообщений
func (a *App) Attach(ch Channel) *Session {
	id := uuid.NewString()
	return &Session{
		ID:      id,
		app:     a,
		channel: ch,
		leave:   a.Hub.Join(ch),
		log:     a.log.With(slog.String("component", "session"), slog.String("session", id)),
	}
}

// Receive разбирает кадр со страницы. Битый кадр отбрасывается.
func (s *Session) Receive(ctx context.Context, frame []byte) {
	var msg bridge.Message
	if err := json.Unmarshal(frame, &msg); err != nil || msg.Type == "" {
		s.log.Warn("Отброшен некорректный кадр", "error", err, "size", len(frame))
		return
	}
	s.Handle(ctx, msg)
}

// Handle обрабатывает сообщение страницы; ответ уходит асинхронно
func (s *Session) Handle(ctx context.Context, msg bridge.Message) {
	if msg.Type == bridge.PushWebPageReady {
		s.Handshake(ctx)
		return
	}
	s.app.Dispatcher.Dispatch(ctx, msg, s.channel)
}

// Handshake начальное состояние для только что загруженной страницы
func (s *Session) Handshake(ctx context.Context) {
	s.log.Debug("Страница готова, отправляем начальное состояние")

	s.push(ctx, bridge.PushNativeAppReady, bridge.NativeAppReady{
		Features: s.app.Ops.Capabilities.Features(),
		Platform: s.app.profile.Name,
		Version:  Version,
	})
	s.push(ctx, bridge.PushGeofencingStatus, s.app.Ops.GeofenceStatus(ctx))
	s.push(ctx, bridge.PushPermissionsStatus, s.app.Ops.PermissionsStatus(ctx))
	s.push(ctx, bridge.PushSyncStatus, s.app.Watcher.Status(ctx))

	token, ok, err := s.app.Ops.PushToken(ctx)
	if err != nil {
		s.log.Warn("Не удалось прочитать push-токен", "error", err)
		return
	}
	if ok {
		s.push(ctx, bridge.PushToken, bridge.TokenPayload{Token: token})
	}
}

func (s *Session) push(ctx context.Context, pushType string, payload any) {
	p, err := bridge.NewPush(pushType, payload)
	if err != nil {
		s.log.Error("Не удалось сериализовать push", "type", pushType, "error", err)
		return
	}
	if err := s.channel.Push(ctx, p); err != nil {
		s.log.Warn("Не удалось доставить push", "type", pushType, "error", err)
	}
}

// Close отключает страницу от рассылки
func (s *Session) Close() {
	s.leave()
}
