package web

import (
	"context"
	"errors"
	"io"
	"sync"

	"golang.org/x/exp/slog"
	"golang.org/x/net/websocket"

	"natively/internal/app/host"
	"natively/internal/bridge"
)

const maxFrameBytes = 1 << 20

// socketChannel ответы и push-сообщения одной страницы в websocket
type socketChannel struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *socketChannel) Respond(_ context.Context, r bridge.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return websocket.JSON.Send(c.conn, r)
}

func (c *socketChannel) Push(_ context.Context, p bridge.Push) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return websocket.JSON.Send(c.conn, p)
}

// socketHandler живой мост страницы: каждый текстовый кадр это сообщение
func socketHandler(app *host.App, log *slog.Logger) websocket.Handler {
	log = log.With(slog.String("component", "bridge_socket"))

	return func(conn *websocket.Conn) {
		defer func() {
			_ = conn.Close()
		}()
		conn.MaxPayloadBytes = maxFrameBytes

		ctx := conn.Request().Context()
		session := app.Attach(&socketChannel{conn: conn})
		defer session.Close()

		log.Info("Страница подключена", "session", session.ID, "remote_addr", conn.Request().RemoteAddr)

		for {
			var frame []byte
			if err := websocket.Message.Receive(conn, &frame); err != nil {
				if !errors.Is(err, io.EOF) {
					log.Debug("Ошибка чтения кадра", "session", session.ID, "error", err)
				}
				break
			}
			session.Receive(ctx, frame)
		}

		log.Info("Страница отключена", "session", session.ID)
	}
}
