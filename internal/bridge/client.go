package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
	"golang.org/x/net/websocket"
)

// Client вызывающая сторона моста поверх websocket: ведет себя как
// страница и сопоставляет ответы по id через Pending.
type Client struct {
	conn    *websocket.Conn
	pending *Pending
	timeout time.Duration
	log     *slog.Logger

	mu     sync.RWMutex
	onPush func(Push)

	sendMu sync.Mutex
	done   chan struct{}
}

// Dial подключается к /bridge/ws веб-хоста
func Dial(ctx context.Context, url, origin string, timeout time.Duration, log *slog.Logger) (*Client, error) {
	cfg, err := websocket.NewConfig(url, origin)
	if err != nil {
		return nil, fmt.Errorf("websocket config: %w", err)
	}

	conn, err := cfg.DialContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &Client{
		conn:    conn,
		pending: NewPending(timeout),
		timeout: timeout,
		log:     log.With(slog.String("component", "bridge_client")),
		done:    make(chan struct{}),
	}
	go c.readLoop()

	return c, nil
}

// OnPush обработчик push-сообщений
func (c *Client) OnPush(fn func(Push)) {
	c.mu.Lock()
	c.onPush = fn
	c.mu.Unlock()
}

// Call отправляет сообщение и ждет единственный ответ
func (c *Client) Call(ctx context.Context, msgType string, payload any) (Response, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return Response{}, fmt.Errorf("encode payload: %w", err)
		}
		raw = b
	}

	timeout := c.timeout
	if IsInteractive(msgType) && timeout < DefaultInteractiveTimeout {
		timeout = DefaultInteractiveTimeout
	}

	id := uuid.NewString()
	ch, err := c.pending.RegisterFor(id, timeout)
	if err != nil {
		return Response{}, err
	}

	if err := c.send(Message{Type: msgType, ID: id, Payload: raw}); err != nil {
		c.pending.Cancel(id, err)
		return Response{}, err
	}

	select {
	case res := <-ch:
		return res.Response, res.Err
	case <-ctx.Done():
		c.pending.Cancel(id, ctx.Err())
		return Response{}, ctx.Err()
	}
}

// Send отправляет сообщение без ожидания ответа
func (c *Client) Send(msgType string, payload any) error {
	push, err := NewPush(msgType, payload)
	if err != nil {
		return err
	}
	return c.send(Message{Type: push.Type, Payload: push.Payload})
}

func (c *Client) Close() error {
	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Client) send(msg Message) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return websocket.JSON.Send(c.conn, msg)
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer c.pending.Close()

	for {
		var frame Message
		if err := websocket.JSON.Receive(c.conn, &frame); err != nil {
			c.log.Debug("Соединение с мостом закрыто", "error", err)
			return
		}

		if frame.ID != "" {
			if !c.pending.Resolve(Response{ID: frame.ID, Type: frame.Type, Payload: frame.Payload}) {
				c.log.Debug("Ответ без ожидающего вызова", "id", frame.ID)
			}
			continue
		}

		c.mu.RLock()
		fn := c.onPush
		c.mu.RUnlock()
		if fn != nil {
			fn(Push{Type: frame.Type, Payload: frame.Payload})
		}
	}
}
