// Package stdio обычный хост без WebView: кадры моста идут построчно
// через stdin и stdout, по одному JSON-объекту в строке.
package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"golang.org/x/exp/slog"

	"natively/internal/app/host"
	"natively/internal/bridge"
)

const maxLineBytes = 1 << 20

// Host построчный транспорт моста
type Host struct {
	app *host.App
	in  io.Reader
	out io.Writer
	log *slog.Logger

	mu sync.Mutex
}

func New(app *host.App, in io.Reader, out io.Writer, log *slog.Logger) *Host {
	return &Host{
		app: app,
		in:  in,
		out: out,
		log: log.With(slog.String("component", "stdio_host")),
	}
}

func (h *Host) Respond(_ context.Context, r bridge.Response) error {
	return h.write(r)
}

func (h *Host) Push(_ context.Context, p bridge.Push) error {
	return h.write(p)
}

func (h *Host) write(v any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := json.NewEncoder(h.out).Encode(v); err != nil {
		return fmt.Errorf("ошибка записи кадра: %w", err)
	}
	return nil
}

// Serve читает кадры до конца ввода или отмены ctx и дожидается всех ответов
func (h *Host) Serve(ctx context.Context) error {
	session := h.app.Attach(h)
	defer session.Close()
	defer h.app.Dispatcher.Wait()

	h.log.Debug("Обычный хост читает кадры", "session", session.ID)

	scanner := bufio.NewScanner(h.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		frame := make([]byte, len(line))
		copy(frame, line)
		session.Receive(ctx, frame)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("ошибка чтения кадров: %w", err)
	}
	return nil
}
