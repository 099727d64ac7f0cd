// Package cmdutil общие помощники команд natively
package cmdutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"natively/internal/app/host"
	"natively/internal/bridge"
)

// ErrNoApp команда запущена без инициализированного хоста
var ErrNoApp = errors.New("приложение не инициализировано")

type appKey struct{}

// WithApp кладет хост в контекст команды
func WithApp(ctx context.Context, app *host.App) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

// App достает хост из контекста команды
func App(cmd *cobra.Command) (*host.App, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, ErrNoApp
	}
	app, ok := ctx.Value(appKey{}).(*host.App)
	if !ok || app == nil {
		return nil, ErrNoApp
	}
	return app, nil
}

// JSONOutput выбран ли вывод в JSON (глобальный флаг --json)
func JSONOutput(cmd *cobra.Command) bool {
	v, err := cmd.Flags().GetBool("json")
	return err == nil && v
}

// PrintJSON печатает v с отступами
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Call выполняет вызов моста внутри процесса, как если бы его прислала страница
func Call(ctx context.Context, app *host.App, msgType string, payload any) (bridge.Response, error) {
	if !app.Dispatcher.Has(msgType) {
		return bridge.Response{}, fmt.Errorf("%w: %s", bridge.ErrUnknownType, msgType)
	}

	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return bridge.Response{}, fmt.Errorf("ошибка кодирования запроса: %w", err)
		}
		raw = b
	}

	resp, ok := app.Dispatcher.Handle(ctx, bridge.Message{
		Type:    msgType,
		ID:      uuid.NewString(),
		Payload: raw,
	})
	if !ok {
		return bridge.Response{}, fmt.Errorf("%w: %s", bridge.ErrUnknownType, msgType)
	}
	// Ответы операций с полем error, но без кода, разбирает сама команда
	if failure, failed := resp.Failed(); failed && failure.Code != "" {
		return resp, fmt.Errorf("%s: %s", failure.Code, failure.Error)
	}
	return resp, nil
}
