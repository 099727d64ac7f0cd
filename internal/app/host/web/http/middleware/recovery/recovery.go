package recovery

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Recorder журнал сбоев
type Recorder interface {
	Record(ctx context.Context, cause any, attrs map[string]string)
}

// Recovery перехватывает панику обработчика API: запрос получает 500,
// сбой попадает в журнал, процесс продолжает работу
type Recovery struct {
	crashes Recorder
	log     *slog.Logger
}

func New(crashes Recorder, log *slog.Logger) *Recovery {
	return &Recovery{
		crashes: crashes,
		log:     log.With(slog.String("component", "http_recovery")),
	}
}

func (r *Recovery) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		defer func() {
			cause := recover()
			if cause == nil {
				return
			}

			path := ctx.URL().Path
			r.log.Error("Паника в обработчике API", "path", path, "panic", fmt.Sprint(cause))
			if r.crashes != nil {
				r.crashes.Record(context.WithoutCancel(ctx.Context()), cause, map[string]string{
					"method": ctx.Method(),
					"path":   path,
				})
			}

			ctx.SetHeader("Content-Type", "application/problem+json")
			ctx.SetStatus(http.StatusInternalServerError)
			_, _ = ctx.BodyWriter().Write([]byte(`{"title":"Internal Server Error","status":500}`))
		}()

		next(ctx)
	}
}
