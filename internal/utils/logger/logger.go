package logger

import (
	"io"
	"os"

	"golang.org/x/exp/slog"

	"natively/internal/app/host/config"
)

// New создает логгер под окружение: local - цветной вывод, dev/prod - JSON
func New(env string) *slog.Logger {
	return NewTo(env, os.Stdout)
}

// NewTo то же, что New, но пишет в out. Хост на stdio пишет логи в stderr,
// чтобы не смешивать их с кадрами моста
func NewTo(env string, out io.Writer) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal, "":
		log = setupPrettySlog(out)
	case config.EnvDev:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case config.EnvProd:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog(out io.Writer) *slog.Logger {
	opts := PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(out)

	return slog.New(handler)
}
