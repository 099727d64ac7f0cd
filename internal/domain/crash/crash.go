package crash

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"natively/internal/domain/kv"
)

// MaxReports сколько последних отчетов хранится
const MaxReports = 50

// Report запись о сбое
type Report struct {
	ID        string            `json:"id"`
	Message   string            `json:"message"`
	Stack     string            `json:"stack,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Reporter журнал сбоев: пишет в лог и сохраняет последние MaxReports
type Reporter struct {
	store *kv.Store
	log   *slog.Logger
	mu    sync.Mutex
}

func NewReporter(store *kv.Store, log *slog.Logger) *Reporter {
	return &Reporter{
		store: store,
		log:   log.With(slog.String("component", "crash_reporter")),
	}
}

// Record сохраняет сбой. Ошибка хранилища только логируется.
func (r *Reporter) Record(ctx context.Context, cause any, attrs map[string]string) {
	report := Report{
		ID:        uuid.NewString(),
		Message:   fmt.Sprint(cause),
		Stack:     string(debug.Stack()),
		Context:   attrs,
		Timestamp: time.Now().UTC(),
	}

	r.log.Error("Зафиксирован сбой", "message", report.Message, "context", attrs)

	r.mu.Lock()
	defer r.mu.Unlock()

	var reports []Report
	if _, err := r.store.Get(ctx, kv.KeyCrashReports, &reports); err != nil {
		r.log.Warn("Не удалось прочитать журнал сбоев", "error", err)
		return
	}

	reports = append(reports, report)
	if len(reports) > MaxReports {
		reports = reports[len(reports)-MaxReports:]
	}

	if err := r.store.Set(ctx, kv.KeyCrashReports, reports); err != nil {
		r.log.Warn("Не удалось сохранить журнал сбоев", "error", err)
	}
}

// List отчеты от старых к новым
func (r *Reporter) List(ctx context.Context) ([]Report, error) {
	var reports []Report
	if _, err := r.store.Get(ctx, kv.KeyCrashReports, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}
