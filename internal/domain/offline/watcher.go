package offline

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// Prober проверка доступности сервера
type Prober interface {
	HealthCheck(ctx context.Context) error
}

// Status снимок для SYNC_STATUS
type Status struct {
	IsSyncing bool `json:"isSyncing"`
	QueueSize int  `json:"queueSize"`
	IsOnline  bool `json:"isOnline"`
}

// Watcher следит за связью. Переход из офлайна в онлайн при непустой
// очереди запускает синхронизацию. До первой проверки считаемся офлайн.
type Watcher struct {
	syncer   *SyncService
	queue    *Queue
	prober   Prober
	interval time.Duration
	log      *slog.Logger

	mu        sync.Mutex
	online    bool
	listeners []func(Status)
}

func NewWatcher(syncer *SyncService, queue *Queue, prober Prober, interval time.Duration, log *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Watcher{
		syncer:   syncer,
		queue:    queue,
		prober:   prober,
		interval: interval,
		log:      log.With(slog.String("component", "connectivity")),
	}
}

// Subscribe слушатель изменений статуса
func (w *Watcher) Subscribe(fn func(Status)) {
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

// Run периодически проверяет связь до отмены контекста
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info("Запуск наблюдения за связью", "interval", w.interval)

	w.Probe(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Наблюдение за связью остановлено")
			return nil
		case <-ticker.C:
			w.Probe(ctx)
		}
	}
}

// Probe проверяет связь и применяет результат
func (w *Watcher) Probe(ctx context.Context) bool {
	online := w.prober.HealthCheck(ctx) == nil
	w.SetOnline(ctx, online)
	return online
}

// SetOnline событие платформы о смене связи
func (w *Watcher) SetOnline(ctx context.Context, online bool) {
	w.mu.Lock()
	was := w.online
	w.online = online
	w.mu.Unlock()

	if was == online {
		return
	}

	w.log.Info("Связь изменилась", "online", online)
	w.publish(ctx)

	if was || !online {
		return
	}

	size, err := w.queue.Size(ctx)
	if err != nil {
		w.log.Warn("Не удалось прочитать очередь", "error", err)
		return
	}
	if size == 0 {
		return
	}

	w.drain(ctx)
}

// TriggerSync ручной запуск. Без связи возвращает ErrOffline, а не успех.
func (w *Watcher) TriggerSync(ctx context.Context) (*SyncResult, error) {
	if !w.Probe(ctx) {
		w.log.Warn("Ручная синхронизация без связи")
		return nil, ErrOffline
	}
	return w.drain(ctx)
}

func (w *Watcher) drain(ctx context.Context) (*SyncResult, error) {
	syncing := w.Status(ctx)
	syncing.IsSyncing = true
	w.emit(syncing)

	result, err := w.syncer.Drain(ctx)
	if err != nil && !errors.Is(err, ErrSyncInProgress) {
		w.log.Error("Ошибка синхронизации", "error", err)
	}

	w.publish(ctx)
	return result, err
}

func (w *Watcher) IsOnline() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}

// Status текущий статус синхронизации
func (w *Watcher) Status(ctx context.Context) Status {
	size, err := w.queue.Size(ctx)
	if err != nil {
		w.log.Warn("Не удалось прочитать очередь", "error", err)
	}

	return Status{
		IsSyncing: w.syncer.IsSyncing(),
		QueueSize: size,
		IsOnline:  w.IsOnline(),
	}
}

func (w *Watcher) publish(ctx context.Context) {
	w.emit(w.Status(ctx))
}

func (w *Watcher) emit(status Status) {
	w.mu.Lock()
	listeners := append([]func(Status){}, w.listeners...)
	w.mu.Unlock()

	for _, fn := range listeners {
		fn(status)
	}
}
