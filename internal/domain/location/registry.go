package location

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/semaphore"

	"natively/internal/domain/kv"
)

// Monitoring управляемый реестром мониторинг геозон
type Monitoring interface {
	IsActive(ctx context.Context) bool
	Start(ctx context.Context) bool
	Stop(ctx context.Context)
}

// Registry список отслеживаемых магазинов под одним ключом хранилища.
// Изменения выполняются строго по одному в порядке поступления; перезапуск
// мониторинга входит в ту же критическую секцию, поэтому зарегистрированные
// в ОС регионы сходятся к последнему записанному состоянию.
type Registry struct {
	store *kv.Store
	log   *slog.Logger
	queue *semaphore.Weighted

	mu         sync.RWMutex
	monitoring Monitoring
}

func NewRegistry(store *kv.Store, log *slog.Logger) *Registry {
	return &Registry{
		store: store,
		log:   log.With(slog.String("component", "location_registry")),
		queue: semaphore.NewWeighted(1),
	}
}

// Attach подключает мониторинг, который перезапускается после изменений
func (r *Registry) Attach(m Monitoring) {
	r.mu.Lock()
	r.monitoring = m
	r.mu.Unlock()
}

// Load возвращает все магазины; пустой список, если ключ ни разу не записывался
func (r *Registry) Load(ctx context.Context) ([]StoreLocation, error) {
	var locations []StoreLocation
	if _, err := r.store.Get(ctx, kv.KeyStoreLocations, &locations); err != nil {
		return nil, fmt.Errorf("ошибка загрузки магазинов: %w", err)
	}
	if locations == nil {
		locations = []StoreLocation{}
	}
	return locations, nil
}

// Find ищет магазин по идентификатору
func (r *Registry) Find(ctx context.Context, id string) (StoreLocation, bool, error) {
	locations, err := r.Load(ctx)
	if err != nil {
		return StoreLocation{}, false, err
	}

	for _, l := range locations {
		if l.ID == id {
			return l, true, nil
		}
	}
	return StoreLocation{}, false, nil
}

// Add добавляет магазин и возвращает его идентификатор.
// Без id присваивается UUIDv7, упорядоченный по времени.
func (r *Registry) Add(ctx context.Context, loc StoreLocation) (string, error) {
	if err := loc.Validate(); err != nil {
		return "", err
	}

	loc.ID = strings.TrimSpace(loc.ID)
	if loc.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("ошибка генерации идентификатора: %w", err)
		}
		loc.ID = id.String()
	}

	err := r.mutate(ctx, func(current []StoreLocation) ([]StoreLocation, bool, error) {
		for _, existing := range current {
			if existing.ID == loc.ID {
				return nil, false, fmt.Errorf("%w: %s", ErrDuplicateID, loc.ID)
			}
		}
		return append(current, loc), true, nil
	})
	if err != nil {
		return "", err
	}

	r.log.Info("Магазин добавлен", "location_id", loc.ID, "name", loc.Name)
	return loc.ID, nil
}

// Remove удаляет магазин; отсутствующий id не ошибка
func (r *Registry) Remove(ctx context.Context, id string) error {
	return r.mutate(ctx, func(current []StoreLocation) ([]StoreLocation, bool, error) {
		next := make([]StoreLocation, 0, len(current))
		for _, l := range current {
			if l.ID != id {
				next = append(next, l)
			}
		}
		if len(next) == len(current) {
			r.log.Debug("Магазин для удаления не найден", "location_id", id)
			return current, false, nil
		}
		r.log.Info("Магазин удален", "location_id", id)
		return next, true, nil
	})
}

func (r *Registry) mutate(ctx context.Context, apply func([]StoreLocation) ([]StoreLocation, bool, error)) error {
	if err := r.queue.Acquire(ctx, 1); err != nil {
		return err
	}
	defer r.queue.Release(1)

	current, err := r.Load(ctx)
	if err != nil {
		return err
	}

	next, changed, err := apply(current)
	if err != nil || !changed {
		return err
	}

	if err := r.store.Set(ctx, kv.KeyStoreLocations, next); err != nil {
		return fmt.Errorf("ошибка сохранения магазинов: %w", err)
	}

	r.restartMonitoring(ctx, len(next))
	return nil
}

// restartMonitoring вызывается только после успешной записи реестра
func (r *Registry) restartMonitoring(ctx context.Context, count int) {
	r.mu.RLock()
	m := r.monitoring
	r.mu.RUnlock()

	if m == nil || !m.IsActive(ctx) {
		return
	}

	r.log.Debug("Перезапуск мониторинга геозон", "locations", count)
	m.Stop(ctx)

	if count == 0 {
		return
	}
	if !m.Start(ctx) {
		r.log.Warn("Не удалось перезапустить мониторинг геозон", "locations", count)
	}
}
