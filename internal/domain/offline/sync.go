package offline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// Applier отправляет изменение на сервер. Повтор той же записи не должен
// применять ее дважды: сервер получает id записи как ключ идемпотентности.
type Applier interface {
	Apply(ctx context.Context, item QueueItem) error
}

// SyncConfig политика повторов
type SyncConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// SyncError ошибка применения записи
type SyncError struct {
	ItemID    string    `json:"item_id"`
	Error     string    `json:"error"`
	Operation Operation `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
	Retry     int       `json:"retry"`
}

// SyncStats статистика синхронизации
type SyncStats struct {
	TotalSyncs      int       `json:"total_syncs"`
	LastSuccessful  time.Time `json:"last_successful"`
	LastFailed      time.Time `json:"last_failed"`
	TotalApplied    int       `json:"total_applied"`
	TotalSkipped    int       `json:"total_skipped"`
	TotalErrors     int       `json:"total_errors"`
	AvgSyncDuration float64   `json:"avg_sync_duration"`
}

// SyncResult результат одного прохода по очереди
type SyncResult struct {
	Success   bool          `json:"success"`
	Applied   int           `json:"applied"`
	Skipped   int           `json:"skipped"`
	Remaining int           `json:"remaining"`
	Errors    []SyncError   `json:"errors"`
	Duration  time.Duration `json:"duration"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
}

// SyncService проигрывает очередь на сервер в порядке времени записей.
// Успешные записи удаляются по одной; на первой неудаче проход
// останавливается, и эта запись вместе с последующими остается в очереди.
type SyncService struct {
	queue   *Queue
	applier Applier
	log     *slog.Logger
	config  *SyncConfig

	mu        sync.RWMutex
	isSyncing bool
	lastSync  time.Time
	stats     *SyncStats
}

func NewSyncService(queue *Queue, applier Applier, log *slog.Logger, config *SyncConfig) *SyncService {
	if config == nil {
		config = &SyncConfig{
			MaxRetries: 3,
			RetryDelay: 500 * time.Millisecond,
		}
	}

	return &SyncService{
		queue:   queue,
		applier: applier,
		log:     log.With(slog.String("component", "sync")),
		config:  config,
		stats:   &SyncStats{},
	}
}

// Drain отправляет накопленные изменения
func (s *SyncService) Drain(ctx context.Context) (*SyncResult, error) {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		return nil, ErrSyncInProgress
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	result := &SyncResult{
		StartTime: time.Now(),
		Errors:    []SyncError{},
	}

	items, err := s.queue.Items(ctx)
	if err != nil {
		return s.finish(result, err), err
	}

	applied, err := s.queue.appliedSet(ctx)
	if err != nil {
		return s.finish(result, err), err
	}

	s.log.Info("Начало синхронизации", "queue_size", len(items))

	for i, item := range items {
		if _, done := applied[item.ID]; done {
			if err := s.queue.remove(ctx, item.ID); err != nil {
				result.Remaining = len(items) - i
				return s.finish(result, err), err
			}
			result.Skipped++
			continue
		}

		if syncErr := s.applyWithRetry(ctx, item); syncErr != nil {
			result.Errors = append(result.Errors, *syncErr)
			result.Remaining = len(items) - i
			break
		}

		if err := s.queue.markApplied(ctx, item.ID); err != nil {
			s.log.Warn("Не удалось отметить запись примененной", "item_id", item.ID, "error", err)
		}
		if err := s.queue.remove(ctx, item.ID); err != nil {
			result.Remaining = len(items) - i
			return s.finish(result, err), err
		}
		result.Applied++
	}

	return s.finish(result, nil), nil
}

func (s *SyncService) applyWithRetry(ctx context.Context, item QueueItem) *SyncError {
	attempts := s.config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				return s.syncError(item, lastErr, attempt)
			case <-time.After(s.config.RetryDelay):
			}
		}

		lastErr = s.applier.Apply(ctx, item)
		if lastErr == nil {
			s.log.Debug("Запись применена", "item_id", item.ID, "attempt", attempt+1)
			return nil
		}

		s.log.Warn("Ошибка применения записи",
			"item_id", item.ID,
			"attempt", attempt+1,
			"error", lastErr)
	}

	return s.syncError(item, lastErr, attempts)
}

func (s *SyncService) syncError(item QueueItem, err error, retry int) *SyncError {
	return &SyncError{
		ItemID:    item.ID,
		Error:     err.Error(),
		Operation: item.Type,
		Timestamp: time.Now(),
		Retry:     retry,
	}
}

func (s *SyncService) finish(result *SyncResult, err error) *SyncResult {
	if err != nil {
		result.Errors = append(result.Errors, SyncError{
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	result.Success = len(result.Errors) == 0

	s.updateStats(result)

	if result.Success {
		s.log.Info("Синхронизация успешно завершена",
			"duration", result.Duration,
			"applied", result.Applied,
			"skipped", result.Skipped)
	} else {
		s.log.Warn("Синхронизация завершена с ошибками",
			"duration", result.Duration,
			"applied", result.Applied,
			"remaining", result.Remaining,
			"errors", len(result.Errors))
	}

	return result
}

// updateStats обновляет статистику синхронизации
func (s *SyncService) updateStats(result *SyncResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.TotalSyncs++
	s.lastSync = result.EndTime

	if result.Success {
		s.stats.LastSuccessful = result.EndTime
	} else {
		s.stats.LastFailed = result.EndTime
	}

	s.stats.TotalApplied += result.Applied
	s.stats.TotalSkipped += result.Skipped
	s.stats.TotalErrors += len(result.Errors)

	s.stats.AvgSyncDuration = (s.stats.AvgSyncDuration*float64(s.stats.TotalSyncs-1) +
		result.Duration.Seconds()) / float64(s.stats.TotalSyncs)
}

// GetStats возвращает статистику синхронизации
func (s *SyncService) GetStats() *SyncStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statsCopy := *s.stats
	return &statsCopy
}

func (s *SyncService) GetLastSyncTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

func (s *SyncService) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// ResetStats сбрасывает статистику синхронизации
func (s *SyncService) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = &SyncStats{}
}
