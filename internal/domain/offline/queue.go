package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"natively/internal/domain/kv"
)

var (
	// ErrOffline ручная синхронизация без сети
	ErrOffline = errors.New("no connectivity")
	// ErrSyncInProgress синхронизация уже выполняется
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrInvalidItem    = errors.New("invalid queue item")
)

// maxAppliedIDs сколько идентификаторов примененных записей помнить
const maxAppliedIDs = 1000

// Operation тип изменения
type Operation string

const (
	OpCreate Operation = "CREATE"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// Resource тип ресурса
type Resource string

const (
	ResourceList    Resource = "list"
	ResourceItem    Resource = "item"
	ResourceProduct Resource = "product"
)

// QueueItem ожидающее синхронизации изменение
type QueueItem struct {
	ID         string          `json:"id"`
	Type       Operation       `json:"type"`
	Resource   Resource        `json:"resource"`
	ResourceID string          `json:"resourceId,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewItem создает запись с id вида <unix ms>_<resource id>_<uuid>.
// Суффикс различает изменения одного ресурса в одну миллисекунду.
func NewItem(op Operation, resource Resource, resourceID string, data any, now time.Time) (QueueItem, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return QueueItem{}, fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}

	return QueueItem{
		ID:         strconv.FormatInt(now.UnixMilli(), 10) + "_" + resourceID + "_" + uuid.NewString(),
		Type:       op,
		Resource:   resource,
		ResourceID: resourceID,
		Data:       raw,
		Timestamp:  now.UTC(),
	}, nil
}

func (i QueueItem) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidItem)
	}
	switch i.Type {
	case OpCreate, OpUpdate, OpDelete:
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidItem, i.Type)
	}
	switch i.Resource {
	case ResourceList, ResourceItem, ResourceProduct:
	default:
		return fmt.Errorf("%w: unknown resource %q", ErrInvalidItem, i.Resource)
	}
	return nil
}

// Queue журнал изменений под ключом @natively/offline_queue.
// Записи только добавляются; удаляет их исключительно синхронизация.
type Queue struct {
	store *kv.Store
	log   *slog.Logger
	mu    sync.Mutex
}

func NewQueue(store *kv.Store, log *slog.Logger) *Queue {
	return &Queue{
		store: store,
		log:   log.With(slog.String("component", "offline_queue")),
	}
}

func (q *Queue) Enqueue(ctx context.Context, item QueueItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return err
	}

	for _, pending := range items {
		if pending.ID == item.ID {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidItem, item.ID)
		}
	}

	items = append(items, item)
	if err := q.store.Set(ctx, kv.KeyOfflineQueue, items); err != nil {
		return fmt.Errorf("ошибка записи очереди: %w", err)
	}

	q.log.Debug("Изменение поставлено в очередь",
		"item_id", item.ID,
		"type", item.Type,
		"resource", item.Resource,
		"size", len(items))
	return nil
}

// Items записи в порядке времени создания
func (q *Queue) Items(ctx context.Context) ([]QueueItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.Before(items[j].Timestamp)
	})
	return items, nil
}

func (q *Queue) Size(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	return len(items), err
}

// remove удаляет ровно одну запись, не трогая добавленные за время синхронизации
func (q *Queue) remove(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(items, func(item QueueItem) bool {
		return item.ID == id
	})
	if idx < 0 {
		return nil
	}
	next := slices.Delete(items, idx, idx+1)

	if err := q.store.Set(ctx, kv.KeyOfflineQueue, next); err != nil {
		return fmt.Errorf("ошибка записи очереди: %w", err)
	}
	return nil
}

func (q *Queue) load(ctx context.Context) ([]QueueItem, error) {
	var items []QueueItem
	if _, err := q.store.Get(ctx, kv.KeyOfflineQueue, &items); err != nil {
		return nil, fmt.Errorf("ошибка чтения очереди: %w", err)
	}
	return items, nil
}

// appliedSet уже примененные на сервере записи
func (q *Queue) appliedSet(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	if _, err := q.store.Get(ctx, kv.KeySyncApplied, &ids); err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (q *Queue) markApplied(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	var ids []string
	if _, err := q.store.Get(ctx, kv.KeySyncApplied, &ids); err != nil {
		return err
	}

	ids = append(ids, id)
	if len(ids) > maxAppliedIDs {
		ids = ids[len(ids)-maxAppliedIDs:]
	}
	return q.store.Set(ctx, kv.KeySyncApplied, ids)
}
