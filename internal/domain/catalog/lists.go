package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"natively/internal/domain/kv"
	"natively/internal/domain/offline"
)

// Lists списки покупок под ключом @natively/shopping_lists.
// Каждое изменение попадает в офлайн-очередь.
type Lists struct {
	store   *kv.Store
	changes ChangeRecorder
	log     *slog.Logger
	now     func() time.Time
	mu      sync.Mutex
}

func NewLists(store *kv.Store, changes ChangeRecorder, log *slog.Logger) *Lists {
	return &Lists{
		store:   store,
		changes: changes,
		log:     log.With(slog.String("component", "shopping_lists")),
		now:     time.Now,
	}
}

func (l *Lists) All(ctx context.Context) ([]ShoppingList, error) {
	var lists []ShoppingList
	if _, err := l.store.Get(ctx, kv.KeyShoppingLists, &lists); err != nil {
		return nil, err
	}
	if lists == nil {
		lists = []ShoppingList{}
	}
	return lists, nil
}

// Save создает или заменяет список и возвращает его id
func (l *Lists) Save(ctx context.Context, list ShoppingList) (string, error) {
	if strings.TrimSpace(list.Name) == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidList)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	lists, err := l.All(ctx)
	if err != nil {
		return "", err
	}

	now := l.now().UTC()
	if list.ID == "" {
		list.ID = uuid.NewString()
	}
	list.Synced = false
	list.UpdatedAt = now
	if list.Items == nil {
		list.Items = []ShoppingListItem{}
	}

	op := offline.OpCreate
	replaced := false
	for i := range lists {
		if lists[i].ID == list.ID {
			list.CreatedAt = lists[i].CreatedAt
			lists[i] = list
			replaced = true
			op = offline.OpUpdate
			break
		}
	}
	if !replaced {
		list.CreatedAt = now
		lists = append(lists, list)
	}

	if err := l.store.Set(ctx, kv.KeyShoppingLists, lists); err != nil {
		return "", err
	}

	l.record(ctx, op, list.ID, list, now)
	l.log.Info("Список сохранен", "list_id", list.ID, "op", op)
	return list.ID, nil
}

// Delete удаляет список; отсутствующий id не ошибка
func (l *Lists) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	lists, err := l.All(ctx)
	if err != nil {
		return err
	}

	next := make([]ShoppingList, 0, len(lists))
	for _, list := range lists {
		if list.ID != id {
			next = append(next, list)
		}
	}
	if len(next) == len(lists) {
		return nil
	}

	if err := l.store.Set(ctx, kv.KeyShoppingLists, next); err != nil {
		return err
	}

	l.record(ctx, offline.OpDelete, id, map[string]string{"id": id}, l.now())
	l.log.Info("Список удален", "list_id", id)
	return nil
}

// record ошибка очереди не отменяет локальное изменение
func (l *Lists) record(ctx context.Context, op offline.Operation, id string, data any, now time.Time) {
	if l.changes == nil {
		return
	}

	item, err := offline.NewItem(op, offline.ResourceList, id, data, now)
	if err == nil {
		err = l.changes.Enqueue(ctx, item)
	}
	if err != nil {
		l.log.Warn("Не удалось поставить изменение в очередь", "list_id", id, "error", err)
	}
}
