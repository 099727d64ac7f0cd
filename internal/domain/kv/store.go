package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/exp/slog"
)

// Store JSON-хранилище поверх Driver.
// Значения сериализуются в JSON: время записывается строкой ISO 8601
// и восстанавливается только через типизированную структуру вызывающего.
type Store struct {
	driver Driver
	log    *slog.Logger
}

func NewStore(driver Driver, log *slog.Logger) *Store {
	return &Store{
		driver: driver,
		log:    log.With(slog.String("component", "kv_store")),
	}
}

// Get читает значение в dst. Возвращает false, если ключ ни разу не записывался.
func (s *Store) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, found, err := s.GetRaw(ctx, key)
	if err != nil || !found {
		return false, err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warn("Не удалось разобрать значение", "key", key, "error", err)
		return false, fmt.Errorf("%w: decode %s: %v", ErrStorage, key, err)
	}

	return true, nil
}

// GetRaw возвращает JSON значения без разбора
func (s *Store) GetRaw(ctx context.Context, key string) (json.RawMessage, bool, error) {
	raw, err := s.driver.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		s.log.Warn("Не удалось прочитать значение", "key", key, "error", err)
		return nil, false, fmt.Errorf("%w: get %s: %v", ErrStorage, key, err)
	}

	return json.RawMessage(raw), true, nil
}

// Set сериализует value и перезаписывает ключ
func (s *Store) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Warn("Не удалось сериализовать значение", "key", key, "error", err)
		return fmt.Errorf("%w: encode %s: %v", ErrStorage, key, err)
	}

	if err := s.driver.Set(ctx, key, raw); err != nil {
		s.log.Warn("Не удалось записать значение", "key", key, "error", err)
		return fmt.Errorf("%w: set %s: %v", ErrStorage, key, err)
	}

	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.driver.Remove(ctx, key); err != nil {
		s.log.Warn("Не удалось удалить значение", "key", key, "error", err)
		return fmt.Errorf("%w: remove %s: %v", ErrStorage, key, err)
	}
	return nil
}

// Clear стирает все ключи. Используется только при удалении аккаунта.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.driver.Clear(ctx); err != nil {
		s.log.Error("Не удалось очистить хранилище", "error", err)
		return fmt.Errorf("%w: clear: %v", ErrStorage, err)
	}

	s.log.Info("Хранилище очищено")
	return nil
}

func (s *Store) Close() error {
	return s.driver.Close()
}
