package kv

import (
	"context"
	"errors"
)

var (
	// ErrNotFound ключ отсутствует в хранилище
	ErrNotFound = errors.New("key not found")
	// ErrStorage ошибка чтения или записи в хранилище
	ErrStorage = errors.New("storage failure")
)

// Driver хранилище сырых значений по строковому ключу
type Driver interface {
	// Get возвращает значение или ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Set перезаписывает значение целиком
	Set(ctx context.Context, key string, value []byte) error
	// Remove удаляет ключ; отсутствие ключа не ошибка
	Remove(ctx context.Context, key string) error
	// Clear удаляет все ключи
	Clear(ctx context.Context) error
	Close() error
}
