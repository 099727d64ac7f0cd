package catalog

import (
	"context"
	"errors"
	"time"

	"natively/internal/domain/offline"
)

var (
	ErrInvalidList    = errors.New("invalid shopping list")
	ErrInvalidProduct = errors.New("invalid product")
)

// DefaultProductLimit сколько последних товаров хранится в кэше
const DefaultProductLimit = 500

// ShoppingListItem позиция списка покупок
type ShoppingListItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity,omitempty"`
	Checked  bool    `json:"checked"`
	Barcode  string  `json:"barcode,omitempty"`
}

// ShoppingList список покупок в локальном кэше
type ShoppingList struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Items     []ShoppingListItem `json:"items"`
	Synced    bool               `json:"synced"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// CachedProduct товар, найденный сканером или поиском.
// Поля помимо штрихкода сайт определяет сам, поэтому хранятся как есть.
type CachedProduct struct {
	Barcode  string         `json:"barcode"`
	Product  map[string]any `json:"product"`
	Synced   bool           `json:"synced"`
	CachedAt time.Time      `json:"cachedAt"`
}

// ChangeRecorder журнал локальных изменений для синхронизации
type ChangeRecorder interface {
	Enqueue(ctx context.Context, item offline.QueueItem) error
}
