package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"natively/internal/domain/kv"
	"natively/internal/domain/offline"
)

// Products кэш товаров: кольцевой буфер последних limit записей.
// Вытесняются самые старые по времени добавления, обращения порядок не меняют.
type Products struct {
	store   *kv.Store
	changes ChangeRecorder
	limit   int
	log     *slog.Logger
	now     func() time.Time
	mu      sync.Mutex
}

func NewProducts(store *kv.Store, changes ChangeRecorder, limit int, log *slog.Logger) *Products {
	if limit <= 0 {
		limit = DefaultProductLimit
	}
	return &Products{
		store:   store,
		changes: changes,
		limit:   limit,
		log:     log.With(slog.String("component", "product_cache")),
		now:     time.Now,
	}
}

// Cache сохраняет товар; повторный штрихкод заменяет старую запись и становится новейшим
func (p *Products) Cache(ctx context.Context, barcode string, product map[string]any) (CachedProduct, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return CachedProduct{}, fmt.Errorf("%w: barcode is required", ErrInvalidProduct)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	products, err := p.all(ctx)
	if err != nil {
		return CachedProduct{}, err
	}

	now := p.now().UTC()
	entry := CachedProduct{
		Barcode:  barcode,
		Product:  product,
		CachedAt: now,
	}

	next := make([]CachedProduct, 0, len(products)+1)
	for _, cp := range products {
		if cp.Barcode != barcode {
			next = append(next, cp)
		}
	}
	next = append(next, entry)

	if len(next) > p.limit {
		evicted := len(next) - p.limit
		next = next[evicted:]
		p.log.Debug("Старые товары вытеснены из кэша", "evicted", evicted)
	}

	if err := p.store.Set(ctx, kv.KeyCachedProducts, next); err != nil {
		return CachedProduct{}, err
	}

	if p.changes != nil {
		item, err := offline.NewItem(offline.OpCreate, offline.ResourceProduct, barcode, entry, now)
		if err == nil {
			err = p.changes.Enqueue(ctx, item)
		}
		if err != nil {
			p.log.Warn("Не удалось поставить товар в очередь", "barcode", barcode, "error", err)
		}
	}

	return entry, nil
}

// Get ищет товар по штрихкоду
func (p *Products) Get(ctx context.Context, barcode string) (CachedProduct, bool, error) {
	products, err := p.all(ctx)
	if err != nil {
		return CachedProduct{}, false, err
	}

	for _, cp := range products {
		if cp.Barcode == barcode {
			return cp, true, nil
		}
	}
	return CachedProduct{}, false, nil
}

// All товары от старых к новым
func (p *Products) All(ctx context.Context) ([]CachedProduct, error) {
	return p.all(ctx)
}

func (p *Products) all(ctx context.Context) ([]CachedProduct, error) {
	var products []CachedProduct
	if _, err := p.store.Get(ctx, kv.KeyCachedProducts, &products); err != nil {
		return nil, err
	}
	return products, nil
}
