package ops

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"natively/internal/bridge"
	"natively/internal/domain/catalog"
	"natively/internal/domain/kv"
)

type storageResponse struct {
	Key     string          `json:"key"`
	Value   json.RawMessage `json:"value,omitempty"`
	Success *bool           `json:"success,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type storageRequest struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

func (r storageRequest) validate() error {
	if strings.TrimSpace(r.Key) == "" {
		return bridge.Invalid("key is required")
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}

// storageGet отсутствующий ключ и сбой хранилища дают value: null
func (o *Ops) storageGet(ctx context.Context, payload json.RawMessage) (any, error) {
	var req storageRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	raw, found, err := o.Store.GetRaw(ctx, kv.WebKey(req.Key))
	if err != nil {
		return storageResponse{Key: req.Key, Value: json.RawMessage("null"), Error: err.Error()}, nil
	}
	if !found {
		raw = json.RawMessage("null")
	}
	return storageResponse{Key: req.Key, Value: raw}, nil
}

func (o *Ops) storageSet(ctx context.Context, payload json.RawMessage) (any, error) {
	var req storageRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	if len(req.Value) == 0 {
		req.Value = json.RawMessage("null")
	}

	if err := o.Store.Set(ctx, kv.WebKey(req.Key), req.Value); err != nil {
		return storageResponse{Key: req.Key, Success: boolPtr(false), Error: err.Error()}, nil
	}
	return storageResponse{Key: req.Key, Success: boolPtr(true)}, nil
}

func (o *Ops) storageRemove(ctx context.Context, payload json.RawMessage) (any, error) {
	var req storageRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	if err := o.Store.Remove(ctx, kv.WebKey(req.Key)); err != nil {
		return storageResponse{Key: req.Key, Success: boolPtr(false), Error: err.Error()}, nil
	}
	return storageResponse{Key: req.Key, Success: boolPtr(true)}, nil
}

type listsResponse struct {
	Success bool                   `json:"success"`
	ListID  string                 `json:"listId,omitempty"`
	Lists   []catalog.ShoppingList `json:"lists,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

func (o *Ops) listsSave(ctx context.Context, payload json.RawMessage) (any, error) {
	var req struct {
		List catalog.ShoppingList `json:"list"`
	}
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	id, err := o.Lists.Save(ctx, req.List)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidList) {
			return nil, bridge.NewError(err, bridge.CodeInvalid, err.Error())
		}
		return listsResponse{Success: false, Error: err.Error()}, nil
	}
	return listsResponse{Success: true, ListID: id}, nil
}

func (o *Ops) listsGet(ctx context.Context, _ json.RawMessage) (any, error) {
	lists, err := o.Lists.All(ctx)
	if err != nil {
		return listsResponse{Success: false, Lists: []catalog.ShoppingList{}, Error: err.Error()}, nil
	}

	return struct {
		Success bool                   `json:"success"`
		Lists   []catalog.ShoppingList `json:"lists"`
	}{Success: true, Lists: lists}, nil
}

func (o *Ops) listsDelete(ctx context.Context, payload json.RawMessage) (any, error) {
	var req struct {
		ListID string `json:"listId"`
	}
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	if err := o.Lists.Delete(ctx, req.ListID); err != nil {
		return listsResponse{Success: false, ListID: req.ListID, Error: err.Error()}, nil
	}
	return listsResponse{Success: true, ListID: req.ListID}, nil
}

type productResponse struct {
	Barcode string         `json:"barcode"`
	Product map[string]any `json:"product"`
	Error   string         `json:"error,omitempty"`
}

// productCache штрихкод берется из payload.barcode или product.barcode
func (o *Ops) productCache(ctx context.Context, payload json.RawMessage) (any, error) {
	var req struct {
		Barcode string         `json:"barcode"`
		Product map[string]any `json:"product"`
	}
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	barcode := req.Barcode
	if barcode == "" {
		if b, ok := req.Product["barcode"].(string); ok {
			barcode = b
		}
	}

	cached, err := o.Products.Cache(ctx, barcode, req.Product)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidProduct) {
			return nil, bridge.NewError(err, bridge.CodeInvalid, err.Error())
		}
		return productResponse{Barcode: barcode, Product: nil, Error: err.Error()}, nil
	}
	return productResponse{Barcode: cached.Barcode, Product: cached.Product}, nil
}

func (o *Ops) productGetCached(ctx context.Context, payload json.RawMessage) (any, error) {
	var req struct {
		Barcode string `json:"barcode"`
	}
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	cached, found, err := o.Products.Get(ctx, req.Barcode)
	if err != nil {
		return productResponse{Barcode: req.Barcode, Error: err.Error()}, nil
	}
	if !found {
		return productResponse{Barcode: req.Barcode}, nil
	}
	return productResponse{Barcode: cached.Barcode, Product: cached.Product}, nil
}
