package syncapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"natively/internal/domain/offline"
)

// ErrNotConfigured адрес сервера синхронизации не задан
var ErrNotConfigured = errors.New("sync api is not configured")

// IdempotencyHeader заголовок с id записи очереди
const IdempotencyHeader = "Idempotency-Key"

// Config параметры клиента
type Config struct {
	BaseURL  string
	ProbeURL string
	Timeout  time.Duration
}

// Client проигрывает записи офлайн-очереди на сервер и проверяет связь
type Client struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	probeURL  string
	userAgent string
}

func New(cfg Config, log *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 4,
		},
	}

	return &Client{
		client:    client,
		log:       log.With(slog.String("component", "sync_api")),
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		probeURL:  cfg.ProbeURL,
		userAgent: "Natively-Host/1.0",
	}
}

// HealthCheck проверяет доступность сервера
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.probeURL == "" {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.probeURL, nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("сервер недоступен: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("сервер вернул статус: %d", resp.StatusCode)
	}
	return nil
}

// Apply отправляет одно изменение. 409 означает, что запись уже применена.
func (c *Client) Apply(ctx context.Context, item offline.QueueItem) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	method, path, err := route(item)
	if err != nil {
		return err
	}

	var body io.Reader
	if item.Type != offline.OpDelete && len(item.Data) > 0 {
		body = bytes.NewReader(item.Data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(IdempotencyHeader, item.ID)

	c.log.Debug("Отправка запроса",
		"method", method,
		"url", req.URL.String(),
		"item_id", item.ID,
	)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return c.parseResponse(resp)
}

// route /api/v1/{resource}s[/id]
func route(item offline.QueueItem) (string, string, error) {
	collection := "/api/v1/" + string(item.Resource) + "s"

	switch item.Type {
	case offline.OpCreate:
		return http.MethodPost, collection, nil
	case offline.OpUpdate:
		return http.MethodPut, collection + "/" + item.ResourceID, nil
	case offline.OpDelete:
		return http.MethodDelete, collection + "/" + item.ResourceID, nil
	default:
		return "", "", fmt.Errorf("%w: %s", offline.ErrInvalidItem, item.Type)
	}
}

func (c *Client) parseResponse(resp *http.Response) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	c.log.Debug("Получен ответ",
		"status", resp.StatusCode,
		"body", string(body),
	)

	if resp.StatusCode == http.StatusConflict {
		return nil
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("ошибка сервера: %s", errResp.Error)
		}
		return fmt.Errorf("ошибка сервера: статус %d", resp.StatusCode)
	}

	return nil
}
