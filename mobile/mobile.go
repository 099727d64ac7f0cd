// Package mobile оболочка хоста для iOS и Android, собираемая gomobile bind.
// Экспортируемые типы используют только строки, числа и ошибки.
package mobile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"natively/internal/app/host"
	"natively/internal/app/host/config"
	"natively/internal/bridge"
	"natively/internal/domain/geofence"
	"natively/internal/domain/permission"
	"natively/internal/utils/logger"
)

// Platform вызовы нативной стороны, реализуемые в Swift или Kotlin
type Platform interface {
	// Inject выполняет скрипт в WebView
	Inject(script string) error
	CheckPermission(capability string) string
	RequestPermission(capability string) string
	// StartRegions регионы передаются JSON-массивом
	StartRegions(task string, regionsJSON string) error
	StopRegions(task string) error
	IsRegistered(task string) bool
	// Notify data передается JSON-объектом
	Notify(title, body, dataJSON string) error

	Impact(style string) error
	NotificationFeedback(kind string) error
	ReadClipboard() (string, error)
	WriteClipboard(text string) error
	Confirm(title, message, confirmLabel string) (bool, error)
	// RegisterPush возвращает токен push-уведомлений
	RegisterPush() (string, error)
	// CurrentPosition положение JSON-объектом bridge.Position
	CurrentPosition() (string, error)

	// Share системное окно «Поделиться»; false, если пользователь закрыл окно
	Share(url, message, title string) (bool, error)
	// PickImage source равен library или camera; пустой uri означает отмену
	PickImage(source string) (string, error)
	// Contacts адресная книга JSON-массивом bridge.Contact
	Contacts() (string, error)

	StartRecording() error
	// StopRecording возвращает uri записанного файла
	StopRecording() (string, error)
	PauseRecording() error
	ResumeRecording() error
	// RecordingStatus idle, recording или paused
	RecordingStatus() (string, error)
}

// Host запущенный хост внутри приложения
type Host struct {
	app     *host.App
	session *host.Session
	ctx     context.Context
	cancel  context.CancelFunc
}

// Start открывает хранилище в dataDir и подключает WebView
func Start(platform, dataDir, syncAPIURL string, native Platform) (*Host, error) {
	if native == nil {
		return nil, errors.New("platform is required")
	}

	cfg := config.Default(platform, dataDir)
	cfg.SyncAPIURL = syncAPIURL
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(cfg.Env)
	ctx, cancel := context.WithCancel(context.Background())

	app, err := host.New(ctx, cfg, log, host.Environment{
		Capabilities: capabilities(native),
		Prompter:     prompter{native: native},
		Monitor:      monitor{native: native},
		Notifier:     notifier{native: native},
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ошибка запуска хоста: %w", err)
	}

	channel := bridge.NewScriptChannel(bridge.InjectorFunc(func(_ context.Context, script string) error {
		return native.Inject(script)
	}))

	h := &Host{
		app:     app,
		session: app.Attach(channel),
		ctx:     ctx,
		cancel:  cancel,
	}

	go func() {
		_ = app.Run(ctx)
	}()

	return h, nil
}

// Bootstrap скрипт, который приложение внедряет после загрузки страницы
func (h *Host) Bootstrap() (string, error) {
	return h.app.Bootstrap()
}

// Receive сообщение из обработчика onMessage WebView
func (h *Host) Receive(frame string) {
	h.session.Receive(h.ctx, []byte(frame))
}

// RegionEntered точка входа фоновой задачи геозон
func (h *Host) RegionEntered(identifier string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	return h.app.HandleRegionEvent(ctx, geofence.RegionEvent{
		Kind:       geofence.EventEnter,
		Identifier: identifier,
	})
}

// SetOnline событие платформы о смене связи
func (h *Host) SetOnline(online bool) {
	h.app.Watcher.SetOnline(h.ctx, online)
}

// Stop останавливает хост и закрывает хранилище
func (h *Host) Stop() {
	h.session.Close()
	h.cancel()
	h.app.Shutdown()
}

type prompter struct {
	native Platform
}

func (p prompter) Check(_ context.Context, c permission.Capability) (permission.Status, error) {
	return parseStatus(p.native.CheckPermission(string(c)))
}

func (p prompter) Request(_ context.Context, c permission.Capability) (permission.Status, error) {
	return parseStatus(p.native.RequestPermission(string(c)))
}

func parseStatus(s string) (permission.Status, error) {
	switch permission.Status(s) {
	case permission.StatusGranted, permission.StatusDenied, permission.StatusUndetermined:
		return permission.Status(s), nil
	default:
		return permission.StatusDenied, fmt.Errorf("unknown permission status %q", s)
	}
}

type monitor struct {
	native Platform
}

func (m monitor) StartRegions(_ context.Context, task string, regions []geofence.Region) error {
	raw, err := json.Marshal(regions)
	if err != nil {
		return err
	}
	return m.native.StartRegions(task, string(raw))
}

func (m monitor) StopRegions(_ context.Context, task string) error {
	return m.native.StopRegions(task)
}

func (m monitor) IsRegistered(_ context.Context, task string) (bool, error) {
	return m.native.IsRegistered(task), nil
}

type notifier struct {
	native Platform
}

func (n notifier) Notify(_ context.Context, msg geofence.Notification) error {
	raw, err := json.Marshal(msg.Data)
	if err != nil {
		return err
	}
	return n.native.Notify(msg.Title, msg.Body, string(raw))
}
