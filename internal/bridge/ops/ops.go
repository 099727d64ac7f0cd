// Package ops обработчики сообщений моста. Один набор на все платформы;
// различия платформ приходят через bridge.Capabilities и шлюзы разрешений.
package ops

import (
	"context"
	"encoding/json"

	"golang.org/x/exp/slog"

	"natively/internal/bridge"
	"natively/internal/domain/catalog"
	"natively/internal/domain/kv"
	"natively/internal/domain/location"
	"natively/internal/domain/permission"
	"natively/internal/domain/preference"
)

// Geofencing управление мониторингом геозон
type Geofencing interface {
	Start(ctx context.Context) bool
	Stop(ctx context.Context)
	IsActive(ctx context.Context) bool
}

// Permissions шлюзы разрешений хоста
type Permissions struct {
	Location      *permission.LocationGateway
	Contacts      *permission.Gateway
	Microphone    *permission.Gateway
	Media         *permission.Gateway
	Camera        *permission.Gateway
	Notifications *permission.Gateway
}

// NewPermissions шлюзы поверх одного платформенного API
func NewPermissions(p permission.Prompter, log *slog.Logger) Permissions {
	return Permissions{
		Location:      permission.NewLocationGateway(p, log),
		Contacts:      permission.NewGateway(permission.Contacts, p, log),
		Microphone:    permission.NewGateway(permission.Microphone, p, log),
		Media:         permission.NewGateway(permission.Media, p, log),
		Camera:        permission.NewGateway(permission.Camera, p, log),
		Notifications: permission.NewGateway(permission.Notifications, p, log),
	}
}

// Deps зависимости обработчиков
type Deps struct {
	Platform     string
	Capabilities bridge.Capabilities
	Permissions  Permissions
	Store        *kv.Store
	Registry     *location.Registry
	Geofencing   Geofencing
	Preferences  *preference.Service
	Lists        *catalog.Lists
	Products     *catalog.Products
	Hub          *bridge.Hub
	Log          *slog.Logger
}

// Ops обработчики сообщений
type Ops struct {
	Deps
	log *slog.Logger
}

func New(deps Deps) *Ops {
	return &Ops{
		Deps: deps,
		log:  deps.Log.With(slog.String("component", "bridge_ops")),
	}
}

// Register регистрирует все обработчики в диспетчере
func (o *Ops) Register(d *bridge.Dispatcher) {
	d.Register(bridge.TypeHapticTrigger, o.hapticTrigger)
	d.Register(bridge.TypeClipboardRead, o.clipboardRead)
	d.Register(bridge.TypeClipboardWrite, o.clipboardWrite)
	d.Register(bridge.TypeShare, o.share)
	d.Register(bridge.TypeImagePicker, o.imagePicker)
	d.Register(bridge.TypeNotificationRegister, o.notificationRegister)
	d.Register(bridge.TypeNotificationGetToken, o.notificationGetToken)

	d.Register(bridge.TypeContactsRequestPermission, o.contactsRequestPermission)
	d.Register(bridge.TypeContactsGetAll, o.contactsGetAll)
	d.Register(bridge.TypeContactsSearch, o.contactsSearch)

	d.Register(bridge.TypeLocationRequestPermission, o.locationRequestPermission)
	d.Register(bridge.TypeLocationGetCurrent, o.locationGetCurrent)
	d.Register(bridge.TypeGeofenceRequestPermission, o.geofenceRequestPermission)
	d.Register(bridge.TypeGeofenceEnableNotifications, o.geofenceEnableNotifications)
	d.Register(bridge.TypeGeofenceGetStatus, o.geofenceGetStatus)
	d.Register(bridge.TypeGeofenceGetAll, o.geofenceGetStatus)
	d.Register(bridge.TypeGeofenceAdd, o.geofenceAdd)
	d.Register(bridge.TypeGeofenceRemove, o.geofenceRemove)

	d.Register(bridge.TypeMicrophoneRequestPermission, o.microphoneRequestPermission)
	d.Register(bridge.TypeAudioStartRecording, o.audioStart)
	d.Register(bridge.TypeAudioStopRecording, o.audioStop)
	d.Register(bridge.TypeAudioPauseRecording, o.audioPause)
	d.Register(bridge.TypeAudioResumeRecording, o.audioResume)
	d.Register(bridge.TypeAudioGetStatus, o.audioStatus)

	d.Register(bridge.TypeAccountDelete, o.accountDelete)

	d.Register(bridge.TypeStorageGet, o.storageGet)
	d.Register(bridge.TypeStorageSet, o.storageSet)
	d.Register(bridge.TypeStorageRemove, o.storageRemove)

	d.Register(bridge.TypeListsSave, o.listsSave)
	d.Register(bridge.TypeListsGet, o.listsGet)
	d.Register(bridge.TypeListsDelete, o.listsDelete)

	d.Register(bridge.TypeProductCache, o.productCache)
	d.Register(bridge.TypeProductGetCached, o.productGetCached)
}

// SuccessResponse ответ {success, error?}
type SuccessResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func succeeded() SuccessResponse {
	return SuccessResponse{Success: true}
}

func failed(err error) SuccessResponse {
	return SuccessResponse{Success: false, Error: err.Error()}
}

// decode разбирает полезную нагрузку; пустая нагрузка оставляет dst нулевым
func decode(payload json.RawMessage, dst any) error {
	if len(payload) == 0 || string(payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return bridge.Invalid("malformed payload: %v", err)
	}
	return nil
}

func (o *Ops) broadcast(ctx context.Context, pushType string, payload any) {
	if o.Hub == nil {
		return
	}
	o.Hub.Broadcast(ctx, pushType, payload)
}
