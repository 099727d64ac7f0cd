package ops

import (
	"context"
	"encoding/json"
	"errors"

	"natively/internal/bridge"
	"natively/internal/domain/location"
	"natively/internal/domain/permission"
	"natively/internal/domain/preference"
)

// GeofenceStatus ответ getStatus и полезная нагрузка GEOFENCING_STATUS
type GeofenceStatus struct {
	IsActive         bool                     `json:"isActive"`
	PermissionStatus string                   `json:"permissionStatus"`
	LocationCount    int                      `json:"locationCount"`
	Locations        []location.StoreLocation `json:"locations"`
	Platform         string                   `json:"platform,omitempty"`
}

// GeofenceStatus текущий статус мониторинга
func (o *Ops) GeofenceStatus(ctx context.Context) GeofenceStatus {
	locations, err := o.Registry.Load(ctx)
	if err != nil {
		o.log.Warn("Не удалось загрузить магазины для статуса", "error", err)
		locations = []location.StoreLocation{}
	}

	status := GeofenceStatus{
		PermissionStatus: permission.LocationDenied,
		LocationCount:    len(locations),
		Locations:        locations,
		Platform:         o.Platform,
	}
	if o.Geofencing != nil {
		status.IsActive = o.Geofencing.IsActive(ctx)
	}
	if o.Permissions.Location != nil {
		status.PermissionStatus = o.Permissions.Location.PermissionStatus(ctx)
	}
	return status
}

// PermissionsStatus полезная нагрузка PERMISSIONS_STATUS
func (o *Ops) PermissionsStatus(ctx context.Context) bridge.PermissionsStatus {
	status := bridge.PermissionsStatus{
		Contacts: string(permission.StatusDenied),
		Location: permission.LocationDenied,
	}
	if o.Permissions.Contacts != nil {
		status.Contacts = string(o.Permissions.Contacts.Status(ctx))
	}
	if o.Permissions.Location != nil {
		status.Location = o.Permissions.Location.PermissionStatus(ctx)
	}
	return status
}

func (o *Ops) publishGeofenceStatus(ctx context.Context) {
	if o.Hub == nil || o.Hub.Len() == 0 {
		return
	}
	o.broadcast(ctx, bridge.PushGeofencingStatus, o.GeofenceStatus(ctx))
}

func (o *Ops) locationRequestPermission(ctx context.Context, _ json.RawMessage) (any, error) {
	gate := o.Permissions.Location
	if gate == nil {
		return permissionResponse{Status: grantedStatus(false)}, nil
	}

	granted := gate.Foreground.Has(ctx) || gate.Foreground.Request(ctx)
	return permissionResponse{Granted: granted, Status: grantedStatus(granted)}, nil
}

func (o *Ops) locationGetCurrent(ctx context.Context, _ json.RawMessage) (any, error) {
	if o.Capabilities.Location == nil {
		return map[string]string{"error": bridge.ErrUnavailable.Error()}, nil
	}

	gate := o.Permissions.Location
	if gate == nil || !(gate.Foreground.Has(ctx) || gate.Foreground.Request(ctx)) {
		return map[string]string{"error": "permission denied"}, nil
	}

	pos, err := o.Capabilities.Location.Current(ctx)
	if err != nil {
		o.log.Warn("Не удалось определить местоположение", "error", err)
		return map[string]string{"error": err.Error()}, nil
	}
	return map[string]bridge.Position{"location": pos}, nil
}

func (o *Ops) geofenceRequestPermission(ctx context.Context, _ json.RawMessage) (any, error) {
	type response struct {
		Foreground       bool   `json:"foreground"`
		Background       bool   `json:"background"`
		PermissionStatus string `json:"permissionStatus"`
		Status           string `json:"status"`
	}

	gate := o.Permissions.Location
	if gate == nil {
		return response{PermissionStatus: permission.LocationDenied, Status: grantedStatus(false)}, nil
	}

	fg, bg := gate.RequestBoth(ctx)
	resp := response{
		Foreground:       fg,
		Background:       bg,
		PermissionStatus: gate.PermissionStatus(ctx),
		Status:           grantedStatus(fg && bg),
	}

	o.broadcast(ctx, bridge.PushPermissionsStatus, o.PermissionsStatus(ctx))
	return resp, nil
}

// geofenceEnableNotifications сохраняет флаг и запускает или останавливает мониторинг
func (o *Ops) geofenceEnableNotifications(ctx context.Context, payload json.RawMessage) (any, error) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	type response struct {
		Success bool   `json:"success"`
		Enabled bool   `json:"enabled"`
		Error   string `json:"error,omitempty"`
	}

	if o.Preferences != nil {
		if _, err := o.Preferences.Update(ctx, func(p *preference.Preferences) {
			p.GeofenceNotifications = req.Enabled
		}); err != nil {
			return response{Success: false, Enabled: !req.Enabled, Error: err.Error()}, nil
		}
	}

	if o.Geofencing != nil {
		active := o.Geofencing.IsActive(ctx)
		switch {
		case req.Enabled && !active:
			if !o.Geofencing.Start(ctx) {
				o.log.Info("Мониторинг не запущен: нет магазинов или разрешения")
			}
		case !req.Enabled && active:
			o.Geofencing.Stop(ctx)
		}
	}

	o.publishGeofenceStatus(ctx)
	return response{Success: true, Enabled: req.Enabled}, nil
}

func (o *Ops) geofenceGetStatus(ctx context.Context, _ json.RawMessage) (any, error) {
	status := o.GeofenceStatus(ctx)
	status.Platform = ""
	return status, nil
}

type locationResponse struct {
	Success    bool   `json:"success"`
	LocationID string `json:"locationId"`
	Error      string `json:"error,omitempty"`
}

// geofenceAdd добавляет магазин. Если уведомления включены, а мониторинг
// не запущен, пробует его запустить.
func (o *Ops) geofenceAdd(ctx context.Context, payload json.RawMessage) (any, error) {
	var req struct {
		Location location.StoreLocation `json:"location"`
	}
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	id, err := o.Registry.Add(ctx, req.Location)
	if err != nil {
		if errors.Is(err, location.ErrInvalidLocation) {
			return nil, bridge.NewError(err, bridge.CodeInvalid, err.Error())
		}
		return locationResponse{Success: false, LocationID: req.Location.ID, Error: err.Error()}, nil
	}

	if o.Geofencing != nil && o.notificationsEnabled(ctx) && !o.Geofencing.IsActive(ctx) {
		o.Geofencing.Start(ctx)
	}

	o.publishGeofenceStatus(ctx)
	return locationResponse{Success: true, LocationID: id}, nil
}

func (o *Ops) geofenceRemove(ctx context.Context, payload json.RawMessage) (any, error) {
	var req struct {
		LocationID string `json:"locationId"`
	}
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	if err := o.Registry.Remove(ctx, req.LocationID); err != nil {
		return locationResponse{Success: false, LocationID: req.LocationID, Error: err.Error()}, nil
	}

	o.publishGeofenceStatus(ctx)
	return locationResponse{Success: true, LocationID: req.LocationID}, nil
}

func (o *Ops) notificationsEnabled(ctx context.Context) bool {
	if o.Preferences == nil {
		return true
	}
	return o.Preferences.GeofenceNotificationsEnabled(ctx)
}
