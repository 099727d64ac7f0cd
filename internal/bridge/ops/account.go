package ops

import (
	"context"
	"encoding/json"

	"natively/internal/bridge"
)

const (
	deleteTitle   = "Delete account"
	deleteMessage = "This removes all data stored on this device. This cannot be undone."
	deleteConfirm = "Delete"
)

// AccountDeleteResponse ответ natively.account.delete
type AccountDeleteResponse struct {
	Confirmed bool   `json:"confirmed,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
	Error     string `json:"error,omitempty"`
}

// accountDelete стирает все локальные данные только после подтверждения в нативном окне
func (o *Ops) accountDelete(ctx context.Context, _ json.RawMessage) (any, error) {
	if o.Capabilities.Dialogs == nil {
		return nil, bridge.ErrUnavailable
	}

	confirmed, err := o.Capabilities.Dialogs.Confirm(ctx, deleteTitle, deleteMessage, deleteConfirm)
	if err != nil {
		o.log.Warn("Окно подтверждения не показано", "error", err)
		return AccountDeleteResponse{Cancelled: true, Error: err.Error()}, nil
	}
	if !confirmed {
		o.log.Info("Удаление аккаунта отменено пользователем")
		return AccountDeleteResponse{Cancelled: true}, nil
	}

	// подтвержденное удаление доводится до конца, даже если вызов уже отменен
	return o.DeleteAccount(context.WithoutCancel(ctx)), nil
}

// DeleteAccount останавливает мониторинг и очищает хранилище без подтверждения
func (o *Ops) DeleteAccount(ctx context.Context) AccountDeleteResponse {
	if o.Geofencing != nil {
		o.Geofencing.Stop(ctx)
	}

	if err := o.Store.Clear(ctx); err != nil {
		return AccountDeleteResponse{Confirmed: true, Error: err.Error()}
	}

	o.log.Warn("Локальные данные аккаунта удалены")
	o.publishGeofenceStatus(ctx)
	return AccountDeleteResponse{Confirmed: true}
}
