package ops

import (
	"context"
	"encoding/json"

	"natively/internal/bridge"
	"natively/internal/domain/kv"
)

// hapticTrigger каждая категория отображается ровно в один примитив ОС
func (o *Ops) hapticTrigger(ctx context.Context, payload json.RawMessage) (any, error) {
	var req struct {
		Type bridge.Haptic `json:"type"`
	}
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	h := o.Capabilities.Haptics
	if h == nil {
		o.log.Debug("Тактильный отклик недоступен", "haptic", req.Type)
		return failed(bridge.ErrUnavailable), nil
	}

	var err error
	switch req.Type {
	case bridge.HapticLight:
		err = h.Impact(ctx, bridge.ImpactLight)
	case bridge.HapticMedium:
		err = h.Impact(ctx, bridge.ImpactMedium)
	case bridge.HapticHeavy:
		err = h.Impact(ctx, bridge.ImpactHeavy)
	case bridge.HapticSuccess:
		err = h.Notify(ctx, bridge.FeedbackSuccess)
	case bridge.HapticWarning:
		err = h.Notify(ctx, bridge.FeedbackWarning)
	case bridge.HapticError:
		err = h.Notify(ctx, bridge.FeedbackError)
	default:
		return nil, bridge.Invalid("unknown haptic type %q", req.Type)
	}

	if err != nil {
		o.log.Debug("Тактильный отклик не выполнен", "haptic", req.Type, "error", err)
		return failed(err), nil
	}
	return succeeded(), nil
}

func (o *Ops) clipboardRead(ctx context.Context, _ json.RawMessage) (any, error) {
	if o.Capabilities.Clipboard == nil {
		return nil, bridge.ErrUnavailable
	}

	text, err := o.Capabilities.Clipboard.ReadText(ctx)
	if err != nil {
		o.log.Warn("Не удалось прочитать буфер обмена", "error", err)
		return map[string]string{"text": "", "error": err.Error()}, nil
	}
	return map[string]string{"text": text}, nil
}

func (o *Ops) clipboardWrite(ctx context.Context, payload json.RawMessage) (any, error) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	if o.Capabilities.Clipboard == nil {
		return failed(bridge.ErrUnavailable), nil
	}
	if err := o.Capabilities.Clipboard.WriteText(ctx, req.Text); err != nil {
		o.log.Warn("Не удалось записать в буфер обмена", "error", err)
		return failed(err), nil
	}
	return succeeded(), nil
}

func (o *Ops) share(ctx context.Context, payload json.RawMessage) (any, error) {
	var req bridge.ShareRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	if o.Capabilities.Share == nil {
		return failed(bridge.ErrUnavailable), nil
	}

	shared, err := o.Capabilities.Share.Share(ctx, req)
	if err != nil {
		o.log.Warn("Не удалось открыть окно «Поделиться»", "error", err)
		return failed(err), nil
	}
	return SuccessResponse{Success: shared}, nil
}

// imagePicker перед выбором запрашивает разрешение на камеру или медиатеку
func (o *Ops) imagePicker(ctx context.Context, payload json.RawMessage) (any, error) {
	var req struct {
		Source bridge.ImageSource `json:"source"`
	}
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	if req.Source == "" {
		req.Source = bridge.SourceLibrary
	}
	if req.Source != bridge.SourceLibrary && req.Source != bridge.SourceCamera {
		return nil, bridge.Invalid("unknown image source %q", req.Source)
	}

	type response struct {
		URI   *string `json:"uri"`
		Error string  `json:"error,omitempty"`
	}

	if o.Capabilities.ImagePicker == nil {
		return response{Error: bridge.ErrUnavailable.Error()}, nil
	}

	gate := o.Permissions.Media
	if req.Source == bridge.SourceCamera {
		gate = o.Permissions.Camera
	}
	if gate != nil && !gate.Has(ctx) && !gate.Request(ctx) {
		return response{Error: "permission denied"}, nil
	}

	uri, err := o.Capabilities.ImagePicker.Pick(ctx, req.Source)
	if err != nil {
		o.log.Warn("Ошибка выбора изображения", "source", req.Source, "error", err)
		return response{Error: err.Error()}, nil
	}
	if uri == "" {
		return response{}, nil
	}
	return response{URI: &uri}, nil
}

// notificationRegister получает токен платформы, сохраняет его и рассылает PUSH_TOKEN
func (o *Ops) notificationRegister(ctx context.Context, _ json.RawMessage) (any, error) {
	if o.Capabilities.Push == nil {
		return failed(bridge.ErrUnavailable), nil
	}

	if gate := o.Permissions.Notifications; gate != nil && !gate.Has(ctx) && !gate.Request(ctx) {
		return SuccessResponse{Success: false, Error: "permission denied"}, nil
	}

	token, err := o.Capabilities.Push.Register(ctx)
	if err != nil {
		o.log.Warn("Не удалось зарегистрироваться для push-уведомлений", "error", err)
		return failed(err), nil
	}

	if err := o.Store.Set(ctx, kv.KeyPushToken, token); err != nil {
		return failed(err), nil
	}

	o.broadcast(ctx, bridge.PushToken, bridge.TokenPayload{Token: token})
	return succeeded(), nil
}

func (o *Ops) notificationGetToken(ctx context.Context, _ json.RawMessage) (any, error) {
	token, found, err := o.PushToken(ctx)
	if err != nil || !found {
		return map[string]*string{"token": nil}, nil
	}
	return map[string]*string{"token": &token}, nil
}

// PushToken сохраненный токен push-уведомлений
func (o *Ops) PushToken(ctx context.Context) (string, bool, error) {
	var token string
	found, err := o.Store.Get(ctx, kv.KeyPushToken, &token)
	if err != nil {
		return "", false, err
	}
	return token, found && token != "", nil
}
