package mobile

import (
	"context"
	"encoding/json"
	"fmt"

	"natively/internal/bridge"
)

// nativeAdapters возможности устройства через Platform
type nativeAdapters struct {
	native Platform
}

func capabilities(native Platform) bridge.Capabilities {
	a := nativeAdapters{native: native}
	return bridge.Capabilities{
		Haptics:     a,
		Clipboard:   a,
		Share:       a,
		ImagePicker: a,
		Push:        a,
		Contacts:    a,
		Location:    a,
		Audio:       a,
		Dialogs:     a,
	}
}

// await вызывает блокирующий метод платформы в отдельной горутине.
// Отмена ctx освобождает вызывающего; поздний ответ платформы отбрасывается.
func await[T any](ctx context.Context, call func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	done := make(chan result, 1)
	go func() {
		value, err := call()
		done <- result{value: value, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (a nativeAdapters) Impact(_ context.Context, style bridge.ImpactStyle) error {
	return a.native.Impact(string(style))
}

func (a nativeAdapters) Notify(_ context.Context, feedback bridge.NotificationFeedback) error {
	return a.native.NotificationFeedback(string(feedback))
}

func (a nativeAdapters) ReadText(context.Context) (string, error) {
	return a.native.ReadClipboard()
}

func (a nativeAdapters) WriteText(_ context.Context, text string) error {
	return a.native.WriteClipboard(text)
}

func (a nativeAdapters) Share(ctx context.Context, req bridge.ShareRequest) (bool, error) {
	return await(ctx, func() (bool, error) {
		return a.native.Share(req.URL, req.Message, req.Title)
	})
}

func (a nativeAdapters) Pick(ctx context.Context, source bridge.ImageSource) (string, error) {
	return await(ctx, func() (string, error) {
		return a.native.PickImage(string(source))
	})
}

func (a nativeAdapters) Register(context.Context) (string, error) {
	return a.native.RegisterPush()
}

func (a nativeAdapters) All(context.Context) ([]bridge.Contact, error) {
	raw, err := a.native.Contacts()
	if err != nil {
		return nil, err
	}

	var contacts []bridge.Contact
	if err := json.Unmarshal([]byte(raw), &contacts); err != nil {
		return nil, fmt.Errorf("decode contacts: %w", err)
	}
	return contacts, nil
}

func (a nativeAdapters) Current(context.Context) (bridge.Position, error) {
	raw, err := a.native.CurrentPosition()
	if err != nil {
		return bridge.Position{}, err
	}

	var pos bridge.Position
	if err := json.Unmarshal([]byte(raw), &pos); err != nil {
		return bridge.Position{}, err
	}
	return pos, nil
}

func (a nativeAdapters) Start(context.Context) error {
	return a.native.StartRecording()
}

func (a nativeAdapters) Stop(context.Context) (string, error) {
	return a.native.StopRecording()
}

func (a nativeAdapters) Pause(context.Context) error {
	return a.native.PauseRecording()
}

func (a nativeAdapters) Resume(context.Context) error {
	return a.native.ResumeRecording()
}

func (a nativeAdapters) Status(context.Context) (bridge.RecorderStatus, error) {
	raw, err := a.native.RecordingStatus()
	if err != nil {
		return "", err
	}

	switch status := bridge.RecorderStatus(raw); status {
	case bridge.RecorderIdle, bridge.RecorderRecording, bridge.RecorderPaused:
		return status, nil
	default:
		return "", fmt.Errorf("unknown recorder status %q", raw)
	}
}

func (a nativeAdapters) Confirm(ctx context.Context, title, message, confirmLabel string) (bool, error) {
	return await(ctx, func() (bool, error) {
		return a.native.Confirm(title, message, confirmLabel)
	})
}
