package ops

import (
	"context"
	"encoding/json"

	"natively/internal/bridge"
)

type audioResponse struct {
	Success bool                  `json:"success"`
	URI     string                `json:"uri,omitempty"`
	Status  bridge.RecorderStatus `json:"status,omitempty"`
	Error   string                `json:"error,omitempty"`
}

func (o *Ops) microphoneRequestPermission(ctx context.Context, _ json.RawMessage) (any, error) {
	gate := o.Permissions.Microphone
	granted := gate != nil && (gate.Has(ctx) || gate.Request(ctx))
	return map[string]bool{"granted": granted}, nil
}

// audioStart запись начинается только при разрешении на микрофон
func (o *Ops) audioStart(ctx context.Context, _ json.RawMessage) (any, error) {
	rec := o.Capabilities.Audio
	if rec == nil {
		return audioResponse{Error: bridge.ErrUnavailable.Error()}, nil
	}

	if gate := o.Permissions.Microphone; gate == nil || !(gate.Has(ctx) || gate.Request(ctx)) {
		return audioResponse{Error: "permission denied"}, nil
	}

	if err := rec.Start(ctx); err != nil {
		o.log.Warn("Не удалось начать запись", "error", err)
		return audioResponse{Error: err.Error()}, nil
	}
	return audioResponse{Success: true, Status: bridge.RecorderRecording}, nil
}

func (o *Ops) audioStop(ctx context.Context, _ json.RawMessage) (any, error) {
	rec := o.Capabilities.Audio
	if rec == nil {
		return audioResponse{Error: bridge.ErrUnavailable.Error()}, nil
	}

	uri, err := rec.Stop(ctx)
	if err != nil {
		o.log.Warn("Не удалось остановить запись", "error", err)
		return audioResponse{Error: err.Error()}, nil
	}
	return audioResponse{Success: true, URI: uri, Status: bridge.RecorderIdle}, nil
}

func (o *Ops) audioPause(ctx context.Context, _ json.RawMessage) (any, error) {
	return o.audioStep(ctx, bridge.RecorderPaused, func(rec bridge.AudioAdapter) error {
		return rec.Pause(ctx)
	})
}

func (o *Ops) audioResume(ctx context.Context, _ json.RawMessage) (any, error) {
	return o.audioStep(ctx, bridge.RecorderRecording, func(rec bridge.AudioAdapter) error {
		return rec.Resume(ctx)
	})
}

func (o *Ops) audioStep(_ context.Context, next bridge.RecorderStatus, step func(bridge.AudioAdapter) error) (any, error) {
	rec := o.Capabilities.Audio
	if rec == nil {
		return audioResponse{Error: bridge.ErrUnavailable.Error()}, nil
	}
	if err := step(rec); err != nil {
		return audioResponse{Error: err.Error()}, nil
	}
	return audioResponse{Success: true, Status: next}, nil
}

func (o *Ops) audioStatus(ctx context.Context, _ json.RawMessage) (any, error) {
	rec := o.Capabilities.Audio
	if rec == nil {
		return audioResponse{Error: bridge.ErrUnavailable.Error()}, nil
	}

	status, err := rec.Status(ctx)
	if err != nil {
		return audioResponse{Error: err.Error()}, nil
	}
	return audioResponse{Success: true, Status: status}, nil
}
