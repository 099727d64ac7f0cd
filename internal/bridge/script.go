package bridge

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var scripts = template.Must(template.New("").Funcs(template.FuncMap{
	"json": func(v any) (string, error) {
		raw, err := json.Marshal(v)
		return string(raw), err
	},
}).ParseFS(templateFS, "templates/*.tmpl"))

// Injector выполняет скрипт в контексте страницы. Доставка не подтверждается:
// скрипт выполняется не более одного раза.
type Injector interface {
	Inject(ctx context.Context, script string) error
}

// InjectorFunc функция как Injector
type InjectorFunc func(ctx context.Context, script string) error

func (f InjectorFunc) Inject(ctx context.Context, script string) error {
	return f(ctx, script)
}

// BootstrapConfig параметры скрипта, устанавливающего window.natively
type BootstrapConfig struct {
	Platform string
	// PostMessage JS-выражение, отправляющее строку msg нативной стороне
	PostMessage string
	Timeout     time.Duration
	// InteractiveTimeout для вызовов, которые ждут пользователя
	InteractiveTimeout time.Duration
}

// BootstrapScript скрипт, внедряемый в страницу после загрузки
func BootstrapScript(cfg BootstrapConfig) (string, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	interactiveTimeout := cfg.InteractiveTimeout
	if interactiveTimeout <= 0 {
		interactiveTimeout = DefaultInteractiveTimeout
	}
	interactiveTimeout = max(interactiveTimeout, timeout)

	return render("bootstrap.js.tmpl", map[string]any{
		"Platform":             cfg.Platform,
		"PostMessage":          cfg.PostMessage,
		"TimeoutMS":            timeout.Milliseconds(),
		"InteractiveTimeoutMS": interactiveTimeout.Milliseconds(),
		"Interactive":          InteractiveTypes(),
		"ReadyType":            PushWebPageReady,
	})
}

// ResponseScript скрипт, разрешающий ожидающий вызов на странице
func ResponseScript(r Response) (string, error) {
	payload := r.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}

	return render("response.js.tmpl", map[string]any{
		"ID":      r.ID,
		"Payload": string(payload),
	})
}

// PushScript скрипт, доставляющий push как событие message
func PushScript(p Push) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return render("push.js.tmpl", map[string]any{"Data": string(raw)})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := scripts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// ScriptChannel доставляет ответы и push-сообщения внедрением скриптов
type ScriptChannel struct {
	injector Injector
}

func NewScriptChannel(injector Injector) *ScriptChannel {
	return &ScriptChannel{injector: injector}
}

func (s *ScriptChannel) Respond(ctx context.Context, r Response) error {
	script, err := ResponseScript(r)
	if err != nil {
		return err
	}
	return s.injector.Inject(ctx, script)
}

func (s *ScriptChannel) Push(ctx context.Context, p Push) error {
	script, err := PushScript(p)
	if err != nil {
		return err
	}
	return s.injector.Inject(ctx, script)
}
