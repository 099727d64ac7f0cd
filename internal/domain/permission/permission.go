package permission

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/slog"
)

// ErrDenied отказ в разрешении. Наружу из шлюза не выходит: шлюз возвращает false.
var ErrDenied = errors.New("permission denied")

// Capability разрешение платформы
type Capability string

const (
	LocationForeground Capability = "location.foreground"
	LocationBackground Capability = "location.background"
	Contacts           Capability = "contacts"
	Microphone         Capability = "microphone"
	Media              Capability = "media"
	Camera             Capability = "camera"
	Notifications      Capability = "notifications"
	Tracking           Capability = "tracking"
)

// Status ответ платформы о разрешении
type Status string

const (
	StatusGranted      Status = "granted"
	StatusDenied       Status = "denied"
	StatusUndetermined Status = "undetermined"
)

// Prompter платформенный API разрешений
type Prompter interface {
	Check(ctx context.Context, c Capability) (Status, error)
	Request(ctx context.Context, c Capability) (Status, error)
}

// Gateway шлюз одного разрешения. Отказ и сбой проверки неразличимы:
// любая ошибка или паника платформы превращается в false.
type Gateway struct {
	capability Capability
	prompter   Prompter
	log        *slog.Logger
}

func NewGateway(c Capability, p Prompter, log *slog.Logger) *Gateway {
	return &Gateway{
		capability: c,
		prompter:   p,
		log:        log.With(slog.String("permission", string(c))),
	}
}

func (g *Gateway) Capability() Capability {
	return g.capability
}

// Has проверяет разрешение без запроса пользователю
func (g *Gateway) Has(ctx context.Context) bool {
	return g.call(ctx, "check", g.prompter.Check) == StatusGranted
}

// Request показывает системный запрос один раз
func (g *Gateway) Request(ctx context.Context) bool {
	return g.call(ctx, "request", g.prompter.Request) == StatusGranted
}

// Status текущий статус; при сбое denied
func (g *Gateway) Status(ctx context.Context) Status {
	return g.call(ctx, "check", g.prompter.Check)
}

func (g *Gateway) call(ctx context.Context, op string, fn func(context.Context, Capability) (Status, error)) (status Status) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("Паника при обращении к разрешениям", "op", op, "panic", r)
			status = StatusDenied
		}
	}()

	status, err := fn(ctx, g.capability)
	if err != nil {
		g.log.Warn("Ошибка проверки разрешения", "op", op, "error", fmt.Errorf("%w: %v", ErrDenied, err))
		return StatusDenied
	}
	if status == "" {
		return StatusUndetermined
	}
	return status
}

// Location статус составного разрешения на геолокацию
const (
	LocationGranted        = "granted"
	LocationForegroundOnly = "foreground"
	LocationDenied         = "denied"
)

// LocationGateway составное разрешение: геозоны работают только при
// одновременном разрешении переднего плана и фона.
type LocationGateway struct {
	Foreground *Gateway
	Background *Gateway
}

func NewLocationGateway(p Prompter, log *slog.Logger) *LocationGateway {
	return &LocationGateway{
		Foreground: NewGateway(LocationForeground, p, log),
		Background: NewGateway(LocationBackground, p, log),
	}
}

func (l *LocationGateway) Has(ctx context.Context) bool {
	return l.Foreground.Has(ctx) && l.Background.Has(ctx)
}

// Request запрашивает передний план, затем фон; фон без переднего плана не запрашивается
func (l *LocationGateway) Request(ctx context.Context) bool {
	fg, bg := l.RequestBoth(ctx)
	return fg && bg
}

// RequestBoth возвращает результаты по каждому уровню
func (l *LocationGateway) RequestBoth(ctx context.Context) (foreground, background bool) {
	foreground = l.Foreground.Has(ctx) || l.Foreground.Request(ctx)
	if !foreground {
		return false, false
	}
	background = l.Background.Has(ctx) || l.Background.Request(ctx)
	return foreground, background
}

// PermissionStatus granted, foreground или denied
func (l *LocationGateway) PermissionStatus(ctx context.Context) string {
	if !l.Foreground.Has(ctx) {
		return LocationDenied
	}
	if !l.Background.Has(ctx) {
		return LocationForegroundOnly
	}
	return LocationGranted
}

// StaticPrompter разрешения в памяти для веба и обычного хоста.
// Запрос переводит undetermined в значение Grant.
type StaticPrompter struct {
	mu       sync.RWMutex
	statuses map[Capability]Status
	grant    Status
}

// NewStaticPrompter все разрешения неопределены, запрос возвращает grant
func NewStaticPrompter(grant Status) *StaticPrompter {
	return &StaticPrompter{
		statuses: make(map[Capability]Status),
		grant:    grant,
	}
}

// AllGranted веб-хост: разрешения всегда выданы
func AllGranted() *StaticPrompter {
	p := NewStaticPrompter(StatusGranted)
	for _, c := range []Capability{LocationForeground, LocationBackground, Contacts, Microphone, Media, Camera, Notifications, Tracking} {
		p.statuses[c] = StatusGranted
	}
	return p
}

func (p *StaticPrompter) Set(c Capability, s Status) {
	p.mu.Lock()
	p.statuses[c] = s
	p.mu.Unlock()
}

func (p *StaticPrompter) Check(_ context.Context, c Capability) (Status, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if s, ok := p.statuses[c]; ok {
		return s, nil
	}
	return StatusUndetermined, nil
}

func (p *StaticPrompter) Request(_ context.Context, c Capability) (Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.statuses[c]; ok && s != StatusUndetermined {
		return s, nil
	}
	p.statuses[c] = p.grant
	return p.grant, nil
}
