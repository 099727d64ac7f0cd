package geofence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// Config параметры движка
type Config struct {
	// Debounce минимальный интервал между уведомлениями по одному региону, 0 отключает
	Debounce time.Duration
	Locale   string
	// Now часы для окна подавления, по умолчанию time.Now
	Now func() time.Time
}

// Engine мониторинг геозон. Владеет состоянием Inactive/Active и не хранит
// ничего на диске: магазины берутся из LocationSource при каждом вызове.
type Engine struct {
	source      LocationSource
	permission  PermissionGate
	monitor     Monitor
	notifier    Notifier
	preferences NotificationPreference
	messages    *Messages
	debounce    *debouncer
	log         *slog.Logger

	mu    sync.Mutex
	state State
}

func NewEngine(source LocationSource, permission PermissionGate, monitor Monitor, notifier Notifier, log *slog.Logger, config *Config) *Engine {
	if config == nil {
		config = &Config{
			Debounce: 5 * time.Minute,
			Locale:   "en",
		}
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		source:     source,
		permission: permission,
		monitor:    monitor,
		notifier:   notifier,
		messages:   NewMessages(config.Locale),
		debounce:   newDebouncer(config.Debounce, now),
		log:        log.With(slog.String("component", "geofence")),
		state:      StateInactive,
	}
}

// WithPreferences подключает пользовательский флаг уведомлений
func (e *Engine) WithPreferences(p NotificationPreference) *Engine {
	e.preferences = p
	return e
}

// Register объявляет обработчик фоновой задачи под TaskName
func (e *Engine) Register(tasks *TaskRegistry) {
	tasks.Define(TaskName, func(ctx context.Context, event RegionEvent) error {
		if event.Kind != EventEnter {
			return nil
		}
		e.HandleRegionEnter(ctx, event.Identifier)
		return nil
	})
}

// Start запускает мониторинг. Разрешение запрашивается не более одного раза;
// при пустом списке магазинов или отказе ОС возвращает false и остается Inactive.
func (e *Engine) Start(ctx context.Context) bool {
	if !e.permission.Has(ctx) {
		e.log.Debug("Нет разрешения на геолокацию, запрашиваем")
		if !e.permission.Request(ctx) {
			e.log.Warn("Разрешение на геолокацию в фоне не получено")
			return false
		}
	}

	locations, err := e.source.Load(ctx)
	if err != nil {
		e.log.Error("Не удалось загрузить магазины", "error", err)
		return false
	}

	if len(locations) == 0 {
		e.log.Info("Нет магазинов для мониторинга")
		return false
	}

	regions := make([]Region, 0, len(locations))
	for _, l := range locations {
		regions = append(regions, RegionFromLocation(l))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.monitor.StartRegions(ctx, TaskName, regions); err != nil {
		e.log.Error("ОС отклонила регистрацию регионов",
			"regions", len(regions),
			"error", fmt.Errorf("%w: %v", ErrRegistration, err))
		if stopErr := e.monitor.StopRegions(ctx, TaskName); stopErr != nil {
			e.log.Debug("Очистка после неудачной регистрации", "error", stopErr)
		}
		e.state = StateInactive
		return false
	}

	e.state = StateActive
	e.log.Info("Мониторинг геозон запущен", "regions", len(regions))
	return true
}

// Stop снимает регистрацию; безопасен в неактивном состоянии
func (e *Engine) Stop(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	registered, err := e.monitor.IsRegistered(ctx, TaskName)
	if err != nil {
		// статус неизвестен: снимаем регистрацию, чтобы регионы не остались в ОС
		e.log.Warn("Не удалось проверить статус мониторинга", "error", err)
		registered = true
	}

	if !registered {
		e.log.Debug("Мониторинг не запущен, останавливать нечего")
		e.state = StateInactive
		return
	}

	if err := e.monitor.StopRegions(ctx, TaskName); err != nil {
		e.log.Error("Не удалось остановить мониторинг геозон", "error", err)
	}

	e.state = StateInactive
	e.debounce.reset()
	e.log.Info("Мониторинг геозон остановлен")
}

// IsActive спрашивает ОС: мониторинг мог быть снят без нашего участия
func (e *Engine) IsActive(ctx context.Context) bool {
	registered, err := e.monitor.IsRegistered(ctx, TaskName)
	if err != nil {
		e.log.Warn("Не удалось проверить статус мониторинга", "error", err)
		registered = false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !registered && e.state == StateActive {
		e.log.Info("Мониторинг снят системой")
	}
	if registered {
		e.state = StateActive
	} else {
		e.state = StateInactive
	}

	return registered
}

// State последнее известное состояние без обращения к ОС
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// HandleRegionEnter обработчик входа в регион. Выполняется в фоне и не
// полагается на состояние переднего плана: магазин читается из хранилища.
func (e *Engine) HandleRegionEnter(ctx context.Context, identifier string) {
	log := e.log.With(slog.String("region", identifier))

	store, found, err := e.source.Find(ctx, identifier)
	if err != nil {
		log.Error("Не удалось прочитать магазин для региона", "error", err)
		return
	}
	if !found {
		log.Debug("Регион не найден в реестре")
		return
	}

	if e.preferences != nil && !e.preferences.GeofenceNotificationsEnabled(ctx) {
		log.Debug("Уведомления о геозонах отключены пользователем")
		return
	}

	reserved, ok := e.debounce.reserve(identifier)
	if !ok {
		log.Debug("Повторный вход в регион подавлен")
		return
	}

	n := e.messages.For(store)
	if err := e.notifier.Notify(ctx, n); err != nil {
		// непоказанное уведомление не занимает окно подавления
		e.debounce.release(identifier, reserved)
		log.Error("Не удалось показать уведомление", "error", err)
		return
	}

	log.Info("Уведомление о магазине отправлено", "store", store.Name, "kind", n.Data["type"])
}

// TaskHandler обработчик фоновой задачи
type TaskHandler func(ctx context.Context, event RegionEvent) error

// TaskRegistry обработчики фоновых задач по стабильному имени
type TaskRegistry struct {
	mu       sync.RWMutex
	handlers map[string]TaskHandler
	log      *slog.Logger
}

func NewTaskRegistry(log *slog.Logger) *TaskRegistry {
	return &TaskRegistry{
		handlers: make(map[string]TaskHandler),
		log:      log.With(slog.String("component", "task_registry")),
	}
}

func (t *TaskRegistry) Define(name string, handler TaskHandler) {
	t.mu.Lock()
	t.handlers[name] = handler
	t.mu.Unlock()
}

// Dispatch вызывает обработчик задачи; паника обработчика превращается в ошибку
func (t *TaskRegistry) Dispatch(ctx context.Context, name string, event RegionEvent) (err error) {
	t.mu.RLock()
	handler, ok := t.handlers[name]
	t.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", name, r)
			t.log.Error("Паника в фоновой задаче", "task", name, "panic", r)
		}
	}()

	if err := handler(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("task %s: %w", name, err)
	}
	return nil
}
