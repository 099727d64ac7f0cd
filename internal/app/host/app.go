package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"natively/internal/app/host/config"
	"natively/internal/app/host/platform"
	"natively/internal/bridge"
	"natively/internal/bridge/ops"
	"natively/internal/domain/catalog"
	"natively/internal/domain/crash"
	"natively/internal/domain/geofence"
	"natively/internal/domain/kv"
	"natively/internal/domain/location"
	"natively/internal/domain/offline"
	"natively/internal/domain/permission"
	"natively/internal/domain/preference"
	"natively/internal/infrastructure/storage"
	"natively/internal/infrastructure/syncapi"
	"natively/internal/utils/tracing"
)

// Version версия хоста, задается при сборке через -ldflags
var Version = "dev"

// Environment платформенные реализации. Пустые поля заполняются
// значениями по умолчанию для профиля.
type Environment struct {
	Capabilities bridge.Capabilities
	Prompter     permission.Prompter
	Monitor      geofence.Monitor
	Notifier     geofence.Notifier
	Prober       offline.Prober
	Applier      offline.Applier
	// Driver готовое хранилище вместо открытия по конфигурации
	Driver kv.Driver
}

// App корень композиции хоста
type App struct {
	config  *config.Config
	log     *slog.Logger
	profile platform.Profile

	Store       *kv.Store
	Registry    *location.Registry
	Engine      *geofence.Engine
	Tasks       *geofence.TaskRegistry
	Preferences *preference.Service
	Crashes     *crash.Reporter
	Queue       *offline.Queue
	Syncer      *offline.SyncService
	Watcher     *offline.Watcher
	Lists       *catalog.Lists
	Products    *catalog.Products
	Ops         *ops.Ops
	Dispatcher  *bridge.Dispatcher
	Hub         *bridge.Hub

	stopTracing func(context.Context) error

	wg     sync.WaitGroup
	mu     sync.Mutex
	cancel context.CancelFunc
	once   sync.Once
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger, env Environment) (*App, error) {
	profile, err := platform.Lookup(cfg.Platform)
	if err != nil {
		return nil, err
	}

	stopTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    "natively",
		ServiceVersion: Version,
		Platform:       profile.Name,
		UseStdout:      cfg.TracingStdout,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации трассировки: %w", err)
	}

	driver := env.Driver
	if driver == nil {
		driver, err = storage.Open(ctx, cfg, log)
		if err != nil {
			_ = stopTracing(ctx)
			return nil, err
		}
	}

	env = withDefaults(env, cfg, profile, log)
	store := kv.NewStore(driver, log)
	perms := ops.NewPermissions(env.Prompter, log)

	registry := location.NewRegistry(store, log)
	prefs := preference.NewService(store, log)
	engine := geofence.NewEngine(registry, perms.Location, env.Monitor, env.Notifier, log, &geofence.Config{
		Debounce: cfg.GeofenceDebounceDuration(),
		Locale:   cfg.Locale,
	}).WithPreferences(prefs)
	registry.Attach(engine)

	tasks := geofence.NewTaskRegistry(log)
	engine.Register(tasks)

	queue := offline.NewQueue(store, log)
	syncer := offline.NewSyncService(queue, env.Applier, log, &offline.SyncConfig{
		MaxRetries: cfg.SyncMaxRetries,
		RetryDelay: cfg.SyncRetryDelay(),
	})
	watcher := offline.NewWatcher(syncer, queue, env.Prober, cfg.ConnectivityIntervalDuration(), log)

	crashes := crash.NewReporter(store, log)
	hub := bridge.NewHub(log)
	lists := catalog.NewLists(store, queue, log)
	products := catalog.NewProducts(store, queue, cfg.ProductCacheLimit, log)

	handlers := ops.New(ops.Deps{
		Platform:     profile.Name,
		Capabilities: env.Capabilities,
		Permissions:  perms,
		Store:        store,
		Registry:     registry,
		Geofencing:   engine,
		Preferences:  prefs,
		Lists:        lists,
		Products:     products,
		Hub:          hub,
		Log:          log,
	})

	dispatcher := bridge.NewDispatcher(log,
		bridge.WithTimeout(cfg.BridgeTimeoutDuration()),
		bridge.WithValidator(bridge.MustValidator()),
		bridge.WithPanicRecorder(crashes),
	)
	handlers.Register(dispatcher)

	watcher.Subscribe(func(status offline.Status) {
		hub.Broadcast(context.Background(), bridge.PushSyncStatus, status)
	})

	return &App{
		config:      cfg,
		log:         log,
		profile:     profile,
		Store:       store,
		Registry:    registry,
		Engine:      engine,
		Tasks:       tasks,
		Preferences: prefs,
		Crashes:     crashes,
		Queue:       queue,
		Syncer:      syncer,
		Watcher:     watcher,
		Lists:       lists,
		Products:    products,
		Ops:         handlers,
		Dispatcher:  dispatcher,
		Hub:         hub,
		stopTracing: stopTracing,
	}, nil
}

func withDefaults(env Environment, cfg *config.Config, profile platform.Profile, log *slog.Logger) Environment {
	if env.Prompter == nil {
		env.Prompter = profile.DefaultPrompter()
	}
	if env.Monitor == nil {
		env.Monitor = geofence.NewSimulatedMonitor()
	}
	if env.Notifier == nil {
		env.Notifier = LogNotifier(log)
	}
	if env.Prober == nil || env.Applier == nil {
		api := syncapi.New(syncapi.Config{
			BaseURL:  cfg.SyncAPIURL,
			ProbeURL: cfg.ProbeURL(),
		}, log)
		if env.Prober == nil {
			env.Prober = api
		}
		if env.Applier == nil {
			env.Applier = api
		}
	}
	return env
}

// LogNotifier уведомления в журнал для хостов без системных уведомлений
func LogNotifier(log *slog.Logger) geofence.Notifier {
	log = log.With(slog.String("component", "notifications"))
	return geofence.NotifierFunc(func(_ context.Context, n geofence.Notification) error {
		log.Info("Локальное уведомление", "title", n.Title, "body", n.Body, "data", n.Data)
		return nil
	})
}

// Profile профиль платформы
func (a *App) Profile() platform.Profile {
	return a.profile
}

// Config конфигурация хоста
func (a *App) Config() *config.Config {
	return a.config
}

// Bootstrap скрипт window.natively для текущего профиля
func (a *App) Bootstrap() (string, error) {
	return a.profile.Bootstrap(a.config.BridgeTimeoutDuration())
}

// HandleRegionEvent точка входа фоновой задачи геозон
func (a *App) HandleRegionEvent(ctx context.Context, event geofence.RegionEvent) error {
	return a.Tasks.Dispatch(ctx, geofence.TaskName, event)
}

// Run запускает фоновые процессы и блокируется до сигнала или отмены ctx
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	go a.handleSignals(ctx)

	a.resumeGeofencing(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.Watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error("Наблюдение за связью остановлено", "error", err)
		}
	}()

	a.log.Info("Хост запущен",
		"platform", a.profile.Name,
		"env", a.config.Env,
		"storage", a.config.StorageDriver,
	)

	<-ctx.Done()
	a.wg.Wait()
	return nil
}

// resumeGeofencing после перезапуска возобновляет мониторинг без запроса разрешений
func (a *App) resumeGeofencing(ctx context.Context) {
	if a.Engine.IsActive(ctx) {
		return
	}
	if !a.Preferences.GeofenceNotificationsEnabled(ctx) {
		return
	}
	if !a.Ops.Permissions.Location.Has(ctx) {
		a.log.Debug("Мониторинг геозон не возобновлен: нет разрешения")
		return
	}

	stores, err := a.Registry.Load(ctx)
	if err != nil || len(stores) == 0 {
		return
	}
	if a.Engine.Start(ctx) {
		a.log.Info("Мониторинг геозон возобновлен", "stores", len(stores))
	}
}

func (a *App) handleSignals(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.log.Info("Получен сигнал завершения", "signal", sig.String())
		a.stop()
	case <-ctx.Done():
	}
}

func (a *App) stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

// Shutdown останавливает фоновые процессы и закрывает хранилище
func (a *App) Shutdown() {
	a.once.Do(func() {
		a.log.Info("Завершение работы хоста...")

		a.stop()
		a.wg.Wait()
		a.Dispatcher.Wait()

		if err := a.Store.Close(); err != nil {
			a.log.Warn("Ошибка закрытия хранилища", "error", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.stopTracing(ctx); err != nil {
			a.log.Warn("Ошибка остановки трассировки", "error", err)
		}

		a.log.Info("Хост завершил работу")
	})
}
