package preference

import (
	"context"
	"sync"

	"golang.org/x/exp/slog"

	"natively/internal/domain/kv"
)

// Preferences пользовательские настройки
type Preferences struct {
	Locale                string `json:"locale,omitempty"`
	GeofenceNotifications bool   `json:"geofenceNotifications"`
	PushEnabled           bool   `json:"pushEnabled"`
}

// Default настройки до первой записи
func Default() Preferences {
	return Preferences{
		GeofenceNotifications: true,
	}
}

// Service настройки под ключом @natively/user_preferences
type Service struct {
	store *kv.Store
	log   *slog.Logger
	mu    sync.Mutex
}

func NewService(store *kv.Store, log *slog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With(slog.String("component", "preferences")),
	}
}

// Get возвращает настройки; при сбое хранилища значения по умолчанию и ошибку
func (s *Service) Get(ctx context.Context) (Preferences, error) {
	prefs := Default()
	if _, err := s.store.Get(ctx, kv.KeyUserPreferences, &prefs); err != nil {
		return Default(), err
	}
	return prefs, nil
}

// Update читает, изменяет и записывает настройки
func (s *Service) Update(ctx context.Context, apply func(*Preferences)) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.Get(ctx)
	if err != nil {
		return prefs, err
	}

	apply(&prefs)

	if err := s.store.Set(ctx, kv.KeyUserPreferences, prefs); err != nil {
		return prefs, err
	}

	s.log.Debug("Настройки обновлены",
		"geofence_notifications", prefs.GeofenceNotifications,
		"push_enabled", prefs.PushEnabled)
	return prefs, nil
}

// GeofenceNotificationsEnabled флаг для фонового обработчика геозон.
// Сбой чтения не должен глушить уведомления, поэтому возвращается значение по умолчанию.
func (s *Service) GeofenceNotificationsEnabled(ctx context.Context) bool {
	prefs, err := s.Get(ctx)
	if err != nil {
		s.log.Warn("Настройки недоступны, используем значение по умолчанию", "error", err)
	}
	return prefs.GeofenceNotifications
}
