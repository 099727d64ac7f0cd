package geofence

import (
	"context"
	"errors"

	"natively/internal/domain/location"
)

// TaskName стабильное имя фоновой задачи, под которым ОС вызывает обработчик
const TaskName = "natively-geofence-task"

var (
	// ErrRegistration ОС отклонила регистрацию регионов
	ErrRegistration = errors.New("geofence registration failed")
	ErrUnknownTask  = errors.New("unknown background task")
)

// State состояние движка
type State int

const (
	StateInactive State = iota
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "inactive"
}

// Region круговой регион, регистрируемый в ОС
type Region struct {
	Identifier    string  `json:"identifier"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Radius        float64 `json:"radius"`
	NotifyOnEnter bool    `json:"notifyOnEnter"`
	NotifyOnExit  bool    `json:"notifyOnExit"`
}

// RegionFromLocation регион только на вход
func RegionFromLocation(l location.StoreLocation) Region {
	return Region{
		Identifier:    l.ID,
		Latitude:      l.Latitude,
		Longitude:     l.Longitude,
		Radius:        l.Radius,
		NotifyOnEnter: true,
		NotifyOnExit:  false,
	}
}

// EventKind тип события региона
type EventKind string

const (
	EventEnter EventKind = "enter"
	EventExit  EventKind = "exit"
)

// RegionEvent событие, которое ОС передает фоновой задаче
type RegionEvent struct {
	Kind       EventKind `json:"kind"`
	Identifier string    `json:"identifier"`
}

// Notification локальное уведомление
type Notification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Monitor примитив геозон ОС
type Monitor interface {
	StartRegions(ctx context.Context, task string, regions []Region) error
	StopRegions(ctx context.Context, task string) error
	IsRegistered(ctx context.Context, task string) (bool, error)
}

// Notifier планировщик локальных уведомлений
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc функция как Notifier
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// LocationSource источник магазинов; читается заново при каждом событии
type LocationSource interface {
	Load(ctx context.Context) ([]location.StoreLocation, error)
	Find(ctx context.Context, id string) (location.StoreLocation, bool, error)
}

// PermissionGate разрешение на геолокацию (передний план и фон вместе)
type PermissionGate interface {
	Has(ctx context.Context) bool
	Request(ctx context.Context) bool
}

// NotificationPreference пользовательский флаг уведомлений о геозонах
type NotificationPreference interface {
	GeofenceNotificationsEnabled(ctx context.Context) bool
}
