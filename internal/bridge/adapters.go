package bridge

import (
	"context"
)

// Haptic категории тактильного отклика
type Haptic string

const (
	HapticLight   Haptic = "light"
	HapticMedium  Haptic = "medium"
	HapticHeavy   Haptic = "heavy"
	HapticSuccess Haptic = "success"
	HapticWarning Haptic = "warning"
	HapticError   Haptic = "error"
)

// ImpactStyle сила удара
type ImpactStyle string

const (
	ImpactLight  ImpactStyle = "light"
	ImpactMedium ImpactStyle = "medium"
	ImpactHeavy  ImpactStyle = "heavy"
)

// NotificationFeedback тип уведомляющего отклика
type NotificationFeedback string

const (
	FeedbackSuccess NotificationFeedback = "success"
	FeedbackWarning NotificationFeedback = "warning"
	FeedbackError   NotificationFeedback = "error"
)

// HapticsAdapter два примитива ОС: удар и уведомление
type HapticsAdapter interface {
	Impact(ctx context.Context, style ImpactStyle) error
	Notify(ctx context.Context, feedback NotificationFeedback) error
}

type ClipboardAdapter interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error
}

// ShareRequest содержимое системного окна «Поделиться»
type ShareRequest struct {
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
	Title   string `json:"title,omitempty"`
}

// ShareAdapter возвращает false, если пользователь закрыл окно
type ShareAdapter interface {
	Share(ctx context.Context, req ShareRequest) (bool, error)
}

// ImageSource источник изображения
type ImageSource string

const (
	SourceLibrary ImageSource = "library"
	SourceCamera  ImageSource = "camera"
)

// ImagePickerAdapter пустой uri означает отмену выбора
type ImagePickerAdapter interface {
	Pick(ctx context.Context, source ImageSource) (string, error)
}

// PushAdapter регистрация в сервисе push-уведомлений платформы
type PushAdapter interface {
	Register(ctx context.Context) (string, error)
}

// Contact контакт адресной книги
type Contact struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	PhoneNumbers []string `json:"phoneNumbers,omitempty"`
	Emails       []string `json:"emails,omitempty"`
}

type ContactsAdapter interface {
	All(ctx context.Context) ([]Contact, error)
}

// Position текущее положение устройства
type Position struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Altitude  *float64 `json:"altitude,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

type LocationAdapter interface {
	Current(ctx context.Context) (Position, error)
}

// RecorderStatus состояние записи звука
type RecorderStatus string

const (
	RecorderIdle      RecorderStatus = "idle"
	RecorderRecording RecorderStatus = "recording"
	RecorderPaused    RecorderStatus = "paused"
)

// AudioAdapter запись звука. Stop возвращает uri файла.
type AudioAdapter interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (string, error)
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Status(ctx context.Context) (RecorderStatus, error)
}

// DialogAdapter нативное окно подтверждения
type DialogAdapter interface {
	Confirm(ctx context.Context, title, message, confirmLabel string) (bool, error)
}

// Capabilities адаптеры платформы. Отсутствующий адаптер означает,
// что возможность на хосте недоступна.
type Capabilities struct {
	Haptics     HapticsAdapter
	Clipboard   ClipboardAdapter
	Share       ShareAdapter
	ImagePicker ImagePickerAdapter
	Push        PushAdapter
	Contacts    ContactsAdapter
	Location    LocationAdapter
	Audio       AudioAdapter
	Dialogs     DialogAdapter
}

// Features список доступных возможностей для NATIVE_APP_READY
func (c Capabilities) Features() []string {
	features := []string{"storage", "lists", "productCache", "geofencing"}
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}
	add(c.Haptics != nil, "haptics")
	add(c.Clipboard != nil, "clipboard")
	add(c.Share != nil, "share")
	add(c.ImagePicker != nil, "imagePicker")
	add(c.Push != nil, "pushNotifications")
	add(c.Contacts != nil, "contacts")
	add(c.Location != nil, "location")
	add(c.Audio != nil, "audio")
	add(c.Dialogs != nil, "accountDeletion")
	return features
}
