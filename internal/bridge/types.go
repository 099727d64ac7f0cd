package bridge

import "sort"

// Типы сообщений со страницы
const (
	TypeHapticTrigger = "natively.haptic.trigger"

	TypeClipboardRead  = "natively.clipboard.read"
	TypeClipboardWrite = "natively.clipboard.write"

	TypeShare       = "natively.share"
	TypeImagePicker = "natively.imagePicker"

	TypeNotificationRegister = "natively.notification.register"
	TypeNotificationGetToken = "natively.notification.getToken"

	TypeContactsRequestPermission = "natively.contacts.requestPermission"
	TypeContactsGetAll            = "natively.contacts.getAll"
	TypeContactsSearch            = "natively.contacts.search"

	TypeLocationRequestPermission = "natively.location.requestPermission"
	TypeLocationGetCurrent        = "natively.location.getCurrent"

	TypeGeofenceRequestPermission   = "natively.geofence.requestPermission"
	TypeGeofenceEnableNotifications = "natively.geofence.enableNotifications"
	TypeGeofenceGetStatus           = "natively.geofence.getStatus"
	TypeGeofenceGetAll              = "natively.geofence.getAll"
	TypeGeofenceAdd                 = "natively.geofence.add"
	TypeGeofenceRemove              = "natively.geofence.remove"

	TypeMicrophoneRequestPermission = "natively.microphone.requestPermission"
	TypeAudioStartRecording         = "natively.audio.startRecording"
	TypeAudioStopRecording          = "natively.audio.stopRecording"
	TypeAudioPauseRecording         = "natively.audio.pauseRecording"
	TypeAudioResumeRecording        = "natively.audio.resumeRecording"
	TypeAudioGetStatus              = "natively.audio.getStatus"

	TypeAccountDelete = "natively.account.delete"

	TypeStorageGet    = "natively.storage.get"
	TypeStorageSet    = "natively.storage.set"
	TypeStorageRemove = "natively.storage.remove"

	TypeListsSave   = "natively.lists.save"
	TypeListsGet    = "natively.lists.get"
	TypeListsDelete = "natively.lists.delete"

	TypeProductCache     = "natively.product.cache"
	TypeProductGetCached = "natively.product.getCached"
)

// Сообщения без корреляции, рассылаемые в обе стороны
const (
	PushWebPageReady      = "WEB_PAGE_READY"
	PushNativeAppReady    = "NATIVE_APP_READY"
	PushToken             = "PUSH_TOKEN"
	PushSyncStatus        = "SYNC_STATUS"
	PushGeofencingStatus  = "GEOFENCING_STATUS"
	PushPermissionsStatus = "PERMISSIONS_STATUS"
)

// interactive вызовы, которые ждут действия пользователя: системного окна
// разрешений, выбора файла или подтверждения
var interactive = map[string]struct{}{
	TypeShare:                       {},
	TypeImagePicker:                 {},
	TypeNotificationRegister:        {},
	TypeContactsRequestPermission:   {},
	TypeLocationRequestPermission:   {},
	TypeLocationGetCurrent:          {},
	TypeGeofenceRequestPermission:   {},
	TypeGeofenceEnableNotifications: {},
	TypeGeofenceAdd:                 {},
	TypeMicrophoneRequestPermission: {},
	TypeAudioStartRecording:         {},
	TypeAccountDelete:               {},
}

// IsInteractive ждет ли вызов пользователя
func IsInteractive(msgType string) bool {
	_, ok := interactive[msgType]
	return ok
}

// InteractiveTypes отсортированный список интерактивных типов
func InteractiveTypes() []string {
	types := make([]string, 0, len(interactive))
	for t := range interactive {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
