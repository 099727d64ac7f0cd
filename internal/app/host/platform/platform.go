// Package platform профили хостов: как страница отправляет сообщения
// нативной стороне и какой API разрешений используется по умолчанию.
package platform

import (
	"fmt"
	"strings"
	"time"

	"natively/internal/bridge"
	"natively/internal/domain/permission"
)

const (
	IOS     = "ios"
	Android = "android"
	Web     = "web"
	Generic = "generic"
)

// TransportFunc глобальная функция страницы, через которую веб-хост
// передает сообщения в websocket
const TransportFunc = "window.__nativelyTransport"

// Profile профиль платформы
type Profile struct {
	Name string
	// PostMessage JS-выражение, отправляющее строку msg нативной стороне
	PostMessage string
	// Embedded страница работает внутри WebView мобильного приложения
	Embedded bool

	prompter func() permission.Prompter
}

var profiles = map[string]Profile{
	IOS: {
		Name:        IOS,
		PostMessage: "window.ReactNativeWebView.postMessage(msg)",
		Embedded:    true,
		prompter:    undetermined,
	},
	Android: {
		Name:        Android,
		PostMessage: "window.ReactNativeWebView.postMessage(msg)",
		Embedded:    true,
		prompter:    undetermined,
	},
	Web: {
		Name:        Web,
		PostMessage: TransportFunc + "(msg)",
		prompter:    func() permission.Prompter { return permission.AllGranted() },
	},
	Generic: {
		Name:        Generic,
		PostMessage: TransportFunc + "(msg)",
		prompter:    undetermined,
	},
}

// undetermined разрешения выдаются при первом запросе
func undetermined() permission.Prompter {
	return permission.NewStaticPrompter(permission.StatusGranted)
}

// Lookup профиль по имени
func Lookup(name string) (Profile, error) {
	p, ok := profiles[strings.ToLower(name)]
	if !ok {
		return Profile{}, fmt.Errorf("неизвестная платформа: %q", name)
	}
	return p, nil
}

// Names имена всех профилей
func Names() []string {
	return []string{IOS, Android, Web, Generic}
}

// DefaultPrompter API разрешений, если оболочка не передала свой
func (p Profile) DefaultPrompter() permission.Prompter {
	if p.prompter == nil {
		return undetermined()
	}
	return p.prompter()
}

// Bootstrap скрипт установки window.natively для профиля
func (p Profile) Bootstrap(timeout time.Duration) (string, error) {
	return bridge.BootstrapScript(bridge.BootstrapConfig{
		Platform:    p.Name,
		PostMessage: p.PostMessage,
		Timeout:     timeout,
	})
}
