package kv

// Ключи постоянного хранилища. Каждая коллекция хранится целиком под одним ключом.
const (
	KeyShoppingLists   = "@natively/shopping_lists"
	KeyCachedProducts  = "@natively/cached_products"
	KeyOfflineQueue    = "@natively/offline_queue"
	KeyUserPreferences = "@natively/user_preferences"
	KeyStoreLocations  = "@natively/store_locations"
	KeyCrashReports    = "@natively/crash_reports"
	KeySyncApplied     = "@natively/sync_applied"
	KeyPushToken       = "@natively/push_token"
)

// SensitiveKeys ключи, значения которых шифруются при наличии секрета
func SensitiveKeys() []string {
	return []string{KeyPushToken, KeyUserPreferences}
}

// webKeyPrefix пространство ключей страницы: natively.storage.* не может
// перезаписать коллекции хоста
const webKeyPrefix = "@natively/web:"

// WebKey ключ хранилища для ключа страницы
func WebKey(key string) string {
	return webKeyPrefix + key
}
