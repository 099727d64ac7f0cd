package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	DriverSQLite   = "sqlite"
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const (
	defaultEnv              = EnvLocal
	defaultPlatform         = "generic"
	defaultDataDir          = ".natively"
	defaultStorageDriver    = DriverSQLite
	defaultHTTPAddress      = "localhost:8085"
	defaultSiteURL          = "https://app.natively.dev"
	defaultLogLevel         = "info"
	defaultLocale           = "en"
	defaultBridgeTimeout    = 10
	defaultGeofenceDebounce = 300
	defaultProductLimit     = 500
	defaultConnectivity     = 15
	defaultSyncMaxRetries   = 3
	defaultSyncRetryDelayMS = 500
)

type Config struct {
	Env                  string `mapstructure:"app_env"`
	Platform             string `mapstructure:"platform"`
	LogLevel             string `mapstructure:"log_level"`
	DataDir              string `mapstructure:"data_dir"`
	StorageDriver        string `mapstructure:"storage_driver"`
	DatabaseURI          string `mapstructure:"database_uri"`
	HTTPAddress          string `mapstructure:"http_address"`
	SiteURL              string `mapstructure:"site_url"`
	SyncAPIURL           string `mapstructure:"sync_api_url"`
	ConnectivityURL      string `mapstructure:"connectivity_url"`
	ConnectivityInterval int    `mapstructure:"connectivity_interval_seconds"`
	BridgeTimeout        int    `mapstructure:"bridge_timeout_seconds"`
	GeofenceDebounce     int    `mapstructure:"geofence_debounce_seconds"`
	ProductCacheLimit    int    `mapstructure:"product_cache_limit"`
	Locale               string `mapstructure:"locale"`
	SecureStoreSecret    string `mapstructure:"secure_store_secret"`
	TracingStdout        bool   `mapstructure:"tracing_stdout"`
	SyncMaxRetries       int    `mapstructure:"sync_max_retries"`
	SyncRetryDelayMS     int    `mapstructure:"sync_retry_delay_ms"`
}

// MustLoad загружает конфигурацию хоста из .env, переменных окружения и файла viper
func MustLoad() *Config {
	// Определяем путь к .env файлу (относительно места запуска)
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("PLATFORM", defaultPlatform)
	viper.SetDefault("LOG_LEVEL", defaultLogLevel)
	viper.SetDefault("DATA_DIR", defaultDataDir)
	viper.SetDefault("STORAGE_DRIVER", defaultStorageDriver)
	viper.SetDefault("HTTP_ADDRESS", defaultHTTPAddress)
	viper.SetDefault("SITE_URL", defaultSiteURL)
	viper.SetDefault("CONNECTIVITY_INTERVAL_SECONDS", defaultConnectivity)
	viper.SetDefault("BRIDGE_TIMEOUT_SECONDS", defaultBridgeTimeout)
	viper.SetDefault("GEOFENCE_DEBOUNCE_SECONDS", defaultGeofenceDebounce)
	viper.SetDefault("PRODUCT_CACHE_LIMIT", defaultProductLimit)
	viper.SetDefault("LOCALE", defaultLocale)
	viper.SetDefault("TRACING_STDOUT", false)
	viper.SetDefault("SYNC_MAX_RETRIES", defaultSyncMaxRetries)
	viper.SetDefault("SYNC_RETRY_DELAY_MS", defaultSyncRetryDelayMS)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	dataDir := viper.GetString("DATA_DIR")
	if dataDir == defaultDataDir {
		dataDir = filepath.Join(homeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fmt.Printf("Ошибка создания директории данных: %v\n", err)
	}

	config := &Config{
		Env:                  viper.GetString("APP_ENV"),
		Platform:             strings.ToLower(viper.GetString("PLATFORM")),
		LogLevel:             viper.GetString("LOG_LEVEL"),
		DataDir:              dataDir,
		StorageDriver:        strings.ToLower(viper.GetString("STORAGE_DRIVER")),
		DatabaseURI:          viper.GetString("DATABASE_URI"),
		HTTPAddress:          viper.GetString("HTTP_ADDRESS"),
		SiteURL:              viper.GetString("SITE_URL"),
		SyncAPIURL:           viper.GetString("SYNC_API_URL"),
		ConnectivityURL:      viper.GetString("CONNECTIVITY_URL"),
		ConnectivityInterval: viper.GetInt("CONNECTIVITY_INTERVAL_SECONDS"),
		BridgeTimeout:        viper.GetInt("BRIDGE_TIMEOUT_SECONDS"),
		GeofenceDebounce:     viper.GetInt("GEOFENCE_DEBOUNCE_SECONDS"),
		ProductCacheLimit:    viper.GetInt("PRODUCT_CACHE_LIMIT"),
		Locale:               viper.GetString("LOCALE"),
		SecureStoreSecret:    viper.GetString("SECURE_STORE_SECRET"),
		TracingStdout:        viper.GetBool("TRACING_STDOUT"),
		SyncMaxRetries:       viper.GetInt("SYNC_MAX_RETRIES"),
		SyncRetryDelayMS:     viper.GetInt("SYNC_RETRY_DELAY_MS"),
	}

	if err := config.Validate(); err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}

	return config
}

// Default конфигурация со значениями по умолчанию для встраиваемых хостов
func Default(platform, dataDir string) *Config {
	return &Config{
		Env:                  defaultEnv,
		Platform:             strings.ToLower(platform),
		LogLevel:             defaultLogLevel,
		DataDir:              dataDir,
		StorageDriver:        defaultStorageDriver,
		HTTPAddress:          defaultHTTPAddress,
		SiteURL:              defaultSiteURL,
		ConnectivityInterval: defaultConnectivity,
		BridgeTimeout:        defaultBridgeTimeout,
		GeofenceDebounce:     defaultGeofenceDebounce,
		ProductCacheLimit:    defaultProductLimit,
		Locale:               defaultLocale,
		SyncMaxRetries:       defaultSyncMaxRetries,
		SyncRetryDelayMS:     defaultSyncRetryDelayMS,
	}
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverSQLite, DriverBolt, DriverMemory:
	case DriverPostgres:
		if c.DatabaseURI == "" {
			return fmt.Errorf("database_uri обязателен для storage_driver=postgres")
		}
	default:
		return fmt.Errorf("неизвестный storage_driver: %q", c.StorageDriver)
	}

	switch c.Platform {
	case "ios", "android", "web", "generic":
	default:
		return fmt.Errorf("неизвестная платформа: %q", c.Platform)
	}

	if c.BridgeTimeout <= 0 {
		return fmt.Errorf("bridge_timeout_seconds должен быть положительным")
	}
	if c.GeofenceDebounce < 0 {
		return fmt.Errorf("geofence_debounce_seconds не может быть отрицательным")
	}
	if c.ProductCacheLimit <= 0 {
		return fmt.Errorf("product_cache_limit должен быть положительным")
	}
	if c.ConnectivityInterval <= 0 {
		return fmt.Errorf("connectivity_interval_seconds должен быть положительным")
	}
	return nil
}

// SQLitePath путь к файлу SQLite
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "natively.db")
}

// BoltPath путь к файлу bbolt
func (c *Config) BoltPath() string {
	return filepath.Join(c.DataDir, "natively.bolt")
}

// ProbeURL адрес для проверки связи: явный, затем API синхронизации, затем сайт
func (c *Config) ProbeURL() string {
	switch {
	case c.ConnectivityURL != "":
		return c.ConnectivityURL
	case c.SyncAPIURL != "":
		return c.SyncAPIURL
	default:
		return c.SiteURL
	}
}

func (c *Config) BridgeTimeoutDuration() time.Duration {
	return time.Duration(c.BridgeTimeout) * time.Second
}

func (c *Config) GeofenceDebounceDuration() time.Duration {
	return time.Duration(c.GeofenceDebounce) * time.Second
}

func (c *Config) ConnectivityIntervalDuration() time.Duration {
	return time.Duration(c.ConnectivityInterval) * time.Second
}

func (c *Config) SyncRetryDelay() time.Duration {
	return time.Duration(c.SyncRetryDelayMS) * time.Millisecond
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == EnvProd
}

// IsDev проверяет, dev ли окружение
func (c *Config) IsDev() bool {
	return c.Env == EnvDev
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal || c.Env == ""
}
