package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"

	"natively/cmd/natively/cmd/cmdutil"
	"natively/internal/app/host"
	"natively/internal/app/host/config"
	"natively/internal/app/host/stdio"
	"natively/internal/utils/logger"
)

var (
	cfgFile       string
	platformName  string
	storageDriver string
	jsonOutput    bool

	cfg *config.Config
	log *slog.Logger
	app *host.App
	tty *os.File
)

var rootCmd = &cobra.Command{
	Use:   "natively",
	Short: "Natively - нативный хост для веб-приложения",
	Long: `Natively встраивает веб-приложение и открывает ему нативные возможности
через мост сообщений window.natively: геозоны магазинов, уведомления,
буфер обмена, контакты, хранилище и офлайн-синхронизацию.

Команда serve поднимает веб-хост, run обслуживает мост через stdin/stdout,
остальные команды работают с локальным состоянием хоста напрямую.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	err := rootCmd.Execute()
	teardownApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = loadConfig()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Переопределяем настройки из флагов командной строки
	if platformName != "" {
		cfg.Platform = strings.ToLower(platformName)
	}
	if storageDriver != "" {
		cfg.StorageDriver = strings.ToLower(storageDriver)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	log = logger.NewTo(cfg.Env, logOutput(cmd))

	tty = openTTY()
	app, err = host.New(cmd.Context(), cfg, log, host.Environment{
		Capabilities: stdio.Capabilities(tty),
	})
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	cmd.SetContext(cmdutil.WithApp(cmd.Context(), app))
	return nil
}

func teardownApp() {
	if app != nil {
		app.Shutdown()
	}
	if tty != nil {
		_ = tty.Close()
	}
}

// logOutput в режиме run stdout занят кадрами моста
func logOutput(cmd *cobra.Command) io.Writer {
	if cmd == runCmd {
		return os.Stderr
	}
	return os.Stdout
}

// openTTY управляющий терминал для окон подтверждения; без него диалоги недоступны
func openTTY() *os.File {
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil
	}
	return f
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Ищем конфиг в стандартных местах
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		viper.AddConfigPath(filepath.Join(home, ".natively"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Конфиг не найден, используем значения по умолчанию
	}

	return config.MustLoad(), nil
}

func init() {
	// Глобальные флаги
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().StringVar(&platformName, "platform", "", "профиль платформы: ios, android, web, generic")
	rootCmd.PersistentFlags().StringVar(&storageDriver, "storage", "", "хранилище: sqlite, bolt, postgres, memory")
}
