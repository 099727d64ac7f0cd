package geofence

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"natively/cmd/natively/cmd/cmdutil"
	"natively/internal/bridge"
	geofencing "natively/internal/domain/geofence"
)

var StartCmd = &cobra.Command{
	Use:   "start",
	Short: "Запустить мониторинг геозон",
	Long: `Регистрирует регионы всех сохраненных магазинов. При необходимости
запрашивает разрешение на геолокацию в фоне.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.App(cmd)
		if err != nil {
			return err
		}

		if !app.Engine.Start(cmd.Context()) {
			return fmt.Errorf("мониторинг не запущен: нет магазинов или разрешения")
		}
		fmt.Println("✅ Мониторинг геозон запущен")
		return nil
	},
}

var StopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Остановить мониторинг геозон",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.App(cmd)
		if err != nil {
			return err
		}

		app.Engine.Stop(cmd.Context())
		fmt.Println("Мониторинг геозон остановлен")
		return nil
	},
}

var NotificationsCmd = &cobra.Command{
	Use:       "notifications <on|off>",
	Short:     "Включить или выключить уведомления о магазинах",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.App(cmd)
		if err != nil {
			return err
		}

		var enabled bool
		switch strings.ToLower(args[0]) {
		case "on":
			enabled = true
		case "off":
		default:
			return fmt.Errorf("ожидается on или off, получено %q", args[0])
		}

		var result struct {
			Success bool   `json:"success"`
			Enabled bool   `json:"enabled"`
			Error   string `json:"error,omitempty"`
		}
		resp, err := cmdutil.Call(cmd.Context(), app, bridge.TypeGeofenceEnableNotifications, map[string]bool{"enabled": enabled})
		if err != nil {
			return fmt.Errorf("ошибка изменения настройки: %w", err)
		}
		if err := resp.Decode(&result); err != nil {
			return fmt.Errorf("ошибка разбора ответа: %w", err)
		}
		if !result.Success {
			return fmt.Errorf("настройка не сохранена: %s", result.Error)
		}

		if result.Enabled {
			fmt.Println("Уведомления о геозонах включены")
		} else {
			fmt.Println("Уведомления о геозонах выключены")
		}
		return nil
	},
}

var EnterCmd = &cobra.Command{
	Use:   "enter <id>",
	Short: "Смоделировать вход в регион магазина",
	Long: `Передает фоновой задаче геозон событие входа в регион, как это
сделала бы ОС. Повторный вход в тот же регион в пределах окна подавления
уведомления не показывает.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.App(cmd)
		if err != nil {
			return err
		}

		event := geofencing.RegionEvent{Kind: geofencing.EventEnter, Identifier: args[0]}
		if err := app.HandleRegionEvent(cmd.Context(), event); err != nil {
			return fmt.Errorf("ошибка обработки события: %w", err)
		}
		fmt.Printf("Событие входа в регион %s обработано\n", args[0])
		return nil
	},
}
