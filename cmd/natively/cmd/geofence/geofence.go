// Package geofence команды управления магазинами и мониторингом геозон
package geofence

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"natively/cmd/natively/cmd/cmdutil"
	"natively/internal/bridge/ops"
	"natively/internal/domain/location"
)

var GeofenceCmd = &cobra.Command{
	Use:   "geofence",
	Short: "Магазины и мониторинг геозон",
	Long: `Управление списком отслеживаемых магазинов и мониторингом геозон.

При входе в радиус магазина хост показывает уведомление, если пользователь
включил уведомления о геозонах.`,
}

var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Статус мониторинга",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.App(cmd)
		if err != nil {
			return err
		}

		status := app.Ops.GeofenceStatus(cmd.Context())
		if cmdutil.JSONOutput(cmd) {
			return cmdutil.PrintJSON(os.Stdout, status)
		}
		printStatus(status)
		return nil
	},
}

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список магазинов",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.App(cmd)
		if err != nil {
			return err
		}

		stores, err := app.Registry.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка загрузки магазинов: %w", err)
		}

		if cmdutil.JSONOutput(cmd) {
			return cmdutil.PrintJSON(os.Stdout, stores)
		}
		return printStores(stores)
	},
}

func printStatus(s ops.GeofenceStatus) {
	active := "остановлен"
	if s.IsActive {
		active = "активен"
	}

	fmt.Println("=== Геозоны ===")
	fmt.Printf("Мониторинг:  %s\n", active)
	fmt.Printf("Разрешение:  %s\n", s.PermissionStatus)
	fmt.Printf("Магазинов:   %d\n", s.LocationCount)
	if s.Platform != "" {
		fmt.Printf("Платформа:   %s\n", s.Platform)
	}
}

func printStores(stores []location.StoreLocation) error {
	if len(stores) == 0 {
		fmt.Println("Магазины не найдены")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tНАЗВАНИЕ\tШИРОТА\tДОЛГОТА\tРАДИУС\tСПИСОК")
	for _, s := range stores {
		fmt.Fprintf(w, "%s\t%s\t%.6f\t%.6f\t%.0f\t%s\n",
			s.ID, s.Name, s.Latitude, s.Longitude, s.Radius, s.ListName)
	}
	return w.Flush()
}
