package geofence

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"natively/cmd/natively/cmd/cmdutil"
	"natively/internal/bridge"
	"natively/internal/domain/location"
)

var (
	store    location.StoreLocation
	addTitle string
)

var AddCmd = &cobra.Command{
	Use:   "add",
	Short: "Добавить магазин",
	Long: `Добавляет магазин в список отслеживаемых. Если id не задан, он
генерируется. Добавление включает мониторинг, если он еще не запущен.

Пример:
  natively geofence add --name "Corner Shop" --lat 55.7558 --lon 37.6173 --radius 150`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.App(cmd)
		if err != nil {
			return err
		}

		if addTitle != "" {
			store.Name = addTitle
		}

		resp, err := cmdutil.Call(cmd.Context(), app, bridge.TypeGeofenceAdd, map[string]any{"location": store})
		if err != nil {
			return fmt.Errorf("ошибка добавления магазина: %w", err)
		}

		result, err := decodeResult(resp)
		if err != nil {
			return err
		}
		if cmdutil.JSONOutput(cmd) {
			return cmdutil.PrintJSON(os.Stdout, result)
		}
		if !result.Success {
			return fmt.Errorf("магазин не добавлен: %s", result.Error)
		}

		fmt.Printf("✅ Магазин добавлен: %s\n", result.LocationID)
		return nil
	},
}

var RemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Удалить магазин",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.App(cmd)
		if err != nil {
			return err
		}

		resp, err := cmdutil.Call(cmd.Context(), app, bridge.TypeGeofenceRemove, map[string]string{"locationId": args[0]})
		if err != nil {
			return fmt.Errorf("ошибка удаления магазина: %w", err)
		}

		result, err := decodeResult(resp)
		if err != nil {
			return err
		}
		if cmdutil.JSONOutput(cmd) {
			return cmdutil.PrintJSON(os.Stdout, result)
		}
		if !result.Success {
			return fmt.Errorf("магазин не удален: %s", result.Error)
		}

		fmt.Printf("Магазин %s удален\n", args[0])
		return nil
	},
}

// storeResult ответ geofence.add и geofence.remove
type storeResult struct {
	Success    bool   `json:"success"`
	LocationID string `json:"locationId"`
	Error      string `json:"error,omitempty"`
}

func decodeResult(resp bridge.Response) (storeResult, error) {
	var r storeResult
	if err := resp.Decode(&r); err != nil {
		return r, fmt.Errorf("ошибка разбора ответа: %w", err)
	}
	return r, nil
}

func init() {
	AddCmd.Flags().StringVar(&store.ID, "id", "", "идентификатор магазина")
	AddCmd.Flags().StringVar(&addTitle, "name", "", "название магазина")
	AddCmd.Flags().Float64Var(&store.Latitude, "lat", 0, "широта")
	AddCmd.Flags().Float64Var(&store.Longitude, "lon", 0, "долгота")
	AddCmd.Flags().Float64Var(&store.Radius, "radius", 100, "радиус геозоны в метрах")
	AddCmd.Flags().StringVar(&store.ListID, "list-id", "", "идентификатор списка покупок")
	AddCmd.Flags().StringVar(&store.ListName, "list-name", "", "название списка покупок")
	AddCmd.Flags().StringVar(&store.ReservationNumber, "reservation", "", "номер резерва")
	_ = AddCmd.MarkFlagRequired("name")
	_ = AddCmd.MarkFlagRequired("lat")
	_ = AddCmd.MarkFlagRequired("lon")
}
