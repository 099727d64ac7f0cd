package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"natively/cmd/natively/cmd/cmdutil"
	"natively/internal/bridge"
	"natively/internal/bridge/ops"
)

var assumeYes bool

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Управление локальным аккаунтом",
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Удалить все данные аккаунта на устройстве",
	Long: `Останавливает мониторинг геозон и стирает хранилище хоста.

Без --yes запрашивает подтверждение в терминале: нужно ввести Delete.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.App(cmd)
		if err != nil {
			return err
		}

		var result ops.AccountDeleteResponse
		if assumeYes {
			result = app.Ops.DeleteAccount(cmd.Context())
		} else {
			resp, err := cmdutil.Call(cmd.Context(), app, bridge.TypeAccountDelete, nil)
			if err != nil {
				return fmt.Errorf("подтверждение недоступно, используйте --yes: %w", err)
			}
			if err := resp.Decode(&result); err != nil {
				return fmt.Errorf("ошибка разбора ответа: %w", err)
			}
		}

		if cmdutil.JSONOutput(cmd) {
			return cmdutil.PrintJSON(os.Stdout, result)
		}

		switch {
		case result.Error != "" && result.Confirmed:
			return fmt.Errorf("ошибка удаления данных: %s", result.Error)
		case result.Cancelled:
			fmt.Println("Удаление отменено")
		default:
			fmt.Println("✅ Данные аккаунта удалены")
		}
		return nil
	},
}

func init() {
	accountDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "удалить без подтверждения")
}
