package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"natively/cmd/natively/cmd/cmdutil"
)

var crashesCmd = &cobra.Command{
	Use:   "crashes",
	Short: "Последние отчеты о сбоях обработчиков",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.App(cmd)
		if err != nil {
			return err
		}

		reports, err := app.Crashes.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка чтения отчетов: %w", err)
		}

		if cmdutil.JSONOutput(cmd) {
			return cmdutil.PrintJSON(os.Stdout, reports)
		}

		if len(reports) == 0 {
			fmt.Println("Сбоев не зарегистрировано")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ВРЕМЯ\tТИП\tСООБЩЕНИЕ")
		for _, r := range reports {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				r.Context["type"],
				r.Message,
			)
		}
		return w.Flush()
	},
}
