package sync

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"natively/cmd/natively/cmd/cmdutil"
	"natively/internal/app/host"
	"natively/internal/domain/offline"
)

var (
	syncStatus bool
	resetStats bool
	showQueue  bool
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Управление офлайн-синхронизацией",
	Long: `Отправка накопленных офлайн изменений на сервер синхронизации.

Без флагов проверяет связь и разбирает очередь. Разбор останавливается
на первой ошибке; оставшиеся изменения будут отправлены в следующий раз.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.App(cmd)
		if err != nil {
			return err
		}

		switch {
		case syncStatus:
			return showSyncStatus(cmd, app)
		case resetStats:
			app.Syncer.ResetStats()
			fmt.Println("Статистика синхронизации сброшена")
			return nil
		case showQueue:
			return showSyncQueue(cmd, app)
		}

		return runSync(cmd, app)
	},
}

func runSync(cmd *cobra.Command, app *host.App) error {
	fmt.Println("=== Синхронизация данных ===")
	fmt.Println("Проверка соединения с сервером...")

	result, err := app.Watcher.TriggerSync(cmd.Context())
	switch {
	case errors.Is(err, offline.ErrOffline):
		return fmt.Errorf("сервер недоступен, изменения остаются в очереди")
	case errors.Is(err, offline.ErrSyncInProgress):
		return fmt.Errorf("синхронизация уже выполняется")
	}

	if cmdutil.JSONOutput(cmd) && result != nil {
		return cmdutil.PrintJSON(os.Stdout, result)
	}
	if result == nil {
		return fmt.Errorf("ошибка синхронизации: %w", err)
	}

	fmt.Println()
	if result.Success {
		fmt.Println("✅ Синхронизация завершена!")
	} else {
		fmt.Println("⚠️  Синхронизация завершена с ошибками")
	}
	fmt.Printf("Время выполнения: %v\n", result.Duration.Round(time.Millisecond))
	fmt.Printf("Отправлено: %d\n", result.Applied)
	if result.Skipped > 0 {
		fmt.Printf("Пропущено (уже отправлены): %d\n", result.Skipped)
	}
	if result.Remaining > 0 {
		fmt.Printf("Осталось в очереди: %d\n", result.Remaining)
	}
	for _, e := range result.Errors {
		fmt.Printf("  ✗ %s (%s): %s\n", e.ItemID, e.Operation, e.Error)
	}

	if err != nil {
		return fmt.Errorf("ошибка синхронизации: %w", err)
	}
	return nil
}

func showSyncStatus(cmd *cobra.Command, app *host.App) error {
	app.Watcher.Probe(cmd.Context())
	status := app.Watcher.Status(cmd.Context())
	stats := app.Syncer.GetStats()

	if cmdutil.JSONOutput(cmd) {
		return cmdutil.PrintJSON(os.Stdout, map[string]any{
			"status": status,
			"stats":  stats,
		})
	}

	online := "нет связи"
	if status.IsOnline {
		online = "в сети"
	}

	fmt.Println("=== Статус синхронизации ===")
	fmt.Printf("Связь:                %s\n", online)
	fmt.Printf("Изменений в очереди:  %d\n", status.QueueSize)
	fmt.Printf("Всего синхронизаций:  %d\n", stats.TotalSyncs)
	fmt.Printf("Отправлено всего:     %d\n", stats.TotalApplied)
	fmt.Printf("Ошибок всего:         %d\n", stats.TotalErrors)
	if !stats.LastSuccessful.IsZero() {
		fmt.Printf("Последняя успешная:   %s\n", stats.LastSuccessful.Local().Format("2006-01-02 15:04:05"))
	}
	if !stats.LastFailed.IsZero() {
		fmt.Printf("Последняя с ошибкой:  %s\n", stats.LastFailed.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func showSyncQueue(cmd *cobra.Command, app *host.App) error {
	items, err := app.Queue.Items(cmd.Context())
	if err != nil {
		return fmt.Errorf("ошибка чтения очереди: %w", err)
	}

	if cmdutil.JSONOutput(cmd) {
		return cmdutil.PrintJSON(os.Stdout, items)
	}
	if len(items) == 0 {
		fmt.Println("Очередь пуста")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tОПЕРАЦИЯ\tРЕСУРС\tОБЪЕКТ\tВРЕМЯ")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			it.ID, it.Type, it.Resource, it.ResourceID,
			it.Timestamp.Local().Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func init() {
	SyncCmd.Flags().BoolVar(&syncStatus, "status", false, "показать статус синхронизации")
	SyncCmd.Flags().BoolVar(&resetStats, "reset", false, "сбросить статистику")
	SyncCmd.Flags().BoolVar(&showQueue, "queue", false, "показать очередь изменений")
}
