package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"natively/cmd/natively/cmd/cmdutil"
	"natively/internal/app/host/stdio"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Обслуживать мост через stdin/stdout",
	Long: `Обычный хост без WebView: каждая строка stdin - сообщение моста в JSON,
ответы и push-события пишутся в stdout по одному в строке. Логи идут в stderr.

Пример:
  echo '{"type":"natively.storage.get","id":"1","payload":{"key":"theme"}}' | natively run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.App(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = app.Run(ctx)
		}()

		served := make(chan error, 1)
		go func() {
			served <- stdio.New(app, os.Stdin, os.Stdout, log).Serve(ctx)
		}()

		// Чтение stdin не прерывается отменой, поэтому по сигналу не ждем конца ввода
		select {
		case err = <-served:
			cancel()
			<-done
			return err
		case <-done:
			return nil
		}
	},
}
