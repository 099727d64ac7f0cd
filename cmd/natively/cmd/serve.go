package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"natively/cmd/natively/cmd/cmdutil"
	"natively/internal/app/host/web"
)

var listenAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить веб-хост",
	Long: `Поднимает HTTP-сервер веб-хоста: страница-обертка с сайтом во фрейме,
мост через WebSocket (/bridge/ws), скрипт window.natively
(/bridge/bootstrap.js) и REST API (/api/v1).

Сервер работает до SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.App(cmd)
		if err != nil {
			return err
		}

		addr := app.Config().HTTPAddress
		if listenAddress != "" {
			addr = listenAddress
		}
		server := web.NewServer(addr, web.New(app, log), log)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			// Run возвращается по сигналу; вместе с ним останавливаем сервер
			defer cancel()
			return app.Run(gctx)
		})
		g.Go(func() error {
			return server.Run(gctx)
		})

		fmt.Printf("Веб-хост: http://%s\n", addr)
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddress, "listen", "", "адрес HTTP-сервера (по умолчанию HTTP_ADDRESS)")
}
