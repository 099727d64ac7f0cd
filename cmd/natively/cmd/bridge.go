package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"natively/cmd/natively/cmd/cmdutil"
	"natively/internal/bridge"
)

var (
	bridgeURL  string
	showPushes bool
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Мост сообщений window.natively",
}

var bridgeTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "Зарегистрированные типы сообщений",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.App(cmd)
		if err != nil {
			return err
		}

		types := app.Dispatcher.Types()
		sort.Strings(types)
		for _, t := range types {
			fmt.Println(t)
		}
		return nil
	},
}

var bridgeCallCmd = &cobra.Command{
	Use:   "call <type> [payload]",
	Short: "Вызвать операцию моста",
	Long: `Отправляет одно сообщение моста и печатает ответ.

Без --url вызов выполняется внутри процесса тем же диспетчером, что
обслуживает страницу. С --url команда подключается к запущенному
веб-хосту (natively serve) как страница. Хранилище bolt держит блокировку
файла, поэтому для удаленного вызова к такому хосту используйте --storage memory.

Примеры:
  natively bridge call natively.storage.set '{"key":"theme","value":"dark"}'
  natively bridge call --url ws://localhost:8085/bridge/ws natively.geofence.getStatus`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.App(cmd)
		if err != nil {
			return err
		}

		var payload any
		if len(args) == 2 {
			if !json.Valid([]byte(args[1])) {
				return fmt.Errorf("полезная нагрузка не является JSON: %s", args[1])
			}
			payload = json.RawMessage(args[1])
		}

		var resp bridge.Response
		if bridgeURL == "" {
			resp, err = cmdutil.Call(cmd.Context(), app, args[0], payload)
		} else {
			resp, err = callRemote(cmd, args[0], payload)
		}
		if err != nil {
			return fmt.Errorf("ошибка вызова %s: %w", args[0], err)
		}

		var out any
		if err := resp.Decode(&out); err != nil {
			return fmt.Errorf("ошибка разбора ответа: %w", err)
		}
		return cmdutil.PrintJSON(os.Stdout, out)
	},
}

func callRemote(cmd *cobra.Command, msgType string, payload any) (bridge.Response, error) {
	client, err := bridge.Dial(cmd.Context(), bridgeURL, "http://localhost/", cfg.BridgeTimeoutDuration(), log)
	if err != nil {
		return bridge.Response{}, err
	}
	defer client.Close()

	if showPushes {
		client.OnPush(func(p bridge.Push) {
			fmt.Fprintf(os.Stderr, "<- %s %s\n", p.Type, p.Payload)
		})
	}

	resp, err := client.Call(cmd.Context(), msgType, payload)
	if err != nil {
		return resp, err
	}
	if failure, failed := resp.Failed(); failed && failure.Code != "" {
		return resp, fmt.Errorf("%s: %s", failure.Code, failure.Error)
	}
	return resp, nil
}

func init() {
	bridgeCallCmd.Flags().StringVar(&bridgeURL, "url", "", "адрес /bridge/ws запущенного веб-хоста")
	bridgeCallCmd.Flags().BoolVar(&showPushes, "pushes", false, "печатать push-события в stderr")
}
