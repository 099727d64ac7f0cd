// Package storage команды хранилища страницы (natively.storage.*)
package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"natively/cmd/natively/cmd/cmdutil"
	"natively/internal/bridge"
)

// result ответ операций natively.storage.*
type result struct {
	Key     string          `json:"key"`
	Value   json.RawMessage `json:"value,omitempty"`
	Success *bool           `json:"success,omitempty"`
	Error   string          `json:"error,omitempty"`
}

var StorageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Хранилище веб-страницы",
	Long: `Чтение и запись значений, которые страница сохраняет через
window.natively.storage. Ключи страницы хранятся отдельно от служебных
ключей хоста.`,
}

var GetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Прочитать значение",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := call(cmd, bridge.TypeStorageGet, map[string]string{"key": args[0]})
		if err != nil {
			return err
		}
		if r.Error != "" {
			return fmt.Errorf("ошибка чтения %s: %s", r.Key, r.Error)
		}
		if cmdutil.JSONOutput(cmd) {
			return cmdutil.PrintJSON(os.Stdout, r)
		}
		fmt.Println(string(r.Value))
		return nil
	},
}

var SetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Записать значение",
	Long: `Записывает значение по ключу. Значение, не являющееся JSON,
сохраняется как строка.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value := json.RawMessage(args[1])
		if !json.Valid(value) {
			encoded, err := json.Marshal(args[1])
			if err != nil {
				return fmt.Errorf("ошибка кодирования значения: %w", err)
			}
			value = encoded
		}

		r, err := call(cmd, bridge.TypeStorageSet, map[string]any{"key": args[0], "value": value})
		if err != nil {
			return err
		}
		return report(cmd, r, "сохранено")
	},
}

var RemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Удалить значение",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := call(cmd, bridge.TypeStorageRemove, map[string]string{"key": args[0]})
		if err != nil {
			return err
		}
		return report(cmd, r, "удалено")
	},
}

func call(cmd *cobra.Command, msgType string, payload any) (result, error) {
	var r result

	app, err := cmdutil.App(cmd)
	if err != nil {
		return r, err
	}

	resp, err := cmdutil.Call(cmd.Context(), app, msgType, payload)
	if err != nil {
		return r, fmt.Errorf("ошибка вызова %s: %w", msgType, err)
	}
	if err := resp.Decode(&r); err != nil {
		return r, fmt.Errorf("ошибка разбора ответа: %w", err)
	}
	return r, nil
}

func report(cmd *cobra.Command, r result, done string) error {
	if cmdutil.JSONOutput(cmd) {
		return cmdutil.PrintJSON(os.Stdout, r)
	}
	if r.Success == nil || !*r.Success {
		return fmt.Errorf("ключ %s: %s", r.Key, r.Error)
	}
	fmt.Printf("%s: %s\n", r.Key, done)
	return nil
}
