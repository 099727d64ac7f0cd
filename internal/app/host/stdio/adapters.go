package stdio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"natively/internal/bridge"
)

// ErrNoTerminal окно невозможно показать без терминала
var ErrNoTerminal = errors.New("no terminal available for dialog")

// MemoryClipboard буфер обмена процесса
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
}

func (c *MemoryClipboard) ReadText(context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, nil
}

func (c *MemoryClipboard) WriteText(_ context.Context, text string) error {
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
	return nil
}

// TerminalDialogs окна подтверждения, «Поделиться» и выбора файла в
// управляющем терминале. Одновременно открыто не больше одного окна.
type TerminalDialogs struct {
	tty *os.File
	mu  sync.Mutex
}

func NewTerminalDialogs(tty *os.File) *TerminalDialogs {
	return &TerminalDialogs{tty: tty}
}

// Confirm спрашивает подтверждение; пользователь должен ввести confirmLabel
func (d *TerminalDialogs) Confirm(ctx context.Context, title, message, confirmLabel string) (bool, error) {
	line, err := d.prompt(ctx, title+"\r\n"+message, fmt.Sprintf("Type %q to confirm: ", confirmLabel))
	if err != nil {
		return false, err
	}
	return confirmed(line, confirmLabel), nil
}

// Share показывает содержимое и спрашивает, отправлено ли оно
func (d *TerminalDialogs) Share(ctx context.Context, req bridge.ShareRequest) (bool, error) {
	header := strings.TrimSpace(strings.Join([]string{req.Title, req.Message, req.URL}, "\r\n"))
	line, err := d.prompt(ctx, header, "Shared? [y/N]: ")
	if err != nil {
		return false, err
	}
	return confirmed(line, "y") || confirmed(line, "yes"), nil
}

// Pick спрашивает путь к файлу изображения; пустой ввод означает отмену.
// Камеры у терминала нет.
func (d *TerminalDialogs) Pick(ctx context.Context, source bridge.ImageSource) (string, error) {
	if source == bridge.SourceCamera {
		return "", bridge.ErrUnavailable
	}

	line, err := d.prompt(ctx, "Choose an image", "Path: ")
	if err != nil {
		return "", err
	}

	path := strings.TrimSpace(line)
	if path == "" {
		return "", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("файл недоступен: %w", err)
	}
	return "file://" + abs, nil
}

type answer struct {
	line string
	err  error
}

// prompt читает одну строку в raw-режиме терминала. Отмена ctx прерывает
// чтение через дедлайн файла, горутина чтения завершается до возврата.
func (d *TerminalDialogs) prompt(ctx context.Context, header, promptText string) (string, error) {
	if d.tty == nil || !term.IsTerminal(int(d.tty.Fd())) {
		return "", ErrNoTerminal
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	fd := int(d.tty.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return "", fmt.Errorf("ошибка перевода терминала: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, state)
	}()

	t := term.NewTerminal(d.tty, "")
	if header != "" {
		fmt.Fprintf(t, "%s\r\n", header)
	}
	t.SetPrompt(promptText)

	done := make(chan answer, 1)
	go func() {
		line, err := t.ReadLine()
		done <- answer{line: line, err: err}
	}()

	select {
	case a := <-done:
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return "", a.err
		}
		return a.line, nil
	case <-ctx.Done():
		if err := d.tty.SetReadDeadline(time.Now()); err == nil {
			<-done
			_ = d.tty.SetReadDeadline(time.Time{})
		}
		return "", ctx.Err()
	}
}

func confirmed(answer, label string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), label)
}

// Capabilities возможности обычного хоста
func Capabilities(tty *os.File) bridge.Capabilities {
	caps := bridge.Capabilities{
		Clipboard: &MemoryClipboard{},
	}
	if tty != nil {
		dialogs := NewTerminalDialogs(tty)
		caps.Dialogs = dialogs
		caps.Share = dialogs
		caps.ImagePicker = dialogs
	}
	return caps
}
