package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnavailable возможность не поддерживается хостом
	ErrUnavailable = errors.New("capability unavailable")
	// ErrUnknownType тип сообщения не зарегистрирован; сообщение отбрасывается
	ErrUnknownType  = errors.New("unknown message type")
	ErrTimeout      = errors.New("bridge call timed out")
	ErrInvalid      = errors.New("invalid payload")
	ErrDuplicateID  = errors.New("duplicate in-flight message id")
	ErrClosed       = errors.New("bridge closed")
	ErrHandlerPanic = errors.New("handler panicked")
)

// Коды ошибок в ответах
const (
	CodeUnavailable = "unavailable"
	CodeInvalid     = "invalid_payload"
	CodeTimeout     = "timeout"
	CodeCancelled   = "cancelled"
	CodeInternal    = "internal"
	CodeStorage     = "storage"
)

// Message вызов со страницы. Сообщение без id ответа не ждет.
type Message struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response единственный ответ на сообщение с тем же id
type Response struct {
	ID      string          `json:"id"`
	Type    string          `json:"type,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Decode разбирает ответ в dst
func (r Response) Decode(dst any) error {
	return json.Unmarshal(r.Payload, dst)
}

// Failed ответ с полем error
func (r Response) Failed() (ErrorPayload, bool) {
	var p ErrorPayload
	if err := json.Unmarshal(r.Payload, &p); err != nil || p.Error == "" {
		return ErrorPayload{}, false
	}
	return p, true
}

// ErrorPayload форма ответа с ошибкой
type ErrorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error ошибка с кодом для страницы
type Error struct {
	Err     error
	Message string
	Code    string
}

func NewError(err error, code, message string) *Error {
	return &Error{Err: err, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Invalid ошибка разбора полезной нагрузки
func Invalid(format string, args ...any) *Error {
	return NewError(ErrInvalid, CodeInvalid, fmt.Sprintf(format, args...))
}

// errorPayload переводит ошибку обработчика в ответ
func errorPayload(err error) ErrorPayload {
	var be *Error
	switch {
	case errors.As(err, &be):
		return ErrorPayload{Error: be.Message, Code: be.Code}
	case errors.Is(err, ErrTimeout):
		return ErrorPayload{Error: "timeout", Code: CodeTimeout}
	case errors.Is(err, ErrUnavailable):
		return ErrorPayload{Error: "not available on this platform", Code: CodeUnavailable}
	case errors.Is(err, ErrInvalid):
		return ErrorPayload{Error: err.Error(), Code: CodeInvalid}
	default:
		return ErrorPayload{Error: err.Error(), Code: CodeInternal}
	}
}
