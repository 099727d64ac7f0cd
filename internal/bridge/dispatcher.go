package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/exp/slog"
)

const (
	// DefaultTimeout время на обработку одного вызова
	DefaultTimeout = 10 * time.Second
	// DefaultInteractiveTimeout время на вызов, который ждет пользователя
	DefaultInteractiveTimeout = 5 * time.Minute
)

// Handler обработчик типа сообщения. Возвращенное значение сериализуется
// в ответ; ошибка превращается в ответ с полями error и code.
type Handler func(ctx context.Context, payload json.RawMessage) (any, error)

// Responder канал доставки ответа на страницу
type Responder interface {
	Respond(ctx context.Context, r Response) error
}

// ResponderFunc функция как Responder
type ResponderFunc func(ctx context.Context, r Response) error

func (f ResponderFunc) Respond(ctx context.Context, r Response) error {
	return f(ctx, r)
}

// PanicRecorder журнал сбоев обработчиков
type PanicRecorder interface {
	Record(ctx context.Context, cause any, attrs map[string]string)
}

// Dispatcher единая таблица обработчиков для всех хостов.
// На каждый id отправляется не больше одного ответа: повторный id,
// пока первый вызов не завершен, отбрасывается, а результат обработчика,
// опоздавший после таймаута, игнорируется.
type Dispatcher struct {
	log         *slog.Logger
	timeout     time.Duration
	interactive time.Duration
	validator   *Validator
	tracer    trace.Tracer
	crashes   PanicRecorder

	mu       sync.RWMutex
	handlers map[string]Handler

	inflightMu sync.Mutex
	inflight   map[string]struct{}

	wg sync.WaitGroup
}

// DispatcherOption настройка диспетчера
type DispatcherOption func(*Dispatcher)

func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithInteractiveTimeout таймаут для типов, для которых IsInteractive
func WithInteractiveTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.interactive = timeout
		}
	}
}

func WithValidator(v *Validator) DispatcherOption {
	return func(d *Dispatcher) {
		d.validator = v
	}
}

func WithPanicRecorder(r PanicRecorder) DispatcherOption {
	return func(d *Dispatcher) {
		d.crashes = r
	}
}

func NewDispatcher(log *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		log:         log.With(slog.String("component", "bridge")),
		timeout:     DefaultTimeout,
		interactive: DefaultInteractiveTimeout,
		tracer:      otel.Tracer("natively/bridge"),
		handlers:    make(map[string]Handler),
		inflight:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register регистрирует обработчик; повторная регистрация заменяет прежний
func (d *Dispatcher) Register(msgType string, h Handler) {
	d.mu.Lock()
	d.handlers[msgType] = h
	d.mu.Unlock()
}

// Has зарегистрирован ли обработчик типа
func (d *Dispatcher) Has(msgType string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[msgType]
	return ok
}

// Types зарегистрированные типы сообщений
func (d *Dispatcher) Types() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	types := make([]string, 0, len(d.handlers))
	for t := range d.handlers {
		types = append(types, t)
	}
	return types
}

// Dispatch обрабатывает сообщение асинхронно и отправляет ответ через responder
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message, responder Responder) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		resp, ok := d.Handle(ctx, msg)
		if !ok {
			return
		}
		if err := responder.Respond(ctx, resp); err != nil {
			d.log.Warn("Не удалось доставить ответ", "type", msg.Type, "id", msg.ID, "error", err)
		}
	}()
}

// Wait ждет завершения всех асинхронных вызовов
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Handle обрабатывает сообщение синхронно. Второе значение false означает,
// что ответ не положен: нет id, неизвестный тип или повторный id.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) (Response, bool) {
	log := d.log.With(slog.String("type", msg.Type), slog.String("id", msg.ID))

	d.mu.RLock()
	handler, ok := d.handlers[msg.Type]
	d.mu.RUnlock()

	if !ok {
		log.Warn("Неизвестный тип сообщения", "error", ErrUnknownType)
		return Response{}, false
	}

	if msg.ID != "" {
		if !d.claim(msg.ID) {
			log.Warn("Сообщение с этим id уже обрабатывается", "error", ErrDuplicateID)
			return Response{}, false
		}
		defer d.release(msg.ID)
	}

	ctx, span := d.tracer.Start(ctx, "bridge.dispatch", trace.WithAttributes(
		attribute.String("bridge.type", msg.Type),
		attribute.String("bridge.id", msg.ID),
	))
	defer span.End()

	started := time.Now()
	value, err := d.invoke(ctx, msg, handler)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("Вызов завершился ошибкой", "error", err, "duration", time.Since(started))
	} else {
		log.Debug("Вызов обработан", "duration", time.Since(started))
	}

	if msg.ID == "" {
		return Response{}, false
	}

	if err != nil {
		value = errorPayload(err)
	}

	payload, mErr := json.Marshal(value)
	if mErr != nil {
		log.Error("Не удалось сериализовать ответ", "error", mErr)
		payload, _ = json.Marshal(ErrorPayload{Error: "unencodable response", Code: CodeInternal})
	}

	return Response{ID: msg.ID, Type: msg.Type, Payload: payload}, true
}

type outcome struct {
	value any
	err   error
}

func (d *Dispatcher) invoke(ctx context.Context, msg Message, handler Handler) (any, error) {
	if d.validator != nil {
		if err := d.validator.Validate(msg.Type, msg.Payload); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeoutFor(msg.Type))
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("Паника в обработчике моста", "type", msg.Type, "panic", r)
				if d.crashes != nil {
					d.crashes.Record(context.WithoutCancel(ctx), r, map[string]string{
						"type": msg.Type,
						"id":   msg.ID,
					})
				}
				done <- outcome{err: fmt.Errorf("%w: %v", ErrHandlerPanic, r)}
			}
		}()

		value, err := handler(ctx, msg.Payload)
		done <- outcome{value: value, err: err}
	}()

	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, NewError(ctx.Err(), CodeCancelled, "cancelled")
	}
}

// timeoutFor интерактивный вызов никогда не получает меньше обычного таймаута
func (d *Dispatcher) timeoutFor(msgType string) time.Duration {
	if IsInteractive(msgType) && d.interactive > d.timeout {
		return d.interactive
	}
	return d.timeout
}

func (d *Dispatcher) claim(id string) bool {
	d.inflightMu.Lock()
	defer d.inflightMu.Unlock()

	if _, busy := d.inflight[id]; busy {
		return false
	}
	d.inflight[id] = struct{}{}
	return true
}

func (d *Dispatcher) release(id string) {
	d.inflightMu.Lock()
	delete(d.inflight, id)
	d.inflightMu.Unlock()
}
