package bridge

import (
	"sync"
	"time"
)

// Result итог вызова на стороне вызывающего
type Result struct {
	Response Response
	Err      error
}

// Pending таблица ожидающих ответа вызовов. Каждый id разрешается ровно
// один раз: ответом, таймаутом или закрытием таблицы; запись затем удаляется.
type Pending struct {
	mu      sync.Mutex
	calls   map[string]*pendingCall
	closed  bool
	timeout time.Duration
}

type pendingCall struct {
	ch    chan Result
	timer *time.Timer
}

func NewPending(timeout time.Duration) *Pending {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Pending{
		calls:   make(map[string]*pendingCall),
		timeout: timeout,
	}
}

// Register регистрирует вызов. Канал получает ровно один Result.
func (p *Pending) Register(id string) (<-chan Result, error) {
	return p.RegisterFor(id, p.timeout)
}

// RegisterFor как Register, но со своим таймаутом
func (p *Pending) RegisterFor(id string, timeout time.Duration) (<-chan Result, error) {
	if timeout <= 0 {
		timeout = p.timeout
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if _, busy := p.calls[id]; busy {
		return nil, ErrDuplicateID
	}

	call := &pendingCall{ch: make(chan Result, 1)}
	call.timer = time.AfterFunc(timeout, func() {
		p.settle(id, Result{Err: ErrTimeout})
	})
	p.calls[id] = call

	return call.ch, nil
}

// Resolve доставляет ответ; false, если id неизвестен или уже разрешен
func (p *Pending) Resolve(r Response) bool {
	return p.settle(r.ID, Result{Response: r})
}

// Cancel снимает вызов без ответа
func (p *Pending) Cancel(id string, err error) bool {
	return p.settle(id, Result{Err: err})
}

// Len число ожидающих вызовов
func (p *Pending) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// Close разрешает все ожидающие вызовы ошибкой ErrClosed
func (p *Pending) Close() {
	p.mu.Lock()
	calls := p.calls
	p.calls = make(map[string]*pendingCall)
	p.closed = true
	p.mu.Unlock()

	for _, call := range calls {
		call.timer.Stop()
		call.ch <- Result{Err: ErrClosed}
	}
}

func (p *Pending) settle(id string, r Result) bool {
	p.mu.Lock()
	call, ok := p.calls[id]
	if ok {
		delete(p.calls, id)
	}
	p.mu.Unlock()

	if !ok {
		return false
	}

	call.timer.Stop()
	call.ch <- r
	return true
}
