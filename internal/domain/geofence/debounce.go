package geofence

import (
	"sync"
	"time"
)

// debouncer подавляет повторные уведомления по региону в пределах окна.
// Состояние только в памяти: фоновый обработчик не пишет в хранилище.
type debouncer struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

func newDebouncer(window time.Duration, now func() time.Time) *debouncer {
	return &debouncer{
		window: window,
		now:    now,
		last:   make(map[string]time.Time),
	}
}

// reserve занимает окно региона. Возвращает метку, по которой release
// отменяет резерв, если уведомление так и не было показано.
func (d *debouncer) reserve(identifier string) (time.Time, bool) {
	now := d.now()
	if d.window <= 0 {
		return now, true
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.last[identifier]; ok && now.Sub(prev) < d.window {
		return time.Time{}, false
	}

	d.last[identifier] = now
	return now, true
}

// release снимает резерв, если его не перезаписал более поздний вход
func (d *debouncer) release(identifier string, at time.Time) {
	if d.window <= 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.last[identifier]; ok && prev.Equal(at) {
		delete(d.last, identifier)
	}
}

func (d *debouncer) reset() {
	d.mu.Lock()
	d.last = make(map[string]time.Time)
	d.mu.Unlock()
}
