package geofence

import (
	"context"
	"sync"
)

// SimulatedMonitor замена геозон ОС для веб-хоста и обычного хоста:
// start/stop лишь переключают флаг в памяти, реальной проверки близости нет.
type SimulatedMonitor struct {
	mu    sync.RWMutex
	tasks map[string][]Region
}

func NewSimulatedMonitor() *SimulatedMonitor {
	return &SimulatedMonitor{
		tasks: make(map[string][]Region),
	}
}

func (m *SimulatedMonitor) StartRegions(_ context.Context, task string, regions []Region) error {
	copied := make([]Region, len(regions))
	copy(copied, regions)

	m.mu.Lock()
	m.tasks[task] = copied
	m.mu.Unlock()
	return nil
}

func (m *SimulatedMonitor) StopRegions(_ context.Context, task string) error {
	m.mu.Lock()
	delete(m.tasks, task)
	m.mu.Unlock()
	return nil
}

func (m *SimulatedMonitor) IsRegistered(_ context.Context, task string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tasks[task]
	return ok, nil
}

// Regions зарегистрированные регионы задачи
func (m *SimulatedMonitor) Regions(task string) []Region {
	m.mu.RLock()
	defer m.mu.RUnlock()

	regions := make([]Region, len(m.tasks[task]))
	copy(regions, m.tasks[task])
	return regions
}

// Revoke имитирует снятие мониторинга системой
func (m *SimulatedMonitor) Revoke(task string) {
	m.mu.Lock()
	delete(m.tasks, task)
	m.mu.Unlock()
}
