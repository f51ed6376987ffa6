package adapter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/x-research-team/unirt/rt/handle"
)

// Registry - это потокобезопасный реестр адаптеров, гарантирующий, что для
// каждого ключа бэкенда существует ровно один адаптер.
type Registry struct {
	adapters map[handle.Backend]Adapter
	mu       sync.RWMutex
}

// NewRegistry создает пустой реестр адаптеров.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[handle.Backend]Adapter),
	}
}

// Register добавляет адаптер в реестр.
// Попытка зарегистрировать второй адаптер для того же бэкенда вернет ошибку.
func (r *Registry) Register(a Adapter) error {
	if a == nil {
		return errors.New("адаптер не может быть nil")
	}
	backend := a.Backend()
	if backend == "" {
		return fmt.Errorf("адаптер %T не указал ключ бэкенда", a)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[backend]; exists {
		return fmt.Errorf("адаптер для бэкенда '%s' уже зарегистрирован", backend)
	}
	r.adapters[backend] = a
	return nil
}

// Lookup возвращает адаптер для бэкенда.
func (r *Registry) Lookup(backend handle.Backend) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[backend]
	return a, ok
}

// Backends возвращает отсортированный список зарегистрированных бэкендов.
func (r *Registry) Backends() []handle.Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]handle.Backend, 0, len(r.adapters))
	for b := range r.adapters {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Shutdown корректно завершает работу всех адаптеров, поддерживающих Closer.
// Возвращает объединение всех ошибок закрытия.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for backend, a := range r.adapters {
		if c, ok := a.(Closer); ok {
			if err := c.Close(ctx); err != nil {
				errs = append(errs, fmt.Errorf("ошибка при завершении работы адаптера '%s': %w", backend, err))
			}
		}
	}
	return errors.Join(errs...)
}
