// Package loader собирает среду выполнения: регистрирует бэкенды, включенные
// в конфигурации, перечисляет их платформы и устройства в таблицу
// дескрипторов и предоставляет диспетчер запросов свойств.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/x-research-team/unirt/config"
	"github.com/x-research-team/unirt/rt/adapter"
	"github.com/x-research-team/unirt/rt/adapter/catalog"
	"github.com/x-research-team/unirt/rt/adapter/emul"
	"github.com/x-research-team/unirt/rt/adapter/host"
	"github.com/x-research-team/unirt/rt/handle"
	"github.com/x-research-team/unirt/rt/query"
)

// Loader - собранная среда выполнения.
type Loader struct {
	table      *handle.Table
	adapters   *adapter.Registry
	dispatcher *query.Dispatcher
	platforms  []*handle.Platform
	devices    map[*handle.Platform][]*handle.Device
	natives    map[*handle.Object]adapter.Adapter
}

// New создает адаптеры по конфигурации и собирает загрузчик.
func New(ctx context.Context, cfg config.Config, opts ...query.Option) (*Loader, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	var adapters []adapter.Adapter
	for _, b := range cfg.Backends {
		switch b {
		case config.BackendHost:
			adapters = append(adapters, host.New())
		case config.BackendEmul:
			a, err := emul.New(cfg.Emul.Platform, emulSpecs(cfg.Emul.Devices)...)
			if err != nil {
				return nil, errors.Join(fmt.Errorf("не удалось создать бэкенд emul: %w", err), closeAll(ctx, adapters))
			}
			adapters = append(adapters, a)
		case config.BackendCatalog:
			a, err := catalog.Open(ctx, cfg.Catalog.DSN)
			if err != nil {
				return nil, errors.Join(fmt.Errorf("не удалось создать бэкенд catalog: %w", err), closeAll(ctx, adapters))
			}
			adapters = append(adapters, a)
		}
	}

	return NewWithAdapters(ctx, adapters, opts...)
}

// closeAll закрывает уже созданные адаптеры, если сборка прервалась.
func closeAll(ctx context.Context, adapters []adapter.Adapter) error {
	var errs []error
	for _, a := range adapters {
		if c, ok := a.(adapter.Closer); ok {
			errs = append(errs, c.Close(ctx))
		}
	}
	return errors.Join(errs...)
}

// NewWithAdapters собирает загрузчик из готовых адаптеров.
func NewWithAdapters(ctx context.Context, adapters []adapter.Adapter, opts ...query.Option) (*Loader, error) {
	l := &Loader{
		table:    handle.NewTable(),
		adapters: adapter.NewRegistry(),
		devices:  make(map[*handle.Platform][]*handle.Device),
		natives:  make(map[*handle.Object]adapter.Adapter),
	}

	for _, a := range adapters {
		if err := l.adapters.Register(a); err != nil {
			return nil, errors.Join(err, closeAll(ctx, adapters))
		}
	}

	for _, a := range adapters {
		if err := l.enumerate(ctx, a); err != nil {
			return nil, errors.Join(err, l.adapters.Shutdown(ctx))
		}
	}

	d, err := query.NewDispatcher(l.adapters, opts...)
	if err != nil {
		return nil, errors.Join(err, l.adapters.Shutdown(ctx))
	}
	l.dispatcher = d

	return l, nil
}

// enumerate переносит платформы и устройства бэкенда в таблицу дескрипторов.
func (l *Loader) enumerate(ctx context.Context, a adapter.Adapter) error {
	e, ok := a.(adapter.Enumerator)
	if !ok {
		return nil
	}
	backend := a.Backend()

	platforms, err := e.Platforms(ctx)
	if err != nil {
		return fmt.Errorf("не удалось перечислить платформы бэкенда '%s': %w", backend, err)
	}
	for _, native := range platforms {
		p, err := l.table.NewPlatform(backend, native)
		if err != nil {
			return err
		}
		l.platforms = append(l.platforms, p)
		l.natives[p.Object()] = a

		devices, err := e.Devices(ctx, native)
		if err != nil {
			return fmt.Errorf("не удалось перечислить устройства бэкенда '%s': %w", backend, err)
		}
		for _, nd := range devices {
			dev, err := l.table.NewDevice(backend, nd)
			if err != nil {
				return err
			}
			l.devices[p] = append(l.devices[p], dev)
			l.natives[dev.Object()] = a
		}
	}
	return nil
}

// Platforms возвращает платформы в порядке регистрации бэкендов.
func (l *Loader) Platforms() []*handle.Platform {
	out := make([]*handle.Platform, len(l.platforms))
	copy(out, l.platforms)
	return out
}

// Devices возвращает устройства платформы.
func (l *Loader) Devices(p *handle.Platform) []*handle.Device {
	out := make([]*handle.Device, len(l.devices[p]))
	copy(out, l.devices[p])
	return out
}

// AllDevices возвращает устройства всех платформ.
func (l *Loader) AllDevices() []*handle.Device {
	var out []*handle.Device
	for _, p := range l.platforms {
		out = append(out, l.devices[p]...)
	}
	return out
}

// CreateKernel создает дескриптор ядра на устройстве через бэкенд устройства.
func (l *Loader) CreateKernel(ctx context.Context, device *handle.Device, name string) (*handle.Kernel, error) {
	obj := device.Object()
	if obj == nil {
		return nil, errors.New("не передан дескриптор устройства")
	}
	a, ok := l.natives[obj]
	if !ok {
		return nil, fmt.Errorf("устройство '%s' не принадлежит загрузчику", obj.ID)
	}
	f, ok := a.(adapter.KernelFactory)
	if !ok {
		return nil, fmt.Errorf("бэкенд '%s' не поддерживает создание ядер", obj.Backend)
	}
	native, err := f.NewKernel(ctx, obj.Native, name)
	if err != nil {
		return nil, err
	}
	return l.table.NewKernel(obj.Backend, native)
}

// Table возвращает таблицу дескрипторов.
func (l *Loader) Table() *handle.Table { return l.table }

// Adapters возвращает реестр адаптеров.
func (l *Loader) Adapters() *adapter.Registry { return l.adapters }

// Dispatcher возвращает диспетчер запросов свойств.
func (l *Loader) Dispatcher() *query.Dispatcher { return l.dispatcher }

// Close завершает работу диспетчера и всех бэкендов.
func (l *Loader) Close(ctx context.Context) error {
	if err := l.dispatcher.Shutdown(ctx); err != nil {
		slog.Default().Error("ошибка при завершении работы загрузчика", slog.Any("error", err))
		return err
	}
	return nil
}
