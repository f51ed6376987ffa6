// Package catalog реализует бэкенд записанных свойств: значения, снятые
// ранее с реальных устройств, хранятся в PostgreSQL и отдаются так, как
// если бы их возвращал драйвер. Свойство, для которого нет записи,
// считается не поддерживаемым бэкендом.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/x-research-team/unirt/rt/adapter"
	"github.com/x-research-team/unirt/rt/handle"
	"github.com/x-research-team/unirt/rt/property"
)

// Backend - ключ привязки объектов каталога.
const Backend handle.Backend = "catalog"

// Adapter - бэкенд поверх хранилища каталога.
type Adapter struct {
	store *Store
	pool  *pgxpool.Pool
}

// New создает адаптер поверх готового хранилища.
func New(store *Store) *Adapter {
	return &Adapter{store: store}
}

// Open подключается к PostgreSQL по DSN, создает схему и возвращает адаптер,
// владеющий пулом соединений.
func Open(ctx context.Context, dsn string) (*Adapter, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пул соединений: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("база каталога недоступна: %w", err)
	}
	store, err := NewStore(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &Adapter{store: store, pool: pool}, nil
}

// Store возвращает хранилище адаптера.
func (a *Adapter) Store() *Store { return a.store }

// Backend реализует adapter.Adapter.
func (a *Adapter) Backend() handle.Backend { return Backend }

// Close реализует adapter.Closer.
func (a *Adapter) Close(ctx context.Context) error {
	if a.pool != nil {
		a.pool.Close()
	}
	return nil
}

// Platforms реализует adapter.Enumerator.
func (a *Adapter) Platforms(ctx context.Context) ([]any, error) {
	objs, err := a.store.Children(ctx, handle.KindPlatform, nil)
	if err != nil {
		return nil, err
	}
	return asAny(objs), nil
}

// Devices реализует adapter.Enumerator.
func (a *Adapter) Devices(ctx context.Context, platform any) ([]any, error) {
	p, ok := platform.(*Object)
	if !ok || p.Kind != handle.KindPlatform {
		return nil, fmt.Errorf("платформа %v не принадлежит бэкенду '%s'", platform, Backend)
	}
	objs, err := a.store.Children(ctx, handle.KindDevice, &p.ID)
	if err != nil {
		return nil, err
	}
	return asAny(objs), nil
}

// NewKernel реализует adapter.KernelFactory: ядро ищется среди записанных
// ядер устройства по имени функции.
func (a *Adapter) NewKernel(ctx context.Context, device any, name string) (any, error) {
	d, ok := device.(*Object)
	if !ok || d.Kind != handle.KindDevice {
		return nil, fmt.Errorf("устройство %v не принадлежит бэкенду '%s'", device, Backend)
	}
	return a.store.Child(ctx, handle.KindKernel, d.ID, name)
}

func asAny(objs []*Object) []any {
	out := make([]any, len(objs))
	for i, o := range objs {
		out[i] = o
	}
	return out
}

// Scalar реализует adapter.ScalarSource.
func (a *Adapter) Scalar(ctx context.Context, t adapter.Target, d property.Descriptor) (any, error) {
	raw, err := a.load(ctx, t, d)
	if err != nil {
		return nil, err
	}
	if d.Shape == property.ShapeStruct {
		var id uuid.UUID
		if err := json.Unmarshal(raw, &id); err == nil {
			return id, nil
		}
		var b []byte
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("некорректная запись %s: %w", d.Name, err)
		}
		return b, nil
	}
	var n uint64
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("некорректная запись %s: %w", d.Name, err)
	}
	return n, nil
}

// Array реализует adapter.ArraySource.
func (a *Adapter) Array(ctx context.Context, t adapter.Target, d property.Descriptor) (any, error) {
	raw, err := a.load(ctx, t, d)
	if err != nil {
		return nil, err
	}
	if d.Shape == property.ShapeString {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, nil
		}
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("некорректная запись %s: %w", d.Name, err)
		}
		return list, nil
	}
	var elems []uint64
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("некорректная запись %s: %w", d.Name, err)
	}
	return elems, nil
}

// load читает запись свойства. Значения подгрупп ядра записываются для ядра
// и действительны только для устройства, для которого ядро было собрано.
func (a *Adapter) load(ctx context.Context, t adapter.Target, d property.Descriptor) (json.RawMessage, error) {
	obj, err := handle.Native[*Object](t.Object)
	if err != nil {
		return nil, err
	}
	if d.Kind == property.KindKernelSubGroup {
		dev, err := handle.Native[*Object](t.Device)
		if err != nil {
			return nil, err
		}
		if obj.Parent == nil || *obj.Parent != dev.ID {
			return nil, fmt.Errorf("ядро '%s' не записано для устройства '%s'", obj.Label, dev.Label)
		}
	}
	return a.store.Load(ctx, obj.ID, d.Kind, d.ID)
}
