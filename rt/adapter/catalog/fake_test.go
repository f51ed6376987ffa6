package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/x-research-team/unirt/rt/handle"
)

type propertyKey struct {
	object   uuid.UUID
	kind     int16
	property int64
}

// memQuerier - Querier в памяти, понимающий запросы хранилища каталога.
type memQuerier struct {
	mu         sync.Mutex
	objects    map[uuid.UUID]Object
	properties map[propertyKey][]byte
	failWith   error
	execs      int
}

func newMemQuerier() *memQuerier {
	return &memQuerier{
		objects:    make(map[uuid.UUID]Object),
		properties: make(map[propertyKey][]byte),
	}
}

func (m *memQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.execs++

	if m.failWith != nil {
		return pgconn.CommandTag{}, m.failWith
	}
	switch sql {
	case createSchemaQuery:
		return pgconn.NewCommandTag("CREATE TABLE"), nil
	case insertObjectQuery:
		obj := Object{
			ID:     args[0].(uuid.UUID),
			Kind:   kindOf(args[1].(int16)),
			Parent: args[2].(*uuid.UUID),
			Label:  args[3].(string),
		}
		m.objects[obj.ID] = obj
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case upsertPropertyQuery:
		key := propertyKey{args[0].(uuid.UUID), args[1].(int16), args[2].(int64)}
		m.properties[key] = args[3].([]byte)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("неожиданный запрос: %s", sql)
}

func (m *memQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return nil, m.failWith
	}
	if sql != selectChildrenQuery {
		return nil, fmt.Errorf("неожиданный запрос: %s", sql)
	}
	kind := kindOf(args[0].(int16))
	parent := args[1].(*uuid.UUID)

	var out []Object
	for _, obj := range m.objects {
		if obj.Kind != kind {
			continue
		}
		if (parent == nil) != (obj.Parent == nil) {
			continue
		}
		if parent != nil && *parent != *obj.Parent {
			continue
		}
		out = append(out, obj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return &memRows{objects: out, pos: -1}, nil
}

func (m *memQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return memRow{err: m.failWith}
	}
	switch sql {
	case selectPropertyQuery:
		key := propertyKey{args[0].(uuid.UUID), args[1].(int16), args[2].(int64)}
		raw, ok := m.properties[key]
		if !ok {
			return memRow{err: pgx.ErrNoRows}
		}
		return memRow{value: raw}
	case selectChildByLabelQuery:
		kind := kindOf(args[0].(int16))
		parent := args[1].(uuid.UUID)
		label := args[2].(string)
		for _, obj := range m.objects {
			if obj.Kind == kind && obj.Parent != nil && *obj.Parent == parent && obj.Label == label {
				o := obj
				return memRow{object: &o}
			}
		}
		return memRow{err: pgx.ErrNoRows}
	}
	return memRow{err: fmt.Errorf("неожиданный запрос: %s", sql)}
}

type memRow struct {
	value  []byte
	object *Object
	err    error
}

func (r memRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.object != nil {
		return scanInto(*r.object, dest)
	}
	*dest[0].(*[]byte) = r.value
	return nil
}

func scanInto(obj Object, dest []any) error {
	if len(dest) != 4 {
		return errors.New("ожидалось 4 столбца")
	}
	*dest[0].(*uuid.UUID) = obj.ID
	*dest[1].(*int16) = int16(obj.Kind)
	*dest[2].(**uuid.UUID) = obj.Parent
	*dest[3].(*string) = obj.Label
	return nil
}

// memRows реализует pgx.Rows поверх среза объектов.
type memRows struct {
	objects []Object
	pos     int
}

func (r *memRows) Close()                                       {}
func (r *memRows) Err() error                                   { return nil }
func (r *memRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *memRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *memRows) Values() ([]any, error)                       { return nil, nil }
func (r *memRows) RawValues() [][]byte                          { return nil }
func (r *memRows) Conn() *pgx.Conn                              { return nil }

func (r *memRows) Next() bool {
	r.pos++
	return r.pos < len(r.objects)
}

func (r *memRows) Scan(dest ...any) error {
	return scanInto(r.objects[r.pos], dest)
}

func kindOf(v int16) handle.Kind { return handle.Kind(v) }
