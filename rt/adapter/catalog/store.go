package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/x-research-team/unirt/rt/adapter"
	"github.com/x-research-team/unirt/rt/handle"
	"github.com/x-research-team/unirt/rt/property"
)

const (
	// SQL-запрос для создания схемы каталога.
	createSchemaQuery = `
CREATE TABLE IF NOT EXISTS catalog_objects (
    id UUID PRIMARY KEY,
    kind SMALLINT NOT NULL,
    parent_id UUID REFERENCES catalog_objects (id),
    label TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS catalog_properties (
    object_id UUID NOT NULL REFERENCES catalog_objects (id),
    kind SMALLINT NOT NULL,
    property BIGINT NOT NULL,
    value JSONB NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (object_id, kind, property)
);
CREATE INDEX IF NOT EXISTS idx_catalog_objects_parent ON catalog_objects (kind, parent_id);
`

	// SQL-запрос для вставки объекта.
	insertObjectQuery = `
INSERT INTO catalog_objects (id, kind, parent_id, label)
VALUES ($1, $2, $3, $4);
`

	// SQL-запрос для записи значения свойства. Повторная запись заменяет значение.
	upsertPropertyQuery = `
INSERT INTO catalog_properties (object_id, kind, property, value, recorded_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (object_id, kind, property)
DO UPDATE SET value = EXCLUDED.value, recorded_at = EXCLUDED.recorded_at;
`

	// SQL-запрос для чтения значения свойства.
	selectPropertyQuery = `
SELECT value FROM catalog_properties
WHERE object_id = $1 AND kind = $2 AND property = $3;
`

	// SQL-запрос для выборки дочерних объектов. NULL в $2 выбирает корневые объекты.
	selectChildrenQuery = `
SELECT id, kind, parent_id, label FROM catalog_objects
WHERE kind = $1 AND parent_id IS NOT DISTINCT FROM $2
ORDER BY label, id;
`

	// SQL-запрос для поиска объекта по метке среди дочерних.
	selectChildByLabelQuery = `
SELECT id, kind, parent_id, label FROM catalog_objects
WHERE kind = $1 AND parent_id = $2 AND label = $3;
`
)

// Object - нативный объект каталога: запись об объекте реального устройства,
// свойства которого были сняты ранее.
type Object struct {
	ID     uuid.UUID
	Kind   handle.Kind
	Parent *uuid.UUID
	Label  string
}

// Store - хранилище записанных значений свойств в PostgreSQL.
type Store struct {
	db  Querier
	now func() time.Time
}

// NewStore создает хранилище и схему, если она еще не существует.
func NewStore(ctx context.Context, db Querier) (*Store, error) {
	if db == nil {
		return nil, errors.New("querier не может быть nil")
	}
	if _, err := db.Exec(ctx, createSchemaQuery); err != nil {
		return nil, fmt.Errorf("не удалось создать схему каталога: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// AddObject регистрирует объект в каталоге.
func (s *Store) AddObject(ctx context.Context, kind handle.Kind, parent *uuid.UUID, label string) (*Object, error) {
	obj := &Object{ID: uuid.New(), Kind: kind, Parent: parent, Label: label}
	if _, err := s.db.Exec(ctx, insertObjectQuery, obj.ID, int16(kind), parent, label); err != nil {
		return nil, fmt.Errorf("не удалось добавить объект '%s': %w", label, err)
	}
	return obj, nil
}

// Record сохраняет значение свойства объекта. Значение сериализуется в JSON.
func (s *Store) Record(ctx context.Context, objectID uuid.UUID, kind property.Kind, id property.ID, value any) error {
	if !property.Known(kind, id) {
		return fmt.Errorf("свойство %d не зарегистрировано для объектов типа '%s'", uint32(id), kind)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать значение: %w", err)
	}
	if _, err := s.db.Exec(ctx, upsertPropertyQuery, objectID, int16(kind), int64(id), payload, s.now()); err != nil {
		return fmt.Errorf("не удалось записать свойство объекта '%s': %w", objectID, err)
	}
	return nil
}

// Load читает сериализованное значение свойства.
// Отсутствие записи возвращается как adapter.ErrUnsupported.
func (s *Store) Load(ctx context.Context, objectID uuid.UUID, kind property.Kind, id property.ID) (json.RawMessage, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, selectPropertyQuery, objectID, int16(kind), int64(id)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, adapter.ErrUnsupported
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать свойство объекта '%s': %w", objectID, err)
	}
	return json.RawMessage(raw), nil
}

// Children возвращает объекты заданного типа с указанным родителем.
// parent == nil выбирает корневые объекты.
func (s *Store) Children(ctx context.Context, kind handle.Kind, parent *uuid.UUID) ([]*Object, error) {
	rows, err := s.db.Query(ctx, selectChildrenQuery, int16(kind), parent)
	if err != nil {
		return nil, fmt.Errorf("не удалось выбрать объекты каталога: %w", err)
	}
	defer rows.Close()

	var objects []*Object
	for rows.Next() {
		obj, err := scanObject(rows)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по объектам каталога: %w", err)
	}
	return objects, nil
}

// Child ищет дочерний объект по метке.
func (s *Store) Child(ctx context.Context, kind handle.Kind, parent uuid.UUID, label string) (*Object, error) {
	obj, err := scanObject(s.db.QueryRow(ctx, selectChildByLabelQuery, int16(kind), parent, label))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("объект '%s' не найден в каталоге", label)
	}
	return obj, err
}

func scanObject(row pgx.Row) (*Object, error) {
	var (
		obj  Object
		kind int16
	)
	if err := row.Scan(&obj.ID, &kind, &obj.Parent, &obj.Label); err != nil {
		return nil, err
	}
	obj.Kind = handle.Kind(kind)
	return &obj, nil
}
