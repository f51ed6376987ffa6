package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier - доступ хранилища каталога к PostgreSQL. Ему удовлетворяют
// *pgxpool.Pool, которым владеет адаптер после Open, и pgx.Tx, когда снятые
// с устройства значения записываются одной транзакцией.
type Querier interface {
	// Exec создает схему, добавляет объекты и записывает значения свойств.
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)

	// Query перечисляет платформы и устройства каталога.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)

	// QueryRow читает одно значение свойства или объект по метке.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
