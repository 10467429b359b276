package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"section8-underwriter/internal/contextkeys"
	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const rentTableName = "rent_table"

const createRentTableSQL = `
CREATE TABLE IF NOT EXISTS rent_table (
	zip         VARCHAR(5)  NOT NULL,
	fmr_0       INTEGER     NOT NULL DEFAULT 0,
	fmr_1       INTEGER     NOT NULL DEFAULT 0,
	fmr_2       INTEGER     NOT NULL DEFAULT 0,
	fmr_3       INTEGER     NOT NULL DEFAULT 0,
	fmr_4       INTEGER     NOT NULL DEFAULT 0,
	ps110_0     INTEGER     NOT NULL DEFAULT 0,
	ps110_1     INTEGER     NOT NULL DEFAULT 0,
	ps110_2     INTEGER     NOT NULL DEFAULT 0,
	ps110_3     INTEGER     NOT NULL DEFAULT 0,
	ps110_4     INTEGER     NOT NULL DEFAULT 0,
	imported_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS rent_table_zip_idx ON rent_table (zip);`

var rentTableColumns = []string{
	"zip",
	"fmr_0", "fmr_1", "fmr_2", "fmr_3", "fmr_4",
	"ps110_0", "ps110_1", "ps110_2", "ps110_3", "ps110_4",
	"imported_at",
}

// dbPool - часть pgxpool.Pool, которую использует репозиторий
type dbPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RentTableRepository хранит таблицу SAFMR в Postgres
type RentTableRepository struct {
	pool dbPool
	now  func() time.Time
}

func NewRentTableRepository(pool dbPool) (*RentTableRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres adapter: pool cannot be nil")
	}
	return &RentTableRepository{pool: pool, now: time.Now}, nil
}

// EnsureSchema создает таблицу и индекс, если их еще нет
func (r *RentTableRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createRentTableSQL); err != nil {
		return fmt.Errorf("postgres adapter: failed to create rent table: %w", err)
	}
	return nil
}

// ReplaceAll в одной транзакции очищает таблицу и загружает строки через COPY
func (r *RentTableRepository) ReplaceAll(ctx context.Context, rows []domain.RentTableRow) (int64, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "RentTableRepository",
		"method":    "ReplaceAll",
	})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres adapter: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE "+rentTableName); err != nil {
		return 0, fmt.Errorf("postgres adapter: failed to truncate rent table: %w", err)
	}

	importedAt := r.now().UTC()
	copied, err := tx.CopyFrom(ctx, pgx.Identifier{rentTableName}, rentTableColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return rowValues(rows[i], importedAt), nil
		}))
	if err != nil {
		return 0, fmt.Errorf("postgres adapter: copy into rent table failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres adapter: failed to commit rent table: %w", err)
	}

	logger.Info("Rent table replaced", port.Fields{"rows": copied})
	return copied, nil
}

func (r *RentTableRepository) RowsForZip(ctx context.Context, zip string) ([]domain.RentTableRow, error) {
	query := "SELECT " + columnList(rentTableColumns[:11]) + " FROM " + rentTableName + " WHERE zip = $1"
	rows, err := r.pool.Query(ctx, query, zip)
	if err != nil {
		return nil, fmt.Errorf("postgres adapter: rent lookup for %s failed: %w", zip, err)
	}
	defer rows.Close()

	var out []domain.RentTableRow
	for rows.Next() {
		var row domain.RentTableRow
		if err := rows.Scan(scanTargets(&row)...); err != nil {
			return nil, fmt.Errorf("postgres adapter: failed to scan rent row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres adapter: rent rows iteration failed: %w", err)
	}
	return out, nil
}

func (r *RentTableRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+rentTableName).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres adapter: failed to count rent rows: %w", err)
	}
	return n, nil
}

func rowValues(row domain.RentTableRow, importedAt time.Time) []any {
	values := make([]any, 0, len(rentTableColumns))
	values = append(values, row.Zip)
	for _, v := range row.FMR {
		values = append(values, int32(v))
	}
	for _, v := range row.PS110 {
		values = append(values, int32(v))
	}
	return append(values, importedAt)
}

func scanTargets(row *domain.RentTableRow) []any {
	targets := make([]any, 0, 11)
	targets = append(targets, &row.Zip)
	for i := range row.FMR {
		targets = append(targets, &row.FMR[i])
	}
	for i := range row.PS110 {
		targets = append(targets, &row.PS110[i])
	}
	return targets
}

func columnList(cols []string) string {
	return strings.Join(cols, ", ")
}
