package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"compressx/internal/domain"
)

// Querier is the subset of pgxpool.Pool the repository needs; tests swap in
// fakes.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RecordRepository persists metadata records in PostgreSQL.
type RecordRepository struct {
	db Querier
}

// NewRecordRepository constructs a repository over the given querier.
func NewRecordRepository(db Querier) *RecordRepository {
	return &RecordRepository{db: db}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS records (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	url        TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the records table when it does not exist yet.
func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return domain.NewPersistenceError("ensure schema", err)
	}
	return nil
}

// Create persists the record, assigning an ID and creation time when absent.
// The record is immutable afterwards.
func (r *RecordRepository) Create(ctx context.Context, record *domain.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `
INSERT INTO records (id, name, url, tags, email, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`, record.ID, record.Name, record.URL, record.Tags, record.Email, record.CreatedAt)
	if err != nil {
		return domain.NewPersistenceError("insert record", err)
	}
	return nil
}

// GetByID returns one record or domain.ErrRecordNotFound.
func (r *RecordRepository) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	row := r.db.QueryRow(ctx, `
SELECT id, name, url, tags, email, created_at
FROM records
WHERE id = $1;
`, id)
	var record domain.Record
	if err := row.Scan(&record.ID, &record.Name, &record.URL, &record.Tags, &record.Email, &record.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, domain.NewPersistenceError("load record", err)
	}
	return &record, nil
}

// ListRecent returns records newest-first.
func (r *RecordRepository) ListRecent(ctx context.Context, limit, offset int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, `
SELECT id, name, url, tags, email, created_at
FROM records
ORDER BY created_at DESC
LIMIT $1 OFFSET $2;
`, limit, offset)
	if err != nil {
		return nil, domain.NewPersistenceError("list records", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var record domain.Record
		if err := rows.Scan(&record.ID, &record.Name, &record.URL, &record.Tags, &record.Email, &record.CreatedAt); err != nil {
			return nil, domain.NewPersistenceError("scan record", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewPersistenceError("iterate records", err)
	}
	return records, nil
}

// ErrRecordNotFound is returned when a lookup matches nothing.
var ErrRecordNotFound = errors.New("record not found")
