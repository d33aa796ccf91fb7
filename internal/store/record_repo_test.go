package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"compressx/internal/domain"
)

type fakeQuerier struct {
	execSQL   []string
	execArgs  [][]any
	execErr   error
	queryRows pgx.Rows
	queryErr  error
	rowScan   func(dest ...any) error
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	f.execArgs = append(f.execArgs, args)
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.queryRows, nil
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	return fakeRow{scan: f.rowScan}
}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

type recordRowsBase struct{}

func (recordRowsBase) Close()                                       {}
func (recordRowsBase) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (recordRowsBase) Conn() *pgx.Conn                              { return nil }
func (recordRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (recordRowsBase) RawValues() [][]byte                          { return nil }
func (recordRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

type recordRows struct {
	recordRowsBase
	records []domain.Record
	idx     int
}

func (r *recordRows) Next() bool {
	if r.idx >= len(r.records) {
		return false
	}
	r.idx++
	return true
}

func (r *recordRows) Scan(dest ...any) error {
	rec := r.records[r.idx-1]
	*(dest[0].(*string)) = rec.ID
	*(dest[1].(*string)) = rec.Name
	*(dest[2].(*string)) = rec.URL
	*(dest[3].(*string)) = rec.Tags
	*(dest[4].(*string)) = rec.Email
	*(dest[5].(*time.Time)) = rec.CreatedAt
	return nil
}

func (r *recordRows) Err() error { return nil }

func TestCreateAssignsIDAndPersists(t *testing.T) {
	db := &fakeQuerier{}
	repo := NewRecordRepository(db)

	rec := &domain.Record{Name: "holiday.jpg", URL: "https://cdn.example.com/x", Tags: "travel", Email: "user@example.com"}
	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.ID == "" {
		t.Fatalf("Create did not assign an id")
	}
	if rec.CreatedAt.IsZero() {
		t.Fatalf("Create did not assign a creation time")
	}
	if len(db.execArgs) != 1 {
		t.Fatalf("expected one insert, got %d", len(db.execArgs))
	}
	args := db.execArgs[0]
	if args[1] != "holiday.jpg" || args[4] != "user@example.com" {
		t.Fatalf("unexpected insert args: %#v", args)
	}
}

func TestCreateRejectsMissingEmailWithoutTouchingDatabase(t *testing.T) {
	db := &fakeQuerier{}
	repo := NewRecordRepository(db)

	err := repo.Create(context.Background(), &domain.Record{Name: "holiday.jpg"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("error kind = %s, want %s", domain.KindOf(err), domain.KindValidation)
	}
	if len(db.execSQL) != 0 {
		t.Fatalf("insert issued despite invalid record")
	}
}

func TestCreateWrapsDatabaseFailure(t *testing.T) {
	db := &fakeQuerier{execErr: fmt.Errorf("connection refused")}
	repo := NewRecordRepository(db)

	err := repo.Create(context.Background(), &domain.Record{Name: "x.png", Email: "user@example.com"})
	if err == nil {
		t.Fatalf("expected persistence error")
	}
	if domain.KindOf(err) != domain.KindPersistence {
		t.Fatalf("error kind = %s, want %s", domain.KindOf(err), domain.KindPersistence)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewRecordRepository(&fakeQuerier{})
	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("error = %v, want ErrRecordNotFound", err)
	}
}

func TestGetByIDScansRecord(t *testing.T) {
	created := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	db := &fakeQuerier{rowScan: func(dest ...any) error {
		*(dest[0].(*string)) = "rec-1"
		*(dest[1].(*string)) = "holiday.jpg"
		*(dest[2].(*string)) = "https://cdn.example.com/x"
		*(dest[3].(*string)) = "travel"
		*(dest[4].(*string)) = "user@example.com"
		*(dest[5].(*time.Time)) = created
		return nil
	}}
	repo := NewRecordRepository(db)

	rec, err := repo.GetByID(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if rec.Name != "holiday.jpg" || !rec.CreatedAt.Equal(created) {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestListRecentReturnsRows(t *testing.T) {
	rows := &recordRows{records: []domain.Record{
		{ID: "a", Name: "one.png", Email: "u@example.com", CreatedAt: time.Now()},
		{ID: "b", Name: "two.png", Email: "u@example.com", CreatedAt: time.Now()},
	}}
	repo := NewRecordRepository(&fakeQuerier{queryRows: rows})

	records, err := repo.ListRecent(context.Background(), 20, 0)
	if err != nil {
		t.Fatalf("ListRecent returned error: %v", err)
	}
	if len(records) != 2 || records[0].ID != "a" || records[1].ID != "b" {
		t.Fatalf("unexpected records: %+v", records)
	}
}
