package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a row with the same key already exists.
	ErrConflict = errors.New("already exists")
	// ErrInUse is returned when a row cannot be deleted because another row references it.
	ErrInUse = errors.New("in use")
)

// PostgreSQL error codes.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// DB is the subset of pgxpool.Pool used by Store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Ping(ctx context.Context) error
}

// Store reads and writes tracker data.
type Store struct {
	db     DB
	logger *slog.Logger
}

// New creates a Store on top of db.
func New(db DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// translate maps constraint violations onto the package sentinels.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Detail)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrInUse, pgErr.Detail)
		}
	}
	return err
}

// parseDecimal parses a NUMERIC column read as text. NULL reads as zero.
func parseDecimal(s *string) (decimal.Decimal, error) {
	if s == nil || *s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse numeric %q: %w", *s, err)
	}
	return d, nil
}

// parseDecimals parses several columns, stopping at the first error.
func parseDecimals(pairs ...decimalColumn) error {
	for _, p := range pairs {
		d, err := parseDecimal(p.raw)
		if err != nil {
			return err
		}
		*p.dst = d
	}
	return nil
}

type decimalColumn struct {
	raw *string
	dst *decimal.Decimal
}

func col(raw *string, dst *decimal.Decimal) decimalColumn {
	return decimalColumn{raw: raw, dst: dst}
}
