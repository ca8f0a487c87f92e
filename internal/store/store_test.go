package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/model"
)

// fakeRow scans fixed values into pointer destinations.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(r.values))
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case **string:
			if v == nil {
				*d = nil
				continue
			}
			s := v.(string)
			*d = &s
		case *string:
			*d = v.(string)
		case *bool:
			*d = v.(bool)
		case *int64:
			*d = v.(int64)
		default:
			return fmt.Errorf("scan: unsupported destination %T", dest[i])
		}
	}
	return nil
}

type execCall struct {
	sql  string
	args []any
}

// fakeDB records Exec calls and answers QueryRow from a queue.
type fakeDB struct {
	execs    []execCall
	execTags []pgconn.CommandTag
	execErr  error
	rows     []pgx.Row
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	if len(f.execTags) == 0 {
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	tag := f.execTags[0]
	f.execTags = f.execTags[1:]
	return tag, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if len(f.rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	row := f.rows[0]
	f.rows = f.rows[1:]
	return row
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("fakeDB: Query not supported")
}

func (f *fakeDB) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("fakeDB: SendBatch not supported")
}

func (f *fakeDB) Ping(ctx context.Context) error { return nil }

func TestStoredHistory(t *testing.T) {
	tests := []struct {
		name string
		row  pgx.Row
		want string
	}{
		{"missing row", fakeRow{err: pgx.ErrNoRows}, ""},
		{"null history", fakeRow{values: []any{nil}}, ""},
		{"stored text", fakeRow{values: []any{`[{"date":"2024-01-20","price":110}]`}}, `[{"date":"2024-01-20","price":110}]`},
		{"malformed text passes through", fakeRow{values: []any{"{bad"}}, "{bad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&fakeDB{rows: []pgx.Row{tt.row}}, nil)
			got, err := s.StoredHistory(context.Background(), "AAPL")
			if err != nil {
				t.Fatalf("StoredHistory error: %v", err)
			}
			if got != tt.want {
				t.Errorf("StoredHistory = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStoredHistory_QueryError(t *testing.T) {
	s := New(&fakeDB{rows: []pgx.Row{fakeRow{err: errors.New("conn closed")}}}, nil)
	if _, err := s.StoredHistory(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error")
	}
}

func TestUpsertStock(t *testing.T) {
	db := &fakeDB{}
	s := New(db, nil)

	rec := model.StockRecord{
		Code:         "AAPL",
		Name:         "Apple Inc.",
		CompanyName:  "Apple Inc.",
		CurrentPrice: decimal.RequireFromString("190.5"),
		History: model.History{
			{Date: model.MustParseDate("2024-01-20"), Price: decimal.NewFromInt(110)},
			{Date: model.MustParseDate("2024-01-21"), Price: decimal.RequireFromString("190.5")},
		},
	}
	if err := s.UpsertStock(context.Background(), rec); err != nil {
		t.Fatalf("UpsertStock error: %v", err)
	}

	if len(db.execs) != 1 {
		t.Fatalf("execs = %d, want 1", len(db.execs))
	}
	call := db.execs[0]
	if !strings.Contains(call.sql, "ON CONFLICT (stock_code) DO UPDATE") {
		t.Errorf("upsert SQL missing conflict clause: %s", call.sql)
	}
	wantArgs := []any{
		"AAPL", "Apple Inc.", "Apple Inc.", "190.5",
		`[{"date":"2024-01-20","price":110},{"date":"2024-01-21","price":190.5}]`,
	}
	for i, want := range wantArgs {
		if call.args[i] != want {
			t.Errorf("arg %d = %v, want %v", i, call.args[i], want)
		}
	}
}

func TestUpsertStock_EmptyHistoryEncodesArray(t *testing.T) {
	db := &fakeDB{}
	s := New(db, nil)
	if err := s.UpsertStock(context.Background(), model.StockRecord{Code: "X"}); err != nil {
		t.Fatalf("UpsertStock error: %v", err)
	}
	if got := db.execs[0].args[4]; got != "[]" {
		t.Errorf("history arg = %v, want []", got)
	}
}

func TestCreateStock_Conflict(t *testing.T) {
	db := &fakeDB{execTags: []pgconn.CommandTag{pgconn.NewCommandTag("INSERT 0 0")}}
	s := New(db, nil)

	err := s.CreateStock(context.Background(), model.StockRecord{Code: "AAPL", Name: "Apple"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("CreateStock error = %v, want ErrConflict", err)
	}
}

func TestDeleteStock(t *testing.T) {
	tests := []struct {
		name    string
		held    bool
		tag     string
		wantErr error
	}{
		{"held stock", true, "", ErrInUse},
		{"missing stock", false, "DELETE 0", ErrNotFound},
		{"deleted", false, "DELETE 1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{rows: []pgx.Row{fakeRow{values: []any{tt.held}}}}
			if tt.tag != "" {
				db.execTags = []pgconn.CommandTag{pgconn.NewCommandTag(tt.tag)}
			}
			s := New(db, nil)

			err := s.DeleteStock(context.Background(), "AAPL")
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("DeleteStock error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DeleteStock error = %v, want %v", err, tt.wantErr)
			}
			if tt.held && len(db.execs) != 0 {
				t.Error("held stock must not be deleted")
			}
		})
	}
}

func TestUpdateStockPrice(t *testing.T) {
	db := &fakeDB{rows: []pgx.Row{fakeRow{values: []any{"180.2500"}}}}
	s := New(db, nil)

	prev, err := s.UpdateStockPrice(context.Background(), "AAPL", decimal.NewFromInt(200))
	if err != nil {
		t.Fatalf("UpdateStockPrice error: %v", err)
	}
	if !prev.Equal(decimal.RequireFromString("180.25")) {
		t.Errorf("previous = %s, want 180.25", prev)
	}

	_, err = New(&fakeDB{}, nil).UpdateStockPrice(context.Background(), "NOPE", decimal.NewFromInt(1))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing stock error = %v, want ErrNotFound", err)
	}
}

func TestUpdatePosition_NotFound(t *testing.T) {
	db := &fakeDB{execTags: []pgconn.CommandTag{pgconn.NewCommandTag("UPDATE 0")}}
	err := New(db, nil).UpdatePosition(context.Background(), model.PortfolioAsset{PortfolioID: 1, AssetID: 2})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdatePosition error = %v, want ErrNotFound", err)
	}
}

func TestAddPosition_ForeignKeyIsNotFound(t *testing.T) {
	db := &fakeDB{execErr: &pgconn.PgError{Code: codeForeignKeyViolation, Detail: "Key (asset_id)=(9) is not present"}}
	err := New(db, nil).AddPosition(context.Background(), model.PortfolioAsset{PortfolioID: 1, AssetID: 9})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("AddPosition error = %v, want ErrNotFound", err)
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique", &pgconn.PgError{Code: codeUniqueViolation}, ErrConflict},
		{"foreign key", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: codeForeignKeyViolation}), ErrInUse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translate(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("translate = %v, want %v", got, tt.want)
			}
		})
	}

	other := errors.New("boom")
	if got := translate(other); got != other {
		t.Errorf("translate(other) = %v, want unchanged", got)
	}
}

func TestParseDecimal(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		in      *string
		want    string
		wantErr bool
	}{
		{nil, "0", false},
		{str(""), "0", false},
		{str("123.4500"), "123.45", false},
		{str("-7"), "-7", false},
		{str("abc"), "", true},
	}
	for _, tt := range tests {
		got, err := parseDecimal(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseDecimal(%v) expected error", *tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseDecimal error: %v", err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("parseDecimal = %s, want %s", got, tt.want)
		}
	}
}

func TestDecodeHistory(t *testing.T) {
	s := New(&fakeDB{}, nil)
	str := func(v string) *string { return &v }

	if h := s.decodeHistory("X", nil); h != nil {
		t.Errorf("nil raw = %v, want nil", h)
	}
	if h := s.decodeHistory("X", str("{bad")); h != nil {
		t.Errorf("malformed = %v, want nil", h)
	}
	h := s.decodeHistory("X", str(`[{"date":"2024-01-20","price":110}]`))
	if len(h) != 1 || !h[0].Price.Equal(decimal.NewFromInt(110)) {
		t.Errorf("decoded = %v", h)
	}
}
