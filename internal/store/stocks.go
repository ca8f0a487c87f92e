package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/model"
)

const stockColumns = `stock_code, stock_name, company_name, current_price::text, history_price`

// StoredHistory returns the raw history_price text for code, or "" when the
// stock has no row or a NULL history.
func (s *Store) StoredHistory(ctx context.Context, code string) (string, error) {
	var raw *string
	err := s.db.QueryRow(ctx,
		`SELECT history_price FROM stock_info WHERE stock_code = $1`, code,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("select history %s: %w", code, err)
	}
	if raw == nil {
		return "", nil
	}
	return *raw, nil
}

// UpsertStock inserts rec or replaces every column of the existing row.
func (s *Store) UpsertStock(ctx context.Context, rec model.StockRecord) error {
	history, err := rec.History.Encode()
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO stock_info (stock_code, stock_name, company_name, current_price, history_price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (stock_code) DO UPDATE SET
			stock_name = EXCLUDED.stock_name,
			company_name = EXCLUDED.company_name,
			current_price = EXCLUDED.current_price,
			history_price = EXCLUDED.history_price
	`, rec.Code, rec.Name, rec.CompanyName, rec.CurrentPrice.String(), history)
	if err != nil {
		return fmt.Errorf("upsert stock %s: %w", rec.Code, err)
	}
	return nil
}

// ListStocks returns every stock record ordered by code.
func (s *Store) ListStocks(ctx context.Context) ([]model.StockRecord, error) {
	rows, err := s.db.Query(ctx, `SELECT `+stockColumns+` FROM stock_info ORDER BY stock_code`)
	if err != nil {
		return nil, fmt.Errorf("select stocks: %w", err)
	}
	return s.collectStocks(rows)
}

// GetStock returns the record for code.
func (s *Store) GetStock(ctx context.Context, code string) (model.StockRecord, error) {
	row := s.db.QueryRow(ctx, `SELECT `+stockColumns+` FROM stock_info WHERE stock_code = $1`, code)
	rec, err := s.scanStock(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.StockRecord{}, fmt.Errorf("stock %s: %w", code, ErrNotFound)
	}
	return rec, err
}

// RandomStocks returns up to n stocks chosen at random.
func (s *Store) RandomStocks(ctx context.Context, n int) ([]model.StockRecord, error) {
	rows, err := s.db.Query(ctx, `SELECT `+stockColumns+` FROM stock_info ORDER BY random() LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("select random stocks: %w", err)
	}
	return s.collectStocks(rows)
}

// CreateStock inserts a new stock without history. It returns ErrConflict if
// the code is taken.
func (s *Store) CreateStock(ctx context.Context, rec model.StockRecord) error {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO stock_info (stock_code, stock_name, company_name, current_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (stock_code) DO NOTHING
	`, rec.Code, rec.Name, rec.CompanyName, rec.CurrentPrice.String())
	if err != nil {
		return fmt.Errorf("insert stock %s: %w", rec.Code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stock %s: %w", rec.Code, ErrConflict)
	}
	return nil
}

// UpdateStockPrice sets the current price of code and returns the previous one.
func (s *Store) UpdateStockPrice(ctx context.Context, code string, price decimal.Decimal) (decimal.Decimal, error) {
	var prev *string
	err := s.db.QueryRow(ctx, `
		WITH prev AS (
			SELECT current_price FROM stock_info WHERE stock_code = $2 FOR UPDATE
		)
		UPDATE stock_info s SET current_price = $1
		FROM prev
		WHERE s.stock_code = $2
		RETURNING prev.current_price::text
	`, price.String(), code).Scan(&prev)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("stock %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("update price %s: %w", code, err)
	}
	return parseDecimal(prev)
}

// DeleteStock removes code. It returns ErrInUse while the stock is held.
func (s *Store) DeleteStock(ctx context.Context, code string) error {
	var held bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stock_holding WHERE stock_code = $1)`, code,
	).Scan(&held); err != nil {
		return fmt.Errorf("check holding %s: %w", code, err)
	}
	if held {
		return fmt.Errorf("stock %s is held: %w", code, ErrInUse)
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM stock_info WHERE stock_code = $1`, code)
	if err != nil {
		return fmt.Errorf("delete stock %s: %w", code, translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stock %s: %w", code, ErrNotFound)
	}
	return nil
}

// HeldStocks returns every held stock joined with its record, ordered by code.
func (s *Store) HeldStocks(ctx context.Context) ([]model.HeldStock, error) {
	rows, err := s.db.Query(ctx, heldStocksQuery)
	if err != nil {
		return nil, fmt.Errorf("select holdings: %w", err)
	}
	return s.collectHeld(rows)
}

const heldStocksQuery = `
	SELECT s.stock_code, s.stock_name, s.company_name, s.current_price::text, s.history_price,
	       h.quantity::text
	FROM stock_holding h
	JOIN stock_info s ON s.stock_code = h.stock_code
	ORDER BY s.stock_code
`

func (s *Store) collectStocks(rows pgx.Rows) ([]model.StockRecord, error) {
	defer rows.Close()
	var out []model.StockRecord
	for rows.Next() {
		rec, err := s.scanStock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stocks: %w", err)
	}
	return out, nil
}

func (s *Store) collectHeld(rows pgx.Rows) ([]model.HeldStock, error) {
	defer rows.Close()
	var out []model.HeldStock
	for rows.Next() {
		var (
			rec      model.StockRecord
			price    *string
			history  *string
			quantity *string
			held     model.HeldStock
		)
		if err := rows.Scan(&rec.Code, &rec.Name, &rec.CompanyName, &price, &history, &quantity); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		if err := parseDecimals(col(price, &rec.CurrentPrice), col(quantity, &held.Quantity)); err != nil {
			return nil, err
		}
		rec.History = s.decodeHistory(rec.Code, history)
		held.Stock = rec
		out = append(out, held)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holdings: %w", err)
	}
	return out, nil
}

func (s *Store) scanStock(row pgx.Row) (model.StockRecord, error) {
	var (
		rec     model.StockRecord
		price   *string
		history *string
	)
	if err := row.Scan(&rec.Code, &rec.Name, &rec.CompanyName, &price, &history); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan stock: %w", err)
	}
	p, err := parseDecimal(price)
	if err != nil {
		return rec, err
	}
	rec.CurrentPrice = p
	rec.History = s.decodeHistory(rec.Code, history)
	return rec, nil
}

// decodeHistory parses stored history strictly. Malformed text yields nil.
func (s *Store) decodeHistory(code string, raw *string) model.History {
	if raw == nil {
		return nil
	}
	h, err := model.ParseHistory(*raw)
	if err != nil {
		s.logger.Debug("stored history unreadable",
			"symbol", code,
			"error", err,
		)
		return nil
	}
	return h
}
