package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/portfolio-tracker/internal/model"
)

// ListTrades returns every trade, newest first.
func (s *Store) ListTrades(ctx context.Context) ([]model.TradeRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, trade_type, trade_detail, amount::text, trade_time
		FROM trade_record
		ORDER BY trade_time DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("select trades: %w", err)
	}
	defer rows.Close()

	var out []model.TradeRecord
	for rows.Next() {
		var (
			t      model.TradeRecord
			amount *string
		)
		if err := rows.Scan(&t.ID, &t.Type, &t.Detail, &amount, &t.Time); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		if t.Amount, err = parseDecimal(amount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	return out, nil
}

// CreateTrade records a cash movement at the current time and returns its id.
func (s *Store) CreateTrade(ctx context.Context, t model.TradeRecord) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO trade_record (trade_type, trade_detail, amount)
		VALUES ($1, $2, $3)
		RETURNING id
	`, t.Type, t.Detail, t.Amount.String()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert trade: %w", err)
	}
	return id, nil
}

// TradeTotals sums amounts per (type, detail) over all trades.
func (s *Store) TradeTotals(ctx context.Context) ([]model.TradeTotal, error) {
	rows, err := s.db.Query(ctx, tradeTotalsQuery)
	if err != nil {
		return nil, fmt.Errorf("select trade totals: %w", err)
	}
	return collectTradeTotals(rows)
}

const tradeTotalsQuery = `
	SELECT trade_type, trade_detail, SUM(amount)::text
	FROM trade_record
	GROUP BY trade_type, trade_detail
	ORDER BY trade_type, trade_detail
`

// DailyTradeTotals sums amounts per UTC day and type for trades on or after since.
func (s *Store) DailyTradeTotals(ctx context.Context, since model.Date) ([]model.DailyTradeTotal, error) {
	rows, err := s.db.Query(ctx, `
		SELECT (trade_time AT TIME ZONE 'UTC')::date AS day, trade_type, SUM(amount)::text
		FROM trade_record
		WHERE trade_time >= $1
		GROUP BY day, trade_type
		ORDER BY day, trade_type
	`, since.Time())
	if err != nil {
		return nil, fmt.Errorf("select daily trade totals: %w", err)
	}
	defer rows.Close()

	var out []model.DailyTradeTotal
	for rows.Next() {
		var (
			day   time.Time
			total *string
			d     model.DailyTradeTotal
		)
		if err := rows.Scan(&day, &d.Type, &total); err != nil {
			return nil, fmt.Errorf("scan daily trade total: %w", err)
		}
		if d.Total, err = parseDecimal(total); err != nil {
			return nil, err
		}
		d.Date = model.DateOf(day)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily trade totals: %w", err)
	}
	return out, nil
}

func collectTradeTotals(rows pgx.Rows) ([]model.TradeTotal, error) {
	defer rows.Close()
	var out []model.TradeTotal
	for rows.Next() {
		var (
			t     model.TradeTotal
			total *string
		)
		if err := rows.Scan(&t.Type, &t.Detail, &total); err != nil {
			return nil, fmt.Errorf("scan trade total: %w", err)
		}
		var err error
		if t.Total, err = parseDecimal(total); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade totals: %w", err)
	}
	return out, nil
}
