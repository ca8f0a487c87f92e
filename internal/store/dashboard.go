package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/portfolio-tracker/internal/model"
)

// DashboardSnapshot reads everything the dashboard needs in one round trip.
// Income and spending cover trades on or after since; indices lists the
// market index codes to include.
func (s *Store) DashboardSnapshot(ctx context.Context, since time.Time, indices []string) (model.DashboardSnapshot, error) {
	batch := &pgx.Batch{}
	batch.Queue(`SELECT name, balance::text, type, updated FROM cash_accounts ORDER BY id`)
	batch.Queue(`SELECT name, value::text, type, updated FROM investment_accounts ORDER BY id`)
	batch.Queue(`
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE trade_type = $1), 0)::text,
			COALESCE(SUM(amount) FILTER (WHERE trade_type = $2), 0)::text
		FROM trade_record
		WHERE trade_time >= $3
	`, model.TradeIncome, model.TradeExpense, since)
	batch.Queue(`
		SELECT `+stockColumns+` FROM stock_info
		WHERE stock_code = ANY($1)
		ORDER BY array_position($1::text[], stock_code)
	`, indices)
	batch.Queue(heldStocksQuery)

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	var snap model.DashboardSnapshot

	rows, err := results.Query()
	if err != nil {
		return snap, fmt.Errorf("select cash accounts: %w", err)
	}
	snap.CashAccounts, err = collectAccounts(rows, func(name, amount, kind string, updated time.Time) (model.CashAccount, error) {
		bal, err := parseDecimal(&amount)
		return model.CashAccount{Name: name, Balance: bal, Type: kind, Updated: updated}, err
	})
	if err != nil {
		return snap, fmt.Errorf("cash accounts: %w", err)
	}

	rows, err = results.Query()
	if err != nil {
		return snap, fmt.Errorf("select investment accounts: %w", err)
	}
	snap.InvestmentAccounts, err = collectAccounts(rows, func(name, amount, kind string, updated time.Time) (model.InvestmentAccount, error) {
		val, err := parseDecimal(&amount)
		return model.InvestmentAccount{Name: name, Value: val, Type: kind, Updated: updated}, err
	})
	if err != nil {
		return snap, fmt.Errorf("investment accounts: %w", err)
	}

	var income, spending *string
	if err := results.QueryRow().Scan(&income, &spending); err != nil {
		return snap, fmt.Errorf("select cash flow: %w", err)
	}
	if err := parseDecimals(col(income, &snap.Income), col(spending, &snap.Spending)); err != nil {
		return snap, err
	}

	rows, err = results.Query()
	if err != nil {
		return snap, fmt.Errorf("select market indices: %w", err)
	}
	if snap.MarketIndices, err = s.collectStocks(rows); err != nil {
		return snap, err
	}

	rows, err = results.Query()
	if err != nil {
		return snap, fmt.Errorf("select holdings: %w", err)
	}
	if snap.Held, err = s.collectHeld(rows); err != nil {
		return snap, err
	}

	return snap, nil
}

// collectAccounts scans (name, amount, type, updated) rows through build.
func collectAccounts[T any](rows pgx.Rows, build func(name, amount, kind string, updated time.Time) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		var (
			name, amount, kind string
			updated            time.Time
		)
		if err := rows.Scan(&name, &amount, &kind, &updated); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		v, err := build(name, amount, kind, updated)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, nil
}
