package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/portfolio-tracker/internal/model"
)

// ListAssets returns every asset ordered by id.
func (s *Store) ListAssets(ctx context.Context) ([]model.Asset, error) {
	rows, err := s.db.Query(ctx, `SELECT id, symbol, name, price::text, type FROM asset ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select assets: %w", err)
	}
	defer rows.Close()

	var out []model.Asset
	for rows.Next() {
		var (
			a     model.Asset
			price *string
		)
		if err := rows.Scan(&a.ID, &a.Symbol, &a.Name, &price, &a.Type); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		if a.Price, err = parseDecimal(price); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return out, nil
}

// CreateAsset inserts a and returns its id.
func (s *Store) CreateAsset(ctx context.Context, a model.Asset) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO asset (symbol, name, price, type)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, a.Symbol, a.Name, a.Price.String(), a.Type).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert asset: %w", err)
	}
	return id, nil
}

// ListPortfolios returns every portfolio ordered by id.
func (s *Store) ListPortfolios(ctx context.Context) ([]model.Portfolio, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, owner_id, created_at FROM portfolio ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select portfolios: %w", err)
	}
	defer rows.Close()

	var out []model.Portfolio
	for rows.Next() {
		var p model.Portfolio
		if err := rows.Scan(&p.ID, &p.Name, &p.OwnerID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan portfolio: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate portfolios: %w", err)
	}
	return out, nil
}

// DefaultOwnerID owns every portfolio created through the API.
const DefaultOwnerID = 1

// CreatePortfolio inserts a portfolio owned by DefaultOwnerID.
func (s *Store) CreatePortfolio(ctx context.Context, name string) (model.Portfolio, error) {
	p := model.Portfolio{Name: name, OwnerID: DefaultOwnerID}
	err := s.db.QueryRow(ctx, `
		INSERT INTO portfolio (name, owner_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, name, p.OwnerID).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("insert portfolio: %w", err)
	}
	return p, nil
}

// GetPortfolio returns the portfolio and its positions, fetched in one batch.
func (s *Store) GetPortfolio(ctx context.Context, id int64) (model.PortfolioDetail, error) {
	batch := &pgx.Batch{}
	batch.Queue(`SELECT id, name, owner_id, created_at FROM portfolio WHERE id = $1`, id)
	batch.Queue(`
		SELECT a.id, a.symbol, a.name, a.price::text, a.type,
		       pa.quantity::text, pa.purchase_price::text
		FROM portfolio_asset pa
		JOIN asset a ON a.id = pa.asset_id
		WHERE pa.portfolio_id = $1
		ORDER BY a.id
	`, id)

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	var detail model.PortfolioDetail
	err := results.QueryRow().Scan(&detail.ID, &detail.Name, &detail.OwnerID, &detail.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.PortfolioDetail{}, fmt.Errorf("portfolio %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.PortfolioDetail{}, fmt.Errorf("select portfolio %d: %w", id, err)
	}

	rows, err := results.Query()
	if err != nil {
		return model.PortfolioDetail{}, fmt.Errorf("select positions %d: %w", id, err)
	}
	defer rows.Close()

	detail.Assets = []model.Position{}
	for rows.Next() {
		var (
			p                        model.Position
			price, qty, purchaseCost *string
		)
		if err := rows.Scan(&p.ID, &p.Symbol, &p.Name, &price, &p.Type, &qty, &purchaseCost); err != nil {
			return model.PortfolioDetail{}, fmt.Errorf("scan position: %w", err)
		}
		if err := parseDecimals(
			col(price, &p.Price),
			col(qty, &p.Quantity),
			col(purchaseCost, &p.PurchasePrice),
		); err != nil {
			return model.PortfolioDetail{}, err
		}
		detail.Assets = append(detail.Assets, p)
	}
	if err := rows.Err(); err != nil {
		return model.PortfolioDetail{}, fmt.Errorf("iterate positions: %w", err)
	}
	return detail, nil
}

// DeletePortfolio removes a portfolio and, by cascade, its positions.
// Deleting a missing portfolio is not an error.
func (s *Store) DeletePortfolio(ctx context.Context, id int64) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM portfolio WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete portfolio %d: %w", id, err)
	}
	return nil
}

// AddPosition inserts a position. It returns ErrConflict if the asset is
// already in the portfolio and ErrNotFound if either side does not exist.
func (s *Store) AddPosition(ctx context.Context, pa model.PortfolioAsset) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO portfolio_asset (portfolio_id, asset_id, quantity, purchase_price)
		VALUES ($1, $2, $3, $4)
	`, pa.PortfolioID, pa.AssetID, pa.Quantity.String(), pa.PurchasePrice.String())
	if err != nil {
		err = translate(err)
		if errors.Is(err, ErrInUse) {
			return fmt.Errorf("portfolio %d or asset %d: %w", pa.PortfolioID, pa.AssetID, ErrNotFound)
		}
		return fmt.Errorf("insert position: %w", err)
	}
	return nil
}

// UpdatePosition replaces quantity and purchase price of an existing position.
func (s *Store) UpdatePosition(ctx context.Context, pa model.PortfolioAsset) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE portfolio_asset SET quantity = $1, purchase_price = $2
		WHERE portfolio_id = $3 AND asset_id = $4
	`, pa.Quantity.String(), pa.PurchasePrice.String(), pa.PortfolioID, pa.AssetID)
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("position %d/%d: %w", pa.PortfolioID, pa.AssetID, ErrNotFound)
	}
	return nil
}

// DeletePosition removes an asset from a portfolio. Missing rows are ignored.
func (s *Store) DeletePosition(ctx context.Context, portfolioID, assetID int64) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM portfolio_asset WHERE portfolio_id = $1 AND asset_id = $2`,
		portfolioID, assetID,
	)
	if err != nil {
		return fmt.Errorf("delete position: %w", err)
	}
	return nil
}
