package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/analytics"
	"github.com/rickgao/portfolio-tracker/internal/model"
)

// pathID parses the named path value as a positive id, answering 400 otherwise.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		s.writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.store.ListAssets(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(assets))
}

type createAssetRequest struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Type   string          `json:"type"`
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.Symbol = strings.TrimSpace(req.Symbol)
	if req.Symbol == "" {
		s.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	id, err := s.store.CreateAsset(r.Context(), model.Asset{
		Symbol: req.Symbol,
		Name:   req.Name,
		Price:  req.Price,
		Type:   req.Type,
	})
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"id":     id,
		"symbol": req.Symbol,
		"name":   req.Name,
	})
}

func (s *Server) handleListPortfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := s.store.ListPortfolios(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(portfolios))
}

func (s *Server) handleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	p, err := s.store.CreatePortfolio(r.Context(), req.Name)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"id": p.ID, "name": p.Name})
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := s.store.GetPortfolio(r.Context(), id)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := s.store.GetPortfolio(r.Context(), id)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, analytics.PortfolioPerformance(detail.Assets))
}

func (s *Server) handleDeletePortfolio(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeletePortfolio(r.Context(), id); err != nil {
		s.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type positionRequest struct {
	PortfolioID   int64           `json:"portfolio_id"`
	AssetID       int64           `json:"asset_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

func (s *Server) handleAddPosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.PortfolioID < 1 || req.AssetID < 1 {
		s.writeError(w, http.StatusBadRequest, "portfolio_id and asset_id are required")
		return
	}

	pa := model.PortfolioAsset(req)
	if err := s.store.AddPosition(r.Context(), pa); err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, pa)
}

func (s *Server) handleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	portfolioID, ok := s.pathID(w, r, "portfolioId")
	if !ok {
		return
	}
	assetID, ok := s.pathID(w, r, "assetId")
	if !ok {
		return
	}
	var req positionRequest
	if !s.decode(w, r, &req) {
		return
	}

	err := s.store.UpdatePosition(r.Context(), model.PortfolioAsset{
		PortfolioID:   portfolioID,
		AssetID:       assetID,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
	})
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{
		"portfolio_id": portfolioID,
		"asset_id":     assetID,
	})
}

func (s *Server) handleDeletePosition(w http.ResponseWriter, r *http.Request) {
	portfolioID, ok := s.pathID(w, r, "portfolioId")
	if !ok {
		return
	}
	assetID, ok := s.pathID(w, r, "assetId")
	if !ok {
		return
	}
	if err := s.store.DeletePosition(r.Context(), portfolioID, assetID); err != nil {
		s.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// nonNil renders empty lists as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
