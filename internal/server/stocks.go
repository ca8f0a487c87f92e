package server

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/analytics"
	"github.com/rickgao/portfolio-tracker/internal/model"
)

// randomStockCount is the number of stocks returned by /api/stocks/random-changes.
const randomStockCount = 4

func (s *Server) handleListStocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := s.store.ListStocks(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(stocks))
}

func (s *Server) handleGetStock(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetStock(r.Context(), r.PathValue("code"))
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

type createStockRequest struct {
	Code         string           `json:"stock_code"`
	Name         string           `json:"stock_name"`
	CompanyName  string           `json:"company_name"`
	CurrentPrice *decimal.Decimal `json:"current_price"`
}

func (s *Server) handleCreateStock(w http.ResponseWriter, r *http.Request) {
	var req createStockRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" || req.Name == "" || req.CurrentPrice == nil || !req.CurrentPrice.IsPositive() {
		s.writeError(w, http.StatusBadRequest, "stock_code, stock_name and a positive current_price are required")
		return
	}

	err := s.store.CreateStock(r.Context(), model.StockRecord{
		Code:         req.Code,
		Name:         req.Name,
		CompanyName:  req.CompanyName,
		CurrentPrice: *req.CurrentPrice,
	})
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewPrice *decimal.Decimal `json:"new_price"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.NewPrice == nil || !req.NewPrice.IsPositive() {
		s.writeError(w, http.StatusBadRequest, "new_price must be a positive number")
		return
	}

	prev, err := s.store.UpdateStockPrice(r.Context(), r.PathValue("code"), *req.NewPrice)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"previousPrice": prev,
		"newPrice":      *req.NewPrice,
	})
}

func (s *Server) handleDeleteStock(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteStock(r.Context(), r.PathValue("code")); err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleUserStocks(w http.ResponseWriter, r *http.Request) {
	held, err := s.store.HeldStocks(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, analytics.Holdings(held))
}

func (s *Server) handleRandomChanges(w http.ResponseWriter, r *http.Request) {
	stocks, err := s.store.RandomStocks(r.Context(), randomStockCount)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, analytics.Changes(stocks))
}

func (s *Server) handleHoldingUp(w http.ResponseWriter, r *http.Request) {
	s.handleMovers(w, r, analytics.Up)
}

func (s *Server) handleHoldingDown(w http.ResponseWriter, r *http.Request) {
	s.handleMovers(w, r, analytics.Down)
}

func (s *Server) handleMovers(w http.ResponseWriter, r *http.Request, dir analytics.Direction) {
	held, err := s.store.HeldStocks(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, analytics.Movers(held, dir))
}
