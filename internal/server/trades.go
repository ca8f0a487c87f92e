package server

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/analytics"
	"github.com/rickgao/portfolio-tracker/internal/model"
)

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := s.store.ListTrades(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(trades))
}

type createTradeRequest struct {
	Type   string           `json:"type"`
	Detail string           `json:"detail"`
	Amount *decimal.Decimal `json:"amount"`
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var req createTradeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Type != model.TradeIncome && req.Type != model.TradeExpense {
		s.writeError(w, http.StatusBadRequest, `type must be "income" or "expense"`)
		return
	}
	if req.Amount == nil {
		s.writeError(w, http.StatusBadRequest, "amount is required")
		return
	}

	_, err := s.store.CreateTrade(r.Context(), model.TradeRecord{
		Type:   req.Type,
		Detail: req.Detail,
		Amount: *req.Amount,
	})
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleTradeSummary(w http.ResponseWriter, r *http.Request) {
	totals, err := s.store.TradeTotals(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, analytics.SummarizeTrades(totals))
}

func (s *Server) handleNetAssetSeries(w http.ResponseWriter, r *http.Request) {
	today := s.today()
	daily, err := s.store.DailyTradeTotals(r.Context(), analytics.SeriesStart(today, analytics.NetAssetDays))
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, analytics.NetAssetSeries(daily, today, analytics.NetAssetDays))
}

func (s *Server) handleCurrentNetAssets(w http.ResponseWriter, r *http.Request) {
	totals, err := s.store.TradeTotals(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, analytics.CurrentNetAssets(totals))
}
