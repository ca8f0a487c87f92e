package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/model"
	"github.com/rickgao/portfolio-tracker/internal/refresher"
	"github.com/rickgao/portfolio-tracker/internal/store"
)

// StockStore reads and edits stock_info and holdings.
type StockStore interface {
	ListStocks(ctx context.Context) ([]model.StockRecord, error)
	GetStock(ctx context.Context, code string) (model.StockRecord, error)
	CreateStock(ctx context.Context, rec model.StockRecord) error
	UpdateStockPrice(ctx context.Context, code string, price decimal.Decimal) (decimal.Decimal, error)
	DeleteStock(ctx context.Context, code string) error
	RandomStocks(ctx context.Context, n int) ([]model.StockRecord, error)
	HeldStocks(ctx context.Context) ([]model.HeldStock, error)
}

// PortfolioStore manages assets, portfolios and positions.
type PortfolioStore interface {
	ListAssets(ctx context.Context) ([]model.Asset, error)
	CreateAsset(ctx context.Context, a model.Asset) (int64, error)
	ListPortfolios(ctx context.Context) ([]model.Portfolio, error)
	CreatePortfolio(ctx context.Context, name string) (model.Portfolio, error)
	GetPortfolio(ctx context.Context, id int64) (model.PortfolioDetail, error)
	DeletePortfolio(ctx context.Context, id int64) error
	AddPosition(ctx context.Context, pa model.PortfolioAsset) error
	UpdatePosition(ctx context.Context, pa model.PortfolioAsset) error
	DeletePosition(ctx context.Context, portfolioID, assetID int64) error
}

// TradeStore records and aggregates cash movements.
type TradeStore interface {
	ListTrades(ctx context.Context) ([]model.TradeRecord, error)
	CreateTrade(ctx context.Context, t model.TradeRecord) (int64, error)
	TradeTotals(ctx context.Context) ([]model.TradeTotal, error)
	DailyTradeTotals(ctx context.Context, since model.Date) ([]model.DailyTradeTotal, error)
}

// Store is everything the API reads and writes.
type Store interface {
	StockStore
	PortfolioStore
	TradeStore
	DashboardSnapshot(ctx context.Context, since time.Time, indices []string) (model.DashboardSnapshot, error)
	Ping(ctx context.Context) error
}

// ReportSource exposes the most recent refresh cycle.
type ReportSource interface {
	LastReport() (refresher.CycleReport, bool)
}

// Config holds server configuration.
type Config struct {
	CORSOrigin    string   // Access-Control-Allow-Origin value
	MarketIndices []string // Codes shown as market indices on the dashboard
}

// Option configures a Server.
type Option func(*Server)

// WithStream mounts h at /ws/stocks.
func WithStream(h http.Handler) Option {
	return func(s *Server) { s.stream = h }
}

// WithNow sets the time source used for date-relative endpoints.
func WithNow(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// Server serves the REST API.
type Server struct {
	cfg     Config
	store   Store
	reports ReportSource
	stream  http.Handler
	now     func() time.Time
	logger  *slog.Logger
}

// New creates a Server. reports may be nil when no refresher runs.
func New(cfg Config, st Store, reports ReportSource, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		store:   st,
		reports: reports,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/assets", s.handleListAssets)
	mux.HandleFunc("POST /api/assets", s.handleCreateAsset)

	mux.HandleFunc("GET /api/portfolios", s.handleListPortfolios)
	mux.HandleFunc("POST /api/portfolios", s.handleCreatePortfolio)
	mux.HandleFunc("GET /api/portfolios/{id}", s.handleGetPortfolio)
	mux.HandleFunc("DELETE /api/portfolios/{id}", s.handleDeletePortfolio)
	mux.HandleFunc("GET /api/portfolios/{id}/performance", s.handlePerformance)

	mux.HandleFunc("POST /api/portfolio-assets", s.handleAddPosition)
	mux.HandleFunc("PUT /api/portfolio-assets/{portfolioId}/{assetId}", s.handleUpdatePosition)
	mux.HandleFunc("DELETE /api/portfolio-assets/{portfolioId}/{assetId}", s.handleDeletePosition)

	mux.HandleFunc("GET /api/stock-info", s.handleListStocks)
	mux.HandleFunc("POST /api/stock-info", s.handleCreateStock)
	mux.HandleFunc("GET /api/stock-info/{code}", s.handleGetStock)
	mux.HandleFunc("PUT /api/stock-info/{code}/price", s.handleUpdatePrice)
	mux.HandleFunc("DELETE /api/stock-info/{code}", s.handleDeleteStock)

	mux.HandleFunc("GET /api/user-stocks", s.handleUserStocks)
	mux.HandleFunc("GET /api/stocks/random-changes", s.handleRandomChanges)
	mux.HandleFunc("GET /api/stocks/holding-up", s.handleHoldingUp)
	mux.HandleFunc("GET /api/stocks/holding-down", s.handleHoldingDown)

	mux.HandleFunc("GET /api/trades", s.handleListTrades)
	mux.HandleFunc("POST /api/trades", s.handleCreateTrade)
	mux.HandleFunc("GET /api/trades/summary", s.handleTradeSummary)
	mux.HandleFunc("GET /api/trades/net-assets", s.handleNetAssetSeries)
	mux.HandleFunc("GET /api/trades/net-assets/current", s.handleCurrentNetAssets)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/refresh/last", s.handleLastRefresh)

	if s.stream != nil {
		mux.Handle("GET /ws/stocks", s.stream)
	}

	return s.cors(s.logRequests(mux))
}

// cors sets the allow headers on every response and answers preflights.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Hijack passes through to the underlying writer for WebSocket upgrades.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// writeJSON writes v with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

// writeError writes {"error": msg}.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// storeError maps a store error onto a response.
func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConflict):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInUse):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decode reads a JSON body into v, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) today() model.Date {
	return model.DateOf(s.now())
}
