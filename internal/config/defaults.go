package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultServerPort      = 3000
	DefaultCORSOrigin      = "*"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultQuoteBaseURL    = "https://query2.finance.yahoo.com"
	DefaultQuoteUserAgent  = "portfolio-tracker/1.0"
	DefaultQuoteTimeout    = 10 * time.Second
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultMaxConns        = 10
	DefaultMinConns        = 2
	DefaultRefreshInterval = time.Hour
	DefaultWindowDays      = 15
	DefaultStreamBuffer    = 64
	DefaultPingInterval    = 30 * time.Second
	DefaultStreamWriteWait = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// DefaultSymbols is the fixed list of tickers refreshed every cycle.
var DefaultSymbols = []string{
	"AAPL", "MSFT", "GOOG", "AMZN", "TSLA",
	"META", "NVDA", "NFLX", "INTC", "AMD",
	"BABA", "TCEHY", "UBER", "LYFT", "DIS",
	"NKE", "ADBE", "ORCL", "CRM", "PYPL",
	"PDD", "JD", "BIDU", "SHOP", "BA",
	"SONY", "ZM", "TWLO", "SPOT", "PLTR",
	"COIN", "SNOW", "ROKU", "WMT", "COST",
	"MCD", "V", "MA", "JPM", "BAC",
	"XOM", "CVX", "BP", "TSM", "ASML",
	"SBUX", "PEP", "KO", "T", "GS",
}

// DefaultMarketIndices are the index tickers shown on the dashboard.
var DefaultMarketIndices = []string{"^GSPC", "^DJI", "^IXIC", "^TNX"}

// Default returns a config with every optional field set to its default.
// Required fields (instance id, database credentials) are left empty.
func Default() *TrackerConfig {
	cfg := &TrackerConfig{}
	cfg.applyDefaults()
	return cfg
}

func (c *TrackerConfig) applyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.CORSOrigin == "" {
		c.Server.CORSOrigin = DefaultCORSOrigin
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Quote defaults. MaxRetries stays 0 unless set.
	if c.Quote.BaseURL == "" {
		c.Quote.BaseURL = DefaultQuoteBaseURL
	}
	if c.Quote.UserAgent == "" {
		c.Quote.UserAgent = DefaultQuoteUserAgent
	}
	if c.Quote.Timeout == 0 {
		c.Quote.Timeout = DefaultQuoteTimeout
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Refresher defaults
	if c.Refresher.Interval == 0 {
		c.Refresher.Interval = DefaultRefreshInterval
	}
	if c.Refresher.WindowDays == 0 {
		c.Refresher.WindowDays = DefaultWindowDays
	}
	if len(c.Refresher.Symbols) == 0 {
		c.Refresher.Symbols = append([]string(nil), DefaultSymbols...)
	}
	if len(c.Refresher.MarketIndices) == 0 {
		c.Refresher.MarketIndices = append([]string(nil), DefaultMarketIndices...)
	}

	// Stream defaults
	if c.Stream.BufferSize == 0 {
		c.Stream.BufferSize = DefaultStreamBuffer
	}
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}
	if c.Stream.WriteTimeout == 0 {
		c.Stream.WriteTimeout = DefaultStreamWriteWait
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
