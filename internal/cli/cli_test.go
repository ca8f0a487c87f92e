package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

const (
	quoteBody = `{"chart":{"result":[{"meta":{
		"symbol":"AAPL","currency":"USD","shortName":"Apple Inc.","longName":"Apple Inc. (Common)",
		"regularMarketPrice":189.25,"regularMarketTime":1705674600}}],"error":null}}`
	historyBody = `{"chart":{"result":[{"meta":{"symbol":"AAPL","gmtoffset":0},
		"timestamp":[1705674600,1705761000],
		"indicators":{"quote":[{"close":[185.5,187]}]}}]}}`
)

// quoteServer serves current quotes, or daily bars when period1 is present.
func quoteServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/") {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("period1") != "" {
			w.Write([]byte(historyBody))
			return
		}
		w.Write([]byte(quoteBody))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	yaml := "instance:\n  id: test\n" +
		"quote:\n  base_url: " + baseURL + "\n" +
		"log:\n  level: error\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// run executes trackerctl with args and returns the exit status and output.
func run(t *testing.T, configPath string, args ...string) (subcommands.ExitStatus, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	fs := flag.NewFlagSet("trackerctl", flag.ContinueOnError)
	fs.SetOutput(&stderr)
	c := subcommands.NewCommander(fs, "trackerctl")
	c.Output = &stdout
	c.Error = &stderr
	Register(c, &Options{ConfigPath: configPath, Stdout: &stdout, Stderr: &stderr})

	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse args: %v", err)
	}
	status := c.Execute(context.Background())
	return status, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	status, out, _ := run(t, "", "version")
	if status != subcommands.ExitSuccess {
		t.Fatalf("status = %v, want success", status)
	}
	if !strings.HasPrefix(out, "trackerctl dev (unknown)") {
		t.Errorf("output = %q", out)
	}
}

func TestMigratePrint(t *testing.T) {
	status, out, _ := run(t, "/does/not/exist.yaml", "migrate", "-print")
	if status != subcommands.ExitSuccess {
		t.Fatalf("status = %v, want success", status)
	}
	for _, table := range []string{"stock_info", "stock_holding", "trade", "portfolio_asset"} {
		if !strings.Contains(out, table) {
			t.Errorf("schema missing %s", table)
		}
	}
}

func TestQuote(t *testing.T) {
	srv := quoteServer(t)
	cfgPath := writeConfig(t, srv.URL)

	status, out, errOut := run(t, cfgPath, "quote", "aapl")
	if status != subcommands.ExitSuccess {
		t.Fatalf("status = %v, stderr = %s", status, errOut)
	}

	var got []struct {
		Symbol      string  `json:"symbol"`
		Name        string  `json:"name"`
		CompanyName string  `json:"company_name"`
		Price       float64 `json:"price"`
		Currency    string  `json:"currency"`
		MarketTime  string  `json:"market_time"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(got) != 1 {
		t.Fatalf("got %d quotes, want 1", len(got))
	}
	q := got[0]
	if q.Symbol != "AAPL" || q.Name != "Apple Inc." || q.CompanyName != "Apple Inc. (Common)" {
		t.Errorf("names = %+v", q)
	}
	if q.Price != 189.25 || q.Currency != "USD" {
		t.Errorf("price = %v %s, want 189.25 USD", q.Price, q.Currency)
	}
	if q.MarketTime != "2024-01-19T14:30:00Z" {
		t.Errorf("market_time = %q", q.MarketTime)
	}
}

func TestQuote_Errors(t *testing.T) {
	srv := quoteServer(t)

	tests := []struct {
		name   string
		config string
		args   []string
		want   subcommands.ExitStatus
	}{
		{"no symbols", writeConfig(t, srv.URL), []string{"quote"}, subcommands.ExitUsageError},
		{"missing config", "/does/not/exist.yaml", []string{"quote", "AAPL"}, subcommands.ExitFailure},
		{"provider error", writeConfig(t, srv.URL+"/broken"), []string{"quote", "AAPL"}, subcommands.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _, errOut := run(t, tt.config, tt.args...)
			if status != tt.want {
				t.Errorf("status = %v, want %v", status, tt.want)
			}
			if !strings.Contains(errOut, "Error:") {
				t.Errorf("stderr = %q, want an error message", errOut)
			}
		})
	}
}

func TestHistory(t *testing.T) {
	srv := quoteServer(t)
	cfgPath := writeConfig(t, srv.URL)

	status, out, errOut := run(t, cfgPath, "history", "-days", "3", "-today", "2024-01-21", "AAPL")
	if status != subcommands.ExitSuccess {
		t.Fatalf("status = %v, stderr = %s", status, errOut)
	}

	var got []struct {
		Date  string  `json:"date"`
		Price float64 `json:"price"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}

	want := []struct {
		date  string
		price float64
	}{
		{"2024-01-19", 185.5},
		{"2024-01-20", 187},
		{"2024-01-21", 189.25},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d points, want %d: %s", len(got), len(want), out)
	}
	for i, w := range want {
		if got[i].Date != w.date || got[i].Price != w.price {
			t.Errorf("point %d = %+v, want %s %v", i, got[i], w.date, w.price)
		}
	}
}

func TestHistory_BadToday(t *testing.T) {
	status, _, _ := run(t, "", "history", "-today", "21/01/2024", "AAPL")
	if status != subcommands.ExitUsageError {
		t.Errorf("status = %v, want usage error", status)
	}
}

func TestSplitSymbols(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"AAPL", []string{"AAPL"}},
		{"AAPL, MSFT ,,^GSPC", []string{"AAPL", "MSFT", "^GSPC"}},
		{" , ", nil},
	}
	for _, tt := range tests {
		got := splitSymbols(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("splitSymbols(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
