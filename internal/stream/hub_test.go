package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/model"
)

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want %d", h.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_PublishReachesEveryClient(t *testing.T) {
	hub := NewHub(Config{}, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	a := dial(t, srv, nil)
	b := dial(t, srv, nil)
	waitForClients(t, hub, 2)

	rec := model.StockRecord{
		Code:         "AAPL",
		Name:         "Apple Inc.",
		CurrentPrice: decimal.RequireFromString("190.5"),
		History:      model.History{{Date: model.MustParseDate("2024-01-21"), Price: decimal.RequireFromString("190.5")}},
	}
	hub.Publish(rec)

	for name, conn := range map[string]*websocket.Conn{"a": a, "b": b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("client %s read: %v", name, err)
		}

		var msg struct {
			Type  string `json:"type"`
			Stock struct {
				Code    string `json:"stock_code"`
				History []struct {
					Date string `json:"date"`
				} `json:"history_price"`
			} `json:"stock"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("client %s decode %s: %v", name, data, err)
		}
		if msg.Type != MessageTypeStockUpdate || msg.Stock.Code != "AAPL" {
			t.Errorf("client %s message = %s", name, data)
		}
		if len(msg.Stock.History) != 1 || msg.Stock.History[0].Date != "2024-01-21" {
			t.Errorf("client %s history = %+v", name, msg.Stock.History)
		}
	}
}

func TestHub_PublishOrder(t *testing.T) {
	hub := NewHub(Config{}, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv, nil)
	waitForClients(t, hub, 1)

	codes := []string{"AAPL", "MSFT", "NVDA"}
	for _, code := range codes {
		hub.Publish(model.StockRecord{Code: code})
	}

	for _, want := range codes {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Stock.Code != want {
			t.Errorf("got %s, want %s", msg.Stock.Code, want)
		}
	}
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	hub := NewHub(Config{}, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv, nil)
	waitForClients(t, hub, 1)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	waitForClients(t, hub, 0)

	// Publishing with no clients is a no-op.
	hub.Publish(model.StockRecord{Code: "AAPL"})
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(Config{}, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv, nil)
	waitForClients(t, hub, 1)

	hub.Close()

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() after Close = %d", hub.ClientCount())
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected read error after hub close")
	}

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial after Close should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("dial after Close response = %v", resp)
	}
}

func TestHub_CheckOrigin(t *testing.T) {
	hub := NewHub(Config{AllowedOrigin: "http://localhost:5173"}, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	if err == nil {
		t.Fatal("dial from a foreign origin should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("foreign origin response = %v", resp)
	}

	dial(t, srv, http.Header{"Origin": {"http://localhost:5173"}})
	waitForClients(t, hub, 1)
}

func TestNewHub_Defaults(t *testing.T) {
	hub := NewHub(Config{}, nil)
	def := DefaultConfig()
	if hub.cfg.BufferSize != def.BufferSize || hub.cfg.PingInterval != def.PingInterval || hub.cfg.WriteTimeout != def.WriteTimeout {
		t.Errorf("cfg = %+v, want defaults %+v", hub.cfg, def)
	}
}
