package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// PricePoint is one daily price in a stock's rolling history.
type PricePoint struct {
	Date  Date            `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// MarshalJSON always renders the price as a JSON number so stored history
// stays readable by tools that expect {"date":"...","price":123.45}.
func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  Date        `json:"date"`
		Price json.Number `json:"price"`
	}{p.Date, json.Number(p.Price.String())})
}

// History is an ordered series of daily prices.
type History []PricePoint

// ErrMalformedHistory wraps every ParseHistory failure.
var ErrMalformedHistory = errors.New("malformed price history")

// ParseHistory strictly decodes stored history. Blank input and JSON null
// decode to an empty history. No repair is attempted: anything that is not
// a JSON array of {date, price} objects with a positive price returns
// ErrMalformedHistory.
func ParseHistory(raw string) (History, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	var h History
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHistory, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformedHistory)
	}
	for i, p := range h {
		if p.Date.IsZero() {
			return nil, fmt.Errorf("%w: entry %d has no date", ErrMalformedHistory, i)
		}
		if !p.Price.IsPositive() {
			return nil, fmt.Errorf("%w: entry %d has no positive price", ErrMalformedHistory, i)
		}
	}
	return h, nil
}

// Encode renders the history as a compact JSON array.
func (h History) Encode() (string, error) {
	if h == nil {
		h = History{}
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(h); err != nil {
		return "", fmt.Errorf("encode history: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Has reports whether the history contains an entry for d.
func (h History) Has(d Date) bool {
	for _, p := range h {
		if p.Date == d {
			return true
		}
	}
	return false
}

// First returns the oldest entry.
func (h History) First() (PricePoint, bool) {
	if len(h) == 0 {
		return PricePoint{}, false
	}
	return h[0], true
}

// Last returns the newest entry.
func (h History) Last() (PricePoint, bool) {
	if len(h) == 0 {
		return PricePoint{}, false
	}
	return h[len(h)-1], true
}

// Normalize sorts by date ascending and keeps the first entry seen for each date.
func (h History) Normalize() History {
	out := make(History, 0, len(h))
	seen := make(map[Date]bool, len(h))
	for _, p := range h {
		if seen[p.Date] {
			continue
		}
		seen[p.Date] = true
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
