package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"indexscore/internal/enrich"
)

// DailyBars fetches the daily OHLCV series for ticker, most recent first.
// An upstream "no data" or error-message body yields an empty slice, not an
// error; only transport failures and malformed bodies are errors.
func (c *Client) DailyBars(ctx context.Context, ticker string) ([]enrich.Bar, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	query := url.Values{}
	query.Set("function", "TIME_SERIES_DAILY")
	query.Set("symbol", ticker)
	body, err := c.doRequest(ctx, query)
	if err != nil {
		return nil, err
	}
	return parseDailySeries(body)
}

func parseDailySeries(body []byte) ([]enrich.Bar, error) {
	var payload struct {
		ErrorMessage string                       `json:"Error Message"`
		Note         string                       `json:"Note"`
		Series       map[string]map[string]string `json:"Time Series (Daily)"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse daily series: %w", err)
	}
	if payload.ErrorMessage != "" || payload.Series == nil {
		return []enrich.Bar{}, nil
	}

	bars := make([]enrich.Bar, 0, len(payload.Series))
	for dateStr, values := range payload.Series {
		ts, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		bars = append(bars, enrich.Bar{
			TS:     ts.UTC(),
			Open:   parseFloat(values["1. open"]),
			High:   parseFloat(values["2. high"]),
			Low:    parseFloat(values["3. low"]),
			Close:  parseFloat(values["4. close"]),
			Volume: parseFloat(values["5. volume"]),
		})
	}
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].TS.After(bars[j].TS)
	})
	return bars, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
