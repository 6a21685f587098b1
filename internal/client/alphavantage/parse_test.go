package alphavantage

import (
	"testing"
	"time"
)

func TestParseDailySeries(t *testing.T) {
	body := []byte(`{
		"Time Series (Daily)": {
			"2025-06-02": {"1. open": "100.5", "2. high": "102.0", "3. low": "99.1", "4. close": "101.2", "5. volume": "1200000"},
			"2025-06-03": {"1. open": "101.2", "2. high": "103.4", "3. low": "100.9", "4. close": "103.0", "5. volume": "900000"}
		}
	}`)
	bars, err := parseDailySeries(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("bars=%d want 2", len(bars))
	}
	// Most recent first.
	if !bars[0].TS.After(bars[1].TS) {
		t.Fatalf("bars not sorted most recent first: %v, %v", bars[0].TS, bars[1].TS)
	}
	if bars[0].Close != 103.0 {
		t.Fatalf("latest close=%v want 103.0", bars[0].Close)
	}
}

func TestParseDailySeries_UpstreamError(t *testing.T) {
	bars, err := parseDailySeries([]byte(`{"Error Message": "Invalid API call"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(bars) != 0 {
		t.Fatalf("bars=%d want 0", len(bars))
	}
}

func TestParseDailySeries_Malformed(t *testing.T) {
	if _, err := parseDailySeries([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}

func TestParseNewsFeed_RanksAndTruncates(t *testing.T) {
	now := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	body := []byte(`{
		"feed": [
			{"title": "Sector roundup", "url": "https://n/1", "summary": "broad market", "source": "wire", "time_published": "20250520T090000"},
			{"title": "TCS earnings beat estimates", "url": "https://n/2", "summary": "TCS posts record revenue", "source": "wire", "time_published": "20250603T090000"},
			{"title": "Misc", "url": "https://n/3", "summary": "unrelated", "source": "blog", "time_published": "20250601T090000"}
		]
	}`)
	articles, err := parseNewsFeed(body, "TCS", 2, now)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("articles=%d want 2", len(articles))
	}
	if articles[0].Title != "TCS earnings beat estimates" {
		t.Fatalf("top article=%q", articles[0].Title)
	}
}

func TestParseNewsFeed_EmptyFeed(t *testing.T) {
	articles, err := parseNewsFeed([]byte(`{}`), "TCS", 10, time.Now().UTC())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(articles) != 0 {
		t.Fatalf("articles=%d want 0", len(articles))
	}
}

func TestParseNewsTimestamp(t *testing.T) {
	ts := parseNewsTimestamp("20250131T093000")
	want := time.Date(2025, 1, 31, 9, 30, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("ts=%v want %v", ts, want)
	}
	if !parseNewsTimestamp("garbage").IsZero() {
		t.Fatalf("expected zero time for malformed timestamp")
	}
}

func TestRelevanceScore(t *testing.T) {
	base := relevanceScore("TCS", "Sector roundup", "nothing specific")
	withTicker := relevanceScore("TCS", "TCS earnings beat", "TCS posts record revenue")
	if withTicker <= base {
		t.Fatalf("ticker mention should raise relevance: %v <= %v", withTicker, base)
	}
	if withTicker > 5.0 {
		t.Fatalf("relevance capped at 5.0, got %v", withTicker)
	}
}
