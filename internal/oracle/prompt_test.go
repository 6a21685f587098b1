package oracle

import (
	"strings"
	"testing"
	"time"

	"indexscore/internal/enrich"
)

func barsFixture() []enrich.Bar {
	base := time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)
	closes := []float64{105, 104, 103, 102, 101, 100, 100, 100, 100, 100}
	bars := make([]enrich.Bar, len(closes))
	for i, c := range closes {
		bars[i] = enrich.Bar{
			TS:     base.AddDate(0, 0, -i),
			Open:   c - 1,
			High:   c + 1,
			Low:    c - 2,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return bars
}

func TestBuildPrompt_WithData(t *testing.T) {
	in := enrich.Input{
		Ticker: "tcs",
		Bars:   barsFixture(),
		Articles: []enrich.Article{{
			Title:     "TCS wins large deal",
			Summary:   "Multi-year contract signed",
			Source:    "wire",
			URL:       "https://news.example/tcs",
			TS:        time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC),
			Relevance: 2.1,
		}},
	}
	prompt := BuildPrompt(in)
	for _, want := range []string{
		"=== MARKET DATA FOR TCS ===",
		"Current Price: $105.00",
		"Trend: upward",
		"=== RECENT NEWS FOR TCS ===",
		"TCS wins large deal",
		"Total Articles Analyzed: 1",
		"Respond with ONLY the JSON object",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_NoData(t *testing.T) {
	prompt := BuildPrompt(enrich.Input{Ticker: "INFY"})
	if !strings.Contains(prompt, "No market data available for analysis.") {
		t.Fatalf("prompt missing no-market-data notice")
	}
	if !strings.Contains(prompt, "No recent news articles available") {
		t.Fatalf("prompt missing no-news notice")
	}
}

func TestComputePriceMetrics(t *testing.T) {
	m := computePriceMetrics(barsFixture())
	if m == nil {
		t.Fatalf("metrics nil")
	}
	if m.latest != 105 {
		t.Fatalf("latest=%v want 105", m.latest)
	}
	if m.change != 1 {
		t.Fatalf("change=%v want 1", m.change)
	}
	if m.trend != "upward" {
		t.Fatalf("trend=%q want upward", m.trend)
	}
	if len(m.history) != 10 {
		t.Fatalf("history=%d want 10", len(m.history))
	}
}

func TestComputePriceMetrics_Empty(t *testing.T) {
	if m := computePriceMetrics(nil); m != nil {
		t.Fatalf("expected nil metrics for no bars")
	}
}

func TestCloseTrend_Downward(t *testing.T) {
	bars := barsFixture()
	for i := range bars {
		bars[i].Close = 100 + float64(i)
	}
	if trend := closeTrend(bars); trend != "downward" {
		t.Fatalf("trend=%q want downward", trend)
	}
}
