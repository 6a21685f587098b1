// Package enrich assembles the per-security input an oracle scoring call
// sees: recent price bars plus recent news, fetched fresh per attempt.
package enrich

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Bar is one daily OHLCV bar, most recent first in an Input.
type Bar struct {
	TS     time.Time `json:"ts"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Article is one news item, ordered by relevance + recency.
type Article struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Summary   string    `json:"summary"`
	Source    string    `json:"source"`
	TS        time.Time `json:"ts"`
	Relevance float64   `json:"relevance"`
}

// Input is the ephemeral enriched view of one security. It is rebuilt on
// every scoring attempt and never persisted directly.
type Input struct {
	Ticker   string
	Bars     []Bar
	Articles []Article
}

type MarketDataProvider interface {
	DailyBars(ctx context.Context, ticker string) ([]Bar, error)
}

type NewsProvider interface {
	RecentNews(ctx context.Context, ticker string, limit int) ([]Article, error)
}

// Enricher fetches market data and news for a ticker in parallel.
// Providers return empty slices when no data exists; only network failures
// surface as errors.
type Enricher struct {
	Market    MarketDataProvider
	News      NewsProvider
	NewsLimit int
}

func (e *Enricher) Enrich(ctx context.Context, ticker string) (Input, error) {
	limit := e.NewsLimit
	if limit <= 0 {
		limit = 10
	}

	var bars []Bar
	var articles []Article

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bars, err = e.Market.DailyBars(gctx, ticker)
		return err
	})
	g.Go(func() error {
		var err error
		articles, err = e.News.RecentNews(gctx, ticker, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return Input{}, err
	}

	return Input{Ticker: ticker, Bars: bars, Articles: articles}, nil
}
