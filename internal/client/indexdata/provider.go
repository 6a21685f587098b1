// Package indexdata resolves an index id to its constituent list.
package indexdata

import "context"

// Constituent is one index member with its benchmark weight and sector.
type Constituent struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
	Sector string  `json:"sector"`
}

type MembershipProvider interface {
	// Constituents returns the members of indexID. An unknown index id
	// yields an empty list, not an error.
	Constituents(ctx context.Context, indexID string) ([]Constituent, error)
}

// StaticProvider serves a fixed universe of benchmark indexes. It stands in
// for a licensed index membership feed.
type StaticProvider struct{}

var staticIndexes = map[string][]Constituent{
	"NIFTY50": {
		{Ticker: "RELIANCE", Weight: 10.5, Sector: "Energy"},
		{Ticker: "TCS", Weight: 7.2, Sector: "Technology"},
		{Ticker: "HDFCBANK", Weight: 6.8, Sector: "Finance"},
		{Ticker: "INFY", Weight: 5.9, Sector: "Technology"},
		{Ticker: "HINDUNILVR", Weight: 4.3, Sector: "Consumer Goods"},
		{Ticker: "ICICIBANK", Weight: 4.1, Sector: "Finance"},
		{Ticker: "BHARTIARTL", Weight: 3.8, Sector: "Telecommunications"},
		{Ticker: "SBIN", Weight: 3.5, Sector: "Finance"},
		{Ticker: "BAJFINANCE", Weight: 3.2, Sector: "Finance"},
		{Ticker: "ITC", Weight: 2.9, Sector: "Consumer Goods"},
	},
	"BANKNIFTY": {
		{Ticker: "HDFCBANK", Weight: 25.5, Sector: "Finance"},
		{Ticker: "ICICIBANK", Weight: 20.2, Sector: "Finance"},
		{Ticker: "SBIN", Weight: 15.8, Sector: "Finance"},
		{Ticker: "KOTAKBANK", Weight: 12.3, Sector: "Finance"},
		{Ticker: "AXISBANK", Weight: 10.1, Sector: "Finance"},
		{Ticker: "INDUSINDBK", Weight: 6.2, Sector: "Finance"},
		{Ticker: "PNB", Weight: 4.5, Sector: "Finance"},
		{Ticker: "BANKBARODA", Weight: 3.2, Sector: "Finance"},
		{Ticker: "FEDERALBNK", Weight: 2.2, Sector: "Finance"},
	},
	"US_TOP5": {
		{Ticker: "AAPL", Weight: 25.0, Sector: "Technology"},
		{Ticker: "MSFT", Weight: 22.0, Sector: "Technology"},
		{Ticker: "AMZN", Weight: 18.0, Sector: "Consumer Discretionary"},
		{Ticker: "GOOGL", Weight: 20.0, Sector: "Communication Services"},
		{Ticker: "TSLA", Weight: 15.0, Sector: "Automotive"},
	},
}

func (StaticProvider) Constituents(ctx context.Context, indexID string) ([]Constituent, error) {
	members, ok := staticIndexes[indexID]
	if !ok {
		return []Constituent{}, nil
	}
	out := make([]Constituent, len(members))
	copy(out, members)
	return out, nil
}
