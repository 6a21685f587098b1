package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"indexscore/internal/enrich"
)

var financialKeywords = []string{
	"earnings",
	"revenue",
	"profit",
	"dividend",
	"growth",
	"expansion",
	"acquisition",
	"partnership",
}

// RecentNews fetches news for ticker, ranked by relevance plus recency and
// truncated to limit. An upstream "no data" body yields an empty slice.
func (c *Client) RecentNews(ctx context.Context, ticker string, limit int) ([]enrich.Article, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if limit <= 0 {
		limit = 10
	}
	query := url.Values{}
	query.Set("function", "NEWS_SENTIMENT")
	query.Set("tickers", ticker)
	query.Set("limit", "50")
	body, err := c.doRequest(ctx, query)
	if err != nil {
		return nil, err
	}
	return parseNewsFeed(body, ticker, limit, time.Now().UTC())
}

func parseNewsFeed(body []byte, ticker string, limit int, now time.Time) ([]enrich.Article, error) {
	var payload struct {
		ErrorMessage string `json:"Error Message"`
		Feed         []struct {
			Title         string `json:"title"`
			URL           string `json:"url"`
			Summary       string `json:"summary"`
			Source        string `json:"source"`
			TimePublished string `json:"time_published"`
		} `json:"feed"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse news feed: %w", err)
	}
	if payload.ErrorMessage != "" || payload.Feed == nil {
		return []enrich.Article{}, nil
	}

	articles := make([]enrich.Article, 0, len(payload.Feed))
	for _, item := range payload.Feed {
		articles = append(articles, enrich.Article{
			Title:     item.Title,
			URL:       item.URL,
			Summary:   item.Summary,
			Source:    item.Source,
			TS:        parseNewsTimestamp(item.TimePublished),
			Relevance: relevanceScore(ticker, item.Title, item.Summary),
		})
	}

	// Rank by relevance plus a recency bonus that decays to zero over a week.
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Relevance+recencyBonus(articles[i].TS, now) >
			articles[j].Relevance+recencyBonus(articles[j].TS, now)
	})
	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

// parseNewsTimestamp handles Alpha Vantage's compact 20240131T093000 format.
func parseNewsTimestamp(s string) time.Time {
	ts, err := time.Parse("20060102T150405", s)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

func relevanceScore(ticker, title, summary string) float64 {
	score := 1.0
	titleLower := strings.ToLower(title)
	summaryLower := strings.ToLower(summary)
	tickerLower := strings.ToLower(ticker)

	if strings.Contains(titleLower, tickerLower) {
		score += 0.5
	}
	if strings.Contains(summaryLower, tickerLower) {
		score += 0.3
	}
	for _, keyword := range financialKeywords {
		if strings.Contains(titleLower, keyword) {
			score += 0.1
		}
	}
	if score > 5.0 {
		score = 5.0
	}
	return score
}

func recencyBonus(published, now time.Time) float64 {
	if published.IsZero() {
		return 0
	}
	hours := now.Sub(published).Hours()
	bonus := 1 - hours/168
	if bonus < 0 {
		return 0
	}
	return bonus
}
