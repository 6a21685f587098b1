package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"indexscore/internal/enrich"
	"indexscore/internal/models"
	"indexscore/internal/oracle"
)

type stubStore struct {
	scores    []models.Score
	prior     *models.Score
	bars      []models.PriceBar
	articles  []models.NewsArticle
	cacheHits int
}

func (s *stubStore) EnsureSecurity(ctx context.Context, ticker string) error { return nil }

func (s *stubStore) UpsertPriceBars(ctx context.Context, items []models.PriceBar) error {
	s.bars = append(s.bars, items...)
	return nil
}

func (s *stubStore) UpsertNewsArticles(ctx context.Context, items []models.NewsArticle) error {
	s.articles = append(s.articles, items...)
	return nil
}

func (s *stubStore) UpsertInputCacheEntry(ctx context.Context, item *models.InputCacheEntry) error {
	s.cacheHits++
	return nil
}

func (s *stubStore) InsertScore(ctx context.Context, item *models.Score) error {
	s.scores = append(s.scores, *item)
	return nil
}

func (s *stubStore) LatestScoreByFingerprint(ctx context.Context, ticker, inputHash string) (*models.Score, error) {
	if s.prior != nil && s.prior.InputHash == inputHash {
		return s.prior, nil
	}
	return nil, nil
}

type stubMarket struct{ bars []enrich.Bar }

func (m stubMarket) DailyBars(ctx context.Context, ticker string) ([]enrich.Bar, error) {
	return m.bars, nil
}

type stubNews struct{ articles []enrich.Article }

func (n stubNews) RecentNews(ctx context.Context, ticker string, limit int) ([]enrich.Article, error) {
	return n.articles, nil
}

type stubOracle struct {
	calls  int
	result *oracle.Result
	err    error
}

func (o *stubOracle) Score(ctx context.Context, prompt string) (*oracle.Result, error) {
	o.calls++
	return o.result, o.err
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 6, 12, 0, 0, 0, time.UTC)
}

func testInput() (stubMarket, stubNews) {
	market := stubMarket{bars: []enrich.Bar{{
		TS: fixedNow().AddDate(0, 0, -1), Open: 99, High: 101, Low: 98, Close: 100, Volume: 1_000_000,
	}}}
	news := stubNews{articles: []enrich.Article{{
		Title: "Quarterly results", Summary: "Beat estimates", Source: "wire",
		URL: "https://news.example/a", TS: fixedNow().Add(-2 * time.Hour), Relevance: 1.5,
	}}}
	return market, news
}

func testResult() *oracle.Result {
	return &oracle.Result{
		Score:      0.7,
		Confidence: 0.85,
		Direction:  models.DirectionUp,
		Rationale: oracle.Rationale{
			Summary:   "Strong quarter.",
			Factors:   []string{"earnings beat"},
			Sentiment: "positive",
		},
		Risks:       oracle.Risks{Market: "Macro.", Specific: "Concentration."},
		HorizonDays: 30,
	}
}

func newService(store *stubStore, o *stubOracle) *Service {
	market, news := testInput()
	return &Service{
		Store:    store,
		Enricher: &enrich.Enricher{Market: market, News: news},
		Oracle:   o,
		Model:    "gemini-2.0-flash-exp",
		Now:      fixedNow,
	}
}

func TestShouldReuse(t *testing.T) {
	now := fixedNow()
	fresh := &models.Score{TS: now.Add(-5 * time.Hour)}
	boundary := &models.Score{TS: now.Add(-FreshnessWindow)}
	stale := &models.Score{TS: now.Add(-8 * time.Hour)}
	future := &models.Score{TS: now.Add(time.Hour)}

	if !ShouldReuse(fresh, now) {
		t.Fatalf("5h-old score should be reused")
	}
	if !ShouldReuse(boundary, now) {
		t.Fatalf("score exactly %v old should still be reused", FreshnessWindow)
	}
	if ShouldReuse(stale, now) {
		t.Fatalf("8h-old score must not be reused")
	}
	if ShouldReuse(nil, now) {
		t.Fatalf("nil prior must not be reused")
	}
	if ShouldReuse(future, now) {
		t.Fatalf("future-dated prior must not be reused")
	}
}

func TestScoreTicker_FreshScore(t *testing.T) {
	store := &stubStore{}
	o := &stubOracle{result: testResult()}
	svc := newService(store, o)

	score, reused, err := svc.ScoreTicker(context.Background(), "run-1", "TCS")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if reused {
		t.Fatalf("fresh score reported as reused")
	}
	if o.calls != 1 {
		t.Fatalf("oracle calls=%d want 1", o.calls)
	}
	if len(store.scores) != 1 {
		t.Fatalf("persisted=%d want 1", len(store.scores))
	}
	if !score.Score.Equal(decimal.NewFromFloat(0.7)) {
		t.Fatalf("score=%s want 0.7", score.Score)
	}
	if score.InputHash == "" {
		t.Fatalf("input hash not recorded")
	}
	if len(store.bars) != 1 || len(store.articles) != 1 || store.cacheHits != 1 {
		t.Fatalf("snapshot not persisted: bars=%d articles=%d cache=%d",
			len(store.bars), len(store.articles), store.cacheHits)
	}
}

func TestScoreTicker_ReusesFreshFingerprint(t *testing.T) {
	store := &stubStore{}
	o := &stubOracle{result: testResult()}
	svc := newService(store, o)

	first, _, err := svc.ScoreTicker(context.Background(), "run-1", "TCS")
	if err != nil {
		t.Fatalf("first score: %v", err)
	}
	prior := *first
	prior.TS = fixedNow().Add(-time.Hour)
	store.prior = &prior

	second, reused, err := svc.ScoreTicker(context.Background(), "run-2", "TCS")
	if err != nil {
		t.Fatalf("second score: %v", err)
	}
	if !reused {
		t.Fatalf("identical fresh input should reuse")
	}
	if o.calls != 1 {
		t.Fatalf("oracle calls=%d want 1 (reuse must not call the oracle)", o.calls)
	}
	if len(store.scores) != 2 {
		t.Fatalf("reuse must still insert a row, persisted=%d", len(store.scores))
	}
	if second.RunID != "run-2" {
		t.Fatalf("reused row carries run %q want run-2", second.RunID)
	}
	if !second.Score.Equal(prior.Score) {
		t.Fatalf("reused score=%s want %s", second.Score, prior.Score)
	}
}

func TestScoreTicker_StaleFingerprintScoresAgain(t *testing.T) {
	store := &stubStore{}
	o := &stubOracle{result: testResult()}
	svc := newService(store, o)

	first, _, err := svc.ScoreTicker(context.Background(), "run-1", "TCS")
	if err != nil {
		t.Fatalf("first score: %v", err)
	}
	prior := *first
	prior.TS = fixedNow().Add(-8 * time.Hour)
	store.prior = &prior

	_, reused, err := svc.ScoreTicker(context.Background(), "run-2", "TCS")
	if err != nil {
		t.Fatalf("second score: %v", err)
	}
	if reused {
		t.Fatalf("stale fingerprint must not reuse")
	}
	if o.calls != 2 {
		t.Fatalf("oracle calls=%d want 2", o.calls)
	}
}

func TestScoreTicker_OracleFailurePropagates(t *testing.T) {
	store := &stubStore{}
	o := &stubOracle{err: errors.New("scoring failed after 3 attempts")}
	svc := newService(store, o)

	_, _, err := svc.ScoreTicker(context.Background(), "run-1", "TCS")
	if err == nil {
		t.Fatalf("expected oracle failure to propagate")
	}
	if len(store.scores) != 0 {
		t.Fatalf("no score row may be written on failure")
	}
}
