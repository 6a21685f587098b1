package enrich

import (
	"math/rand"
	"testing"
	"time"
)

func randomInput(r *rand.Rand) Input {
	bars := make([]Bar, 1+r.Intn(5))
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = Bar{
			TS:     base.AddDate(0, 0, -i),
			Open:   100 + r.Float64()*10,
			High:   110 + r.Float64()*10,
			Low:    90 + r.Float64()*10,
			Close:  100 + r.Float64()*10,
			Volume: float64(r.Intn(1_000_000)),
		}
	}
	articles := make([]Article, r.Intn(4))
	for i := range articles {
		articles[i] = Article{
			Title:     "headline " + string(rune('a'+r.Intn(26))),
			Summary:   "summary " + string(rune('a'+r.Intn(26))),
			Source:    "wire",
			URL:       "https://news.example/a",
			TS:        base,
			Relevance: r.Float64() * 5,
		}
	}
	return Input{Ticker: "TCS", Bars: bars, Articles: articles}
}

func TestFingerprint_Deterministic(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		in := randomInput(r)
		a, err := Fingerprint(in)
		if err != nil {
			t.Fatalf("fingerprint: %v", err)
		}
		b, err := Fingerprint(in)
		if err != nil {
			t.Fatalf("fingerprint: %v", err)
		}
		if a != b {
			t.Fatalf("iteration %d: same input hashed differently: %s vs %s", i, a, b)
		}
	}
}

func TestFingerprint_IgnoresNonCanonicalFields(t *testing.T) {
	in := randomInput(rand.New(rand.NewSource(7)))
	if len(in.Articles) == 0 {
		in.Articles = []Article{{Title: "t", Summary: "s", Source: "wire"}}
	}
	a, _ := Fingerprint(in)

	// URL, timestamp and relevance are not part of the canonical content.
	in.Articles[0].URL = "https://news.example/moved"
	in.Articles[0].Relevance = 99
	in.Articles[0].TS = in.Articles[0].TS.Add(time.Hour)
	b, _ := Fingerprint(in)
	if a != b {
		t.Fatalf("non-canonical article change altered hash")
	}
}

func TestFingerprint_SensitiveToContent(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	for i := 0; i < 50; i++ {
		in := randomInput(r)
		orig, _ := Fingerprint(in)

		mutated := in
		mutated.Bars = append([]Bar(nil), in.Bars...)
		mutated.Bars[0].Close += 0.01
		changed, _ := Fingerprint(mutated)
		if changed == orig {
			t.Fatalf("iteration %d: price change did not alter hash", i)
		}

		if len(in.Articles) > 0 {
			mutated = in
			mutated.Articles = append([]Article(nil), in.Articles...)
			mutated.Articles[0].Title += "!"
			changed, _ = Fingerprint(mutated)
			if changed == orig {
				t.Fatalf("iteration %d: news change did not alter hash", i)
			}
		}
	}
}

func TestFingerprint_EmptyTickerRejected(t *testing.T) {
	if _, err := Fingerprint(Input{}); err == nil {
		t.Fatalf("expected error for empty ticker")
	}
}

func TestFingerprint_EmptyInputStable(t *testing.T) {
	a, err := Fingerprint(Input{Ticker: "INFY"})
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	b, _ := Fingerprint(Input{Ticker: "INFY", Bars: []Bar{}, Articles: []Article{}})
	if a != b {
		t.Fatalf("nil and empty slices hashed differently")
	}
}
