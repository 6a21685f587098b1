package oracle

import (
	"fmt"
	"strings"

	"indexscore/internal/enrich"
)

const promptTemplate = `You are a conservative and rigorous financial analyst. Analyze the provided market data and news to generate a performance score for the security.

CRITICAL SCORING RULES - FOLLOW STRICTLY:

1. HIGH SCORES (0.70-1.0) - ONLY if:
   - Multiple strong positive indicators present
   - Clear evidence of growth, earnings beats, or positive catalysts
   - Strong technical patterns with confirmation
   - Multiple positive news articles with high relevance
   - NO significant negative factors or warnings
   - Volume trends support the positive outlook

2. MODERATE SCORES (0.50-0.69) - Use when:
   - Mixed signals present
   - Some positive indicators but also concerns
   - Neutral or slightly positive sentiment
   - Limited news/data available
   - Technical patterns are unclear or conflicting

3. LOW SCORES (0.30-0.49) - Use when:
   - Negative indicators outweigh positives
   - News contains warnings, downgrades, or concerns
   - Technical patterns show weakness
   - Volume trends are negative
   - Company-specific risks identified

4. VERY LOW SCORES (0.0-0.29) - Use when:
   - Strong negative signals
   - Major negative news (lawsuits, scandals, major losses)
   - Clear downward trends
   - High volatility suggesting uncertainty
   - Multiple red flags present

IMPORTANT: BE CONSERVATIVE
- Default to neutral scores unless there's clear evidence for deviation
- Any minor issues or concerns should LOWER the score
- High scores require STRONG justification with multiple positive factors
- When in doubt, choose a lower score
- One negative factor can offset multiple neutral factors

Respond ONLY with valid JSON in this exact format:
{
  "score": 0.65,
  "confidence": 0.85,
  "direction": "flat",
  "rationale": {
    "summary": "Brief but specific summary of analysis highlighting key factors",
    "factors": ["concrete factor 1", "concrete factor 2", "concrete factor 3"],
    "sentiment": "positive" | "neutral" | "negative"
  },
  "risks": {
    "market": "Specific market-wide risks identified",
    "specific": "Specific company/security risks identified"
  },
  "horizon_days": 30
}

Rules:
- score: Number between 0.0 and 1.0 - BE CONSERVATIVE, prefer middle range (0.4-0.6) unless clear evidence
- confidence: Number between 0.0 and 1.0 - Higher if more data available, lower if conflicting signals
- direction: "up" only if score > 0.6, "down" if score < 0.4, otherwise "flat"
- rationale.summary: 2-3 sentences explaining the score with specific references to data
- rationale.factors: Array of 3-5 specific, concrete factors that influenced the score
- rationale.sentiment: Must align with score (positive for >0.6, negative for <0.4, neutral otherwise)
- risks: Be specific - list actual risks found, don't use generic statements
- horizon_days: Choose based on data timeframe (7 for short-term, 30 for medium, 90 for longer-term views)

Analysis Framework:
1. Calculate price changes and trends from market data
2. Assess volume patterns (increasing/decreasing, above/below average)
3. Review all news articles for sentiment, relevance, and impact
4. Identify any warning signs, concerns, or negative signals
5. Look for confirmations across multiple data points
6. Apply conservative bias - downgrade if uncertainties exist`

type priceMetrics struct {
	latest        float64
	change        float64
	changePercent float64
	averageVolume float64
	volatility    float64
	trend         string
	history       []enrich.Bar
}

// computePriceMetrics derives the summary statistics quoted in the prompt.
// Bars are expected most recent first; returns nil when no bars exist.
func computePriceMetrics(bars []enrich.Bar) *priceMetrics {
	if len(bars) == 0 {
		return nil
	}
	m := &priceMetrics{latest: bars[0].Close}
	if len(bars) > 1 {
		m.change = bars[0].Close - bars[1].Close
		if bars[1].Close != 0 {
			m.changePercent = m.change / bars[1].Close * 100
		}
	}

	var volumeSum float64
	for _, b := range bars {
		volumeSum += b.Volume
	}
	m.averageVolume = volumeSum / float64(len(bars))

	window := bars
	if len(window) > 20 {
		window = window[:20]
	}
	highClose, lowClose := window[0].Close, window[0].Close
	for _, b := range window {
		if b.Close > highClose {
			highClose = b.Close
		}
		if b.Close < lowClose {
			lowClose = b.Close
		}
	}
	if highClose > 0 {
		m.volatility = (highClose - lowClose) / highClose * 100
	}

	m.trend = closeTrend(bars)

	m.history = bars
	if len(m.history) > 10 {
		m.history = m.history[:10]
	}
	return m
}

// closeTrend compares the average of the 5 most recent closes with the 5
// before them.
func closeTrend(bars []enrich.Bar) string {
	recent := bars
	if len(recent) > 5 {
		recent = recent[:5]
	}
	var recentSum float64
	for _, b := range recent {
		recentSum += b.Close
	}
	recentAvg := recentSum / float64(len(recent))

	olderAvg := recentAvg
	if len(bars) > 5 {
		older := bars[5:]
		if len(older) > 5 {
			older = older[:5]
		}
		var olderSum float64
		for _, b := range older {
			olderSum += b.Close
		}
		olderAvg = olderSum / float64(len(older))
	}

	switch {
	case recentAvg > olderAvg:
		return "upward"
	case recentAvg < olderAvg:
		return "downward"
	default:
		return "sideways"
	}
}

// BuildPrompt renders the full scoring prompt for one enriched input.
func BuildPrompt(in enrich.Input) string {
	ticker := strings.ToUpper(in.Ticker)

	var market strings.Builder
	fmt.Fprintf(&market, "=== MARKET DATA FOR %s ===\n\n", ticker)
	metrics := computePriceMetrics(in.Bars)
	if metrics == nil {
		market.WriteString("No market data available for analysis.")
	} else {
		fmt.Fprintf(&market, "Current Price: $%.2f\n", metrics.latest)
		fmt.Fprintf(&market, "Price Change: %+.2f (%+.2f%%)\n", metrics.change, metrics.changePercent)
		fmt.Fprintf(&market, "Trend: %s\n", metrics.trend)
		fmt.Fprintf(&market, "Volatility: %.2f%%\n", metrics.volatility)
		fmt.Fprintf(&market, "Average Volume: %.0f\n\n", metrics.averageVolume)
		market.WriteString("Recent Price History (most recent first):\n")
		for _, b := range metrics.history {
			fmt.Fprintf(&market, "%s: O=$%.2f H=$%.2f L=$%.2f C=$%.2f V=%.0f\n",
				b.TS.Format("2006-01-02"), b.Open, b.High, b.Low, b.Close, b.Volume)
		}
		market.WriteString("\nVolume Analysis:\n")
		fmt.Fprintf(&market, "- Latest Volume: %.0f\n", in.Bars[0].Volume)
		fmt.Fprintf(&market, "- Average Volume: %.0f\n", metrics.averageVolume)
		fmt.Fprintf(&market, "- Volume Trend: %s", volumeTrend(in.Bars[0].Volume, metrics.averageVolume))
	}

	var news strings.Builder
	fmt.Fprintf(&news, "=== RECENT NEWS FOR %s ===\n", ticker)
	if len(in.Articles) == 0 {
		news.WriteString("No recent news articles available. This limits confidence in the analysis.")
	} else {
		news.WriteString("\n")
		for i, a := range in.Articles {
			if i > 0 {
				news.WriteString("\n\n---\n\n")
			}
			fmt.Fprintf(&news, "Article %d:\n", i+1)
			fmt.Fprintf(&news, "Source: %s\n", a.Source)
			fmt.Fprintf(&news, "Published: %s\n", a.TS.Format("2006-01-02T15:04:05Z07:00"))
			fmt.Fprintf(&news, "Title: %s\n", a.Title)
			fmt.Fprintf(&news, "Summary: %s\n", a.Summary)
			fmt.Fprintf(&news, "URL: %s\n", a.URL)
			fmt.Fprintf(&news, "Relevance Score: %.2f/5.0", a.Relevance)
		}
		fmt.Fprintf(&news, "\n\nTotal Articles Analyzed: %d", len(in.Articles))
	}

	return promptTemplate + "\n\n" + market.String() + "\n\n" + news.String() + `

=== ANALYSIS INSTRUCTIONS ===

1. Review all provided news articles carefully
2. Calculate price trends and momentum from the market data
3. Assess volume patterns for confirmation or divergence
4. Identify ANY negative signals, concerns, or warnings (even minor ones)
5. Apply conservative bias:
   - If you find any negative factors, reduce the score
   - Only use high scores (0.70+) if there are STRONG positive signals with NO significant concerns
   - Default to neutral scores (0.45-0.55) if signals are mixed or unclear
6. Ensure your score aligns with your rationale - if you mention concerns, the score should reflect them
7. Be specific in your factors - cite actual data points, not generic statements

Generate your analysis now. Respond with ONLY the JSON object, no other text.`
}

func volumeTrend(latest, average float64) string {
	if average <= 0 {
		return "N/A"
	}
	switch {
	case latest > average*1.2:
		return "Above average (potentially significant)"
	case latest < average*0.8:
		return "Below average (low interest)"
	default:
		return "Near average"
	}
}
