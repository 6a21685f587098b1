package oracle

import (
	"encoding/json"
	"strings"

	"indexscore/internal/apperr"
	"indexscore/internal/models"
)

// Rationale is the oracle's explanation for a score.
type Rationale struct {
	Summary   string   `json:"summary"`
	Factors   []string `json:"factors"`
	Sentiment string   `json:"sentiment"`
}

// Risks are the oracle's stated market-wide and security-specific risks.
type Risks struct {
	Market   string `json:"market"`
	Specific string `json:"specific"`
}

// Result is a fully validated oracle response.
type Result struct {
	Score       float64          `json:"score"`
	Confidence  float64          `json:"confidence"`
	Direction   models.Direction `json:"direction"`
	Rationale   Rationale        `json:"rationale"`
	Risks       Risks            `json:"risks"`
	HorizonDays int              `json:"horizon_days"`
}

type rawResult struct {
	Score      *float64 `json:"score"`
	Confidence *float64 `json:"confidence"`
	Direction  string   `json:"direction"`
	Rationale  *struct {
		Summary   string   `json:"summary"`
		Factors   []string `json:"factors"`
		Sentiment string   `json:"sentiment"`
	} `json:"rationale"`
	Risks *struct {
		Market   string `json:"market"`
		Specific string `json:"specific"`
	} `json:"risks"`
	HorizonDays *int `json:"horizon_days"`
}

// ParseResult strips any markdown wrapping from a raw oracle response,
// parses it and validates every field. Out-of-range values fail validation;
// nothing is clamped or coerced.
func ParseResult(text string) (*Result, error) {
	cleaned := stripCodeFences(text)
	var raw rawResult
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, apperr.Validationf("oracle response is not valid JSON: %v", err)
	}
	if raw.Score == nil || *raw.Score < 0 || *raw.Score > 1 {
		return nil, apperr.Validationf("oracle response: score missing or outside [0,1]")
	}
	if raw.Confidence == nil || *raw.Confidence < 0 || *raw.Confidence > 1 {
		return nil, apperr.Validationf("oracle response: confidence missing or outside [0,1]")
	}
	direction := models.Direction(raw.Direction)
	if !direction.Valid() {
		return nil, apperr.Validationf("oracle response: invalid direction %q", raw.Direction)
	}
	if raw.Rationale == nil || strings.TrimSpace(raw.Rationale.Summary) == "" {
		return nil, apperr.Validationf("oracle response: rationale summary missing")
	}
	if len(raw.Rationale.Factors) == 0 {
		return nil, apperr.Validationf("oracle response: rationale factors missing")
	}
	if strings.TrimSpace(raw.Rationale.Sentiment) == "" {
		return nil, apperr.Validationf("oracle response: rationale sentiment missing")
	}
	if raw.Risks == nil || strings.TrimSpace(raw.Risks.Market) == "" || strings.TrimSpace(raw.Risks.Specific) == "" {
		return nil, apperr.Validationf("oracle response: risks missing")
	}
	if raw.HorizonDays == nil || *raw.HorizonDays <= 0 {
		return nil, apperr.Validationf("oracle response: horizon_days missing or not positive")
	}

	return &Result{
		Score:      *raw.Score,
		Confidence: *raw.Confidence,
		Direction:  direction,
		Rationale: Rationale{
			Summary:   raw.Rationale.Summary,
			Factors:   raw.Rationale.Factors,
			Sentiment: raw.Rationale.Sentiment,
		},
		Risks: Risks{
			Market:   raw.Risks.Market,
			Specific: raw.Risks.Specific,
		},
		HorizonDays: *raw.HorizonDays,
	}, nil
}

// stripCodeFences removes ``` / ```json wrapping and stray backticks that
// models like to put around JSON bodies.
func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		if idx := strings.IndexByte(cleaned, '\n'); idx >= 0 {
			cleaned = cleaned[idx+1:]
		} else {
			cleaned = strings.TrimPrefix(cleaned, "```json")
			cleaned = strings.TrimPrefix(cleaned, "```")
		}
	}
	if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	cleaned = strings.Trim(cleaned, "`")
	return strings.TrimSpace(cleaned)
}
