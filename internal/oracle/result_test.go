package oracle

import (
	"strings"
	"testing"

	"indexscore/internal/apperr"
	"indexscore/internal/models"
)

const validBody = `{
	"score": 0.62,
	"confidence": 0.8,
	"direction": "up",
	"rationale": {
		"summary": "Earnings beat with improving volume.",
		"factors": ["earnings beat", "volume above average", "positive coverage"],
		"sentiment": "positive"
	},
	"risks": {
		"market": "Rate decision next week.",
		"specific": "Client concentration."
	},
	"horizon_days": 30
}`

func TestParseResult_Valid(t *testing.T) {
	result, err := ParseResult(validBody)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.Score != 0.62 {
		t.Fatalf("score=%v want 0.62", result.Score)
	}
	if result.Direction != models.DirectionUp {
		t.Fatalf("direction=%q want up", result.Direction)
	}
	if result.HorizonDays != 30 {
		t.Fatalf("horizon=%d want 30", result.HorizonDays)
	}
	if len(result.Rationale.Factors) != 3 {
		t.Fatalf("factors=%d want 3", len(result.Rationale.Factors))
	}
}

func TestParseResult_StripsCodeFences(t *testing.T) {
	wrapped := "```json\n" + validBody + "\n```"
	result, err := ParseResult(wrapped)
	if err != nil {
		t.Fatalf("parse fenced: %v", err)
	}
	if result.Confidence != 0.8 {
		t.Fatalf("confidence=%v want 0.8", result.Confidence)
	}

	wrapped = "```\n" + validBody + "\n```"
	if _, err := ParseResult(wrapped); err != nil {
		t.Fatalf("parse plain-fenced: %v", err)
	}
}

func TestParseResult_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s string) string
	}{
		{"score above one", func(s string) string { return strings.Replace(s, `"score": 0.62`, `"score": 1.5`, 1) }},
		{"negative score", func(s string) string { return strings.Replace(s, `"score": 0.62`, `"score": -0.1`, 1) }},
		{"confidence above one", func(s string) string { return strings.Replace(s, `"confidence": 0.8`, `"confidence": 1.8`, 1) }},
		{"invalid direction", func(s string) string { return strings.Replace(s, `"direction": "up"`, `"direction": "sideways"`, 1) }},
		{"zero horizon", func(s string) string { return strings.Replace(s, `"horizon_days": 30`, `"horizon_days": 0`, 1) }},
		{"empty summary", func(s string) string {
			return strings.Replace(s, `"summary": "Earnings beat with improving volume."`, `"summary": ""`, 1)
		}},
		{"missing score", func(s string) string { return strings.Replace(s, `"score": 0.62,`, ``, 1) }},
		{"not json", func(s string) string { return "the security looks fine" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResult(tt.mutate(validBody))
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !apperr.IsValidation(err) {
				t.Fatalf("err=%v want validation kind", err)
			}
		})
	}
}
