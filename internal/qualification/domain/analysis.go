package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	MinScore = 0
	MaxScore = 12

	// FallbackReason is recorded when the analysis call or its parsing fails.
	FallbackReason = "Erro na análise automática"
)

var ErrNoScore = errors.New("analysis has neither score nor criteria")

// Analysis is the outcome of the qualification scoring call.
type Analysis struct {
	Score          int
	ShouldTransfer bool
	Reason         string
	Criteria       []string
}

// FallbackAnalysis is the neutral result used when scoring fails.
func FallbackAnalysis() Analysis {
	return Analysis{
		Score:          0,
		ShouldTransfer: false,
		Reason:         FallbackReason,
		Criteria:       []string{},
	}
}

type rawAnalysis struct {
	Score    *float64 `json:"score"`
	Transfer *bool    `json:"deve_transferir"`
	Reason   string   `json:"motivo"`
	Criteria []string `json:"criterios_identificados"`
}

var fenceReplacer = strings.NewReplacer("```json\n", "", "```json", "", "```\n", "", "```", "")

// StripFences removes markdown code fences the model sometimes wraps its JSON in.
func StripFences(raw string) string {
	return strings.TrimSpace(fenceReplacer.Replace(raw))
}

// ParseAnalysis decodes the model's JSON answer. The score is clamped to
// [MinScore, MaxScore] and ShouldTransfer is recomputed against threshold;
// the model's own transfer flag is ignored. When the score is missing it is
// derived from the listed criteria.
func ParseAnalysis(raw string, threshold int) (Analysis, error) {
	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(StripFences(raw)), &parsed); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}

	criteria := parsed.Criteria
	if criteria == nil {
		criteria = []string{}
	}

	var score int
	switch {
	case parsed.Score != nil:
		// Clamp before converting; huge floats overflow int.
		score = int(math.Round(math.Min(math.Max(*parsed.Score, MinScore), MaxScore)))
	case len(criteria) > 0:
		score = ScoreCriteria(criteria)
	default:
		return Analysis{}, ErrNoScore
	}
	score = ClampScore(score)

	return Analysis{
		Score:          score,
		ShouldTransfer: score >= threshold,
		Reason:         strings.TrimSpace(parsed.Reason),
		Criteria:       criteria,
	}, nil
}

// ClampScore bounds a score to the rubric's range.
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// EffectiveThreshold returns the stored agent threshold, or fallback when the
// stored value is unset or not positive.
func EffectiveThreshold(stored, fallback int) int {
	if stored <= 0 {
		return fallback
	}
	return stored
}
