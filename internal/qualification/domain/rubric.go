package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Criterion is one line of the qualification rubric.
type Criterion struct {
	Label    string
	Points   int
	keywords []string
}

// Rubric lists the positive criteria in the order they are presented to the
// model. MatchCriterion checks NegativeSignals first.
var Rubric = []Criterion{
	{Label: "Projeto confirmado", Points: 3, keywords: []string{"projeto"}},
	{Label: "Prazo definido", Points: 2, keywords: []string{"prazo"}},
	{Label: "Orçamento disponível", Points: 2, keywords: []string{"orcamento disponivel", "verba", "budget"}},
	{Label: "Autoridade para decidir", Points: 2, keywords: []string{"autoridade", "decisor", "decid"}},
	{Label: "Urgência", Points: 1, keywords: []string{"urgen"}},
	{Label: "Interesse em orçamento", Points: 2, keywords: []string{"interesse", "orcamento", "cotacao"}},
}

// NegativeSignals reduce the score.
var NegativeSignals = []Criterion{
	{Label: "Só pesquisando", Points: -1, keywords: []string{"pesquisando", "pesquisa"}},
	{Label: "Sem pressa", Points: -1, keywords: []string{"sem pressa"}},
	{Label: "Já tenho fornecedor", Points: -2, keywords: []string{"fornecedor"}},
}

// ScoreCriteria sums the rubric points for the criteria the model listed.
// Every rubric line counts at most once and the result is clamped.
func ScoreCriteria(criteria []string) int {
	seen := make(map[string]bool)
	total := 0
	for _, raw := range criteria {
		c, ok := MatchCriterion(raw)
		if !ok || seen[c.Label] {
			continue
		}
		seen[c.Label] = true
		total += c.Points
	}
	return ClampScore(total)
}

// MatchCriterion finds the rubric line a free-text criterion refers to.
func MatchCriterion(raw string) (Criterion, bool) {
	text := fold(raw)
	if text == "" {
		return Criterion{}, false
	}
	for _, group := range [][]Criterion{NegativeSignals, Rubric} {
		for _, c := range group {
			for _, kw := range c.keywords {
				if strings.Contains(text, kw) {
					return c, true
				}
			}
		}
	}
	return Criterion{}, false
}

// fold lowercases s and strips accents.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
