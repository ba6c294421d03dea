package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"score\": 3}\n```": `{"score": 3}`,
		"```\n{\"score\": 3}```":       `{"score": 3}`,
		"  {\"score\": 3}  ":           `{"score": 3}`,
		"```json{\"score\": 3}```":     `{"score": 3}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, StripFences(in), "input %q", in)
	}
}

func TestParseAnalysisRecomputesTransfer(t *testing.T) {
	raw := "```json\n" + `{"score": 6, "deve_transferir": false, "motivo": " Cliente pronto ", "criterios_identificados": ["Projeto confirmado"]}` + "\n```"

	a, err := ParseAnalysis(raw, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, a.Score)
	assert.True(t, a.ShouldTransfer, "score equal to threshold transfers")
	assert.Equal(t, "Cliente pronto", a.Reason)
	assert.Equal(t, []string{"Projeto confirmado"}, a.Criteria)

	a, err = ParseAnalysis(`{"score": 5, "deve_transferir": true}`, 6)
	require.NoError(t, err)
	assert.False(t, a.ShouldTransfer)
	assert.Equal(t, []string{}, a.Criteria)
}

func TestParseAnalysisClampsScore(t *testing.T) {
	a, err := ParseAnalysis(`{"score": 40}`, 6)
	require.NoError(t, err)
	assert.Equal(t, MaxScore, a.Score)

	a, err = ParseAnalysis(`{"score": -3}`, 6)
	require.NoError(t, err)
	assert.Equal(t, MinScore, a.Score)
	assert.False(t, a.ShouldTransfer)

	a, err = ParseAnalysis(`{"score": 1e19}`, 6)
	require.NoError(t, err)
	assert.Equal(t, MaxScore, a.Score)
	assert.True(t, a.ShouldTransfer)

	a, err = ParseAnalysis(`{"score": -1e300}`, 6)
	require.NoError(t, err)
	assert.Equal(t, MinScore, a.Score)

	a, err = ParseAnalysis(`{"score": 6.6}`, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, a.Score)
	assert.True(t, a.ShouldTransfer)
}

func TestParseAnalysisDerivesScoreFromCriteria(t *testing.T) {
	a, err := ParseAnalysis(`{"criterios_identificados": ["Projeto confirmado", "Urgência", "Orçamento disponível"]}`, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, a.Score)
	assert.True(t, a.ShouldTransfer)
}

func TestParseAnalysisErrors(t *testing.T) {
	_, err := ParseAnalysis("Desculpe, não consigo analisar.", 6)
	assert.Error(t, err)

	_, err = ParseAnalysis(`{"motivo": "sem dados"}`, 6)
	assert.ErrorIs(t, err, ErrNoScore)
}

func TestFallbackAnalysis(t *testing.T) {
	a := FallbackAnalysis()
	assert.Equal(t, 0, a.Score)
	assert.False(t, a.ShouldTransfer)
	assert.Equal(t, FallbackReason, a.Reason)
	assert.Empty(t, a.Criteria)
}

func TestEffectiveThreshold(t *testing.T) {
	assert.Equal(t, 8, EffectiveThreshold(8, 6))
	assert.Equal(t, 6, EffectiveThreshold(0, 6))
	assert.Equal(t, 6, EffectiveThreshold(-2, 6))
}

func TestScoreCriteria(t *testing.T) {
	tests := []struct {
		name     string
		criteria []string
		want     int
	}{
		{"empty", nil, 0},
		{"accents ignored", []string{"URGENCIA", "prazo definido"}, 3},
		{"duplicates count once", []string{"Projeto confirmado", "projeto aprovado"}, 3},
		{"quote interest", []string{"Interesse em orçamento"}, 2},
		{"budget is not quote interest", []string{"Orçamento disponível"}, 2},
		{"negative signals", []string{"Projeto confirmado", "Já tenho fornecedor", "Sem pressa"}, 0},
		{"floor at zero", []string{"Só pesquisando"}, 0},
		{"unknown ignored", []string{"gosta de futebol", "Prazo definido"}, 2},
		{"full house clamps", []string{
			"Projeto confirmado", "Prazo definido", "Orçamento disponível",
			"Autoridade para decidir", "Urgência", "Interesse em orçamento",
		}, MaxScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreCriteria(tt.criteria))
		})
	}
}
