package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeIntoEmptyRecord(t *testing.T) {
	now := time.Now()
	r := Record{LeadID: uuid.New(), Status: StatusInProgress}.Merge(Analysis{Score: 7, ShouldTransfer: true, Reason: "pronto"}, now)

	assert.Equal(t, 7, r.CurrentScore)
	assert.Equal(t, StatusQualified, r.Status)
	require.NotNil(t, r.TransferReason)
	assert.Equal(t, "pronto", *r.TransferReason)
	require.NotNil(t, r.TransferredAt)
	assert.Equal(t, now, *r.TransferredAt)
}

func TestMergeScoreNeverDecreases(t *testing.T) {
	now := time.Now()
	for _, before := range []int{0, 3, 6, 12} {
		for _, incoming := range []int{0, 2, 6, 9, 12} {
			r := Record{CurrentScore: before, Status: StatusInProgress}
			merged := r.Merge(Analysis{Score: incoming}, now)
			assert.Equal(t, max(before, incoming), merged.CurrentScore, "before=%d incoming=%d", before, incoming)
		}
	}
}

func TestMergeStatusFollowsLatestAnalysis(t *testing.T) {
	now := time.Now()
	r := Record{CurrentScore: 8, Status: StatusQualified}
	reason := "old"
	r.TransferReason = &reason

	merged := r.Merge(Analysis{Score: 2, ShouldTransfer: false}, now)
	assert.Equal(t, 8, merged.CurrentScore)
	assert.Equal(t, StatusInProgress, merged.Status)
	assert.Nil(t, merged.TransferReason)
	assert.Nil(t, merged.TransferredAt)
}

func TestMergeKeepsTransferred(t *testing.T) {
	at := time.Now().Add(-time.Hour)
	reason := "handoff"
	r := Record{CurrentScore: 4, Status: StatusTransferred, TransferReason: &reason, TransferredAt: &at}

	merged := r.Merge(Analysis{Score: 10, ShouldTransfer: true, Reason: "new"}, time.Now())
	assert.Equal(t, 10, merged.CurrentScore)
	assert.Equal(t, StatusTransferred, merged.Status)
	assert.Equal(t, "handoff", *merged.TransferReason)
	assert.Equal(t, at, *merged.TransferredAt)
}

func TestPhoneMatchTransferred(t *testing.T) {
	transferred := StatusTransferred
	qualified := StatusQualified

	assert.False(t, PhoneMatch{}.Transferred())
	assert.False(t, PhoneMatch{QualificationStatus: &qualified}.Transferred())
	assert.True(t, PhoneMatch{QualificationStatus: &transferred}.Transferred())
}

func TestTurnTypeLabels(t *testing.T) {
	assert.Equal(t, "cliente", TurnCustomer.PromptLabel())
	assert.Equal(t, "agente", TurnAgent.PromptLabel())
	assert.Equal(t, "user", TurnCustomer.ChatRole())
	assert.Equal(t, "model", TurnAgent.ChatRole())

	_, err := ParseTurnType("bot")
	assert.Error(t, err)
	_, err = ParseQualificationStatus("archived")
	assert.Error(t, err)
}
