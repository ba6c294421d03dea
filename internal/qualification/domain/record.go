package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QualificationStatus tracks where a lead is in the AI handoff.
type QualificationStatus string

const (
	StatusInProgress  QualificationStatus = "in_progress"
	StatusQualified   QualificationStatus = "qualified"
	StatusTransferred QualificationStatus = "transferred"
)

// Valid reports whether s is a known status.
func (s QualificationStatus) Valid() bool {
	switch s {
	case StatusInProgress, StatusQualified, StatusTransferred:
		return true
	}
	return false
}

// ParseQualificationStatus converts raw input into a QualificationStatus.
func ParseQualificationStatus(raw string) (QualificationStatus, error) {
	s := QualificationStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown qualification status %q", raw)
	}
	return s, nil
}

// Record is the single qualification state kept per lead.
type Record struct {
	ID              uuid.UUID
	LeadID          uuid.UUID
	CurrentScore    int
	Status          QualificationStatus
	MatchedCriteria []string
	TransferReason  *string
	TransferredAt   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Merge folds a new analysis into the record. A lead's first analysis is
// merged into an empty in_progress record. The score never decreases and
// a transferred record keeps its status, reason and timestamp. Otherwise the
// status, reason and timestamp reflect the latest analysis only.
func (r Record) Merge(a Analysis, now time.Time) Record {
	out := r
	if a.Score > out.CurrentScore {
		out.CurrentScore = a.Score
	}
	out.MatchedCriteria = a.Criteria
	out.UpdatedAt = now

	if r.Status == StatusTransferred {
		return out
	}

	if a.ShouldTransfer {
		reason := a.Reason
		at := now
		out.Status = StatusQualified
		out.TransferReason = &reason
		out.TransferredAt = &at
	} else {
		out.Status = StatusInProgress
		out.TransferReason = nil
		out.TransferredAt = nil
	}
	return out
}
