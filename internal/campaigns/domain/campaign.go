// Package domain holds the broadcast campaign model.
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	StatusDraft     CampaignStatus = "draft"
	StatusScheduled CampaignStatus = "scheduled"
	StatusRunning   CampaignStatus = "running"
	StatusCompleted CampaignStatus = "completed"
	StatusCancelled CampaignStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s CampaignStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusRunning, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ParseCampaignStatus converts raw input into a CampaignStatus.
func ParseCampaignStatus(raw string) (CampaignStatus, error) {
	s := CampaignStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown campaign status %q", raw)
	}
	return s, nil
}

// Finished reports whether the campaign can no longer change.
func (s CampaignStatus) Finished() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var (
	ErrNotDispatchable = errors.New("campaign cannot be dispatched")
	ErrNotEditable     = errors.New("campaign can no longer be edited")
)

// Campaign is a WhatsApp broadcast to the leads of one or more portfolios.
type Campaign struct {
	ID               uuid.UUID
	Name             string
	Message          string
	TargetPortfolios []string
	Status           CampaignStatus
	ScheduledAt      *time.Time
	TotalSent        int
	TotalDelivered   int
	TotalRead        int
	CreatedBy        uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CheckDispatch returns ErrNotDispatchable unless the campaign is a draft or
// still waiting for its schedule.
func (c Campaign) CheckDispatch() error {
	if c.Status == StatusDraft || c.Status == StatusScheduled {
		return nil
	}
	return fmt.Errorf("%w: status is %s", ErrNotDispatchable, c.Status)
}

// CheckEditable returns ErrNotEditable once the campaign started.
func (c Campaign) CheckEditable() error {
	if c.Status == StatusRunning || c.Status.Finished() {
		return fmt.Errorf("%w: status is %s", ErrNotEditable, c.Status)
	}
	return nil
}

// DispatchStatus is the status a dispatched campaign moves to: scheduled
// when its schedule is still ahead of now, running otherwise.
func (c Campaign) DispatchStatus(now time.Time) CampaignStatus {
	if c.ScheduledAt != nil && c.ScheduledAt.After(now) {
		return StatusScheduled
	}
	return StatusRunning
}

// Target is a lead a campaign delivers to.
type Target struct {
	LeadID   uuid.UUID
	Phone    string
	SellerID uuid.UUID
}

// Totals aggregates delivery counters across campaigns.
type Totals struct {
	Campaigns int
	Sent      int
	Delivered int
	Read      int
}
