// Package domain holds the lead aggregate and its closed value types.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LeadStatus is the sales stage of a lead.
type LeadStatus string

const (
	StatusNew           LeadStatus = "new"
	StatusQualified     LeadStatus = "qualified"
	StatusInNegotiation LeadStatus = "in_negotiation"
	StatusClosed        LeadStatus = "closed"
	StatusLost          LeadStatus = "lost"
)

// LeadStatuses lists every status in funnel order.
var LeadStatuses = []LeadStatus{StatusNew, StatusQualified, StatusInNegotiation, StatusClosed, StatusLost}

// Valid reports whether s is a known status.
func (s LeadStatus) Valid() bool {
	for _, known := range LeadStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseLeadStatus converts raw input into a LeadStatus.
func ParseLeadStatus(raw string) (LeadStatus, error) {
	s := LeadStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown lead status %q", raw)
	}
	return s, nil
}

// Channel is where a lead first reached the business.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
	ChannelPhone    Channel = "phone"
	ChannelSite     Channel = "site"
)

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelWhatsApp, ChannelEmail, ChannelPhone, ChannelSite:
		return true
	}
	return false
}

// ParseChannel converts raw input into a Channel.
func ParseChannel(raw string) (Channel, error) {
	c := Channel(raw)
	if !c.Valid() {
		return "", fmt.Errorf("unknown channel %q", raw)
	}
	return c, nil
}

// MaxDisplayScore bounds the manual 0-5 rating shown on lead cards.
const MaxDisplayScore = 5

// Lead is a prospective customer tracked in the CRM.
type Lead struct {
	ID                uuid.UUID
	Name              string
	Phone             *string
	Email             *string
	Company           *string
	Status            LeadStatus
	Score             int
	Channel           *Channel
	Notes             *string
	LastInteractionAt *time.Time
	SellerID          *uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
