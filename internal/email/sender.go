// Package email renders and delivers transactional email.
package email

import "context"

// LeadQualified is the content of the seller handoff email.
type LeadQualified struct {
	SellerName string
	LeadName   string
	LeadPhone  string
	Score      int
	Reason     string
	PanelURL   string
}

type Sender interface {
	SendLeadQualifiedEmail(ctx context.Context, toEmail string, data LeadQualified) error
}

// NoopSender drops every message. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendLeadQualifiedEmail(context.Context, string, LeadQualified) error {
	return nil
}
