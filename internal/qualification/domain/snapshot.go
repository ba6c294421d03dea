package domain

import "github.com/google/uuid"

// LeadSnapshot is the lead as the pipeline sees it, joined with its seller.
type LeadSnapshot struct {
	ID             uuid.UUID
	Name           string
	Phone          *string
	Company        *string
	Channel        *string
	Notes          *string
	SellerID       *uuid.UUID
	SellerName     string
	SellerEmail    string
	SellerWhatsApp *string
}

// AgentSnapshot is the seller's agent with its resolved transfer threshold.
type AgentSnapshot struct {
	ID        uuid.UUID
	SellerID  uuid.UUID
	Persona   string
	Threshold int
}

// PhoneMatch is the result of looking a lead up by its phone number.
type PhoneMatch struct {
	LeadID              uuid.UUID
	QualificationStatus *QualificationStatus
}

// Transferred reports whether the lead was already handed to a human.
func (m PhoneMatch) Transferred() bool {
	return m.QualificationStatus != nil && *m.QualificationStatus == StatusTransferred
}
