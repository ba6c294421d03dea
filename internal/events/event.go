// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"crm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	Change      = events.Change
	ChangeOp    = events.ChangeOp
)

// Re-export platform functions
var (
	NewBaseEvent     = events.NewBaseEvent
	NewChange        = events.NewChange
	SubscribeChanges = events.SubscribeChanges
)

const (
	ChangeInsert = events.ChangeInsert
	ChangeUpdate = events.ChangeUpdate
	ChangeDelete = events.ChangeDelete
)

// Entities that publish change notifications.
const (
	EntityLeads          = "leads"
	EntityMessages       = "messages"
	EntityCampaigns      = "campaigns"
	EntityQualifications = "qualifications"
	EntityAgents         = "agents"
)

// ChangeEntities lists every entity with a change feed.
var ChangeEntities = []string{
	EntityLeads,
	EntityMessages,
	EntityCampaigns,
	EntityQualifications,
	EntityAgents,
}

// =============================================================================
// Qualification Domain Events
// =============================================================================

// LeadQualified is published when the pipeline decides a lead should be
// handed off to its seller.
type LeadQualified struct {
	BaseEvent
	LeadID    uuid.UUID  `json:"leadId"`
	SellerID  *uuid.UUID `json:"sellerId,omitempty"`
	LeadName  string     `json:"leadName"`
	LeadPhone string     `json:"leadPhone"`
	Score     int        `json:"score"`
	Reason    string     `json:"reason"`
}

func (e LeadQualified) EventName() string { return "qualification.lead.qualified" }

// ConversationTakenOver is published when a seller takes a qualified lead
// away from the AI agent.
type ConversationTakenOver struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	SellerID uuid.UUID `json:"sellerId"`
}

func (e ConversationTakenOver) EventName() string { return "qualification.conversation.taken_over" }

// =============================================================================
// Seller / Agent Domain Events
// =============================================================================

// SellerProfileUpdated is published after a seller edits the fields that feed
// the persona prompt.
type SellerProfileUpdated struct {
	BaseEvent
	SellerID uuid.UUID `json:"sellerId"`
}

func (e SellerProfileUpdated) EventName() string { return "sellers.profile.updated" }

// AgentGenerated is published after an agent persona is (re)generated.
type AgentGenerated struct {
	BaseEvent
	AgentID  uuid.UUID `json:"agentId"`
	SellerID uuid.UUID `json:"sellerId"`
	Created  bool      `json:"created"`
}

func (e AgentGenerated) EventName() string { return "agents.generated" }

// =============================================================================
// Campaign Domain Events
// =============================================================================

// CampaignDispatched is published when a campaign broadcast is queued.
type CampaignDispatched struct {
	BaseEvent
	CampaignID uuid.UUID `json:"campaignId"`
	ActorID    uuid.UUID `json:"actorId"`
}

func (e CampaignDispatched) EventName() string { return "campaigns.dispatched" }

// CampaignCompleted is published by the worker after the last delivery.
type CampaignCompleted struct {
	BaseEvent
	CampaignID uuid.UUID `json:"campaignId"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
}

func (e CampaignCompleted) EventName() string { return "campaigns.completed" }
