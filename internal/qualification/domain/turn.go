// Package domain holds the qualification aggregate: AI conversation turns,
// the per-lead qualification record and the scoring rubric.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TurnType says who authored a turn of the AI conversation.
type TurnType string

const (
	TurnCustomer TurnType = "customer"
	TurnAgent    TurnType = "agent"
)

// Valid reports whether t is a known turn type.
func (t TurnType) Valid() bool {
	return t == TurnCustomer || t == TurnAgent
}

// ParseTurnType converts raw input into a TurnType.
func ParseTurnType(raw string) (TurnType, error) {
	t := TurnType(raw)
	if !t.Valid() {
		return "", fmt.Errorf("unknown turn type %q", raw)
	}
	return t, nil
}

// PromptLabel is the speaker tag used when the history is rendered for the
// analysis prompt.
func (t TurnType) PromptLabel() string {
	if t == TurnCustomer {
		return "cliente"
	}
	return "agente"
}

// ChatRole maps the turn onto a genai content role.
func (t TurnType) ChatRole() string {
	if t == TurnCustomer {
		return "user"
	}
	return "model"
}

// TurnMetadata is stored alongside agent turns.
type TurnMetadata struct {
	Criteria []string `json:"criterios"`
	Reason   string   `json:"motivo"`
}

// Turn is one append-only entry of the AI conversation with a lead.
type Turn struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	AgentID     uuid.UUID
	Type        TurnType
	Body        string
	Score       *int
	Transferred *bool
	Metadata    *TurnMetadata
	CreatedAt   time.Time
}
