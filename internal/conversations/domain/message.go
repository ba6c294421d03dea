// Package domain holds the human conversation log.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageType tells who wrote a conversation message.
type MessageType string

const (
	MessageSent     MessageType = "sent"
	MessageReceived MessageType = "received"
	MessageSystem   MessageType = "system"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageSent, MessageReceived, MessageSystem:
		return true
	}
	return false
}

// ParseMessageType converts raw input into a MessageType. Empty input is sent.
func ParseMessageType(raw string) (MessageType, error) {
	if raw == "" {
		return MessageSent, nil
	}
	t := MessageType(raw)
	if !t.Valid() {
		return "", fmt.Errorf("unknown message type %q", raw)
	}
	return t, nil
}

// Message is one entry of a lead's conversation log.
type Message struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Type      MessageType
	Body      string
	IsRead    bool
	Metadata  map[string]any
	CreatedAt time.Time
}
