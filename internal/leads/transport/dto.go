package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs
type CreateLeadRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=200"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,min=5,max=30"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Company string `json:"company,omitempty" validate:"omitempty,max=200"`
	Channel string `json:"channel,omitempty" validate:"omitempty,oneof=whatsapp email phone site"`
	Notes   string `json:"notes,omitempty" validate:"omitempty,max=4000"`
	Score   int    `json:"score" validate:"min=0,max=5"`
}

type UpdateLeadRequest struct {
	Name     *string      `json:"name,omitempty" validate:"omitempty,notblank,max=200"`
	Phone    *string      `json:"phone,omitempty" validate:"omitempty,min=5,max=30"`
	Email    *string      `json:"email,omitempty" validate:"omitempty,email"`
	Company  *string      `json:"company,omitempty" validate:"omitempty,max=200"`
	Channel  *string      `json:"channel,omitempty" validate:"omitempty,oneof=whatsapp email phone site"`
	Notes    *string      `json:"notes,omitempty" validate:"omitempty,max=4000"`
	Score    *int         `json:"score,omitempty" validate:"omitempty,min=0,max=5"`
	SellerID OptionalUUID `json:"sellerId,omitempty"`
}

type UpdateLeadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new qualified in_negotiation closed lost"`
}

type ListLeadsRequest struct {
	Status  string `form:"status" validate:"omitempty,oneof=new qualified in_negotiation closed lost"`
	Channel string `form:"channel" validate:"omitempty,oneof=whatsapp email phone site"`
	Search  string `form:"search" validate:"omitempty,max=100"`
	Limit   int    `form:"limit" validate:"omitempty,min=1,max=500"`
	Offset  int    `form:"offset" validate:"omitempty,min=0"`
}

// Response DTOs
type LeadResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Phone             *string    `json:"phone,omitempty"`
	Email             *string    `json:"email,omitempty"`
	Company           *string    `json:"company,omitempty"`
	Status            string     `json:"status"`
	Score             int        `json:"score"`
	Channel           *string    `json:"channel,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	LastInteractionAt *time.Time `json:"lastInteractionAt,omitempty"`
	SellerID          *uuid.UUID `json:"sellerId,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}
