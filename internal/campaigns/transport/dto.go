package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateCampaignRequest struct {
	Name             string     `json:"name" validate:"required,notblank,max=200"`
	Message          string     `json:"message" validate:"required,notblank,max=4096"`
	TargetPortfolios []string   `json:"targetPortfolios" validate:"required,min=1,dive,portfolio"`
	ScheduledAt      *time.Time `json:"scheduledAt"`
}

type UpdateCampaignRequest struct {
	Name             *string    `json:"name" validate:"omitempty,notblank,max=200"`
	Message          *string    `json:"message" validate:"omitempty,notblank,max=4096"`
	TargetPortfolios []string   `json:"targetPortfolios" validate:"omitempty,min=1,dive,portfolio"`
	ScheduledAt      *time.Time `json:"scheduledAt"`
	ClearSchedule    bool       `json:"clearSchedule"`
	Status           *string    `json:"status" validate:"omitempty,oneof=draft cancelled"`
}

type CampaignResponse struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Message          string     `json:"message"`
	TargetPortfolios []string   `json:"targetPortfolios"`
	Status           string     `json:"status"`
	ScheduledAt      *time.Time `json:"scheduledAt,omitempty"`
	TotalSent        int        `json:"totalSent"`
	TotalDelivered   int        `json:"totalDelivered"`
	TotalRead        int        `json:"totalRead"`
	CreatedBy        uuid.UUID  `json:"createdBy"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
