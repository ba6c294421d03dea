package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskCampaignDispatch = "campaigns.dispatch"

type CampaignDispatchPayload struct {
	CampaignID string `json:"campaignId"`
}

func NewCampaignDispatchTask(campaignID uuid.UUID) (*asynq.Task, error) {
	data, err := json.Marshal(CampaignDispatchPayload{CampaignID: campaignID.String()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCampaignDispatch, data), nil
}

func ParseCampaignDispatchPayload(task *asynq.Task) (uuid.UUID, error) {
	var payload CampaignDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(payload.CampaignID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("campaign dispatch payload: %w", err)
	}
	return id, nil
}
