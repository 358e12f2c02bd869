package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskEvaluateLead = "followups.evaluate"

const TaskEvaluationCycle = "followups.cycle"

const TaskLeadReply = "followups.lead_reply"

const TaskFollowupSent = "followups.followup_sent"

type EvaluateLeadPayload struct {
	LeadID string `json:"leadId"`
}

type EvaluationCyclePayload struct {
	CycleID string `json:"cycleId"`
}

type LeadReplyPayload struct {
	LeadID     string    `json:"leadId"`
	Content    string    `json:"content"`
	ReceivedAt time.Time `json:"receivedAt"`
}

type FollowupSentPayload struct {
	LeadID  string    `json:"leadId"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sentAt"`
}

func NewEvaluateLeadTask(payload EvaluateLeadPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEvaluateLead, data), nil
}

func ParseEvaluateLeadPayload(task *asynq.Task) (EvaluateLeadPayload, error) {
	var payload EvaluateLeadPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return EvaluateLeadPayload{}, err
	}
	return payload, nil
}

func NewEvaluationCycleTask(payload EvaluationCyclePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEvaluationCycle, data), nil
}

func ParseEvaluationCyclePayload(task *asynq.Task) (EvaluationCyclePayload, error) {
	var payload EvaluationCyclePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return EvaluationCyclePayload{}, err
	}
	return payload, nil
}

func NewLeadReplyTask(payload LeadReplyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadReply, data), nil
}

func ParseLeadReplyPayload(task *asynq.Task) (LeadReplyPayload, error) {
	var payload LeadReplyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadReplyPayload{}, err
	}
	return payload, nil
}

func NewFollowupSentTask(payload FollowupSentPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowupSent, data), nil
}

func ParseFollowupSentPayload(task *asynq.Task) (FollowupSentPayload, error) {
	var payload FollowupSentPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowupSentPayload{}, err
	}
	return payload, nil
}
