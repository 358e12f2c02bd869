// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"followup_engine_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Follow-up Domain Events
// =============================================================================

// FollowUpApproved is published when the engine decides a follow-up should be
// sent. Downstream senders consume this; the engine itself never sends.
type FollowUpApproved struct {
	BaseEvent
	LeadID             uuid.UUID `json:"leadId"`
	Score              int       `json:"score"`
	ArcPosition        int       `json:"arcPosition"`
	ArcTag             string    `json:"arcTag"`
	MinIntervalMinutes int       `json:"minIntervalMinutes"`
	Reasoning          string    `json:"reasoning"`
}

func (e FollowUpApproved) EventName() string { return "followups.followup.approved" }

// FollowUpRejected is published when a gate blocks a follow-up. Gate carries
// the machine-readable gate name, Reason the human-readable explanation.
type FollowUpRejected struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Gate   string    `json:"gate"`
	Reason string    `json:"reason"`
	Score  int       `json:"score"`
}

func (e FollowUpRejected) EventName() string { return "followups.followup.rejected" }

// LeadReplied is published when an inbound lead message is recorded. A reply
// resets the escalation arc and schedules a fresh evaluation.
type LeadReplied struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	ReceivedAt time.Time `json:"receivedAt"`
}

func (e LeadReplied) EventName() string { return "followups.lead.replied" }

// LeadDisengaged is published when disengagement detection permanently stops
// follow-ups for a lead until they reply again.
type LeadDisengaged struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	Note       string    `json:"note"`
	Confidence int       `json:"confidence"`
}

func (e LeadDisengaged) EventName() string { return "followups.lead.disengaged" }
