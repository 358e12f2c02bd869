// Package domain implements the autonomous follow-up decision engine for the
// followups bounded context. Everything in this package is a pure function of
// the input snapshot: no I/O, no clocks, no shared mutable state. Callers
// supply the current time explicitly, which keeps every rule deterministic
// and independently testable.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationMessage is one message in a lead's conversation history,
// supplied oldest to newest.
type ConversationMessage struct {
	Role    Role
	Content string
	SentAt  *time.Time
}

// LeadContext is a read-only snapshot of a lead's persisted state. The engine
// never mutates it; escalation arc changes go through the repository's
// explicit advance/reset operations.
type LeadContext struct {
	ID                  uuid.UUID
	SenderID            string
	DisplayName         string // empty when the lead's name is unknown
	PipelineStage       string // empty when unclassified
	MessageCount        int
	LastInboundAt       *time.Time
	LastFollowupAt      *time.Time
	ArcPosition         int // persisted escalation arc position, 1-5
	FollowupsNoResponse int
	DisengagementNote   string
	SequenceStartedAt   *time.Time
}

// Settings carries the externally configured knobs the engine reads.
// Aggressiveness is the single dial: 1 is maximally conservative, 10 is
// maximally willing to reach out.
type Settings struct {
	Aggressiveness int `validate:"required,min=1,max=10"`
}

// highValueStages are pipeline stage labels that mark a lead as high stakes.
var highValueStages = map[string]struct{}{
	"qualified":   {},
	"proposal":    {},
	"negotiation": {},
	"hot":         {},
}

// IsHighValueStage reports whether a pipeline stage label belongs to the
// high-value set. Matching is case-insensitive on the trimmed label.
func IsHighValueStage(stage string) bool {
	_, ok := highValueStages[strings.ToLower(strings.TrimSpace(stage))]
	return ok
}

// userMessages filters the conversation down to lead-authored messages,
// preserving order.
func userMessages(conversation []ConversationMessage) []ConversationMessage {
	out := make([]ConversationMessage, 0, len(conversation))
	for _, msg := range conversation {
		if msg.Role == RoleUser {
			out = append(out, msg)
		}
	}
	return out
}

// lastUserMessage returns the most recent lead-authored message, or nil.
func lastUserMessage(conversation []ConversationMessage) *ConversationMessage {
	for i := len(conversation) - 1; i >= 0; i-- {
		if conversation[i].Role == RoleUser {
			return &conversation[i]
		}
	}
	return nil
}

// lastN returns the trailing n elements of msgs (all of them when fewer).
func lastN(msgs []ConversationMessage, n int) []ConversationMessage {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
