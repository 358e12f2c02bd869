package domain

import (
	"time"
)

// sessionBreakMinutes is the gap after which re-engagement is considered
// socially acceptable again.
const sessionBreakMinutes = 35

// SessionBreak is the same gap as a duration, for callers that schedule work
// around session boundaries.
const SessionBreak = sessionBreakMinutes * time.Minute

// SessionState reports whether the lead is inside a still-active
// conversational session. Messaging into a live session needs stronger
// justification than messaging after a break.
type SessionState struct {
	HasActivity          bool    `json:"hasActivity"`
	MinutesSinceActivity float64 `json:"minutesSinceActivity"`
	InLiveSession        bool    `json:"inLiveSession"`
	SessionBreakOccurred bool    `json:"sessionBreakOccurred"`
}

// DetectSession computes minutes since the later of the last inbound message
// and the last automated follow-up. A lead with no prior activity is treated
// as a clean session break: the permissive default, never an error.
func DetectSession(lead LeadContext, now time.Time) SessionState {
	latest := latestActivity(lead)
	if latest == nil {
		return SessionState{
			HasActivity:          false,
			InLiveSession:        false,
			SessionBreakOccurred: true,
		}
	}

	minutes := now.Sub(*latest).Minutes()
	inLive := minutes < sessionBreakMinutes

	return SessionState{
		HasActivity:          true,
		MinutesSinceActivity: minutes,
		InLiveSession:        inLive,
		SessionBreakOccurred: !inLive,
	}
}

func latestActivity(lead LeadContext) *time.Time {
	latest := lead.LastInboundAt
	if lead.LastFollowupAt != nil && (latest == nil || lead.LastFollowupAt.After(*latest)) {
		latest = lead.LastFollowupAt
	}
	return latest
}
