package domain

import (
	"time"
)

const (
	// rapidFireFloor is the absolute minimum gap between automated
	// follow-ups. No score or policy can shorten it.
	rapidFireFloor = 3 * time.Minute

	// Quiet hours: no automated contact from 22:00 up to 07:00 local time.
	quietHourStart = 22
	quietHourEnd   = 7

	// sessionLimitMax is the maximum number of consecutive unanswered
	// follow-ups before contact halts. The disengagement detector applies
	// the same threshold to the same counter on purpose: both layers must
	// independently halt activity for the same underlying reason, so the
	// reasoning trail names whichever layer fired.
	sessionLimitMax = 3
)

// HardLimitCheck reports the absolute, score-independent constraints. When
// Blocked is true the decision is negative no matter what every other factor
// says; Reason carries only the first limit hit, in priority order.
type HardLimitCheck struct {
	RapidFire     bool   `json:"rapidFire"`
	LateNight     bool   `json:"lateNight"`
	SessionLimit  bool   `json:"sessionLimit"`
	GuiltLanguage bool   `json:"guiltLanguage"`
	Blocked       bool   `json:"blocked"`
	Reason        string `json:"reason"`
}

// CheckHardLimits evaluates the four inviolable constraints. proposedMessage
// may be empty when no candidate text exists yet; the guilt-language check
// then has nothing to inspect and stays false.
func (e *Engine) CheckHardLimits(lead LeadContext, proposedMessage string, now time.Time) HardLimitCheck {
	check := HardLimitCheck{}

	if lead.LastFollowupAt != nil && now.Sub(*lead.LastFollowupAt) < rapidFireFloor {
		check.RapidFire = true
	}

	hour := now.Hour()
	if hour >= quietHourStart || hour < quietHourEnd {
		check.LateNight = true
	}

	if lead.FollowupsNoResponse >= sessionLimitMax {
		check.SessionLimit = true
	}

	if proposedMessage != "" && containsAnyPhrase(proposedMessage, e.phrases.Guilt) {
		check.GuiltLanguage = true
	}

	// Priority order is part of the contract: only the first limit hit is
	// surfaced to callers.
	switch {
	case check.RapidFire:
		check.Blocked = true
		check.Reason = "last follow-up was sent less than 3 minutes ago"
	case check.LateNight:
		check.Blocked = true
		check.Reason = "late night quiet hours (22:00-07:00)"
	case check.SessionLimit:
		check.Blocked = true
		check.Reason = "3 consecutive follow-ups went unanswered"
	case check.GuiltLanguage:
		check.Blocked = true
		check.Reason = "proposed message contains guilt or pressure language"
	}

	return check
}
