package domain

import (
	"math"
	"time"
)

const (
	// scoreVersion tracks the scoring model for debugging and analysis.
	// Bump this when changing scoring logic significantly.
	scoreVersion = "2026-v1"

	// Maximum contribution from each factor category. Sub-scores are clamped
	// to these caps before the aggressiveness modifier is applied.
	maxStakesContribution           = 25
	maxWarmthContribution           = 20
	maxChannelNormsContribution     = 15
	maxTimePressureContribution     = 15
	maxEngagementContribution       = 15
	maxSilenceAmbiguityContribution = 10

	// channelNormsScore is fixed: the messaging channel is inherently
	// noise-tolerant, so this factor is a channel property, not lead state.
	channelNormsScore = 12
)

// Interpretation buckets a tolerance score into an action tier.
type Interpretation string

const (
	// InterpretationWait means the score argues against contact right now.
	InterpretationWait Interpretation = "wait"
	// InterpretationCareful means contact is borderline and needs the regret test.
	InterpretationCareful Interpretation = "careful"
	// InterpretationAcceptable means a follow-up is socially acceptable.
	InterpretationAcceptable Interpretation = "acceptable"
)

// ScoreBreakdown itemizes the six factor contributions of a tolerance score.
type ScoreBreakdown struct {
	Stakes           int `json:"stakes"`
	Warmth           int `json:"warmth"`
	ChannelNorms     int `json:"channelNorms"`
	TimePressure     int `json:"timePressure"`
	Engagement       int `json:"engagement"`
	SilenceAmbiguity int `json:"silenceAmbiguity"`
}

// ToleranceScore is the 0-100 composite measure of how acceptable a proactive
// follow-up is right now, with its full factor breakdown.
type ToleranceScore struct {
	Total          int            `json:"total"`
	Breakdown      ScoreBreakdown `json:"breakdown"`
	Interpretation Interpretation `json:"interpretation"`
	Version        string         `json:"version"`
}

// ScoreTolerance computes the spam tolerance score for a lead given its
// conversation history and the configured aggressiveness. Deterministic and
// pure: identical inputs always produce an identical score.
func (e *Engine) ScoreTolerance(lead LeadContext, conversation []ConversationMessage, settings Settings, now time.Time) ToleranceScore {
	breakdown := ScoreBreakdown{
		Stakes:           e.scoreStakes(lead, now),
		Warmth:           e.scoreWarmth(lead, conversation),
		ChannelNorms:     clampInt(channelNormsScore, 0, maxChannelNormsContribution),
		TimePressure:     e.scoreTimePressure(lead, conversation, now),
		Engagement:       e.scoreEngagement(lead, conversation),
		SilenceAmbiguity: e.scoreSilenceAmbiguity(conversation),
	}

	sum := breakdown.Stakes +
		breakdown.Warmth +
		breakdown.ChannelNorms +
		breakdown.TimePressure +
		breakdown.Engagement +
		breakdown.SilenceAmbiguity

	total := clampInt(int(math.Round(float64(sum)*aggressivenessModifier(settings.Aggressiveness))), 0, 100)

	return ToleranceScore{
		Total:          total,
		Breakdown:      breakdown,
		Interpretation: interpretScore(total),
		Version:        scoreVersion,
	}
}

// aggressivenessModifier maps the 1-10 dial onto a multiplier around 1.0.
// Dial 5 is neutral; each step moves the final score by 4%.
func aggressivenessModifier(aggressiveness int) float64 {
	return 1 + float64(aggressiveness-5)*0.04
}

func interpretScore(total int) Interpretation {
	switch {
	case total >= 60:
		return InterpretationAcceptable
	case total >= 30:
		return InterpretationCareful
	default:
		return InterpretationWait
	}
}

// scoreStakes evaluates how much is on the line for this conversation.
// Longer threads, high-value pipeline stages and recent inbound activity all
// raise the stakes of going silent.
func (e *Engine) scoreStakes(lead LeadContext, now time.Time) int {
	score := 5

	switch {
	case lead.MessageCount >= 10:
		score += 8
	case lead.MessageCount >= 5:
		score += 5
	case lead.MessageCount >= 2:
		score += 2
	}

	if IsHighValueStage(lead.PipelineStage) {
		score += 7
	}

	if lead.LastInboundAt != nil {
		age := now.Sub(*lead.LastInboundAt)
		switch {
		case age < 4*time.Hour:
			score += 5
		case age < 24*time.Hour:
			score += 3
		}
	}

	return clampInt(score, 0, maxStakesContribution)
}

// scoreWarmth evaluates how established the relationship is. A lead who has
// written back repeatedly and shared a name tolerates more outreach.
func (e *Engine) scoreWarmth(lead LeadContext, conversation []ConversationMessage) int {
	score := 5

	switch {
	case lead.MessageCount >= 10:
		score += 8
	case lead.MessageCount >= 5:
		score += 5
	case lead.MessageCount >= 2:
		score += 3
	}

	userCount := len(userMessages(conversation))
	switch {
	case userCount >= 5:
		score += 4
	case userCount >= 2:
		score += 2
	}

	if lead.DisplayName != "" {
		score += 3
	}

	return clampInt(score, 0, maxWarmthContribution)
}

// scoreTimePressure evaluates urgency: urgency keywords in the recent tail
// and long-cold threads both argue for reaching out sooner.
func (e *Engine) scoreTimePressure(lead LeadContext, conversation []ConversationMessage, now time.Time) int {
	score := 3

	keywordBonus := 0
	for _, msg := range lastN(conversation, 5) {
		if containsAnyPhrase(msg.Content, e.phrases.Urgency) {
			keywordBonus += 3
		}
	}
	if keywordBonus > 8 {
		keywordBonus = 8
	}
	score += keywordBonus

	if lead.LastInboundAt != nil && now.Sub(*lead.LastInboundAt) > 48*time.Hour {
		score += 4
	}

	return clampInt(score, 0, maxTimePressureContribution)
}

// scoreEngagement evaluates how actively the lead has participated: any reply
// at all, questions asked, and a clean no-response record.
func (e *Engine) scoreEngagement(lead LeadContext, conversation []ConversationMessage) int {
	score := 2

	users := userMessages(conversation)
	if len(users) > 0 {
		score += 5
	}

	questionBonus := 0
	for _, msg := range users {
		if containsQuestion(msg.Content) {
			questionBonus += 2
		}
	}
	if questionBonus > 5 {
		questionBonus = 5
	}
	score += questionBonus

	if lead.FollowupsNoResponse == 0 {
		score += 3
	}

	return clampInt(score, 0, maxEngagementContribution)
}

// scoreSilenceAmbiguity evaluates whether the lead's silence is genuinely
// ambiguous. An explicit disengagement phrase removes all ambiguity; an open
// question from the lead raises it.
func (e *Engine) scoreSilenceAmbiguity(conversation []ConversationMessage) int {
	last := lastUserMessage(conversation)
	if last == nil {
		return 5
	}

	if containsAnyPhrase(last.Content, e.phrases.Disengagement) {
		return 0
	}

	score := 5
	if containsQuestion(last.Content) {
		score += 5
	}

	return clampInt(score, 0, maxSilenceAmbiguityContribution)
}

func containsQuestion(text string) bool {
	for _, r := range text {
		if r == '?' {
			return true
		}
	}
	return false
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
