package domain

// Justification holds the four independent conditions that argue in favor of
// proactive contact, plus the literal reasons for the ones that hold.
// Exposed to callers for explainability: every true condition carries a
// human-readable reason string.
type Justification struct {
	HighStakes       bool     `json:"highStakes"`
	AmbiguousSilence bool     `json:"ambiguousSilence"`
	TolerantChannel  bool     `json:"tolerantChannel"`
	AsymmetricValue  bool     `json:"asymmetricValue"`
	ActiveCount      int      `json:"activeCount"`
	Reasons          []string `json:"reasons"`
}

// EvaluateJustification checks the four contact-justification conditions.
// Each condition is independent; none of them can veto another.
func (e *Engine) EvaluateJustification(lead LeadContext, conversation []ConversationMessage) Justification {
	j := Justification{
		// The channel itself tolerates unsolicited messages; this is a
		// property of the medium, not of the lead.
		TolerantChannel: true,
	}

	if lead.MessageCount >= 5 || IsHighValueStage(lead.PipelineStage) {
		j.HighStakes = true
	}

	last := lastUserMessage(conversation)
	if last == nil || !containsAnyPhrase(last.Content, e.phrases.ExplicitNo) {
		j.AmbiguousSilence = true
	}

	if anyUserQuestion(conversation) || lead.MessageCount >= 3 {
		j.AsymmetricValue = true
	}

	if j.HighStakes {
		j.Reasons = append(j.Reasons, "high stakes: established thread or high-value pipeline stage")
	}
	if j.AmbiguousSilence {
		j.Reasons = append(j.Reasons, "ambiguous silence: the lead never said no")
	}
	if j.TolerantChannel {
		j.Reasons = append(j.Reasons, "tolerant channel: the medium accepts proactive messages")
	}
	if j.AsymmetricValue {
		j.Reasons = append(j.Reasons, "asymmetric value: open questions or an invested conversation")
	}

	j.ActiveCount = len(j.Reasons)
	return j
}

func anyUserQuestion(conversation []ConversationMessage) bool {
	for _, msg := range userMessages(conversation) {
		if containsQuestion(msg.Content) {
			return true
		}
	}
	return false
}
