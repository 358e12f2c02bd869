package domain

// DisengagementSignals holds the heuristic withdrawal indicators computed
// over the conversation tail, a derived stop verdict, and a 0-100 confidence.
type DisengagementSignals struct {
	ShorterReplies     bool `json:"shorterReplies"`
	SlowerReplies      bool `json:"slowerReplies"`
	ExplicitDisengage  bool `json:"explicitDisengage"`
	MultipleNoResponse bool `json:"multipleNoResponse"`
	ShouldStop         bool `json:"shouldStop"`
	Confidence         int  `json:"confidence"`
}

// DetectDisengagement infers whether the lead is withdrawing from the
// conversation. Explicit disengagement or a full no-response streak each stop
// activity on their own; softer signals need corroboration.
func (e *Engine) DetectDisengagement(lead LeadContext, conversation []ConversationMessage) DisengagementSignals {
	signals := DisengagementSignals{}

	users := userMessages(conversation)

	signals.ShorterReplies = repliesGettingShorter(users)

	// SlowerReplies is a reserved heuristic: timestamp-gap analysis is an
	// extension point, not a contract. It stays false until implemented.
	signals.SlowerReplies = false

	for _, msg := range lastN(users, 3) {
		if containsAnyPhrase(msg.Content, e.phrases.Disengagement) {
			signals.ExplicitDisengage = true
			break
		}
	}

	signals.MultipleNoResponse = lead.FollowupsNoResponse >= sessionLimitMax

	active := 0
	for _, on := range []bool{signals.ShorterReplies, signals.SlowerReplies, signals.ExplicitDisengage, signals.MultipleNoResponse} {
		if on {
			active++
		}
	}

	signals.ShouldStop = active >= 2 || signals.ExplicitDisengage || signals.MultipleNoResponse
	signals.Confidence = clampInt(active*25, 0, 100)

	return signals
}

// repliesGettingShorter compares the average length of the last three user
// messages against the average of all earlier ones. Needs at least three user
// messages plus an earlier baseline; anything less reads as false.
func repliesGettingShorter(users []ConversationMessage) bool {
	if len(users) < 3 {
		return false
	}

	recent := users[len(users)-3:]
	earlier := users[:len(users)-3]
	if len(earlier) == 0 {
		return false
	}

	recentAvg := averageLength(recent)
	earlierAvg := averageLength(earlier)
	if earlierAvg == 0 {
		return false
	}

	return recentAvg < earlierAvg*0.5
}

func averageLength(msgs []ConversationMessage) float64 {
	if len(msgs) == 0 {
		return 0
	}
	total := 0
	for _, msg := range msgs {
		total += len(msg.Content)
	}
	return float64(total) / float64(len(msgs))
}
