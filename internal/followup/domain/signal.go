package domain

// Signal is the dominant motive a candidate message's tone evidences.
type Signal string

const (
	SignalNeutral Signal = "neutral"

	// Acceptable motives.
	SignalUrgency        Signal = "urgency"
	SignalCare           Signal = "care"
	SignalResponsibility Signal = "responsibility"

	// Unhealthy motives.
	SignalAnxiety     Signal = "anxiety"
	SignalAutomation  Signal = "automation"
	SignalDesperation Signal = "desperation"
)

// SignalCheck classifies the tone of a candidate outgoing message. It is
// informational: the decision gates never consult it, but callers use it for
// message-quality checks before sending.
type SignalCheck struct {
	PrimarySignal     Signal `json:"primarySignal"`
	IsAcceptable      bool   `json:"isAcceptable"`
	Confidence        int    `json:"confidence"`
	AcceptableMatches int    `json:"acceptableMatches"`
	BadMatches        int    `json:"badMatches"`
}

// ClassifySignal matches a message against the acceptable and bad phrase
// lists and takes a majority vote. Ties go to acceptable; no matches at all
// read as a neutral, acceptable message with baseline confidence.
func (e *Engine) ClassifySignal(message string) SignalCheck {
	acceptable, acceptableSignal := matchSignalPhrases(message, e.phrases.Acceptable)
	bad, badSignal := matchSignalPhrases(message, e.phrases.Bad)

	total := acceptable + bad
	if total == 0 {
		return SignalCheck{
			PrimarySignal: SignalNeutral,
			IsAcceptable:  true,
			Confidence:    50,
		}
	}

	check := SignalCheck{
		AcceptableMatches: acceptable,
		BadMatches:        bad,
	}

	if acceptable >= bad {
		check.IsAcceptable = true
		check.PrimarySignal = acceptableSignal
	} else {
		check.PrimarySignal = badSignal
	}

	diff := acceptable - bad
	if diff < 0 {
		diff = -diff
	}
	margin := int(float64(diff) / float64(total) * 50)
	if margin > 50 {
		margin = 50
	}
	check.Confidence = 50 + margin

	return check
}

// matchSignalPhrases counts matches from one list and returns the signal with
// the most matches (first encountered wins ties).
func matchSignalPhrases(message string, phrases []SignalPhrase) (int, Signal) {
	matches := 0
	perSignal := make(map[Signal]int)
	best := SignalNeutral

	for _, entry := range phrases {
		if containsAnyPhrase(message, []string{entry.Phrase}) {
			matches++
			perSignal[entry.Signal]++
			if best == SignalNeutral || perSignal[entry.Signal] > perSignal[best] {
				best = entry.Signal
			}
		}
	}

	return matches, best
}
