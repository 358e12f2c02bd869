package domain

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SignalPhrase pairs a phrase with the tone signal it evidences.
type SignalPhrase struct {
	Phrase string `yaml:"phrase"`
	Signal Signal `yaml:"signal"`
}

// PhraseConfig externalizes every phrase list the engine matches against, so
// behavior can be tuned without redeploying logic. Matching itself stays pure
// and stateless: lowercase substring containment.
type PhraseConfig struct {
	// Disengagement phrases signal the lead is withdrawing ("busy", "stop").
	Disengagement []string `yaml:"disengagement"`
	// ExplicitNo phrases are unambiguous refusals that remove silence ambiguity.
	ExplicitNo []string `yaml:"explicit_no"`
	// Guilt phrases are pressure framings that must never appear in outgoing text.
	Guilt []string `yaml:"guilt"`
	// Urgency keywords raise the time-pressure score when the lead uses them.
	Urgency []string `yaml:"urgency"`
	// Acceptable tone phrases: urgency/care/responsibility framings.
	Acceptable []SignalPhrase `yaml:"acceptable"`
	// Bad tone phrases: anxiety/automation/desperation framings.
	Bad []SignalPhrase `yaml:"bad"`
}

// DefaultPhrases returns the built-in phrase lists.
func DefaultPhrases() PhraseConfig {
	return PhraseConfig{
		Disengagement: []string{
			"busy",
			"not interested",
			"stop",
			"unsubscribe",
			"leave me alone",
			"maybe later",
			"no longer interested",
		},
		ExplicitNo: []string{
			"not interested",
			"stop messaging",
			"stop contacting",
			"don't contact me",
			"no thanks",
			"unsubscribe",
		},
		Guilt: []string{
			"still waiting",
			"please respond",
			"urgent",
			"you haven't replied",
			"you haven't responded",
			"did you forget",
			"last chance",
			"why haven't you",
		},
		Urgency: []string{
			"urgent",
			"asap",
			"deadline",
			"soon",
			"today",
			"quickly",
			"immediately",
			"time sensitive",
		},
		Acceptable: []SignalPhrase{
			{Phrase: "just wanted to make sure", Signal: SignalCare},
			{Phrase: "quick update", Signal: SignalUrgency},
			{Phrase: "checking in", Signal: SignalCare},
			{Phrase: "in case it helps", Signal: SignalCare},
			{Phrase: "wanted to follow up", Signal: SignalResponsibility},
			{Phrase: "no rush", Signal: SignalCare},
			{Phrase: "happy to help", Signal: SignalResponsibility},
			{Phrase: "heads up", Signal: SignalUrgency},
		},
		Bad: []SignalPhrase{
			{Phrase: "still waiting", Signal: SignalAnxiety},
			{Phrase: "last chance", Signal: SignalDesperation},
			{Phrase: "please respond", Signal: SignalAnxiety},
			{Phrase: "final notice", Signal: SignalAutomation},
			{Phrase: "don't miss out", Signal: SignalDesperation},
			{Phrase: "act now", Signal: SignalDesperation},
			{Phrase: "this is an automated", Signal: SignalAutomation},
			{Phrase: "you haven't answered", Signal: SignalAnxiety},
		},
	}
}

// LoadPhrases reads a YAML phrase file and merges it over the defaults.
// Lists absent from the file keep their default entries, so a file can tune
// one list without restating the rest. An empty path returns the defaults.
func LoadPhrases(path string) (PhraseConfig, error) {
	defaults := DefaultPhrases()
	if strings.TrimSpace(path) == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, err
	}

	var loaded PhraseConfig
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return defaults, err
	}

	merged := defaults
	if len(loaded.Disengagement) > 0 {
		merged.Disengagement = loaded.Disengagement
	}
	if len(loaded.ExplicitNo) > 0 {
		merged.ExplicitNo = loaded.ExplicitNo
	}
	if len(loaded.Guilt) > 0 {
		merged.Guilt = loaded.Guilt
	}
	if len(loaded.Urgency) > 0 {
		merged.Urgency = loaded.Urgency
	}
	if len(loaded.Acceptable) > 0 {
		merged.Acceptable = loaded.Acceptable
	}
	if len(loaded.Bad) > 0 {
		merged.Bad = loaded.Bad
	}

	return merged, nil
}

// containsAnyPhrase reports whether text contains any of the phrases,
// case-insensitively.
func containsAnyPhrase(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range phrases {
		if phrase == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}
