package domain

import (
	"strings"
	"testing"
)

func TestDetectDisengagementExplicitPhraseStopsAlone(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"not interested", "sorry, not interested", true},
		{"stop", "please stop", true},
		{"busy", "really busy this week", true},
		{"unsubscribe", "unsubscribe me", true},
		{"neutral", "sounds good, send the quote", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conv := []ConversationMessage{userMsg(tc.text)}
			signals := e.DetectDisengagement(LeadContext{}, conv)
			if signals.ExplicitDisengage != tc.want {
				t.Errorf("ExplicitDisengage = %v, want %v", signals.ExplicitDisengage, tc.want)
			}
			if signals.ShouldStop != tc.want {
				t.Errorf("ShouldStop = %v, want %v (explicit disengage stops alone)", signals.ShouldStop, tc.want)
			}
		})
	}
}

func TestDetectDisengagementExplicitOnlyScansLastThreeUserMessages(t *testing.T) {
	e := newTestEngine()

	conv := []ConversationMessage{
		userMsg("I'm busy right now"), // old, outside the window
		userMsg("actually this looks great"),
		userMsg("tell me more about pricing"),
		userMsg("and the timeline too"),
	}
	signals := e.DetectDisengagement(LeadContext{}, conv)
	if signals.ExplicitDisengage {
		t.Errorf("phrase outside the last 3 user messages should not count")
	}
}

func TestDetectDisengagementMultipleNoResponseStopsAlone(t *testing.T) {
	e := newTestEngine()

	signals := e.DetectDisengagement(LeadContext{FollowupsNoResponse: 3}, nil)
	if !signals.MultipleNoResponse {
		t.Fatalf("expected MultipleNoResponse at counter 3")
	}
	if !signals.ShouldStop {
		t.Errorf("MultipleNoResponse must stop activity on its own")
	}

	signals = e.DetectDisengagement(LeadContext{FollowupsNoResponse: 2}, nil)
	if signals.MultipleNoResponse || signals.ShouldStop {
		t.Errorf("counter 2 should not stop: %+v", signals)
	}
}

func TestDetectDisengagementShorterReplies(t *testing.T) {
	e := newTestEngine()

	long := strings.Repeat("I have a lot to say about this project. ", 3)

	tests := []struct {
		name string
		conv []ConversationMessage
		want bool
	}{
		{
			"replies shrinking to fragments",
			[]ConversationMessage{
				userMsg(long), userMsg(long), userMsg(long),
				userMsg("ok"), userMsg("sure"), userMsg("fine"),
			},
			true,
		},
		{
			"steady reply lengths",
			[]ConversationMessage{
				userMsg(long), userMsg(long), userMsg(long),
				userMsg(long), userMsg(long), userMsg(long),
			},
			false,
		},
		{
			"too few user messages",
			[]ConversationMessage{userMsg("ok"), userMsg("sure")},
			false,
		},
		{
			"exactly three user messages has no baseline",
			[]ConversationMessage{userMsg("ok"), userMsg("sure"), userMsg("fine")},
			false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			signals := e.DetectDisengagement(LeadContext{}, tc.conv)
			if signals.ShorterReplies != tc.want {
				t.Errorf("ShorterReplies = %v, want %v", signals.ShorterReplies, tc.want)
			}
		})
	}
}

func TestDetectDisengagementSlowerRepliesReserved(t *testing.T) {
	e := newTestEngine()
	conv := []ConversationMessage{userMsg("a"), userMsg("b"), userMsg("c"), userMsg("d")}
	if e.DetectDisengagement(LeadContext{}, conv).SlowerReplies {
		t.Errorf("SlowerReplies is reserved and must stay false")
	}
}

func TestDetectDisengagementConfidence(t *testing.T) {
	e := newTestEngine()

	// No signals.
	signals := e.DetectDisengagement(LeadContext{}, nil)
	if signals.Confidence != 0 {
		t.Errorf("Confidence = %d, want 0", signals.Confidence)
	}

	// Explicit disengage + multiple no-response: two active signals.
	conv := []ConversationMessage{userMsg("stop messaging me")}
	signals = e.DetectDisengagement(LeadContext{FollowupsNoResponse: 4}, conv)
	if signals.Confidence != 50 {
		t.Errorf("Confidence = %d, want 50", signals.Confidence)
	}
	if !signals.ShouldStop {
		t.Errorf("expected ShouldStop with two active signals")
	}
}
