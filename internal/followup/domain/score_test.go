package domain

import (
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(DefaultPhrases())
}

func timePtr(t time.Time) *time.Time { return &t }

func userMsg(content string) ConversationMessage {
	return ConversationMessage{Role: RoleUser, Content: content}
}

func assistantMsg(content string) ConversationMessage {
	return ConversationMessage{Role: RoleAssistant, Content: content}
}

func TestScoreToleranceBreakdownNeverExceedsCaps(t *testing.T) {
	e := newTestEngine()

	leads := []LeadContext{
		{},
		{MessageCount: 50, PipelineStage: "qualified", DisplayName: "Ada", LastInboundAt: timePtr(testNow.Add(-time.Hour))},
		{MessageCount: 10, PipelineStage: "hot", DisplayName: "Bo", LastInboundAt: timePtr(testNow.Add(-72 * time.Hour))},
		{MessageCount: 3, FollowupsNoResponse: 2},
	}

	conversations := [][]ConversationMessage{
		nil,
		{
			userMsg("can you help me asap? this is urgent, deadline today"),
			userMsg("what would it cost? and when could you start?"),
			userMsg("is there a discount? need it quickly, time sensitive"),
			userMsg("ok?"),
			userMsg("still deciding, asap please?"),
		},
		{assistantMsg("hello"), userMsg("hi?")},
	}

	for _, lead := range leads {
		for _, conv := range conversations {
			for aggr := 1; aggr <= 10; aggr++ {
				score := e.ScoreTolerance(lead, conv, Settings{Aggressiveness: aggr}, testNow)

				if score.Total < 0 || score.Total > 100 {
					t.Errorf("total %d out of range for aggressiveness %d", score.Total, aggr)
				}
				b := score.Breakdown
				checks := []struct {
					name string
					got  int
					max  int
				}{
					{"stakes", b.Stakes, maxStakesContribution},
					{"warmth", b.Warmth, maxWarmthContribution},
					{"channelNorms", b.ChannelNorms, maxChannelNormsContribution},
					{"timePressure", b.TimePressure, maxTimePressureContribution},
					{"engagement", b.Engagement, maxEngagementContribution},
					{"silenceAmbiguity", b.SilenceAmbiguity, maxSilenceAmbiguityContribution},
				}
				for _, c := range checks {
					if c.got < 0 || c.got > c.max {
						t.Errorf("%s = %d, want within [0,%d]", c.name, c.got, c.max)
					}
				}
			}
		}
	}
}

func TestScoreToleranceWarmLeadScoresAcceptable(t *testing.T) {
	e := newTestEngine()

	lead := LeadContext{
		MessageCount:  10,
		PipelineStage: "qualified",
		DisplayName:   "Ada Lovelace",
		LastInboundAt: timePtr(testNow.Add(-2 * time.Hour)),
	}
	conv := []ConversationMessage{
		assistantMsg("hi, how can I help?"),
		userMsg("I need my roof insulated, what would that cost?"),
		assistantMsg("happy to quote that"),
		userMsg("great, when could you come by?"),
		userMsg("also, do you handle permits?"),
		userMsg("we own the house"),
		userMsg("looking forward to it"),
	}

	score := e.ScoreTolerance(lead, conv, Settings{Aggressiveness: 5}, testNow)

	if score.Breakdown.Stakes != maxStakesContribution {
		t.Errorf("stakes = %d, want %d", score.Breakdown.Stakes, maxStakesContribution)
	}
	if score.Breakdown.Warmth != maxWarmthContribution {
		t.Errorf("warmth = %d, want %d", score.Breakdown.Warmth, maxWarmthContribution)
	}
	if score.Total < 60 {
		t.Errorf("total = %d, want >= 60", score.Total)
	}
	if score.Interpretation != InterpretationAcceptable {
		t.Errorf("interpretation = %s, want %s", score.Interpretation, InterpretationAcceptable)
	}
}

func TestScoreToleranceAggressivenessModifier(t *testing.T) {
	tests := []struct {
		aggressiveness int
		want           float64
	}{
		{1, 0.84},
		{5, 1.0},
		{10, 1.2},
	}
	for _, tc := range tests {
		got := aggressivenessModifier(tc.aggressiveness)
		if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("aggressivenessModifier(%d) = %v, want %v", tc.aggressiveness, got, tc.want)
		}
	}
}

func TestScoreToleranceHigherDialNeverLowersScore(t *testing.T) {
	e := newTestEngine()
	lead := LeadContext{MessageCount: 6, DisplayName: "Bo"}
	conv := []ConversationMessage{userMsg("what about pricing?")}

	prev := -1
	for aggr := 1; aggr <= 10; aggr++ {
		score := e.ScoreTolerance(lead, conv, Settings{Aggressiveness: aggr}, testNow)
		if score.Total < prev {
			t.Errorf("aggressiveness %d lowered score: %d < %d", aggr, score.Total, prev)
		}
		prev = score.Total
	}
}

func TestScoreSilenceAmbiguity(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name string
		conv []ConversationMessage
		want int
	}{
		{"no history is ambiguous", nil, 5},
		{"plain message stays ambiguous", []ConversationMessage{userMsg("let me think about it")}, 5},
		{"question raises ambiguity", []ConversationMessage{userMsg("how much would it be?")}, 10},
		{"disengagement removes ambiguity", []ConversationMessage{userMsg("I'm not interested")}, 0},
		{"disengagement wins over question", []ConversationMessage{userMsg("can you stop messaging me?")}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.scoreSilenceAmbiguity(tc.conv); got != tc.want {
				t.Errorf("scoreSilenceAmbiguity = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestInterpretScoreTiers(t *testing.T) {
	tests := []struct {
		total int
		want  Interpretation
	}{
		{0, InterpretationWait},
		{29, InterpretationWait},
		{30, InterpretationCareful},
		{59, InterpretationCareful},
		{60, InterpretationAcceptable},
		{100, InterpretationAcceptable},
	}
	for _, tc := range tests {
		if got := interpretScore(tc.total); got != tc.want {
			t.Errorf("interpretScore(%d) = %s, want %s", tc.total, got, tc.want)
		}
	}
}

func TestScoreTimePressureKeywordContributionCapped(t *testing.T) {
	e := newTestEngine()

	conv := []ConversationMessage{
		userMsg("urgent!"),
		userMsg("asap please"),
		userMsg("deadline is today"),
		userMsg("need it quickly"),
		userMsg("time sensitive matter"),
	}
	lead := LeadContext{LastInboundAt: timePtr(testNow.Add(-time.Hour))}

	// Five keyword messages would add 15 uncapped; the contribution cap is 8.
	if got := e.scoreTimePressure(lead, conv, testNow); got != 11 {
		t.Errorf("scoreTimePressure = %d, want 11 (base 3 + capped 8)", got)
	}
}

func TestScoreVersionTagged(t *testing.T) {
	e := newTestEngine()
	score := e.ScoreTolerance(LeadContext{}, nil, Settings{Aggressiveness: 5}, testNow)
	if !strings.HasPrefix(score.Version, "2026") {
		t.Errorf("score version = %q, want a dated version tag", score.Version)
	}
}
