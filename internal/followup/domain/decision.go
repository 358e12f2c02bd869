package domain

import (
	"fmt"
	"strings"
	"time"
)

// Gate names surfaced on decisions, in evaluation priority order.
const (
	GateHardLimit     = "hard_limit"
	GateDisengagement = "disengagement"
	GateArcComplete   = "arc_complete"
	GateLiveSession   = "live_session"
	GateLowScore      = "low_score"
	GateRegretTest    = "regret_test"
	GateApproved      = "approved"
)

// Input is the complete snapshot a decision is computed from. Now is supplied
// by the caller in the lead's local time zone; quiet hours depend on it.
type Input struct {
	Lead            LeadContext
	Conversation    []ConversationMessage
	Settings        Settings
	ProposedMessage string
	Now             time.Time
}

// Decision is the full composite result of one evaluation. Every rejection
// path returns the same fully populated structure so callers can audit why
// without re-computing; there is no error case.
type Decision struct {
	ShouldFollowUp   bool                 `json:"shouldFollowUp"`
	Gate             string               `json:"gate"`
	Reason           string               `json:"reason"`
	Score            ToleranceScore       `json:"score"`
	Justification    Justification        `json:"justification"`
	Arc              EscalationArc        `json:"arc"`
	HardLimits       HardLimitCheck       `json:"hardLimits"`
	Disengagement    DisengagementSignals `json:"disengagement"`
	Session          SessionState         `json:"session"`
	Timing           TimingPolicy         `json:"timing"`
	Signal           SignalCheck          `json:"signal"`
	RegretTestPassed bool                 `json:"regretTestPassed"`
	Reasoning        string               `json:"reasoning"`
	InternalThought  string               `json:"internalThought"`
}

// Engine is the follow-up decision engine. It holds only the phrase lists;
// all state lives in the input snapshot, so one Engine is safe to share
// across goroutines and leads.
type Engine struct {
	phrases PhraseConfig
}

// NewEngine creates an engine with the given phrase configuration.
func NewEngine(phrases PhraseConfig) *Engine {
	return &Engine{phrases: phrases}
}

// gate is one named guard in the decision sequence. It either rejects with a
// reason or lets evaluation continue. Making the sequence an explicit ordered
// list keeps the priority order a first-class, testable artifact.
type gate struct {
	name    string
	rejects func(d *Decision) (bool, string)
}

var gateSequence = []gate{
	{GateHardLimit, func(d *Decision) (bool, string) {
		if d.HardLimits.Blocked {
			return true, "blocked by hard limit: " + d.HardLimits.Reason
		}
		return false, ""
	}},
	{GateDisengagement, func(d *Decision) (bool, string) {
		if d.Disengagement.ShouldStop {
			return true, "lead is disengaging"
		}
		return false, ""
	}},
	{GateArcComplete, func(d *Decision) (bool, string) {
		if !d.Arc.CanSend {
			return true, "escalation arc complete"
		}
		return false, ""
	}},
	{GateLiveSession, func(d *Decision) (bool, string) {
		if d.Session.InLiveSession && d.Score.Total < 70 && d.Justification.ActiveCount < 2 {
			return true, "waiting for session break"
		}
		return false, ""
	}},
	{GateLowScore, func(d *Decision) (bool, string) {
		if d.Score.Interpretation == InterpretationWait && d.Justification.ActiveCount == 0 {
			return true, "score too low, no justification"
		}
		return false, ""
	}},
	{GateRegretTest, func(d *Decision) (bool, string) {
		if d.Score.Interpretation == InterpretationCareful && !d.RegretTestPassed {
			return true, "borderline, regret test failed"
		}
		return false, ""
	}},
}

// Decide runs one complete evaluation: all leaf computations once, then the
// gate sequence in priority order, short-circuiting on the first failing gate.
// Pure and idempotent: identical inputs produce an identical decision.
func (e *Engine) Decide(in Input) Decision {
	d := Decision{
		Score:         e.ScoreTolerance(in.Lead, in.Conversation, in.Settings, in.Now),
		Justification: e.EvaluateJustification(in.Lead, in.Conversation),
		Arc:           ArcAt(in.Lead.ArcPosition),
		HardLimits:    e.CheckHardLimits(in.Lead, in.ProposedMessage, in.Now),
		Disengagement: e.DetectDisengagement(in.Lead, in.Conversation),
		Session:       DetectSession(in.Lead, in.Now),
		Signal:        e.ClassifySignal(in.ProposedMessage),
	}
	d.Timing = TimingFor(d.Score.Total)

	for _, g := range gateSequence {
		if g.name == GateRegretTest {
			// Only meaningful once every earlier gate has passed; a decision
			// rejected before this point reports the test as not passed.
			d.RegretTestPassed = passesRegretTest(d.Score, d.Justification, d.Arc)
		}
		if rejected, reason := g.rejects(&d); rejected {
			d.ShouldFollowUp = false
			d.Gate = g.name
			d.Reason = reason
			if g.name != GateRegretTest {
				d.RegretTestPassed = false
			}
			d.Reasoning = buildReasoning(&d)
			d.InternalThought = buildInternalThought(&d)
			return d
		}
	}

	d.ShouldFollowUp = true
	d.Gate = GateApproved
	d.Reason = "follow-up approved"
	d.Reasoning = buildReasoning(&d)
	d.InternalThought = buildInternalThought(&d)
	return d
}

// passesRegretTest resolves borderline cases by combining score and
// justification count. The unconditional pass at the final-try arc position
// is deliberate: the arc always gets its one last attempt before stopping.
func passesRegretTest(score ToleranceScore, justification Justification, arc EscalationArc) bool {
	if score.Total >= 60 {
		return true
	}
	if justification.ActiveCount == 0 {
		return false
	}
	if arc.IsFinalTry() {
		return true
	}
	if score.Total >= 30 {
		return justification.ActiveCount >= 2
	}
	return justification.ActiveCount >= 3
}

// buildReasoning produces the structured audit string.
func buildReasoning(d *Decision) string {
	var b strings.Builder

	if d.ShouldFollowUp {
		b.WriteString("approved")
	} else {
		fmt.Fprintf(&b, "rejected at %s (%s)", d.Gate, d.Reason)
	}

	fmt.Fprintf(&b, " | score %d/100 (%s): stakes=%d warmth=%d channel=%d pressure=%d engagement=%d ambiguity=%d",
		d.Score.Total, d.Score.Interpretation,
		d.Score.Breakdown.Stakes, d.Score.Breakdown.Warmth, d.Score.Breakdown.ChannelNorms,
		d.Score.Breakdown.TimePressure, d.Score.Breakdown.Engagement, d.Score.Breakdown.SilenceAmbiguity)

	fmt.Fprintf(&b, " | arc %d/5 (%s)", d.Arc.Position, d.Arc.Tag)
	fmt.Fprintf(&b, " | justification %d/4 active", d.Justification.ActiveCount)
	fmt.Fprintf(&b, " | timing: min interval %dm, session break %dm",
		d.Timing.MinIntervalMinutes, d.Timing.SessionBreakMinutes)

	return b.String()
}

// buildInternalThought produces the narrative reasoning string. It frames
// intent rather than anxiety and carries no boolean logic: purely explanatory.
func buildInternalThought(d *Decision) string {
	if !d.ShouldFollowUp {
		switch d.Gate {
		case GateHardLimit:
			return "An absolute limit applies right now (" + d.HardLimits.Reason + "). Whatever the conversation looks like, this is not the moment."
		case GateDisengagement:
			return "The lead is pulling back from this conversation. Reaching out again would serve my anxiety, not their needs. Better to stay quiet."
		case GateArcComplete:
			return "I have already made my attempts for this sequence. The respectful move is silence until they come back on their own."
		case GateLiveSession:
			return "They were active very recently and nothing urgent justifies interrupting. I can wait for a natural break before showing up again."
		case GateLowScore:
			return "Nothing here argues for a message: the score is low and not a single justification holds. Waiting costs nothing."
		case GateRegretTest:
			return "This one is borderline, and when I picture sending it I would regret it more than staying quiet. Skipping this cycle."
		default:
			return "Holding off this cycle."
		}
	}

	var b strings.Builder
	b.WriteString("Reaching out feels right: ")

	switch d.Score.Interpretation {
	case InterpretationAcceptable:
		b.WriteString("the conversation is warm enough that a check-in reads as care, not noise.")
	case InterpretationCareful:
		b.WriteString("it is a judgment call, but the reasons to reach out outweigh the risk of annoying them.")
	default:
		b.WriteString("the signals are thin, yet the justification that remains is real.")
	}

	if d.Justification.AmbiguousSilence {
		b.WriteString(" Their silence never said no.")
	}
	if d.Arc.IsFinalTry() {
		b.WriteString(" This is the last attempt before I stop for good.")
	}

	return b.String()
}
