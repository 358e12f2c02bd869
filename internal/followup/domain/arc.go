package domain

// ArcTag describes the posture of an escalation arc position.
type ArcTag string

const (
	ArcNormal      ArcTag = "normal"
	ArcShorter     ArcTag = "shorter"
	ArcUrgentNudge ArcTag = "urgent_nudge"
	ArcFinalTry    ArcTag = "final_try"
	ArcStopped     ArcTag = "stopped"
)

const (
	// ArcMinPosition is the opening position of a fresh escalation arc.
	ArcMinPosition = 1
	// ArcMaxPosition is the terminal position; no sends are allowed there.
	ArcMaxPosition = 5
	// arcFinalTryPosition is the last position that still permits a send.
	arcFinalTryPosition = 4
)

// EscalationArc is one position of the persisted 5-step state machine that
// limits how many unanswered follow-ups a lead receives. Position advances
// strictly by one after each unanswered follow-up and resets to the opening
// position the moment the lead replies.
type EscalationArc struct {
	Position         int     `json:"position"`
	Tag              ArcTag  `json:"tag"`
	TimingMultiplier float64 `json:"timingMultiplier"`
	CanSend          bool    `json:"canSend"`
}

// arcTable is the closed transition table. Illegal positions are
// unrepresentable: ArcAt clamps every input into [1,5].
var arcTable = [...]EscalationArc{
	{Position: 1, Tag: ArcNormal, TimingMultiplier: 1.0, CanSend: true},
	{Position: 2, Tag: ArcShorter, TimingMultiplier: 0.5, CanSend: true},
	{Position: 3, Tag: ArcUrgentNudge, TimingMultiplier: 0.3, CanSend: true},
	{Position: 4, Tag: ArcFinalTry, TimingMultiplier: 0.3, CanSend: true},
	{Position: 5, Tag: ArcStopped, TimingMultiplier: 0, CanSend: false},
}

// ArcAt returns the arc state for a persisted position, clamping out-of-range
// values so corrupt rows degrade to the nearest legal state instead of
// producing an illegal one.
func ArcAt(position int) EscalationArc {
	position = clampInt(position, ArcMinPosition, ArcMaxPosition)
	return arcTable[position-1]
}

// Advance returns the next arc position. The arc never skips positions and
// saturates at the terminal position.
func (a EscalationArc) Advance() EscalationArc {
	return ArcAt(a.Position + 1)
}

// Reset returns the opening arc position, used when the lead replies.
func (a EscalationArc) Reset() EscalationArc {
	return ArcAt(ArcMinPosition)
}

// IsFinalTry reports whether this is the last position that may still send.
// The regret test always passes here: the arc grants one last attempt before
// stopping, regardless of score.
func (a EscalationArc) IsFinalTry() bool {
	return a.Position == arcFinalTryPosition
}
