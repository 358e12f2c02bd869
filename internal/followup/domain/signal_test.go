package domain

import "testing"

func TestClassifySignalNoMatchesIsNeutral(t *testing.T) {
	e := newTestEngine()

	check := e.ClassifySignal("Here is the document you asked for.")
	if check.PrimarySignal != SignalNeutral {
		t.Errorf("PrimarySignal = %s, want %s", check.PrimarySignal, SignalNeutral)
	}
	if !check.IsAcceptable {
		t.Errorf("neutral message should be acceptable")
	}
	if check.Confidence != 50 {
		t.Errorf("Confidence = %d, want 50", check.Confidence)
	}
}

func TestClassifySignalAcceptableMajority(t *testing.T) {
	e := newTestEngine()

	check := e.ClassifySignal("Just wanted to make sure you saw the quote - no rush, happy to help.")
	if !check.IsAcceptable {
		t.Fatalf("expected acceptable classification, got %+v", check)
	}
	if check.PrimarySignal != SignalCare && check.PrimarySignal != SignalResponsibility {
		t.Errorf("PrimarySignal = %s, want a caring motive", check.PrimarySignal)
	}
	if check.Confidence <= 50 {
		t.Errorf("Confidence = %d, want > 50 with a clear majority", check.Confidence)
	}
}

func TestClassifySignalBadMajority(t *testing.T) {
	e := newTestEngine()

	check := e.ClassifySignal("Still waiting... last chance, don't miss out!")
	if check.IsAcceptable {
		t.Fatalf("expected unacceptable classification, got %+v", check)
	}
	switch check.PrimarySignal {
	case SignalAnxiety, SignalDesperation, SignalAutomation:
	default:
		t.Errorf("PrimarySignal = %s, want an unhealthy motive", check.PrimarySignal)
	}
	if check.BadMatches < 2 {
		t.Errorf("BadMatches = %d, want >= 2", check.BadMatches)
	}
}

func TestClassifySignalTieGoesToAcceptable(t *testing.T) {
	e := newTestEngine()

	// One acceptable phrase and one bad phrase.
	check := e.ClassifySignal("Quick update: still waiting on the supplier.")
	if check.AcceptableMatches != 1 || check.BadMatches != 1 {
		t.Fatalf("match counts = %d/%d, want 1/1", check.AcceptableMatches, check.BadMatches)
	}
	if !check.IsAcceptable {
		t.Errorf("ties must resolve to acceptable")
	}
	if check.Confidence != 50 {
		t.Errorf("Confidence = %d, want 50 on a tie", check.Confidence)
	}
}

func TestClassifySignalConfidenceBounded(t *testing.T) {
	e := newTestEngine()

	check := e.ClassifySignal("last chance! act now! final notice! don't miss out!")
	if check.Confidence < 50 || check.Confidence > 100 {
		t.Errorf("Confidence = %d, want within [50,100]", check.Confidence)
	}
	if check.Confidence != 100 {
		t.Errorf("Confidence = %d, want 100 for a one-sided match set", check.Confidence)
	}
}
