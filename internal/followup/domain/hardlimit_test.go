package domain

import (
	"strings"
	"testing"
	"time"
)

func TestCheckHardLimitsRapidFire(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name    string
		sentAgo time.Duration
		want    bool
	}{
		{"one minute ago", time.Minute, true},
		{"just under the floor", 3*time.Minute - time.Second, true},
		{"exactly the floor", 3 * time.Minute, false},
		{"an hour ago", time.Hour, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lead := LeadContext{LastFollowupAt: timePtr(testNow.Add(-tc.sentAgo))}
			check := e.CheckHardLimits(lead, "", testNow)
			if check.RapidFire != tc.want {
				t.Errorf("RapidFire = %v, want %v", check.RapidFire, tc.want)
			}
			if check.Blocked != tc.want {
				t.Errorf("Blocked = %v, want %v", check.Blocked, tc.want)
			}
		})
	}
}

func TestCheckHardLimitsLateNight(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		hour int
		want bool
	}{
		{6, true},
		{7, false},
		{13, false},
		{21, false},
		{22, true},
		{23, true},
		{0, true},
		{3, true},
	}

	for _, tc := range tests {
		now := time.Date(2026, 3, 12, tc.hour, 30, 0, 0, time.UTC)
		check := e.CheckHardLimits(LeadContext{}, "", now)
		if check.LateNight != tc.want {
			t.Errorf("hour %d: LateNight = %v, want %v", tc.hour, check.LateNight, tc.want)
		}
	}
}

func TestCheckHardLimitsSessionLimit(t *testing.T) {
	e := newTestEngine()

	for _, count := range []int{0, 1, 2} {
		check := e.CheckHardLimits(LeadContext{FollowupsNoResponse: count}, "", testNow)
		if check.SessionLimit {
			t.Errorf("count %d should not hit the session limit", count)
		}
	}
	for _, count := range []int{3, 4, 10} {
		check := e.CheckHardLimits(LeadContext{FollowupsNoResponse: count}, "", testNow)
		if !check.SessionLimit || !check.Blocked {
			t.Errorf("count %d should hit the session limit", count)
		}
	}
}

func TestCheckHardLimitsGuiltLanguage(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"empty message has nothing to inspect", "", false},
		{"neutral message", "Just a quick update on your quote.", false},
		{"still waiting", "Hi, still waiting on your answer.", true},
		{"please respond", "Please respond when you can.", true},
		{"urgent pressure", "This is URGENT, call me.", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			check := e.CheckHardLimits(LeadContext{}, tc.message, testNow)
			if check.GuiltLanguage != tc.want {
				t.Errorf("GuiltLanguage = %v, want %v", check.GuiltLanguage, tc.want)
			}
		})
	}
}

func TestCheckHardLimitsReasonPriorityOrder(t *testing.T) {
	e := newTestEngine()

	// All four limits at once: only the rapid-fire reason surfaces.
	lead := LeadContext{
		LastFollowupAt:      timePtr(time.Date(2026, 3, 12, 23, 0, 0, 0, time.UTC).Add(-time.Minute)),
		FollowupsNoResponse: 5,
	}
	now := time.Date(2026, 3, 12, 23, 0, 0, 0, time.UTC)
	check := e.CheckHardLimits(lead, "still waiting!!", now)

	if !check.RapidFire || !check.LateNight || !check.SessionLimit || !check.GuiltLanguage {
		t.Fatalf("expected all limits to trip, got %+v", check)
	}
	if !strings.Contains(check.Reason, "3 minutes") {
		t.Errorf("Reason = %q, want the rapid-fire reason first", check.Reason)
	}
}
