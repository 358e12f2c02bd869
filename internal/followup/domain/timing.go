package domain

// TimingPolicy maps a tolerance score to the allowed messaging cadence. It
// informs scheduling only: the hard limit guard's 3-minute floor and quiet
// hours always win.
type TimingPolicy struct {
	SameDayAllowed      bool `json:"sameDayAllowed"`
	MinIntervalMinutes  int  `json:"minIntervalMinutes"`
	WindowReuseAllowed  bool `json:"windowReuseAllowed"`
	SessionBreakMinutes int  `json:"sessionBreakMinutes"`
}

// TimingFor returns the cadence tier for a score total.
func TimingFor(total int) TimingPolicy {
	switch {
	case total >= 80:
		return TimingPolicy{
			SameDayAllowed:      true,
			MinIntervalMinutes:  15,
			WindowReuseAllowed:  true,
			SessionBreakMinutes: 15,
		}
	case total >= 60:
		return TimingPolicy{
			SameDayAllowed:      true,
			MinIntervalMinutes:  30,
			WindowReuseAllowed:  true,
			SessionBreakMinutes: 30,
		}
	case total >= 30:
		return TimingPolicy{
			SameDayAllowed:      true,
			MinIntervalMinutes:  45,
			SessionBreakMinutes: 45,
		}
	default:
		return TimingPolicy{
			MinIntervalMinutes:  60,
			SessionBreakMinutes: 60,
		}
	}
}
