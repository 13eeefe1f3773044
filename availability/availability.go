// Package availability implements week-of-day availability modulation: a
// schedule of recurring windows (by day and hour) during which a server's
// capacity is considered reduced or unavailable, layered on top of a
// Simulation's optional start date.
package availability

import "time"

// Window is a recurring span within a week, [DayStart@HourStart,
// DayEnd@HourEnd), where Hour is 0-23. DayStart == DayEnd is a supported
// single-day span covering HourStart to HourEnd of that day.
type Window struct {
	DayStart, DayEnd   time.Weekday
	HourStart, HourEnd int
	Fraction           float64 // fraction of capacity available during this window, in [0, 1]
}

// Schedule is an ordered set of Windows. Later windows take precedence over
// earlier ones that overlap the same instant, so a caller can express "all
// week at 1.0, except weekends at 0.5" as two windows in that order.
type Schedule struct {
	Epoch   time.Time
	Windows []Window
}

// NewSchedule builds a Schedule anchored at epoch, the wall-clock instant
// corresponding to simulation time 0.
func NewSchedule(epoch time.Time) *Schedule {
	return &Schedule{Epoch: epoch}
}

// Add appends a window. Returns the receiver for chained construction.
func (s *Schedule) Add(w Window) *Schedule {
	s.Windows = append(s.Windows, w)
	return s
}

// FractionAt returns the available-capacity fraction at simulation time t
// (an offset in seconds from Epoch), defaulting to 1.0 (always available)
// if no window matches.
func (s *Schedule) FractionAt(t int64) float64 {
	when := s.Epoch.Add(time.Duration(t) * time.Second)
	fraction := 1.0
	for _, w := range s.Windows {
		if w.contains(when) {
			fraction = w.Fraction
		}
	}
	return fraction
}

func (w Window) contains(when time.Time) bool {
	day := when.Weekday()
	hour := when.Hour()
	if w.DayStart == w.DayEnd {
		return day == w.DayStart && hour >= w.HourStart && hour < w.HourEnd
	}
	if w.DayStart < w.DayEnd {
		if day < w.DayStart || day > w.DayEnd {
			return false
		}
	} else {
		// wraps across the week boundary (e.g. Fri..Mon)
		if day > w.DayEnd && day < w.DayStart {
			return false
		}
	}
	if day == w.DayStart && hour < w.HourStart {
		return false
	}
	if day == w.DayEnd && hour >= w.HourEnd {
		return false
	}
	return true
}
