package admin

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrInvalidDay  = errors.New("day must be between 0 and 6")
	ErrInvalidTime = errors.New("time must be HH:MM")
	ErrEmptyShift  = errors.New("start time must be before end time")
)

const (
	defaultStart = "09:00"
	defaultEnd   = "18:00"
)

// WorkingDay is one weekday schedule. Day follows time.Weekday: 0 is Sunday.
type WorkingDay struct {
	Day       int    `json:"day"`
	DayName   string `json:"dayName,omitempty"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Enabled   bool   `json:"enabled"`
}

var dayNames = [7]string{
	"Воскресенье",
	"Понедельник",
	"Вторник",
	"Среда",
	"Четверг",
	"Пятница",
	"Суббота",
}

// DefaultWorkingDays is a Monday to Friday 09:00-18:00 week.
func DefaultWorkingDays() []WorkingDay {
	days := make([]WorkingDay, 7)
	for d := 0; d < 7; d++ {
		days[d] = WorkingDay{
			Day:       d,
			DayName:   dayNames[d],
			StartTime: defaultStart,
			EndTime:   defaultEnd,
			Enabled:   d != int(time.Sunday) && d != int(time.Saturday),
		}
	}
	return days
}

// MergeWorkingDays overlays saved days on the default week. Saved entries
// with a day outside 0..6 are ignored.
func MergeWorkingDays(saved []WorkingDay) []WorkingDay {
	days := DefaultWorkingDays()
	sorted := append([]WorkingDay(nil), saved...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Day < sorted[j].Day })

	for _, s := range sorted {
		if s.Day < 0 || s.Day > 6 {
			continue
		}
		d := days[s.Day]
		if s.StartTime != "" {
			d.StartTime = s.StartTime
		}
		if s.EndTime != "" {
			d.EndTime = s.EndTime
		}
		d.Enabled = s.Enabled
		days[s.Day] = d
	}
	return days
}

// ValidateWorkingDays checks day numbers and HH:MM times. Disabled days only
// need well-formed times.
func ValidateWorkingDays(days []WorkingDay) error {
	for _, d := range days {
		if d.Day < 0 || d.Day > 6 {
			return fmt.Errorf("day %d: %w", d.Day, ErrInvalidDay)
		}
		start, err := time.Parse("15:04", d.StartTime)
		if err != nil {
			return fmt.Errorf("%s start %q: %w", dayNames[d.Day], d.StartTime, ErrInvalidTime)
		}
		end, err := time.Parse("15:04", d.EndTime)
		if err != nil {
			return fmt.Errorf("%s end %q: %w", dayNames[d.Day], d.EndTime, ErrInvalidTime)
		}
		if d.Enabled && !start.Before(end) {
			return fmt.Errorf("%s: %w", dayNames[d.Day], ErrEmptyShift)
		}
	}
	return nil
}

// ForUpstream strips display-only fields before saving.
func ForUpstream(days []WorkingDay) []WorkingDay {
	out := make([]WorkingDay, len(days))
	for i, d := range days {
		d.DayName = ""
		out[i] = d
	}
	return out
}

// IsWorkingAt reports whether t falls inside an enabled shift. t is
// interpreted in its own location.
func IsWorkingAt(days []WorkingDay, t time.Time) bool {
	wd := int(t.Weekday())
	clock := t.Format("15:04")
	for _, d := range MergeWorkingDays(days) {
		if d.Day != wd || !d.Enabled {
			continue
		}
		return clock >= d.StartTime && clock < d.EndTime
	}
	return false
}
