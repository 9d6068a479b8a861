package policy

import (
	"fmt"
	"strings"
	"time"
)

// Window is a compiled active-time window. Start and End are minutes since
// midnight in the window's location; End is exclusive.
type Window struct {
	days      map[time.Weekday]bool
	start     int
	end       int
	loc       *time.Location
	overnight bool
}

// Contains reports whether t falls inside the window. The check is done in
// the window's own timezone; callers may pass t in any location.
func (w Window) Contains(t time.Time) bool {
	local := t.In(w.loc)
	minute := local.Hour()*60 + local.Minute()

	if !w.overnight {
		return w.days[local.Weekday()] && minute >= w.start && minute < w.end
	}

	// Overnight: [start, 24:00) on a listed day, or [00:00, end) on the day
	// after a listed day.
	if w.days[local.Weekday()] && minute >= w.start {
		return true
	}
	return w.days[previousWeekday(local.Weekday())] && minute < w.end
}

func previousWeekday(d time.Weekday) time.Weekday {
	return (d + 6) % 7
}

// weekdayNames maps accepted day spellings to time.Weekday. Both the
// three-letter and full English names are accepted, case-insensitively.
var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday,
}

// parseClock parses a "15:04" wall-clock string into minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q; expected HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// compileWindow turns a validated WindowSpec into a Window. It repeats the
// structural checks the validator performs so that Compile is safe to call
// on its own.
func compileWindow(spec WindowSpec) (Window, error) {
	if len(spec.Days) == 0 {
		return Window{}, fmt.Errorf("window has no days")
	}

	days := make(map[time.Weekday]bool, len(spec.Days))
	for _, name := range spec.Days {
		d, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return Window{}, fmt.Errorf("unknown weekday %q", name)
		}
		days[d] = true
	}

	start, err := parseClock(spec.Start)
	if err != nil {
		return Window{}, fmt.Errorf("start: %w", err)
	}
	end, err := parseClock(spec.End)
	if err != nil {
		return Window{}, fmt.Errorf("end: %w", err)
	}

	if !spec.Overnight && end <= start {
		return Window{}, fmt.Errorf("end %q is not after start %q; set overnight: true for windows that cross midnight", spec.End, spec.Start)
	}
	if spec.Overnight && end == start {
		return Window{}, fmt.Errorf("overnight window start and end are both %q", spec.Start)
	}

	zone := spec.Timezone
	if zone == "" {
		zone = "UTC"
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Window{}, fmt.Errorf("unknown timezone %q", zone)
	}

	return Window{
		days:      days,
		start:     start,
		end:       end,
		loc:       loc,
		overnight: spec.Overnight,
	}, nil
}
