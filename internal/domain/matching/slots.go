package matching

import (
	"time"

	"github.com/vetlink/vetlink/internal/domain/clinic"
	"github.com/vetlink/vetlink/internal/domain/scheduling"
)

// GenerateSlots enumerates the clinic's free intervals of the given
// duration inside the window, stepping a 15-minute cursor across each
// open day and discarding intervals that overlap a blocking
// appointment. The result is ordered by (date, start time) and the
// function is pure: identical inputs always yield identical output.
//
// A clinic without operating hours produces no slots; the caller
// decides whether that is worth logging.
func GenerateSlots(cl *clinic.Clinic, appts []*scheduling.Appointment, window Window, durationMinutes int) []CandidateSlot {
	oh := cl.OperatingHours
	if oh == nil || durationMinutes <= 0 {
		return nil
	}

	openMin, closeMin, ok := dayRange(oh)
	if !ok {
		return nil
	}

	blocked := blockingByDate(appts)

	var slots []CandidateSlot
	loc := window.Start.Location()
	day := time.Date(window.Start.Year(), window.Start.Month(), window.Start.Day(), 0, 0, 0, 0, loc)
	for ; !day.After(window.End); day = day.AddDate(0, 0, 1) {
		if !oh.OpenOn(day.Weekday()) {
			continue
		}
		dayBlocked := blocked[day.Format("2006-01-02")]

		for t := openMin; t+durationMinutes <= closeMin; t += SlotStepMinutes {
			startAt := day.Add(time.Duration(t) * time.Minute)
			if startAt.Before(window.Start) || !startAt.Before(window.End) {
				continue
			}
			if overlapsAny(dayBlocked, t, t+durationMinutes) {
				continue
			}
			slots = append(slots, CandidateSlot{
				ClinicID:  cl.ID,
				Date:      day.Format("2006-01-02"),
				StartTime: clinic.FormatClock(t),
				EndTime:   clinic.FormatClock(t + durationMinutes),
				StartAt:   startAt,
			})
			if window.EarlyExit {
				return slots
			}
		}
	}
	return slots
}

// dayRange converts operating hours to a half-open minute range.
func dayRange(oh *clinic.OperatingHours) (openMin, closeMin int, ok bool) {
	if oh.Is24Hours {
		return 0, 24 * 60, true
	}
	openMin, err := clinic.ParseClock(oh.OpeningTime)
	if err != nil {
		return 0, 0, false
	}
	closeMin, err = clinic.ParseClock(oh.ClosingTime)
	if err != nil || openMin >= closeMin {
		return 0, 0, false
	}
	return openMin, closeMin, true
}

type interval struct{ start, end int }

func blockingByDate(appts []*scheduling.Appointment) map[string][]interval {
	byDate := make(map[string][]interval)
	for _, a := range appts {
		if !a.IsBlocking() {
			continue
		}
		start, err := a.StartMinutes()
		if err != nil {
			continue
		}
		end := start + a.DurationMinutes
		if a.DurationMinutes <= 0 {
			if end, err = a.EndMinutes(); err != nil {
				continue
			}
		}
		key := a.Date.Format("2006-01-02")
		byDate[key] = append(byDate[key], interval{start: start, end: end})
	}
	return byDate
}

// overlapsAny applies the half-open overlap test [a,b) x [c,d):
// the intervals intersect iff a < d && c < b.
func overlapsAny(blocked []interval, start, end int) bool {
	for _, iv := range blocked {
		if start < iv.end && iv.start < end {
			return true
		}
	}
	return false
}
