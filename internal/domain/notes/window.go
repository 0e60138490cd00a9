package notes

import "time"

// window holds the local-calendar boundaries of "today" and the trailing week (today and
// the six days before it).
type window struct {
	loc        *time.Location
	todayStart time.Time
	weekStart  time.Time
	end        time.Time
}

func newWindow(now time.Time) window {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return window{
		loc:        now.Location(),
		todayStart: start,
		weekStart:  start.AddDate(0, 0, -6),
		end:        start.AddDate(0, 0, 1),
	}
}

func (w window) today(t time.Time) bool {
	t = t.In(w.loc)
	return !t.Before(w.todayStart) && t.Before(w.end)
}

func (w window) week(t time.Time) bool {
	t = t.In(w.loc)
	return !t.Before(w.weekStart) && t.Before(w.end)
}

func (w window) inPeriod(p Period, t time.Time) bool {
	if p == PeriodWeek {
		return w.week(t)
	}
	return w.today(t)
}

// dayIndex is the 0..6 position of t inside the week; t must be in the week.
func (w window) dayIndex(t time.Time) int {
	y, m, d := t.In(w.loc).Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, w.loc)
	for i := 0; i < 7; i++ {
		if w.weekStart.AddDate(0, 0, i).Equal(day) {
			return i
		}
	}
	return 6
}
