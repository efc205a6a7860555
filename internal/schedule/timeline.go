package schedule

import (
	"time"

	"github.com/zapponejosh/ministry-planner/internal/calendar"
	"github.com/zapponejosh/ministry-planner/internal/database"
)

// Span is a series projected onto the visible timeline window as fractional
// horizontal positions, each in [0,100].
type Span struct {
	SeriesID int64   `json:"series_id"`
	Title    string  `json:"title"`
	StartPct float64 `json:"start_pct"`
	EndPct   float64 `json:"end_pct"`
}

// Window returns the 12-month timeline window for a viewed month: the first
// day of the month five months back through the first day of the month
// seven months ahead (exclusive end).
func Window(viewed time.Time) (start, end time.Time) {
	first := time.Date(viewed.Year(), viewed.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -5, 0), first.AddDate(0, 7, 0)
}

// Project maps a series onto the window by linear day-count interpolation,
// clamped to [0,100]. The second return value is false when the series has
// no complete date window or lies entirely outside the visible window.
func Project(s database.Series, start, end time.Time) (Span, bool) {
	if s.StartDate == nil || s.EndDate == nil {
		return Span{}, false
	}
	sStart, err := calendar.DatePart(*s.StartDate)
	if err != nil {
		return Span{}, false
	}
	sEnd, err := calendar.DatePart(*s.EndDate)
	if err != nil {
		return Span{}, false
	}
	if sEnd.Before(start) || !sStart.Before(end) {
		return Span{}, false
	}

	total := end.Sub(start).Hours() / 24
	startPct := clampPct(sStart.Sub(start).Hours() / 24 / total * 100)
	endPct := clampPct(sEnd.Sub(start).Hours() / 24 / total * 100)

	return Span{
		SeriesID: s.ID,
		Title:    s.Title,
		StartPct: startPct,
		EndPct:   endPct,
	}, true
}

func clampPct(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// SundaysInRange counts Sundays in [start, end] inclusive by walking every
// day. O(days), fine for realistic series lengths of weeks to a few months.
func SundaysInRange(start, end time.Time) int {
	count := 0
	for d := calendar.StripTime(start); !d.After(calendar.StripTime(end)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Sunday {
			count++
		}
	}
	return count
}

// Progress summarizes how full a series is: entries placed against the
// Sundays available in its date window, and how many are complete.
type Progress struct {
	SeriesID  int64 `json:"series_id"`
	Placed    int   `json:"placed"`
	Available int   `json:"available"`
	Completed int   `json:"completed"`
}

// SermonProgress counts the sermons in a series against the Sundays its
// window offers. Available is zero when the series has no date window.
func SermonProgress(s database.Series, sermons []database.Sermon) Progress {
	p := Progress{SeriesID: s.ID}

	if s.StartDate != nil && s.EndDate != nil {
		sStart, errS := calendar.DatePart(*s.StartDate)
		sEnd, errE := calendar.DatePart(*s.EndDate)
		if errS == nil && errE == nil {
			p.Available = SundaysInRange(sStart, sEnd)
		}
	}

	for _, sermon := range sermons {
		if sermon.SeriesID == nil || *sermon.SeriesID != s.ID {
			continue
		}
		if sermon.Date != nil {
			p.Placed++
		}
		if sermon.Status == database.StatusComplete || sermon.Status == database.StatusReady {
			p.Completed++
		}
	}
	return p
}

// LessonProgress counts scheduled and prepared lessons in a devotion series.
func LessonProgress(seriesID int64, lessons []database.DevotionLesson) Progress {
	p := Progress{SeriesID: seriesID}
	for _, l := range lessons {
		if l.SeriesID == nil || *l.SeriesID != seriesID {
			continue
		}
		p.Available++
		if l.ScheduledDate != nil {
			p.Placed++
		}
		if l.Prepared {
			p.Completed++
		}
	}
	return p
}
