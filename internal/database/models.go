// Package database provides SQLite storage for the planner: sermons,
// series, devotion lessons, and English classes.
package database

import (
	"time"
)

// SermonStatus tracks a sermon through its preparation lifecycle.
type SermonStatus string

const (
	StatusDraft      SermonStatus = "draft"
	StatusInProgress SermonStatus = "in_progress"
	StatusComplete   SermonStatus = "complete"
	StatusReady      SermonStatus = "ready_to_preach"
	StatusArchive    SermonStatus = "archive"
)

// ValidSermonStatuses returns all valid sermon statuses.
func ValidSermonStatuses() []SermonStatus {
	return []SermonStatus{
		StatusDraft,
		StatusInProgress,
		StatusComplete,
		StatusReady,
		StatusArchive,
	}
}

// IsValid checks if a sermon status is valid.
func (s SermonStatus) IsValid() bool {
	for _, valid := range ValidSermonStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// SeriesKind separates the three series families sharing one table.
type SeriesKind string

const (
	SeriesSermon   SeriesKind = "sermon"
	SeriesDevotion SeriesKind = "devotion"
	SeriesEnglish  SeriesKind = "english"
)

// Series groups sermons or lessons, optionally bounded by a date window
// used for timeline projection.
type Series struct {
	ID        int64      `json:"id"`
	Kind      SeriesKind `json:"kind"`
	Title     string     `json:"title"`
	StartDate *string    `json:"start_date"` // YYYY-MM-DD, nullable
	EndDate   *string    `json:"end_date"`   // YYYY-MM-DD, nullable
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Sermon is a schedule entry. A nil Date means unscheduled: the sermon
// exists but never appears in any date-bucketed view.
type Sermon struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	LessonType string       `json:"lesson_type"`
	Preacher   string       `json:"preacher"`
	Date       *string      `json:"sermon_date"` // YYYY-MM-DD, nullable
	Status     SermonStatus `json:"status"`
	SeriesID   *int64       `json:"series_id"`
	Content    string       `json:"content"`

	// Review metadata, backfilled by the AI-assisted review workflow.
	Notes       string   `json:"notes"`
	Rating      int      `json:"rating"`
	PrimaryText string   `json:"primary_text"`
	Theme       string   `json:"theme"`
	Audience    string   `json:"audience"`
	Season      string   `json:"season"`
	KeyTakeaway string   `json:"key_takeaway"`
	Hashtags    []string `json:"hashtags"`
	InfoAdded   bool     `json:"information_added"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DevotionLesson is one family-devotion lesson. Week/Lesson/Day give the
// ordering within a series; ScheduledDate may carry a time suffix which
// date-bucketing strips.
type DevotionLesson struct {
	ID            int64     `json:"id"`
	SeriesID      *int64    `json:"series_id"`
	Title         string    `json:"title"`
	Week          int       `json:"week"`
	Lesson        int       `json:"lesson"`
	Day           int       `json:"day"`
	ScheduledDate *string   `json:"scheduled_date"` // nullable
	Prepared      bool      `json:"prepared"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ClassStatus is the lifecycle of an English class session.
type ClassStatus string

const (
	ClassScheduled ClassStatus = "scheduled"
	ClassCompleted ClassStatus = "completed"
	ClassCancelled ClassStatus = "cancelled"
)

// EnglishClass is one English class session. Cancelled classes stay in the
// store but are excluded from calendar display.
type EnglishClass struct {
	ID        int64       `json:"id"`
	SeriesID  *int64      `json:"series_id"`
	Title     string      `json:"title"`
	Week      int         `json:"week"`
	Lesson    int         `json:"lesson"`
	ClassDate *string     `json:"class_date"` // nullable
	Status    ClassStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// DateUpdate is one entry of a batch date mutation.
type DateUpdate struct {
	ID      int64  `json:"id"`
	NewDate string `json:"sermon_date"` // YYYY-MM-DD
}
