package notes

import (
	"errors"
	"time"
)

var (
	ErrInvalidNote   = errors.New("invalid note")
	ErrInvalidPeriod = errors.New("invalid period")
	ErrInvalidFilter = errors.New("invalid status filter")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Period string

const (
	PeriodDay  Period = "day"
	PeriodWeek Period = "week"
)

// FilterAll disables the status filter.
const FilterAll = "all"

// Note is a service note. ID and Timestamp are fixed at creation.
type Note struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	Timestamp     time.Time `json:"timestamp"`
	TableNumber   int       `json:"tableNumber"`
	CustomerCount int       `json:"customerCount"`
	Status        Status    `json:"status"`
	Priority      Priority  `json:"priority"`
	AssignedTo    *string   `json:"assignedTo,omitempty"`
}

// NewNote is the caller-supplied part of a note.
type NewNote struct {
	Content       string
	TableNumber   int
	CustomerCount int
	Status        Status
	Priority      Priority
	AssignedTo    *string
}

// Patch is merged field by field into an existing note; nil fields are left alone.
// An empty AssignedTo clears the assignment.
type Patch struct {
	Content       *string
	TableNumber   *int
	CustomerCount *int
	Status        *Status
	Priority      *Priority
	AssignedTo    *string
}

// View is the UI selection that scopes FilteredNotes and Stats.
type View struct {
	Period       Period `json:"selectedPeriod"`
	FilterStatus string `json:"filterStatus"`
}

// Stats are derived from the note list on every read.
type Stats struct {
	DailyNotes     int `json:"dailyNotes"`
	WeeklyNotes    int `json:"weeklyNotes"`
	CompletedNotes int `json:"completedNotes"`
	PendingNotes   int `json:"pendingNotes"`
	CancelledNotes int `json:"cancelledNotes"`
	PeopleServed   int `json:"peopleServed"`
	TablesServed   int `json:"tablesServed"`
}

// DayRollup is one day of the weekly chart.
type DayRollup struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
	Cancelled int    `json:"cancelled"`
	People    int    `json:"people"`
}

type persistedState struct {
	Notes          []Note `json:"notes"`
	SelectedPeriod Period `json:"selectedPeriod"`
	FilterStatus   string `json:"filterStatus"`
}

type persisted struct {
	State   persistedState `json:"state"`
	Version int            `json:"version"`
}
