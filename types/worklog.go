package types

import "time"

// LogStatus tracks the lifecycle of a work log entry.
type LogStatus string

const (
	LogStatusPending    LogStatus = "pending"
	LogStatusInProgress LogStatus = "in_progress"
	LogStatusCompleted  LogStatus = "completed"
)

// LogPriority ranks a work log entry's urgency.
type LogPriority string

const (
	LogPriorityLow    LogPriority = "low"
	LogPriorityMedium LogPriority = "medium"
	LogPriorityHigh   LogPriority = "high"
)

// WorkLog is a single work activity record. It is owned by its author;
// admins and supers may edit any entry.
type WorkLog struct {
	// ID is the unique identifier of the log entry.
	ID int `json:"id" db:"id"`

	// Title is a short summary of the activity.
	Title string `json:"title" db:"title"`

	// Content is the full description of the activity.
	Content string `json:"content" db:"content"`

	// AuthorID references the user who created the entry.
	AuthorID int `json:"author_id" db:"author_id"`

	// AuthorName is the author's display name, denormalized for
	// listing and search.
	AuthorName string `json:"author_name" db:"author_name"`

	// AuthorRole is the author's role at creation time.
	AuthorRole Role `json:"author_role" db:"author_role"`

	// Status is the entry's lifecycle state.
	Status LogStatus `json:"status" db:"status"`

	// Priority is the entry's urgency.
	Priority LogPriority `json:"priority" db:"priority"`

	// Tags are free-form labels attached to the entry.
	Tags []string `json:"tags" db:"tags"`

	// CreatedAt is the timestamp when the entry was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent edit.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ParseLogStatus validates a status value; the empty string is allowed
// so optional inputs can fall back to a default.
func ParseLogStatus(value string) (LogStatus, bool) {
	switch LogStatus(value) {
	case LogStatusPending, LogStatusInProgress, LogStatusCompleted:
		return LogStatus(value), true
	default:
		return "", false
	}
}

// ParseLogPriority validates a priority value.
func ParseLogPriority(value string) (LogPriority, bool) {
	switch LogPriority(value) {
	case LogPriorityLow, LogPriorityMedium, LogPriorityHigh:
		return LogPriority(value), true
	default:
		return "", false
	}
}
