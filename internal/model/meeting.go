package model

import "time"

// MeetingStatus is the lifecycle state of a recording session.
type MeetingStatus string

const (
	// StatusRecording is the initial state; fragments are admitted.
	StatusRecording MeetingStatus = "recording"
	// StatusProcessing means a minutes run holds the session (single-flight).
	StatusProcessing MeetingStatus = "processing"
	// StatusCompleted is terminal for a session that produced a summary.
	StatusCompleted MeetingStatus = "completed"
	// StatusCompletedNoSummary marks a session force-stopped by the duration
	// ceiling. No summary exists yet; a follow-up end call is still accepted.
	StatusCompletedNoSummary MeetingStatus = "completed_no_summary"
	// StatusError is terminal for a failed minutes run. An end call re-attempts.
	StatusError MeetingStatus = "error"
)

// Meeting represents one recording-to-summary unit of work.
// This is a pure domain model with no database-specific dependencies or tags.
type Meeting struct {
	ID                 string        `json:"id"`
	AccountID          string        `json:"account_id"`
	Title              string        `json:"title"`
	Participants       []string      `json:"participants,omitempty"`
	Status             MeetingStatus `json:"status"`
	MaxDurationMinutes int           `json:"max_duration_minutes"`
	// StartedAt marks the beginning of the duration window. It is nil until
	// the first fragment is admitted and set exactly once after that.
	StartedAt        *time.Time `json:"started_at,omitempty"`
	Transcript       *string    `json:"transcript,omitempty"`
	Summary          *string    `json:"summary,omitempty"`
	UsageCounted     bool       `json:"usage_counted"`
	TranscribedCount int        `json:"transcribed_count"`
	ErroredCount     int        `json:"errored_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// HasSummary reports whether a summary was produced and persisted.
func (m *Meeting) HasSummary() bool {
	return m.Summary != nil && *m.Summary != ""
}
