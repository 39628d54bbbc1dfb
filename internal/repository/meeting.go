// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"context"
	"time"

	"meetapi/internal/model"
)

// MeetingRepository defines data access for recording sessions using SQL only.
// No business logic here; every status change goes through Transition, a
// compare-and-set that is the single synchronization point for session state.
type MeetingRepository interface {
	// Create inserts a new meeting row and returns the stored record.
	Create(ctx context.Context, m *model.Meeting) (*model.Meeting, error)

	// FindByID returns the meeting with the given id owned by accountID.
	// A meeting owned by another account yields sql.ErrNoRows, same as absence.
	FindByID(ctx context.Context, id, accountID string) (*model.Meeting, error)

	// ListByAccount returns the account's meetings, newest first, with a total count.
	ListByAccount(ctx context.Context, accountID string, pq PageQuery) (*PageResult[model.Meeting], error)

	// Transition atomically moves the meeting from any of the given statuses
	// to the target status. It reports whether the compare-and-set won; false
	// means the current status matched none of from.
	Transition(ctx context.Context, id string, from []model.MeetingStatus, to model.MeetingStatus) (bool, error)

	// MarkStarted sets started_at if and only if it is still unset, so the
	// duration window begins exactly once no matter how many fragment uploads
	// race on it.
	MarkStarted(ctx context.Context, id string, at time.Time) error

	// SaveTranscript persists the assembled transcript and fragment counts.
	SaveTranscript(ctx context.Context, id, transcript string, transcribed, errored int) error

	// CompleteWithSummary stores the summary and moves the meeting to
	// completed in a single statement, guarded on the current status being
	// processing. Reports whether the update applied.
	CompleteWithSummary(ctx context.Context, id, summary string) (bool, error)

	// ClaimUsage flips usage_counted from false to true and reports whether
	// this call was the one that flipped it.
	ClaimUsage(ctx context.Context, id string) (bool, error)

	// Delete removes a meeting row; fragment rows go with it via cascade.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
