package repository

import (
	"context"

	"meetapi/internal/model"
)

// FragmentRepository defines data access for audio fragments. Fragments are
// append-only per (meeting_id, sequence_number); after admission only the
// assembler touches a row, so no locking is needed here.
type FragmentRepository interface {
	// Create inserts a fragment row in uploaded status. A duplicate
	// (meeting_id, sequence_number) pair violates the unique constraint.
	Create(ctx context.Context, f *model.Fragment) (*model.Fragment, error)

	// ListByMeeting returns all fragments of a meeting ordered by ascending
	// sequence number. When status is non-nil only matching rows are returned.
	ListByMeeting(ctx context.Context, meetingID string, status *model.FragmentStatus) ([]model.Fragment, error)

	// MaxSequence returns the highest stored sequence number for a meeting.
	// ok is false when the meeting has no fragments.
	MaxSequence(ctx context.Context, meetingID string) (seq int, ok bool, err error)

	// CountUpTo returns how many fragments with sequence_number <= maxSequence
	// are stored for a meeting. Sequence numbers are unique per meeting, so a
	// count of maxSequence+1 means every number up to the bound has landed.
	CountUpTo(ctx context.Context, meetingID string, maxSequence int) (int, error)

	// SetTranscribed stores the fragment's transcription text and marks it transcribed.
	SetTranscribed(ctx context.Context, id, text string) error

	// MarkError marks a fragment whose transcription failed.
	MarkError(ctx context.Context, id string) error
}
