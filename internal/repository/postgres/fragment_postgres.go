package postgres

import (
	"context"
	"database/sql"
	"errors"

	"meetapi/internal/model"
	"meetapi/internal/repository"
)

// FragmentPostgres is a PostgreSQL implementation of repository.FragmentRepository.
type FragmentPostgres struct {
	db *sql.DB
}

// NewFragmentPostgres creates a new FragmentPostgres repository.
func NewFragmentPostgres(db *sql.DB) *FragmentPostgres {
	return &FragmentPostgres{db: db}
}

var _ repository.FragmentRepository = (*FragmentPostgres)(nil)

const fragmentColumns = `id, meeting_id, sequence_number, storage_ref, size, content_type, status, transcript_text, created_at`

func scanFragment(row interface{ Scan(...any) error }) (*model.Fragment, error) {
	var (
		f      model.Fragment
		status string
	)
	if err := row.Scan(
		&f.ID,
		&f.MeetingID,
		&f.SequenceNumber,
		&f.StorageRef,
		&f.Size,
		&f.ContentType,
		&status,
		&f.TranscriptText,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	f.Status = model.FragmentStatus(status)
	return &f, nil
}

// Create inserts a fragment row. The (meeting_id, sequence_number) unique
// constraint rejects duplicate sequence numbers for the same meeting.
func (r *FragmentPostgres) Create(ctx context.Context, f *model.Fragment) (*model.Fragment, error) {
	const q = `
		INSERT INTO fragments (id, meeting_id, sequence_number, storage_ref, size, content_type, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + fragmentColumns
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.MeetingID,
		f.SequenceNumber,
		f.StorageRef,
		f.Size,
		f.ContentType,
		string(f.Status),
		f.CreatedAt,
	)
	return scanFragment(row)
}

// ListByMeeting returns fragments ordered by ascending sequence number, the
// order the assembler concatenates them in regardless of upload order.
func (r *FragmentPostgres) ListByMeeting(ctx context.Context, meetingID string, status *model.FragmentStatus) ([]model.Fragment, error) {
	q := `
		SELECT ` + fragmentColumns + `
		FROM fragments
		WHERE meeting_id = $1
	`
	args := []any{meetingID}
	if status != nil {
		q += ` AND status = $2`
		args = append(args, string(*status))
	}
	q += ` ORDER BY sequence_number ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Fragment, 0)
	for rows.Next() {
		f, err := scanFragment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// MaxSequence returns the highest stored sequence number for a meeting.
func (r *FragmentPostgres) MaxSequence(ctx context.Context, meetingID string) (int, bool, error) {
	const q = `SELECT MAX(sequence_number) FROM fragments WHERE meeting_id = $1`
	var max sql.NullInt64
	if err := r.db.QueryRowContext(ctx, q, meetingID).Scan(&max); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if !max.Valid {
		return 0, false, nil
	}
	return int(max.Int64), true, nil
}

// CountUpTo returns the number of stored fragments with a sequence number at
// or below the given bound.
func (r *FragmentPostgres) CountUpTo(ctx context.Context, meetingID string, maxSequence int) (int, error) {
	const q = `SELECT COUNT(*) FROM fragments WHERE meeting_id = $1 AND sequence_number <= $2`
	var count int
	if err := r.db.QueryRowContext(ctx, q, meetingID, maxSequence).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// SetTranscribed stores the transcription text and marks the fragment transcribed.
func (r *FragmentPostgres) SetTranscribed(ctx context.Context, id, text string) error {
	const q = `UPDATE fragments SET transcript_text = $2, status = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, text, string(model.FragmentTranscribed))
	return err
}

// MarkError marks a fragment whose transcription failed.
func (r *FragmentPostgres) MarkError(ctx context.Context, id string) error {
	const q = `UPDATE fragments SET status = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, string(model.FragmentError))
	return err
}
