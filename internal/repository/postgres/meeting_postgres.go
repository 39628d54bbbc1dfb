package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"meetapi/internal/model"
	"meetapi/internal/repository"
)

// MeetingPostgres is a PostgreSQL implementation of repository.MeetingRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type MeetingPostgres struct {
	db *sql.DB
}

// NewMeetingPostgres creates a new MeetingPostgres repository.
func NewMeetingPostgres(db *sql.DB) *MeetingPostgres {
	return &MeetingPostgres{db: db}
}

var _ repository.MeetingRepository = (*MeetingPostgres)(nil)

const meetingColumns = `id, account_id, title, participants, status, max_duration_minutes,
	started_at, transcript, summary, usage_counted, transcribed_count, errored_count,
	created_at, updated_at`

func scanMeeting(row interface{ Scan(...any) error }) (*model.Meeting, error) {
	var (
		m            model.Meeting
		participants []byte
		status       string
	)
	if err := row.Scan(
		&m.ID,
		&m.AccountID,
		&m.Title,
		&participants,
		&status,
		&m.MaxDurationMinutes,
		&m.StartedAt,
		&m.Transcript,
		&m.Summary,
		&m.UsageCounted,
		&m.TranscribedCount,
		&m.ErroredCount,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	m.Status = model.MeetingStatus(status)
	if len(participants) > 0 {
		if err := json.Unmarshal(participants, &m.Participants); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// Create inserts a new meeting row and returns the stored record.
func (r *MeetingPostgres) Create(ctx context.Context, m *model.Meeting) (*model.Meeting, error) {
	const q = `
		INSERT INTO meetings (id, account_id, title, participants, status, max_duration_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING ` + meetingColumns
	participants, err := json.Marshal(m.Participants)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, q,
		m.ID,
		m.AccountID,
		m.Title,
		participants,
		string(m.Status),
		m.MaxDurationMinutes,
		m.CreatedAt,
	)
	return scanMeeting(row)
}

// FindByID fetches a meeting by id scoped to its owner. Rows owned by a
// different account are indistinguishable from missing rows.
func (r *MeetingPostgres) FindByID(ctx context.Context, id, accountID string) (*model.Meeting, error) {
	const q = `
		SELECT ` + meetingColumns + `
		FROM meetings
		WHERE id = $1 AND account_id = $2
	`
	return scanMeeting(r.db.QueryRowContext(ctx, q, id, accountID))
}

// ListByAccount returns meetings using LIMIT/OFFSET pagination and a total count.
func (r *MeetingPostgres) ListByAccount(ctx context.Context, accountID string, pq repository.PageQuery) (*repository.PageResult[model.Meeting], error) {
	const qCount = `SELECT COUNT(*) FROM meetings WHERE account_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, accountID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + meetingColumns + `
		FROM meetings
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, accountID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Meeting, 0)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Meeting]{Items: items, Total: total}, nil
}

// Transition performs the guarded compare-and-set on status. Zero affected
// rows means the meeting was not in any of the from statuses (or is gone).
func (r *MeetingPostgres) Transition(ctx context.Context, id string, from []model.MeetingStatus, to model.MeetingStatus) (bool, error) {
	const q = `
		UPDATE meetings
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = ANY($3)
	`
	fromStrs := make([]string, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}
	res, err := r.db.ExecContext(ctx, q, id, string(to), pq.Array(fromStrs))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkStarted sets started_at only while it is NULL, so concurrent first
// fragments cannot move the window start twice.
func (r *MeetingPostgres) MarkStarted(ctx context.Context, id string, at time.Time) error {
	const q = `
		UPDATE meetings
		SET started_at = $2, updated_at = now()
		WHERE id = $1 AND started_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, q, id, at)
	return err
}

// SaveTranscript persists the assembled transcript and per-fragment counts.
func (r *MeetingPostgres) SaveTranscript(ctx context.Context, id, transcript string, transcribed, errored int) error {
	const q = `
		UPDATE meetings
		SET transcript = $2, transcribed_count = $3, errored_count = $4, updated_at = now()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, q, id, transcript, transcribed, errored)
	return err
}

// CompleteWithSummary stores the summary and the completed status in one
// statement; callers never observe a summary without the terminal status.
func (r *MeetingPostgres) CompleteWithSummary(ctx context.Context, id, summary string) (bool, error) {
	const q = `
		UPDATE meetings
		SET summary = $2, status = $3, updated_at = now()
		WHERE id = $1 AND status = $4
	`
	res, err := r.db.ExecContext(ctx, q, id, summary, string(model.StatusCompleted), string(model.StatusProcessing))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ClaimUsage flips usage_counted false -> true at most once.
func (r *MeetingPostgres) ClaimUsage(ctx context.Context, id string) (bool, error) {
	const q = `
		UPDATE meetings
		SET usage_counted = TRUE, updated_at = now()
		WHERE id = $1 AND usage_counted = FALSE
	`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a meeting by id; fragments cascade at the schema level.
func (r *MeetingPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM meetings WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
