package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"meetapi/internal/config"
	"meetapi/internal/model"
	"meetapi/internal/repository"
	"meetapi/internal/storage"
)

const maxTitleLen = 200

// MeetingListResult is the service-level DTO for paginated recordings.
type MeetingListResult struct {
	Items []model.Meeting `json:"data"`
	Total int             `json:"total"`
}

// SessionRegistry owns the Meeting entity and its state machine. Every status
// change flows through Transition's compare-and-set, which is the only
// synchronization primitive the pipeline needs.
type SessionRegistry interface {
	// Create starts a new recording session owned by the account. The
	// duration ceiling is fixed here from the account's tier and never
	// changes afterwards.
	Create(ctx context.Context, account model.AccountRef, title string, participants []string) (*model.Meeting, error)

	// Get returns the meeting if it exists and the account owns it.
	Get(ctx context.Context, id string, account model.AccountRef) (*model.Meeting, error)

	// List returns the account's meetings, newest first.
	List(ctx context.Context, account model.AccountRef, limit, offset int) (*MeetingListResult, error)

	// Delete removes a meeting, its fragment rows, their blobs and any
	// rendered export documents.
	Delete(ctx context.Context, id string, account model.AccountRef) error

	// Transition moves the meeting from any of the given statuses to the
	// target. It fails with an invalid-state-transition error when the
	// current status matches none of from.
	Transition(ctx context.Context, id string, from []model.MeetingStatus, to model.MeetingStatus) error
}

type sessionRegistry struct {
	meetings  repository.MeetingRepository
	fragments repository.FragmentRepository
	store     storage.Storage
	limits    config.RecordingConfig
	now       func() time.Time
}

// NewSessionRegistry constructs a SessionRegistry.
func NewSessionRegistry(meetings repository.MeetingRepository, fragments repository.FragmentRepository, store storage.Storage, limits config.RecordingConfig) SessionRegistry {
	return &sessionRegistry{
		meetings:  meetings,
		fragments: fragments,
		store:     store,
		limits:    limits,
		now:       time.Now,
	}
}

func (s *sessionRegistry) Create(ctx context.Context, account model.AccountRef, title string, participants []string) (*model.Meeting, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalidInput("title is required")
	}
	if len(title) > maxTitleLen {
		return nil, invalidInput("title exceeds %d characters", maxTitleLen)
	}

	now := s.now().UTC()
	if !account.Entitled(now) {
		return nil, &Error{Reason: ReasonNotEntitled, Message: "trial period has ended"}
	}

	ceiling := s.limits.FreeMaxMinutes
	if account.Premium {
		ceiling = s.limits.PremiumMaxMinutes
	}

	m := &model.Meeting{
		ID:                 uuid.New().String(),
		AccountID:          account.ID,
		Title:              title,
		Participants:       participants,
		Status:             model.StatusRecording,
		MaxDurationMinutes: ceiling,
		CreatedAt:          now,
	}
	stored, err := s.meetings.Create(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}
	return stored, nil
}

func (s *sessionRegistry) Get(ctx context.Context, id string, account model.AccountRef) (*model.Meeting, error) {
	if id == "" {
		return nil, invalidInput("id is required")
	}
	m, err := s.meetings.FindByID(ctx, id, account.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound()
		}
		return nil, err
	}
	return m, nil
}

func (s *sessionRegistry) List(ctx context.Context, account model.AccountRef, limit, offset int) (*MeetingListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.meetings.ListByAccount(ctx, account.ID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &MeetingListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *sessionRegistry) Delete(ctx context.Context, id string, account model.AccountRef) error {
	m, err := s.Get(ctx, id, account)
	if err != nil {
		return err
	}

	// Blobs first; an unreferenced blob is worse than a re-runnable delete.
	fragments, err := s.fragments.ListByMeeting(ctx, m.ID, nil)
	if err != nil {
		return err
	}
	for _, f := range fragments {
		if err := s.store.Delete(ctx, f.StorageRef); err != nil {
			return fmt.Errorf("delete fragment blob %s: %w", f.StorageRef, err)
		}
	}

	// Rendered export documents live under their own prefix, not in the
	// fragment rows.
	if err := s.store.DeletePrefix(ctx, exportPrefix(m.ID)); err != nil {
		return fmt.Errorf("delete export artifacts: %w", err)
	}

	return s.meetings.Delete(ctx, m.ID)
}

func (s *sessionRegistry) Transition(ctx context.Context, id string, from []model.MeetingStatus, to model.MeetingStatus) error {
	ok, err := s.meetings.Transition(ctx, id, from, to)
	if err != nil {
		return fmt.Errorf("transition to %s: %w", to, err)
	}
	if !ok {
		return invalidTransition("recording is not in a state that allows moving to %s", to)
	}
	return nil
}
