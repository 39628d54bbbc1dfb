package service

import (
	"context"
	"errors"
	"time"

	"meetapi/internal/model"
)

// DurationGuard enforces the recording time ceiling. The check runs on every
// fragment admission rather than on a background timer, so enforcement
// granularity equals the upload cadence and no per-session scheduled task is
// needed.
type DurationGuard struct {
	registry SessionRegistry
	now      func() time.Time
}

// NewDurationGuard constructs a DurationGuard.
func NewDurationGuard(registry SessionRegistry) *DurationGuard {
	return &DurationGuard{registry: registry, now: time.Now}
}

// CheckAdmission decides whether the session may still accept fragments.
// A session whose duration window has not started (no fragment admitted yet)
// is always allowed. Once elapsed time reaches the ceiling the guard forces
// the session to completed_no_summary and rejects the admission; a later end
// call is still accepted on that status.
func (g *DurationGuard) CheckAdmission(ctx context.Context, m *model.Meeting) error {
	if m.Status != model.StatusRecording || m.StartedAt == nil || m.MaxDurationMinutes <= 0 {
		return nil
	}

	elapsed := g.now().Sub(*m.StartedAt)
	if elapsed < time.Duration(m.MaxDurationMinutes)*time.Minute {
		return nil
	}

	err := g.registry.Transition(ctx, m.ID, []model.MeetingStatus{model.StatusRecording}, model.StatusCompletedNoSummary)
	if err != nil && !errors.Is(err, ErrInvalidStateTransition) {
		// A lost compare-and-set means a concurrent upload already forced the
		// stop; the rejection below still stands.
		return err
	}

	return &Error{
		Reason:  ReasonDurationExceeded,
		Message: "recording time limit reached; call end to produce the summary",
	}
}
