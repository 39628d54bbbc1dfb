package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"meetapi/internal/engine"
	"meetapi/internal/model"
	"meetapi/internal/repository"
)

const (
	barrierInitialDelay = 250 * time.Millisecond
	barrierMaxDelay     = 4 * time.Second
)

// NoLastSequence disables the upload barrier for callers that do not report
// their highest sequence number on end.
const NoLastSequence = -1

// ProcessingCoordinator runs the single-flight post-recording job: assemble
// the transcript, summarize it, persist both, count usage. The single-flight
// guarantee comes from the status compare-and-set, not a mutex, so a
// coordinator dying mid-run leaves an observable processing status rather
// than a silently held lock.
type ProcessingCoordinator interface {
	// Begin claims the session for processing. Exactly one of any concurrent
	// callers wins the compare-and-set; the others get an
	// invalid-state-transition error. A session force-stopped by the duration
	// guard or left in error by a previous run can be claimed again.
	Begin(ctx context.Context, account model.AccountRef, meetingID string) (*model.Meeting, error)

	// Process runs the pipeline for a session already claimed by Begin.
	// lastSequenceNumber, when not NoLastSequence, is the barrier bound: the
	// coordinator waits (bounded backoff, no fixed sleep) until all sequence
	// numbers up to it are durably stored before assembling.
	Process(ctx context.Context, accountID, meetingID string, lastSequenceNumber int) error
}

type processingCoordinator struct {
	registry        SessionRegistry
	assembler       TranscriptAssembler
	summarizer      engine.SummarizationEngine
	meetings        repository.MeetingRepository
	fragments       repository.FragmentRepository
	usage           UsageRecorder
	barrierAttempts int
}

// NewProcessingCoordinator constructs a ProcessingCoordinator.
func NewProcessingCoordinator(registry SessionRegistry, assembler TranscriptAssembler, summarizer engine.SummarizationEngine, meetings repository.MeetingRepository, fragments repository.FragmentRepository, usage UsageRecorder, barrierAttempts int) ProcessingCoordinator {
	return &processingCoordinator{
		registry:        registry,
		assembler:       assembler,
		summarizer:      summarizer,
		meetings:        meetings,
		fragments:       fragments,
		usage:           usage,
		barrierAttempts: barrierAttempts,
	}
}

// startable lists the statuses an end call may claim: a live recording, a
// session force-stopped by the duration ceiling, and a failed run being
// retried. Completed stays terminal; re-ending a summarized session conflicts.
var startable = []model.MeetingStatus{
	model.StatusRecording,
	model.StatusCompletedNoSummary,
	model.StatusError,
}

func (c *processingCoordinator) Begin(ctx context.Context, account model.AccountRef, meetingID string) (*model.Meeting, error) {
	m, err := c.registry.Get(ctx, meetingID, account)
	if err != nil {
		return nil, err
	}
	if err := c.registry.Transition(ctx, m.ID, startable, model.StatusProcessing); err != nil {
		return nil, err
	}
	m.Status = model.StatusProcessing
	return m, nil
}

func (c *processingCoordinator) Process(ctx context.Context, accountID, meetingID string, lastSequenceNumber int) error {
	if lastSequenceNumber != NoLastSequence {
		c.awaitFragments(ctx, meetingID, lastSequenceNumber)
	}

	res, err := c.assembler.Assemble(ctx, meetingID)
	if err != nil {
		c.fail(ctx, meetingID)
		return engineFailure("transcript assembly failed", err)
	}

	transcript := strings.TrimSpace(res.Text)
	// The transcript and the counts are persisted even when the run later
	// fails; partial results stay visible to the caller.
	if err := c.meetings.SaveTranscript(ctx, meetingID, transcript, res.Transcribed, res.Errored); err != nil {
		c.fail(ctx, meetingID)
		return fmt.Errorf("save transcript: %w", err)
	}

	if transcript == "" {
		// Never summarize silence; no placeholder summary is fabricated.
		c.fail(ctx, meetingID)
		return &Error{Reason: ReasonEmptyTranscript, Message: "no fragment produced any text; check the uploads"}
	}

	m, err := c.meetings.FindByID(ctx, meetingID, accountID)
	if err != nil {
		c.fail(ctx, meetingID)
		return fmt.Errorf("reload meeting: %w", err)
	}

	summary, err := c.summarizer.Summarize(ctx, transcript, m.Participants)
	if err != nil {
		c.fail(ctx, meetingID)
		return engineFailure("summarization failed", err)
	}

	ok, err := c.meetings.CompleteWithSummary(ctx, meetingID, summary)
	if err != nil {
		c.fail(ctx, meetingID)
		return fmt.Errorf("persist summary: %w", err)
	}
	if !ok {
		return invalidTransition("session left processing during the run")
	}

	c.countUsage(ctx, accountID, meetingID)
	return nil
}

// awaitFragments is the completion barrier for trailing uploads: poll the
// number of stored fragments at or below the bound the client reported on
// end, with bounded exponential backoff, until every sequence number up to
// the bound has landed. Uploads land out of order, so the highest stored
// sequence number alone says nothing about the lower ones still in flight.
// Attempts, not wall-clock sleeps, bound the wait; on exhaustion processing
// proceeds with what landed.
func (c *processingCoordinator) awaitFragments(ctx context.Context, meetingID string, lastSequenceNumber int) {
	prev := -1
	for attempt := 0; attempt < c.barrierAttempts; attempt++ {
		count, err := c.fragments.CountUpTo(ctx, meetingID, lastSequenceNumber)
		if err != nil {
			log.Printf("meeting %s: upload barrier poll failed: %v", meetingID, err)
			return
		}
		// Sequence numbers start at zero and are unique, so a full set up to
		// the bound is exactly lastSequenceNumber+1 rows.
		if count >= lastSequenceNumber+1 {
			return
		}
		// A count that stopped growing while the bound itself is stored means
		// the missing numbers were never uploaded, not that they are in flight.
		if count == prev {
			max, ok, err := c.fragments.MaxSequence(ctx, meetingID)
			if err != nil {
				log.Printf("meeting %s: upload barrier poll failed: %v", meetingID, err)
				return
			}
			if ok && max >= lastSequenceNumber {
				return
			}
		}
		prev = count
		if !sleepWithContext(ctx, withJitter(expBackoff(attempt, barrierInitialDelay, barrierMaxDelay))) {
			return
		}
	}
	log.Printf("meeting %s: upload barrier exhausted waiting for sequence %d", meetingID, lastSequenceNumber)
}

// fail moves the session to the terminal error state so it never sticks in
// processing. A lost compare-and-set here is already logged by the registry
// caller path and not worth failing over.
func (c *processingCoordinator) fail(ctx context.Context, meetingID string) {
	err := c.registry.Transition(ctx, meetingID, []model.MeetingStatus{model.StatusProcessing}, model.StatusError)
	if err != nil {
		log.Printf("meeting %s: could not mark error: %v", meetingID, err)
	}
}

// countUsage decrements the account's allotment at most once per session. The
// usage_counted flag is flipped first; only the winner of that compare-and-set
// calls the billing collaborator, whose effect is idempotent per session.
func (c *processingCoordinator) countUsage(ctx context.Context, accountID, meetingID string) {
	claimed, err := c.meetings.ClaimUsage(ctx, meetingID)
	if err != nil {
		log.Printf("meeting %s: usage claim failed: %v", meetingID, err)
		return
	}
	if !claimed {
		return
	}
	if err := c.usage.Increment(ctx, accountID); err != nil {
		log.Printf("meeting %s: usage increment failed: %v", meetingID, err)
	}
}
