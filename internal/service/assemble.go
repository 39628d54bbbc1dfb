package service

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"meetapi/internal/engine"
	"meetapi/internal/model"
	"meetapi/internal/repository"
	"meetapi/internal/storage"
)

// AssembledTranscript is the outcome of one assembly pass.
type AssembledTranscript struct {
	Text        string
	Transcribed int
	Errored     int
}

// TranscriptAssembler orders admitted fragments by sequence number, runs each
// through the transcription engine and concatenates the successful results.
// Assembly order is sequence-number order, not arrival order; this is what
// makes concurrent uploads safe to reorder in transit.
type TranscriptAssembler interface {
	Assemble(ctx context.Context, meetingID string) (*AssembledTranscript, error)
}

type transcriptAssembler struct {
	fragments repository.FragmentRepository
	store     storage.Storage
	stt       engine.TranscriptionEngine
}

// NewTranscriptAssembler constructs a TranscriptAssembler.
func NewTranscriptAssembler(fragments repository.FragmentRepository, store storage.Storage, stt engine.TranscriptionEngine) TranscriptAssembler {
	return &transcriptAssembler{fragments: fragments, store: store, stt: stt}
}

// Assemble transcribes every uploaded fragment in sequence order. A fragment
// that fails is marked error and skipped, leaving a gap in the transcript
// instead of aborting the pass; gaps are the caller's tradeoff for partial
// results.
func (a *transcriptAssembler) Assemble(ctx context.Context, meetingID string) (*AssembledTranscript, error) {
	uploaded := model.FragmentUploaded
	fragments, err := a.fragments.ListByMeeting(ctx, meetingID, &uploaded)
	if err != nil {
		return nil, fmt.Errorf("list fragments: %w", err)
	}

	res := &AssembledTranscript{}
	var parts []string
	for _, f := range fragments {
		text, err := a.transcribeOne(ctx, f)
		if err != nil {
			log.Printf("fragment %s (seq %d) transcription failed: %v", f.ID, f.SequenceNumber, err)
			if markErr := a.fragments.MarkError(ctx, f.ID); markErr != nil {
				return nil, fmt.Errorf("mark fragment error: %w", markErr)
			}
			res.Errored++
			continue
		}
		if err := a.fragments.SetTranscribed(ctx, f.ID, text); err != nil {
			return nil, fmt.Errorf("store fragment transcription: %w", err)
		}
		res.Transcribed++
		if text != "" {
			parts = append(parts, text)
		}
	}

	res.Text = strings.Join(parts, "\n")
	return res, nil
}

func (a *transcriptAssembler) transcribeOne(ctx context.Context, f model.Fragment) (string, error) {
	rc, _, err := a.store.Get(ctx, f.StorageRef)
	if err != nil {
		return "", fmt.Errorf("read blob: %w", err)
	}
	defer rc.Close()

	text, err := a.stt.Transcribe(ctx, rc, path.Base(f.StorageRef), f.ContentType)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
