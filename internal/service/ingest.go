package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"meetapi/internal/model"
	"meetapi/internal/repository"
	"meetapi/internal/storage"
)

// FragmentIngester validates and admits incoming audio fragments. Admission is
// fail-fast: either a fragment is fully admitted (blob stored, row recorded)
// or nothing happened. Concurrent admissions for different sequence numbers of
// the same session do not serialize on anything beyond the duration check.
type FragmentIngester interface {
	Admit(ctx context.Context, account model.AccountRef, meetingID string, sequenceNumber int, audio io.Reader, filename, contentType string, size int64) (*model.Fragment, error)
}

type fragmentIngester struct {
	registry  SessionRegistry
	guard     *DurationGuard
	meetings  repository.MeetingRepository
	fragments repository.FragmentRepository
	store     storage.Storage
	maxBytes  int64
	now       func() time.Time
}

// NewFragmentIngester constructs a FragmentIngester.
func NewFragmentIngester(registry SessionRegistry, guard *DurationGuard, meetings repository.MeetingRepository, fragments repository.FragmentRepository, store storage.Storage, maxBytes int64) FragmentIngester {
	return &fragmentIngester{
		registry:  registry,
		guard:     guard,
		meetings:  meetings,
		fragments: fragments,
		store:     store,
		maxBytes:  maxBytes,
		now:       time.Now,
	}
}

// Admit checks preconditions in order (first failure wins): ownership, MIME
// type, payload size, session status, duration guard. Only then does it touch
// storage and the database.
func (s *fragmentIngester) Admit(ctx context.Context, account model.AccountRef, meetingID string, sequenceNumber int, audio io.Reader, filename, contentType string, size int64) (*model.Fragment, error) {
	m, err := s.registry.Get(ctx, meetingID, account)
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(contentType, "audio/") {
		return nil, invalidInput("only audio uploads are accepted, got %q", contentType)
	}
	if sequenceNumber < 0 {
		return nil, invalidInput("sequence number must not be negative")
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, invalidInput("payload exceeds the %d byte limit", s.maxBytes)
	}
	if audio == nil {
		return nil, invalidInput("audio body is required")
	}

	switch m.Status {
	case model.StatusRecording:
		// Normal path.
	case model.StatusProcessing, model.StatusCompleted:
		// Late-arriving fragments for a session being finalized are admitted;
		// they only contribute if a later end call re-runs processing.
	default:
		return nil, invalidTransition("recording no longer accepts fragments in status %s", m.Status)
	}

	if m.Status == model.StatusRecording && m.StartedAt == nil {
		// First admitted fragment starts the duration window, exactly once.
		at := s.now().UTC()
		if err := s.meetings.MarkStarted(ctx, m.ID, at); err != nil {
			return nil, fmt.Errorf("mark started: %w", err)
		}
		m.StartedAt = &at
	}

	if err := s.guard.CheckAdmission(ctx, m); err != nil {
		return nil, err
	}

	key := fragmentKey(m.ID, sequenceNumber, filename)
	objInfo, err := s.store.Put(ctx, key, audio, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store fragment: %w", err)
	}

	f := &model.Fragment{
		ID:             uuid.New().String(),
		MeetingID:      m.ID,
		SequenceNumber: sequenceNumber,
		StorageRef:     objInfo.Key,
		Size:           objInfo.Size,
		ContentType:    contentType,
		Status:         model.FragmentUploaded,
		CreatedAt:      s.now().UTC(),
	}
	stored, err := s.fragments.Create(ctx, f)
	if err != nil {
		// Roll the blob back so a failed admission leaves no side effects.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("record fragment failed: %v; rollback delete failed: %v", err, delErr)
		}
		if repository.IsUniqueViolation(err) {
			return nil, invalidInput("sequence number %d was already uploaded", sequenceNumber)
		}
		return nil, fmt.Errorf("record fragment: %w", err)
	}
	return stored, nil
}

func fragmentKey(meetingID string, sequenceNumber int, filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".webm"
	}
	name := fmt.Sprintf("%06d-%s%s", sequenceNumber, uuid.New().String(), ext)
	return filepath.ToSlash(filepath.Join("fragments", meetingID, name))
}
