package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"meetapi/internal/export"
	"meetapi/internal/model"
	"meetapi/internal/storage"
)

// ExportBridge hands a completed session's summary to the external document
// renderer and returns a time-limited download URL. It keeps no state and
// performs no retries.
type ExportBridge interface {
	Export(ctx context.Context, account model.AccountRef, meetingID string, format export.Format) (string, error)
}

type exportBridge struct {
	registry  SessionRegistry
	renderer  export.DocumentExporter
	store     storage.Storage
	urlExpiry time.Duration
}

// NewExportBridge constructs an ExportBridge.
func NewExportBridge(registry SessionRegistry, renderer export.DocumentExporter, store storage.Storage, urlExpiry time.Duration) ExportBridge {
	return &exportBridge{registry: registry, renderer: renderer, store: store, urlExpiry: urlExpiry}
}

func (s *exportBridge) Export(ctx context.Context, account model.AccountRef, meetingID string, format export.Format) (string, error) {
	if !format.Valid() {
		return "", invalidInput("unsupported export format %q", format)
	}
	if !account.Premium {
		return "", &Error{Reason: ReasonNotEntitled, Message: "export requires a premium plan"}
	}

	m, err := s.registry.Get(ctx, meetingID, account)
	if err != nil {
		return "", err
	}
	if m.Status != model.StatusCompleted || !m.HasSummary() {
		return "", invalidTransition("recording has no summary to export yet")
	}

	doc, err := s.renderer.Render(ctx, m.Title, *m.Summary, format)
	if err != nil {
		return "", engineFailure("document rendering failed", err)
	}

	key := exportKey(m.ID, format)
	if _, err := s.store.Put(ctx, key, bytes.NewReader(doc.Content), storage.PutObjectOptions{
		Size:        int64(len(doc.Content)),
		ContentType: doc.ContentType,
	}); err != nil {
		return "", fmt.Errorf("store export: %w", err)
	}

	url, err := s.store.PresignGet(ctx, key, s.urlExpiry)
	if err != nil {
		return "", fmt.Errorf("presign export: %w", err)
	}
	return url, nil
}

func exportKey(meetingID string, format export.Format) string {
	name := fmt.Sprintf("%s.%s", uuid.New().String(), format.Extension())
	return exportPrefix(meetingID) + name
}

// exportPrefix is the key prefix holding a meeting's rendered documents.
// Session deletion removes the whole prefix.
func exportPrefix(meetingID string) string {
	return filepath.ToSlash(filepath.Join("exports", meetingID)) + "/"
}
