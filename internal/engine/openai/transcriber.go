package openai

import (
	"context"
	"fmt"
	"io"
	"strings"

	openaigo "github.com/openai/openai-go/v3"

	"meetapi/internal/config"
	"meetapi/internal/engine"
)

// Transcriber implements engine.TranscriptionEngine via the OpenAI audio
// transcriptions endpoint (whisper family).
type Transcriber struct {
	client openaigo.Client
	model  string
}

// NewTranscriber builds a Transcriber from config.
func NewTranscriber(cfg config.OpenAIConfig) (*Transcriber, error) {
	cli, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Transcriber{client: cli, model: cfg.TranscriptionModel}, nil
}

var _ engine.TranscriptionEngine = (*Transcriber)(nil)

// Transcribe streams one audio fragment to the API and returns its text.
func (t *Transcriber) Transcribe(ctx context.Context, audio io.Reader, filename, contentType string) (string, error) {
	resp, err := t.client.Audio.Transcriptions.New(ctx, openaigo.AudioTranscriptionNewParams{
		Model: openaigo.AudioModel(t.model),
		File:  openaigo.File(audio, filename, contentType),
	})
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
