// Package engine declares the contracts the pipeline expects from the
// external speech-to-text and summarization services.
package engine

import (
	"context"
	"io"
)

// TranscriptionEngine turns one audio fragment into plain text.
type TranscriptionEngine interface {
	// Transcribe reads the audio stream and returns the recognized text.
	// An empty string with nil error means the fragment carried no speech.
	Transcribe(ctx context.Context, audio io.Reader, filename, contentType string) (string, error)
}

// SummarizationEngine turns an assembled transcript into structured minutes.
type SummarizationEngine interface {
	// Summarize produces the minutes text for the given transcript.
	// Participant names, when known, are provided as context for the model.
	Summarize(ctx context.Context, transcript string, participants []string) (string, error)
}
