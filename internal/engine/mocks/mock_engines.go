package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockTranscriptionEngine struct {
	mock.Mock
}

func (m *MockTranscriptionEngine) Transcribe(ctx context.Context, audio io.Reader, filename, contentType string) (string, error) {
	args := m.Called(ctx, audio, filename, contentType)
	return args.String(0), args.Error(1)
}

type MockSummarizationEngine struct {
	mock.Mock
}

func (m *MockSummarizationEngine) Summarize(ctx context.Context, transcript string, participants []string) (string, error) {
	args := m.Called(ctx, transcript, participants)
	return args.String(0), args.Error(1)
}
