package mocks

import (
	"context"

	"meetapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockFragmentRepository struct {
	mock.Mock
}

func (m *MockFragmentRepository) Create(ctx context.Context, f *model.Fragment) (*model.Fragment, error) {
	args := m.Called(ctx, f)
	if fn, ok := args.Get(0).(func(context.Context, *model.Fragment) *model.Fragment); ok {
		return fn(ctx, f), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Fragment), args.Error(1)
}

func (m *MockFragmentRepository) ListByMeeting(ctx context.Context, meetingID string, status *model.FragmentStatus) ([]model.Fragment, error) {
	args := m.Called(ctx, meetingID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Fragment), args.Error(1)
}

func (m *MockFragmentRepository) MaxSequence(ctx context.Context, meetingID string) (int, bool, error) {
	args := m.Called(ctx, meetingID)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockFragmentRepository) CountUpTo(ctx context.Context, meetingID string, maxSequence int) (int, error) {
	args := m.Called(ctx, meetingID, maxSequence)
	return args.Int(0), args.Error(1)
}

func (m *MockFragmentRepository) SetTranscribed(ctx context.Context, id, text string) error {
	args := m.Called(ctx, id, text)
	return args.Error(0)
}

func (m *MockFragmentRepository) MarkError(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
