package mocks

import (
	"context"
	"time"

	"meetapi/internal/model"
	"meetapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockMeetingRepository struct {
	mock.Mock
}

func (m *MockMeetingRepository) Create(ctx context.Context, meeting *model.Meeting) (*model.Meeting, error) {
	args := m.Called(ctx, meeting)
	if f, ok := args.Get(0).(func(context.Context, *model.Meeting) *model.Meeting); ok {
		return f(ctx, meeting), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) FindByID(ctx context.Context, id, accountID string) (*model.Meeting, error) {
	args := m.Called(ctx, id, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) ListByAccount(ctx context.Context, accountID string, pq repository.PageQuery) (*repository.PageResult[model.Meeting], error) {
	args := m.Called(ctx, accountID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Meeting]), args.Error(1)
}

func (m *MockMeetingRepository) Transition(ctx context.Context, id string, from []model.MeetingStatus, to model.MeetingStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockMeetingRepository) MarkStarted(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockMeetingRepository) SaveTranscript(ctx context.Context, id, transcript string, transcribed, errored int) error {
	args := m.Called(ctx, id, transcript, transcribed, errored)
	return args.Error(0)
}

func (m *MockMeetingRepository) CompleteWithSummary(ctx context.Context, id, summary string) (bool, error) {
	args := m.Called(ctx, id, summary)
	return args.Bool(0), args.Error(1)
}

func (m *MockMeetingRepository) ClaimUsage(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockMeetingRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
