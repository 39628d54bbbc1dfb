package mocks

import (
	"context"
	"io"

	"meetapi/internal/export"
	"meetapi/internal/model"
	"meetapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockSessionRegistry struct {
	mock.Mock
}

func (m *MockSessionRegistry) Create(ctx context.Context, account model.AccountRef, title string, participants []string) (*model.Meeting, error) {
	args := m.Called(ctx, account, title, participants)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Meeting), args.Error(1)
}

func (m *MockSessionRegistry) Get(ctx context.Context, id string, account model.AccountRef) (*model.Meeting, error) {
	args := m.Called(ctx, id, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Meeting), args.Error(1)
}

func (m *MockSessionRegistry) List(ctx context.Context, account model.AccountRef, limit, offset int) (*service.MeetingListResult, error) {
	args := m.Called(ctx, account, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MeetingListResult), args.Error(1)
}

func (m *MockSessionRegistry) Delete(ctx context.Context, id string, account model.AccountRef) error {
	args := m.Called(ctx, id, account)
	return args.Error(0)
}

func (m *MockSessionRegistry) Transition(ctx context.Context, id string, from []model.MeetingStatus, to model.MeetingStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

type MockFragmentIngester struct {
	mock.Mock
}

func (m *MockFragmentIngester) Admit(ctx context.Context, account model.AccountRef, meetingID string, sequenceNumber int, audio io.Reader, filename, contentType string, size int64) (*model.Fragment, error) {
	args := m.Called(ctx, account, meetingID, sequenceNumber, audio, filename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Fragment), args.Error(1)
}

type MockProcessingCoordinator struct {
	mock.Mock
}

func (m *MockProcessingCoordinator) Begin(ctx context.Context, account model.AccountRef, meetingID string) (*model.Meeting, error) {
	args := m.Called(ctx, account, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Meeting), args.Error(1)
}

func (m *MockProcessingCoordinator) Process(ctx context.Context, accountID, meetingID string, lastSequenceNumber int) error {
	args := m.Called(ctx, accountID, meetingID, lastSequenceNumber)
	return args.Error(0)
}

type MockExportBridge struct {
	mock.Mock
}

func (m *MockExportBridge) Export(ctx context.Context, account model.AccountRef, meetingID string, format export.Format) (string, error) {
	args := m.Called(ctx, account, meetingID, format)
	return args.String(0), args.Error(1)
}
