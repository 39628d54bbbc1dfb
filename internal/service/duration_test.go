package service

import (
	"context"
	"testing"
	"time"

	"meetapi/internal/model"
	repoMocks "meetapi/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
)

func TestDurationGuard_CheckAdmission(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	within := now.Add(-10 * time.Minute)
	over := now.Add(-31 * time.Minute)

	tests := []struct {
		name       string
		meeting    *model.Meeting
		setupMocks func(mRepo *repoMocks.MockMeetingRepository)
		wantErr    error
	}{
		{
			name:       "session not recording is out of scope",
			meeting:    &model.Meeting{ID: "m-1", Status: model.StatusProcessing, StartedAt: &over, MaxDurationMinutes: 30},
			setupMocks: func(mRepo *repoMocks.MockMeetingRepository) {},
		},
		{
			name:       "window not started yet",
			meeting:    &model.Meeting{ID: "m-1", Status: model.StatusRecording, MaxDurationMinutes: 30},
			setupMocks: func(mRepo *repoMocks.MockMeetingRepository) {},
		},
		{
			name:       "elapsed below the ceiling",
			meeting:    &model.Meeting{ID: "m-1", Status: model.StatusRecording, StartedAt: &within, MaxDurationMinutes: 30},
			setupMocks: func(mRepo *repoMocks.MockMeetingRepository) {},
		},
		{
			name:    "ceiling reached forces the stop",
			meeting: &model.Meeting{ID: "m-1", Status: model.StatusRecording, StartedAt: &over, MaxDurationMinutes: 30},
			setupMocks: func(mRepo *repoMocks.MockMeetingRepository) {
				mRepo.On("Transition", ctx, "m-1",
					[]model.MeetingStatus{model.StatusRecording}, model.StatusCompletedNoSummary).
					Return(true, nil)
			},
			wantErr: ErrDurationExceeded,
		},
		{
			name:    "concurrent upload already forced the stop",
			meeting: &model.Meeting{ID: "m-1", Status: model.StatusRecording, StartedAt: &over, MaxDurationMinutes: 30},
			setupMocks: func(mRepo *repoMocks.MockMeetingRepository) {
				mRepo.On("Transition", ctx, "m-1",
					[]model.MeetingStatus{model.StatusRecording}, model.StatusCompletedNoSummary).
					Return(false, nil)
			},
			wantErr: ErrDurationExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockMeetingRepository)
			tt.setupMocks(mRepo)

			guard := NewDurationGuard(newTestRegistry(mRepo, nil, nil))
			guard.now = func() time.Time { return now }

			err := guard.CheckAdmission(ctx, tt.meeting)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			mRepo.AssertExpectations(t)
		})
	}
}
