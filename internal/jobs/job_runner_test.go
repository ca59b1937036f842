package jobs_test

import (
	"context"
	"errors"
	"testing"

	"rentdesk-backend/internal/config"
	"rentdesk-backend/internal/jobs"
	"rentdesk-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingService only implements what the jobs call.
type MockBookingService struct {
	service.BookingService
	mock.Mock
}

func (m *MockBookingService) SyncItemStatuses(ctx context.Context) (*service.SyncResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SyncResult), args.Error(1)
}

func TestJobRunner_SyncItemStatuses(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		booking := new(MockBookingService)
		booking.On("SyncItemStatuses", mock.Anything).Return(&service.SyncResult{Activated: 1}, nil)
		jr := jobs.NewJobRunner(booking, &config.Config{})

		assert.NoError(t, jr.RunSyncItemStatuses())
		booking.AssertExpectations(t)
	})

	t.Run("ErrorIsReturned", func(t *testing.T) {
		booking := new(MockBookingService)
		booking.On("SyncItemStatuses", mock.Anything).Return(nil, errors.New("db down"))
		jr := jobs.NewJobRunner(booking, &config.Config{})

		assert.EqualError(t, jr.RunAll(), "db down")
	})

	t.Run("CronEntrySwallowsError", func(t *testing.T) {
		booking := new(MockBookingService)
		booking.On("SyncItemStatuses", mock.Anything).Return(nil, errors.New("db down"))
		jr := jobs.NewJobRunner(booking, &config.Config{})

		assert.NotPanics(t, jr.SyncItemStatuses)
		booking.AssertNumberOfCalls(t, "SyncItemStatuses", 1)
	})

	t.Run("PanicIsRecovered", func(t *testing.T) {
		booking := new(MockBookingService)
		booking.On("SyncItemStatuses", mock.Anything).Run(func(mock.Arguments) { panic("boom") })
		jr := jobs.NewJobRunner(booking, &config.Config{})

		var panicErr *jobs.PanicError
		err := jr.RunSyncItemStatuses()
		assert.ErrorAs(t, err, &panicErr)
		assert.Equal(t, jobs.SyncItemStatusesJob, panicErr.Job)
		assert.NotPanics(t, jr.SyncItemStatuses)
	})
}
