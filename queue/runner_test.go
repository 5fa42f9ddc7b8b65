package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mocks are defined inline rather than generated because process is an
// internal seam of the runner.

type stubHandler struct {
	mock.Mock
}

func (h *stubHandler) Handle(ctx context.Context, job Job) (*time.Duration, error) {
	ret := h.Called(ctx, job)
	var delay *time.Duration
	if ret.Get(0) != nil {
		delay = ret.Get(0).(*time.Duration)
	}
	return delay, ret.Error(1)
}

type stubQueue struct {
	mock.Mock
}

func (q *stubQueue) Enqueue(ctx context.Context, job Job) error {
	return q.Called(ctx, job).Error(0)
}

func (q *stubQueue) EnqueueAfter(ctx context.Context, job Job, delay time.Duration) error {
	return q.Called(ctx, job, delay).Error(0)
}

func (q *stubQueue) Dequeue(ctx context.Context) ([]Job, error) {
	ret := q.Called(ctx)
	var jobs []Job
	if ret.Get(0) != nil {
		jobs = ret.Get(0).([]Job)
	}
	return jobs, ret.Error(1)
}

func (q *stubQueue) Ack(ctx context.Context, job Job) error {
	return q.Called(ctx, job).Error(0)
}

func (q *stubQueue) Close(ctx context.Context) error {
	return q.Called(ctx).Error(0)
}

func TestProcess(t *testing.T) {
	ctx := context.Background()
	job := Job{WebhookID: "wh-1", Attempt: 1, StreamID: "1-0"}

	t.Run("done job is acknowledged", func(t *testing.T) {
		q := &stubQueue{}
		h := &stubHandler{}
		r := NewRunner(q, h, nil, 1, zerolog.Nop())

		h.On("Handle", ctx, job).Return(nil, nil)
		q.On("Ack", ctx, job).Return(nil)

		r.process(ctx, zerolog.Nop(), job)

		q.AssertExpectations(t)
		h.AssertExpectations(t)
	})

	t.Run("retry is scheduled with bumped attempt before ack", func(t *testing.T) {
		q := &stubQueue{}
		h := &stubHandler{}
		r := NewRunner(q, h, nil, 1, zerolog.Nop())

		delay := 20 * time.Second
		h.On("Handle", ctx, job).Return(&delay, nil)
		q.On("EnqueueAfter", ctx, Job{WebhookID: "wh-1", Attempt: 2}, delay).Return(nil)
		q.On("Ack", ctx, job).Return(nil)

		r.process(ctx, zerolog.Nop(), job)

		q.AssertExpectations(t)
	})

	t.Run("handler error leaves the job unacknowledged", func(t *testing.T) {
		q := &stubQueue{}
		h := &stubHandler{}
		r := NewRunner(q, h, nil, 1, zerolog.Nop())

		h.On("Handle", ctx, job).Return(nil, errors.New("store down"))

		r.process(ctx, zerolog.Nop(), job)

		q.AssertNotCalled(t, "Ack", ctx, job)
	})

	t.Run("failed retry scheduling keeps the job pending", func(t *testing.T) {
		q := &stubQueue{}
		h := &stubHandler{}
		r := NewRunner(q, h, nil, 1, zerolog.Nop())

		delay := 10 * time.Second
		h.On("Handle", ctx, job).Return(&delay, nil)
		q.On("EnqueueAfter", ctx, Job{WebhookID: "wh-1", Attempt: 2}, delay).Return(errors.New("redis down"))

		r.process(ctx, zerolog.Nop(), job)

		q.AssertNotCalled(t, "Ack", ctx, job)
	})
}

func TestRunStopsOnContextCancel(t *testing.T) {
	q := &stubQueue{}
	h := &stubHandler{}
	r := NewRunner(q, h, nil, 2, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	q.On("Dequeue", mock.Anything).Return(nil, nil).Maybe()

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after context cancellation")
	}
}

func TestNewRunnerClampsWorkerCount(t *testing.T) {
	r := NewRunner(&stubQueue{}, &stubHandler{}, nil, 0, zerolog.Nop())
	require.Equal(t, 1, r.workers)
}
