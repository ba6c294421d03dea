package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"crm_backend/platform/config"
	"crm_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewClient(&config.Config{RedisURL: "redis://" + mr.Addr(), AsynqQueueName: "crm"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestNewClientRequiresRedis(t *testing.T) {
	_, err := NewClient(&config.Config{})
	assert.Error(t, err)
}

func TestEnqueueCampaignDispatchNow(t *testing.T) {
	c, mr := newTestClient(t)

	require.NoError(t, c.EnqueueCampaignDispatch(context.Background(), uuid.New(), time.Now()))

	pending, err := mr.List("asynq:{crm}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.False(t, mr.Exists("asynq:{crm}:scheduled"))
}

func TestEnqueueCampaignDispatchScheduled(t *testing.T) {
	c, mr := newTestClient(t)

	require.NoError(t, c.EnqueueCampaignDispatch(context.Background(), uuid.New(), time.Now().Add(time.Hour)))

	scheduled, err := mr.ZMembers("asynq:{crm}:scheduled")
	require.NoError(t, err)
	assert.Len(t, scheduled, 1)
	assert.False(t, mr.Exists("asynq:{crm}:pending"))
}

type runnerFunc func(ctx context.Context, id uuid.UUID) error

func (f runnerFunc) RunCampaign(ctx context.Context, id uuid.UUID) error { return f(ctx, id) }

func TestMuxRoutesCampaignTask(t *testing.T) {
	want := uuid.New()
	var got uuid.UUID
	mux := NewMux(runnerFunc(func(_ context.Context, id uuid.UUID) error {
		got = id
		return nil
	}), logger.NewWithWriter("test", io.Discard))

	task, err := NewCampaignDispatchTask(want)
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))
	assert.Equal(t, want, got)
}

func TestMuxSkipsRetryOnMalformedPayload(t *testing.T) {
	mux := NewMux(runnerFunc(func(context.Context, uuid.UUID) error {
		t.Fatal("runner must not be called")
		return nil
	}), logger.NewWithWriter("test", io.Discard))

	err := mux.ProcessTask(context.Background(), asynq.NewTask(TaskCampaignDispatch, []byte(`{"campaignId":"nope"}`)))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
