package redisjob_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thinkabouthev/backend-hw2/internal/job"
	"github.com/Thinkabouthev/backend-hw2/internal/platform/redisjob"
)

func newRecorder(t *testing.T, ttl time.Duration) (*redisjob.Recorder, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return redisjob.NewRecorder(client, ttl), srv
}

func TestRecorderRecord(t *testing.T) {
	recorder, srv := newRecorder(t, 10*time.Minute)
	runID := uuid.New()
	result := job.Result{
		Status:  "ok",
		Message: "enqueued 3 of 3 incomplete tasks",
		Details: map[string]any{"count": float64(3)},
	}

	require.NoError(t, recorder.Record(context.Background(), "process_pending_tasks", runID, result))

	key := "jobresult:process_pending_tasks:" + runID.String()
	raw, err := srv.Get(key)
	require.NoError(t, err)

	var stored job.Result
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, result, stored)

	ttl := srv.TTL(key)
	assert.Equal(t, 10*time.Minute, ttl)
}

func TestRecorderRecordWithoutTTL(t *testing.T) {
	recorder, srv := newRecorder(t, 0)
	runID := uuid.New()

	require.NoError(t, recorder.Record(context.Background(), "fetch_external_data", runID, job.Result{Status: "ok"}))
	assert.Zero(t, srv.TTL("jobresult:fetch_external_data:"+runID.String()))
}

func TestRecorderLoad(t *testing.T) {
	recorder, _ := newRecorder(t, time.Minute)
	runID := uuid.New()
	result := job.Result{Status: "error", Message: "unexpected response status"}

	require.NoError(t, recorder.Record(context.Background(), "fetch_external_data", runID, result))

	loaded, err := recorder.Load(context.Background(), "fetch_external_data", runID)
	require.NoError(t, err)
	assert.Equal(t, result, loaded)

	t.Run("missing result", func(t *testing.T) {
		_, err := recorder.Load(context.Background(), "fetch_external_data", uuid.New())
		require.Error(t, err)
		assert.ErrorIs(t, err, redis.Nil)
	})
}

func TestRecorderRecordFailsWhenRedisDown(t *testing.T) {
	recorder, srv := newRecorder(t, time.Minute)
	srv.Close()

	err := recorder.Record(context.Background(), "cleanup_completed_tasks", uuid.New(), job.Result{Status: "ok"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store job result")
}
