package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

// blockingRetrainer holds each run until released so tests can observe the
// running state deterministically.
type blockingRetrainer struct {
	started chan struct{}
	release chan struct{}
	result  *RetrainResult
	err     error
}

func newBlockingRetrainer() *blockingRetrainer {
	return &blockingRetrainer{
		started: make(chan struct{}),
		release: make(chan struct{}),
		result:  &RetrainResult{Status: RetrainStatusCompleted, Generation: 2},
	}
}

func (b *blockingRetrainer) Retrain(ctx context.Context, tenantKey string) (*RetrainResult, error) {
	close(b.started)
	<-b.release
	if b.err != nil {
		return nil, b.err
	}
	return b.result, nil
}

type instantRetrainer struct {
	err error
}

func (r *instantRetrainer) Retrain(ctx context.Context, tenantKey string) (*RetrainResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &RetrainResult{Status: RetrainStatusCompleted, Generation: 2}, nil
}

func TestRetrainScheduler_RejectsConcurrentRuns(t *testing.T) {
	registry := registryWithTenant(t, "tenant-a")
	pipeline := newBlockingRetrainer()
	scheduler := NewRetrainScheduler(pipeline, registry, nil, nil, time.Minute, testLogger())

	require.NoError(t, scheduler.Request("tenant-a"))
	<-pipeline.started

	status, err := scheduler.Status("tenant-a")
	require.NoError(t, err)
	assert.Equal(t, models.RetrainStateRunning, status.State)

	err = scheduler.Request("tenant-a")
	assert.ErrorIs(t, err, ErrRetrainInProgress)

	close(pipeline.release)
	scheduler.Stop()

	status, err = scheduler.Status("tenant-a")
	require.NoError(t, err)
	assert.Equal(t, models.RetrainStateIdle, status.State)
	assert.Nil(t, status.LastError)
	assert.NotNil(t, status.FinishedAt)
}

func TestRetrainScheduler_FailureKeepsReason(t *testing.T) {
	registry := registryWithTenant(t, "tenant-a")
	scheduler := NewRetrainScheduler(&instantRetrainer{err: errors.New("training diverged")},
		registry, nil, nil, time.Minute, testLogger())

	require.NoError(t, scheduler.Request("tenant-a"))
	scheduler.Stop()

	status, err := scheduler.Status("tenant-a")
	require.NoError(t, err)
	assert.Equal(t, models.RetrainStateFailed, status.State)
	require.NotNil(t, status.LastError)
	assert.Contains(t, *status.LastError, "training diverged")

	// A failed tenant accepts the next request; only a running one rejects.
	require.NoError(t, scheduler.Request("tenant-a"))
	scheduler.Stop()
}

func TestRetrainScheduler_FailureDoesNotAdvanceGeneration(t *testing.T) {
	registry := registryWithTenant(t, "tenant-a")
	scheduler := NewRetrainScheduler(&instantRetrainer{err: errors.New("boom")},
		registry, nil, nil, time.Minute, testLogger())

	require.NoError(t, scheduler.Request("tenant-a"))
	scheduler.Stop()

	status, err := scheduler.Status("tenant-a")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), status.Generation)
}

func TestRetrainScheduler_UnknownTenant(t *testing.T) {
	registry := NewModelRegistry(testLogger())
	scheduler := NewRetrainScheduler(&instantRetrainer{}, registry, nil, nil, time.Minute, testLogger())

	assert.ErrorIs(t, scheduler.Request("nope"), ErrTenantNotFound)
	_, err := scheduler.Status("nope")
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestRetrainScheduler_StatusBeforeAnyRun(t *testing.T) {
	registry := registryWithTenant(t, "tenant-a")
	scheduler := NewRetrainScheduler(&instantRetrainer{}, registry, nil, nil, time.Minute, testLogger())

	status, err := scheduler.Status("tenant-a")
	require.NoError(t, err)
	assert.Equal(t, models.RetrainStateIdle, status.State)
	assert.Equal(t, uint64(1), status.Generation)
	assert.Nil(t, status.StartedAt)
}

func TestRetrainScheduler_TenantsRunIndependently(t *testing.T) {
	registry := registryWithTenant(t, "tenant-a")
	_, err := registry.Register("tenant-b", newTestModel([]string{"u2"}, []string{"i2"}, nil))
	require.NoError(t, err)

	pipeline := newBlockingRetrainer()
	scheduler := NewRetrainScheduler(pipeline, registry, nil, nil, time.Minute, testLogger())

	require.NoError(t, scheduler.Request("tenant-a"))
	<-pipeline.started

	// tenant-a is busy, tenant-b is not.
	assert.ErrorIs(t, scheduler.Request("tenant-a"), ErrRetrainInProgress)
	statusB, err := scheduler.Status("tenant-b")
	require.NoError(t, err)
	assert.Equal(t, models.RetrainStateIdle, statusB.State)

	close(pipeline.release)
	scheduler.Stop()
}
