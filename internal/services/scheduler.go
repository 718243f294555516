package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

// Retrainer runs one retraining pass for a tenant.
type Retrainer interface {
	Retrain(ctx context.Context, tenantKey string) (*RetrainResult, error)
}

// ModelEventPublisher emits retrain lifecycle events to the message bus.
type ModelEventPublisher interface {
	PublishModelEvent(ctx context.Context, tenantKey, eventType string, fields map[string]interface{}) error
}

type jobState struct {
	state      string
	lastError  *string
	startedAt  *time.Time
	finishedAt *time.Time
}

// RetrainScheduler serializes retraining per tenant: at most one pipeline run
// may be in flight for a tenant, while runs for different tenants proceed
// concurrently. A request arriving while a run is in flight is rejected with
// ErrRetrainInProgress, never queued.
type RetrainScheduler struct {
	mu   sync.Mutex
	jobs map[string]*jobState

	pipeline Retrainer
	registry *ModelRegistry
	events   ModelEventPublisher
	redis    *redis.Client
	timeout  time.Duration
	logger   *logrus.Logger
	wg       sync.WaitGroup
}

func NewRetrainScheduler(
	pipeline Retrainer,
	registry *ModelRegistry,
	events ModelEventPublisher,
	redisClient *redis.Client,
	timeout time.Duration,
	logger *logrus.Logger,
) *RetrainScheduler {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &RetrainScheduler{
		jobs:     make(map[string]*jobState),
		pipeline: pipeline,
		registry: registry,
		events:   events,
		redis:    redisClient,
		timeout:  timeout,
		logger:   logger,
	}
}

// Request accepts a retrain for the tenant and runs it in the background.
// A tenant in the failed state accepts a new request; only a running tenant
// rejects.
func (s *RetrainScheduler) Request(tenantKey string) error {
	if !s.registry.Has(tenantKey) {
		return ErrTenantNotFound
	}

	s.mu.Lock()
	job, exists := s.jobs[tenantKey]
	if exists && job.state == models.RetrainStateRunning {
		s.mu.Unlock()
		return fmt.Errorf("%w: tenant %s", ErrRetrainInProgress, tenantKey)
	}
	now := time.Now().UTC()
	s.jobs[tenantKey] = &jobState{
		state:     models.RetrainStateRunning,
		startedAt: &now,
	}
	s.mu.Unlock()

	s.publishEvent(tenantKey, "retrain_started", nil)
	s.mirrorStatus(tenantKey)

	s.wg.Add(1)
	go s.run(tenantKey)

	s.logger.WithField("tenant", tenantKey).Info("Retrain accepted")
	return nil
}

func (s *RetrainScheduler) run(tenantKey string) {
	defer s.wg.Done()

	// Detached from the request context: the caller gets an immediate
	// acknowledgement while training proceeds. The timeout bounds the run
	// and surfaces as a training failure with the prior handle intact.
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result, err := s.pipeline.Retrain(ctx, tenantKey)

	s.mu.Lock()
	job := s.jobs[tenantKey]
	now := time.Now().UTC()
	job.finishedAt = &now
	if err != nil {
		reason := err.Error()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = fmt.Sprintf("%s: timeout after %s", ErrTrainingFailed, s.timeout)
		}
		job.state = models.RetrainStateFailed
		job.lastError = &reason
	} else {
		job.state = models.RetrainStateIdle
		job.lastError = nil
	}
	s.mu.Unlock()

	s.mirrorStatus(tenantKey)

	if err != nil {
		s.publishEvent(tenantKey, "retrain_failed", map[string]interface{}{"error": err.Error()})
		s.logger.WithError(err).WithField("tenant", tenantKey).Error("Retrain failed")
		return
	}

	s.publishEvent(tenantKey, "retrain_"+result.Status, map[string]interface{}{
		"generation": result.Generation,
		"users":      result.Users,
		"items":      result.Items,
	})
	s.logger.WithFields(logrus.Fields{
		"tenant": tenantKey,
		"status": result.Status,
	}).Info("Retrain finished")
}

// Status reports the tenant's job state together with its current model
// generation.
func (s *RetrainScheduler) Status(tenantKey string) (*models.TenantStatus, error) {
	if !s.registry.Has(tenantKey) {
		return nil, ErrTenantNotFound
	}

	status := &models.TenantStatus{
		TenantKey:  tenantKey,
		State:      models.RetrainStateIdle,
		Generation: s.registry.Generation(tenantKey),
	}

	s.mu.Lock()
	if job, exists := s.jobs[tenantKey]; exists {
		status.State = job.state
		status.LastError = job.lastError
		status.StartedAt = job.startedAt
		status.FinishedAt = job.finishedAt
	}
	s.mu.Unlock()

	return status, nil
}

// Stop waits for in-flight retrains to finish.
func (s *RetrainScheduler) Stop() {
	s.wg.Wait()
}

// mirrorStatus copies the authoritative in-memory status into Redis for
// observability. Best effort only.
func (s *RetrainScheduler) mirrorStatus(tenantKey string) {
	if s.redis == nil {
		return
	}

	status, err := s.Status(tenantKey)
	if err != nil {
		return
	}
	data, err := json.Marshal(status)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := fmt.Sprintf("retrain:status:%s", tenantKey)
	if err := s.redis.Set(ctx, key, data, 24*time.Hour).Err(); err != nil {
		s.logger.WithError(err).WithField("tenant", tenantKey).Warn("Failed to mirror retrain status to Redis")
	}
}

func (s *RetrainScheduler) publishEvent(tenantKey, eventType string, fields map[string]interface{}) {
	if s.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.events.PublishModelEvent(ctx, tenantKey, eventType, fields); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"tenant": tenantKey,
			"event":  eventType,
		}).Warn("Failed to publish model event")
	}
}
