package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/KmSasikumar/EcommProductRecommender2/internal/ml"
	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

const tenantSetKey = "tenants"

// TenantService owns tenant creation and API key validation. A tenant is
// created by training an initial model from an uploaded dataset; the issued
// key is the tenant's identity from then on.
type TenantService struct {
	registry *ModelRegistry
	trainer  ml.Trainer
	redis    *redis.Client
	logger   *logrus.Logger
}

func NewTenantService(registry *ModelRegistry, trainer ml.Trainer, redisClient *redis.Client, logger *logrus.Logger) *TenantService {
	return &TenantService{
		registry: registry,
		trainer:  trainer,
		redis:    redisClient,
		logger:   logger,
	}
}

// CreateTenant trains generation 1 from the uploaded dataset and registers a
// freshly issued API key for it.
func (s *TenantService) CreateTenant(ctx context.Context, dataset []models.WeightedInteraction) (string, *ModelHandle, error) {
	if len(dataset) == 0 {
		return "", nil, ErrEmptyDataset
	}

	model, err := s.trainer.Train(ctx, dataset)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrTrainingFailed, err)
	}
	if model.Users.Len() == 0 || model.Items.Len() == 0 {
		return "", nil, fmt.Errorf("%w: no users or items in training data", ErrEmptyDataset)
	}

	apiKey := uuid.NewString()
	handle, err := s.registry.Register(apiKey, model)
	if err != nil {
		return "", nil, err
	}

	s.mirrorKey(apiKey)

	s.logger.WithFields(logrus.Fields{
		"tenant": apiKey,
		"users":  handle.UserCount(),
		"items":  handle.ItemCount(),
	}).Info("Tenant created")

	return apiKey, handle, nil
}

// ValidateAPIKey checks that the key belongs to a registered tenant.
func (s *TenantService) ValidateAPIKey(apiKey string) error {
	if apiKey == "" || !s.registry.Has(apiKey) {
		return ErrTenantNotFound
	}
	return nil
}

// mirrorKey records the key in Redis so external tooling can enumerate
// tenants. Best effort; the registry stays authoritative.
func (s *TenantService) mirrorKey(apiKey string) {
	if s.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.redis.SAdd(ctx, tenantSetKey, apiKey).Err(); err != nil {
		s.logger.WithError(err).Warn("Failed to mirror tenant key to Redis")
	}
}
