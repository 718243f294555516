package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

func TestTenantService_CreateTenant(t *testing.T) {
	registry := NewModelRegistry(testLogger())
	trainer := &capturingTrainer{model: newTestModel([]string{"u1"}, []string{"i1", "i2"}, nil)}
	svc := NewTenantService(registry, trainer, nil, testLogger())

	apiKey, handle, err := svc.CreateTenant(context.Background(), []models.WeightedInteraction{
		{UserID: "u1", ItemID: "i1", Weight: 1.0},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, apiKey)
	assert.Equal(t, uint64(1), handle.Generation)
	assert.Equal(t, 2, handle.ItemCount())

	assert.NoError(t, svc.ValidateAPIKey(apiKey))
}

func TestTenantService_CreateTenantKeysAreUnique(t *testing.T) {
	registry := NewModelRegistry(testLogger())
	trainer := &capturingTrainer{model: newTestModel([]string{"u1"}, []string{"i1"}, nil)}
	svc := NewTenantService(registry, trainer, nil, testLogger())

	dataset := []models.WeightedInteraction{{UserID: "u1", ItemID: "i1", Weight: 1.0}}
	first, _, err := svc.CreateTenant(context.Background(), dataset)
	require.NoError(t, err)
	second, _, err := svc.CreateTenant(context.Background(), dataset)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTenantService_CreateTenantEmptyDataset(t *testing.T) {
	svc := NewTenantService(NewModelRegistry(testLogger()), &capturingTrainer{}, nil, testLogger())

	_, _, err := svc.CreateTenant(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestTenantService_CreateTenantTrainingFailure(t *testing.T) {
	svc := NewTenantService(NewModelRegistry(testLogger()),
		&capturingTrainer{err: errors.New("diverged")}, nil, testLogger())

	_, _, err := svc.CreateTenant(context.Background(), []models.WeightedInteraction{
		{UserID: "u1", ItemID: "i1", Weight: 1.0},
	})
	assert.ErrorIs(t, err, ErrTrainingFailed)
}

func TestTenantService_ValidateAPIKey(t *testing.T) {
	registry := registryWithTenant(t, "known-key")
	svc := NewTenantService(registry, &capturingTrainer{}, nil, testLogger())

	assert.NoError(t, svc.ValidateAPIKey("known-key"))
	assert.ErrorIs(t, svc.ValidateAPIKey("unknown"), ErrTenantNotFound)
	assert.ErrorIs(t, svc.ValidateAPIKey(""), ErrTenantNotFound)
}
