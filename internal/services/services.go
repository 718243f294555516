package services

import (
	"github.com/sirupsen/logrus"

	"github.com/KmSasikumar/EcommProductRecommender2/internal/config"
	"github.com/KmSasikumar/EcommProductRecommender2/internal/database"
	"github.com/KmSasikumar/EcommProductRecommender2/internal/messaging"
	"github.com/KmSasikumar/EcommProductRecommender2/internal/ml"
)

// Services wires the recommendation core together. Construction order follows
// the dependency chain: registry and catalog first, then the ranker and the
// retraining pipeline on top.
type Services struct {
	Auth           *AuthService
	Health         *HealthService
	Catalog        *CatalogService
	Interactions   *InteractionService
	Tenants        *TenantService
	Recommendation *RecommendationService
	Ranker         *HybridRanker
	Registry       *ModelRegistry
	Pipeline       *RetrainPipeline
	Scheduler      *RetrainScheduler
	Metrics        *Metrics
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database, bus *messaging.MessageBus) *Services {
	metrics := NewMetrics()
	registry := NewModelRegistry(logger)

	trainer := ml.NewFactorizationTrainer(ml.FactorizationConfig{
		Factors:        cfg.Model.Factors,
		Epochs:         cfg.Model.Epochs,
		LearningRate:   cfg.Model.LearningRate,
		Regularization: cfg.Model.Regularization,
		Seed:           cfg.Model.Seed,
	}, logger)

	catalog := NewCatalogService(db.PG, logger)
	interactions := NewInteractionService(db.PG, bus, metrics, logger)
	tenants := NewTenantService(registry, trainer, db.Redis, logger)

	ranker := NewHybridRanker(catalog, metrics, logger)
	recommendation := NewRecommendationService(registry, ranker, cfg.Recommend.DefaultCount, metrics, logger)

	baseline := NewBaselineLoader(cfg.Retrain.BaselinePath, logger)
	pipeline := NewRetrainPipeline(interactions, baseline, trainer, registry, metrics, logger)
	scheduler := NewRetrainScheduler(pipeline, registry, bus, db.Redis, cfg.Retrain.Timeout, logger)

	return &Services{
		Auth:           NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger),
		Health:         NewHealthService(db, logger),
		Catalog:        catalog,
		Interactions:   interactions,
		Tenants:        tenants,
		Recommendation: recommendation,
		Ranker:         ranker,
		Registry:       registry,
		Pipeline:       pipeline,
		Scheduler:      scheduler,
		Metrics:        metrics,
	}
}
