package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

// RecommendationService resolves a tenant's current model snapshot and runs
// the hybrid ranker against it. The snapshot obtained at request start stays
// valid for the whole request even if a retrain swaps the model mid-flight.
type RecommendationService struct {
	registry     *ModelRegistry
	ranker       *HybridRanker
	defaultCount int
	metrics      *Metrics
	logger       *logrus.Logger
}

func NewRecommendationService(
	registry *ModelRegistry,
	ranker *HybridRanker,
	defaultCount int,
	metrics *Metrics,
	logger *logrus.Logger,
) *RecommendationService {
	if defaultCount <= 0 {
		defaultCount = 10
	}
	return &RecommendationService{
		registry:     registry,
		ranker:       ranker,
		defaultCount: defaultCount,
		metrics:      metrics,
		logger:       logger,
	}
}

func (s *RecommendationService) Recommend(
	ctx context.Context,
	tenantKey string,
	req *models.RecommendationRequest,
) (*models.RecommendationResponse, error) {
	handle, err := s.registry.Get(tenantKey)
	if err != nil {
		return nil, err
	}

	count := req.Count
	if count == 0 {
		count = s.defaultCount
	}

	items, err := s.ranker.Rank(ctx, handle, req.UserID, count, req.SearchQuery)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncRecommendationsServed()
	}

	return &models.RecommendationResponse{
		Recommendations: items,
		UserID:          req.UserID,
	}, nil
}
