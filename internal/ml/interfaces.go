package ml

import (
	"context"

	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

// Scorer is the opaque scoring capability of a trained model. Scores are
// returned in the same order as the requested item indices.
type Scorer interface {
	Score(userIndex int, itemIndices []int) ([]float64, error)
}

// TrainedModel bundles a scorer with the index maps of the generation that
// produced it. The maps are only valid against this scorer.
type TrainedModel struct {
	Scorer Scorer
	Users  *IndexMap
	Items  *IndexMap
}

// Trainer builds a new model from a weighted interaction dataset. Any
// conforming implementation is substitutable; the core never depends on a
// specific numeric engine.
type Trainer interface {
	Train(ctx context.Context, dataset []models.WeightedInteraction) (*TrainedModel, error)
}
