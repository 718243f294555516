package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/KmSasikumar/EcommProductRecommender2/internal/ml"
	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

// Fixed interaction type weight table. Unknown types fall back to the tap
// weight.
var interactionWeights = map[string]float64{
	models.InteractionTap:  1.0,
	models.InteractionCart: 2.5,
}

const defaultInteractionWeight = 1.0

const (
	RetrainStatusSkipped   = "skipped"
	RetrainStatusCompleted = "completed"
	RetrainStatusFailed    = "failed"
)

// InteractionReader is the read side of the interaction log consumed by
// retraining.
type InteractionReader interface {
	ReadAll(ctx context.Context) ([]models.InteractionEvent, error)
}

type RetrainResult struct {
	Status       string `json:"status"`
	Generation   uint64 `json:"generation,omitempty"`
	Users        int    `json:"num_users,omitempty"`
	Items        int    `json:"num_items,omitempty"`
	Interactions int    `json:"num_interactions,omitempty"`
}

// RetrainPipeline assembles the weighted combined dataset, trains a new
// model, and commits it through the registry. Any failure before the swap
// leaves the previously-serving handle fully intact.
type RetrainPipeline struct {
	log      InteractionReader
	baseline *BaselineLoader
	trainer  ml.Trainer
	registry *ModelRegistry
	metrics  *Metrics
	logger   *logrus.Logger
}

func NewRetrainPipeline(
	log InteractionReader,
	baseline *BaselineLoader,
	trainer ml.Trainer,
	registry *ModelRegistry,
	metrics *Metrics,
	logger *logrus.Logger,
) *RetrainPipeline {
	return &RetrainPipeline{
		log:      log,
		baseline: baseline,
		trainer:  trainer,
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}
}

// Retrain reprocesses the complete interaction log for the tenant and swaps
// in the newly trained model. An empty log is a no-op, not an error.
func (p *RetrainPipeline) Retrain(ctx context.Context, tenantKey string) (*RetrainResult, error) {
	if !p.registry.Has(tenantKey) {
		return nil, ErrTenantNotFound
	}

	events, err := p.log.ReadAll(ctx)
	if err != nil {
		p.countRun(RetrainStatusFailed)
		return nil, fmt.Errorf("%w: reading interaction log: %v", ErrTrainingFailed, err)
	}

	if len(events) == 0 {
		p.logger.WithField("tenant", tenantKey).Info("No new interactions, skipping retrain")
		p.countRun(RetrainStatusSkipped)
		return &RetrainResult{Status: RetrainStatusSkipped}, nil
	}

	weighted := make([]models.WeightedInteraction, 0, len(events))
	for _, event := range events {
		weighted = append(weighted, models.WeightedInteraction{
			UserID: event.UserID,
			ItemID: event.ItemID,
			Weight: WeightFor(event.Type),
		})
	}

	// Baseline rows first, then new rows. The trainer does not care about
	// order, but reproducibility does.
	baseline := p.baseline.Load()
	combined := make([]models.WeightedInteraction, 0, len(baseline)+len(weighted))
	combined = append(combined, baseline...)
	combined = append(combined, weighted...)

	p.logger.WithFields(logrus.Fields{
		"tenant":   tenantKey,
		"baseline": len(baseline),
		"new":      len(weighted),
		"combined": len(combined),
	}).Info("Combined training dataset assembled")

	model, err := p.trainer.Train(ctx, combined)
	if err != nil {
		p.countRun(RetrainStatusFailed)
		return nil, fmt.Errorf("%w: %v", ErrTrainingFailed, err)
	}

	_, current, err := p.registry.Swap(tenantKey, model)
	if err != nil {
		p.countRun(RetrainStatusFailed)
		return nil, fmt.Errorf("%w: committing model: %v", ErrTrainingFailed, err)
	}

	p.countRun(RetrainStatusCompleted)
	p.logger.WithFields(logrus.Fields{
		"tenant":     tenantKey,
		"generation": current.Generation,
		"users":      current.UserCount(),
		"items":      current.ItemCount(),
	}).Info("Retrain completed")

	return &RetrainResult{
		Status:       RetrainStatusCompleted,
		Generation:   current.Generation,
		Users:        current.UserCount(),
		Items:        current.ItemCount(),
		Interactions: len(combined),
	}, nil
}

func (p *RetrainPipeline) countRun(status string) {
	if p.metrics != nil {
		p.metrics.IncRetrainRuns(status)
	}
}

// WeightFor maps an interaction type onto its training weight.
func WeightFor(interactionType string) float64 {
	if w, ok := interactionWeights[interactionType]; ok {
		return w
	}
	return defaultInteractionWeight
}
