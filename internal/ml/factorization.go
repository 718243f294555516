package ml

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

// FactorizationConfig holds hyperparameters for the default matrix
// factorization engine.
type FactorizationConfig struct {
	Factors        int     `mapstructure:"factors"`
	Epochs         int     `mapstructure:"epochs"`
	LearningRate   float64 `mapstructure:"learning_rate"`
	Regularization float64 `mapstructure:"regularization"`
	Seed           int64   `mapstructure:"seed"`
}

// FactorizationTrainer trains user/item latent factor matrices with SGD over
// weighted interactions. Training is deterministic for a fixed seed and
// dataset order.
type FactorizationTrainer struct {
	config FactorizationConfig
	logger *logrus.Logger
}

func NewFactorizationTrainer(config FactorizationConfig, logger *logrus.Logger) *FactorizationTrainer {
	if config.Factors <= 0 {
		config.Factors = 32
	}
	if config.Epochs <= 0 {
		config.Epochs = 15
	}
	if config.LearningRate <= 0 {
		config.LearningRate = 0.05
	}
	if config.Regularization < 0 {
		config.Regularization = 0.01
	}
	return &FactorizationTrainer{config: config, logger: logger}
}

func (t *FactorizationTrainer) Train(ctx context.Context, dataset []models.WeightedInteraction) (*TrainedModel, error) {
	if len(dataset) == 0 {
		return nil, fmt.Errorf("training dataset is empty")
	}

	userIDs := make([]string, 0, len(dataset))
	itemIDs := make([]string, 0, len(dataset))
	for _, row := range dataset {
		userIDs = append(userIDs, row.UserID)
		itemIDs = append(itemIDs, row.ItemID)
	}
	users := NewIndexMap(userIDs)
	items := NewIndexMap(itemIDs)

	rng := rand.New(rand.NewSource(t.config.Seed))
	userFactors := randomDense(rng, users.Len(), t.config.Factors)
	itemFactors := randomDense(rng, items.Len(), t.config.Factors)

	lr := t.config.LearningRate
	reg := t.config.Regularization

	for epoch := 0; epoch < t.config.Epochs; epoch++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("training cancelled: %w", ctx.Err())
		default:
		}

		var sqErr float64
		for _, row := range dataset {
			ui, _ := users.Index(row.UserID)
			ii, _ := items.Index(row.ItemID)

			u := userFactors.RawRowView(ui)
			v := itemFactors.RawRowView(ii)

			pred := floats.Dot(u, v)
			residual := row.Weight - pred
			sqErr += residual * residual

			for k := 0; k < t.config.Factors; k++ {
				du := residual*v[k] - reg*u[k]
				dv := residual*u[k] - reg*v[k]
				u[k] += lr * du
				v[k] += lr * dv
			}
		}

		if t.logger != nil && (epoch == 0 || epoch == t.config.Epochs-1) {
			t.logger.WithFields(logrus.Fields{
				"epoch": epoch,
				"rmse":  rmse(sqErr, len(dataset)),
			}).Debug("Factorization training epoch")
		}
	}

	if t.logger != nil {
		t.logger.WithFields(logrus.Fields{
			"users":        users.Len(),
			"items":        items.Len(),
			"interactions": len(dataset),
			"factors":      t.config.Factors,
		}).Info("Factorization model trained")
	}

	return &TrainedModel{
		Scorer: &factorizationScorer{users: userFactors, items: itemFactors},
		Users:  users,
		Items:  items,
	}, nil
}

type factorizationScorer struct {
	users *mat.Dense
	items *mat.Dense
}

func (s *factorizationScorer) Score(userIndex int, itemIndices []int) ([]float64, error) {
	rows, _ := s.users.Dims()
	if userIndex < 0 || userIndex >= rows {
		return nil, fmt.Errorf("user index %d out of range [0,%d)", userIndex, rows)
	}
	itemRows, _ := s.items.Dims()

	u := s.users.RawRowView(userIndex)
	scores := make([]float64, len(itemIndices))
	for i, idx := range itemIndices {
		if idx < 0 || idx >= itemRows {
			return nil, fmt.Errorf("item index %d out of range [0,%d)", idx, itemRows)
		}
		scores[i] = floats.Dot(u, s.items.RawRowView(idx))
	}
	return scores, nil
}

func randomDense(rng *rand.Rand, rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.NormFloat64() * 0.1
	}
	return mat.NewDense(rows, cols, data)
}

func rmse(sqErr float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return math.Sqrt(sqErr / float64(n))
}
