package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

// CatalogSearcher is the read-only catalog collaborator. An empty query is
// resolved by the ranker itself, never delegated here with special meaning.
type CatalogSearcher interface {
	Find(ctx context.Context, query string) ([]models.Product, error)
}

// HybridRanker merges model scores with catalog search results into a ranked,
// deduplicated list. It is a pure function of the handle, the request, and
// its two read-only collaborators.
type HybridRanker struct {
	catalog CatalogSearcher
	metrics *Metrics
	logger  *logrus.Logger
}

func NewHybridRanker(catalog CatalogSearcher, metrics *Metrics, logger *logrus.Logger) *HybridRanker {
	return &HybridRanker{
		catalog: catalog,
		metrics: metrics,
		logger:  logger,
	}
}

// Rank scores every item in the handle's universe for the user and returns
// the top count. With a non-empty search query, catalog matches are re-ranked
// by model score with catalog order as the tie-break; an empty search result
// falls back to the pure model ranking.
func (r *HybridRanker) Rank(
	ctx context.Context,
	handle *ModelHandle,
	userID string,
	count int,
	searchQuery string,
) ([]models.RecommendationItem, error) {
	if count < 1 {
		return nil, ErrInvalidCount
	}

	start := time.Now()

	userIdx, ok := handle.Users.Index(userID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUserNotFound, userID)
	}

	// Candidate set is the model's known item universe: items never trained
	// are never scored.
	if handle.Items.Len() == 0 {
		return nil, ErrNoCandidates
	}
	candidates := make([]int, handle.Items.Len())
	for i := range candidates {
		candidates[i] = i
	}

	scores, err := handle.Scorer.Score(userIdx, candidates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoringFailed, err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("%w: scorer returned %d scores for %d candidates",
			ErrScoringFailed, len(scores), len(candidates))
	}

	modelRanking := make([]models.RecommendationItem, 0, len(candidates))
	for i, idx := range candidates {
		itemID, ok := handle.Items.ID(idx)
		if !ok {
			// No reverse mapping; should not occur for a well-formed handle.
			continue
		}
		modelRanking = append(modelRanking, models.RecommendationItem{
			ItemID: itemID,
			Score:  scores[i],
		})
	}

	// Score descending, item id ascending on ties. The scoring engine gives
	// no ordering guarantee of its own, so the tie-break makes ranking
	// reproducible.
	sort.Slice(modelRanking, func(i, j int) bool {
		if modelRanking[i].Score != modelRanking[j].Score {
			return modelRanking[i].Score > modelRanking[j].Score
		}
		return modelRanking[i].ItemID < modelRanking[j].ItemID
	})

	result, err := r.applySearch(ctx, modelRanking, count, searchQuery)
	if err != nil {
		return nil, err
	}

	if r.metrics != nil {
		r.metrics.ObserveRankLatency(time.Since(start))
	}
	r.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"count":      len(result),
		"query":      searchQuery,
		"generation": handle.Generation,
	}).Debug("Ranking completed")

	return result, nil
}

func (r *HybridRanker) applySearch(
	ctx context.Context,
	modelRanking []models.RecommendationItem,
	count int,
	searchQuery string,
) ([]models.RecommendationItem, error) {
	if strings.TrimSpace(searchQuery) == "" {
		return topN(modelRanking, count), nil
	}

	dbResults, err := r.catalog.Find(ctx, searchQuery)
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}

	if len(dbResults) == 0 {
		// Search miss: never return an empty page while the model has
		// candidates.
		r.logger.WithField("query", searchQuery).Debug("Catalog search returned no products, using model ranking")
		return topN(modelRanking, count), nil
	}

	scoreByItem := make(map[string]float64, len(modelRanking))
	for _, rec := range modelRanking {
		scoreByItem[rec.ItemID] = rec.Score
	}

	type searchCandidate struct {
		item    models.RecommendationItem
		dbIndex int
	}
	combined := make([]searchCandidate, 0, len(dbResults))
	for i, p := range dbResults {
		// Out-of-vocabulary products keep score 0.0.
		combined = append(combined, searchCandidate{
			item:    models.RecommendationItem{ItemID: p.ID, Score: scoreByItem[p.ID]},
			dbIndex: i,
		})
	}

	// Model score first; original catalog order breaks ties so catalog
	// relevance survives score ties, including the all-zero case.
	sort.Slice(combined, func(i, j int) bool {
		if combined[i].item.Score != combined[j].item.Score {
			return combined[i].item.Score > combined[j].item.Score
		}
		return combined[i].dbIndex < combined[j].dbIndex
	})

	out := make([]models.RecommendationItem, 0, count)
	for _, c := range combined {
		if len(out) == count {
			break
		}
		out = append(out, c.item)
	}
	return out, nil
}

func topN(ranking []models.RecommendationItem, n int) []models.RecommendationItem {
	if n > len(ranking) {
		n = len(ranking)
	}
	out := make([]models.RecommendationItem, n)
	copy(out, ranking[:n])
	return out
}
