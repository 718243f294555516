package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

// InteractionPublisher pushes logged events onto the message bus for
// downstream consumers. Publishing is best effort; the log write is the
// source of truth.
type InteractionPublisher interface {
	PublishInteraction(ctx context.Context, event models.InteractionEvent) error
}

// InteractionService is the append/read surface of the interaction log.
type InteractionService struct {
	db        DatabaseQuerier
	publisher InteractionPublisher
	metrics   *Metrics
	logger    *logrus.Logger
}

func NewInteractionService(db DatabaseQuerier, publisher InteractionPublisher, metrics *Metrics, logger *logrus.Logger) *InteractionService {
	return &InteractionService{
		db:        db,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Record appends one event to the log. The timestamp defaults to server time
// when the request carries none.
func (s *InteractionService) Record(ctx context.Context, req *models.InteractionRequest) (*models.InteractionEvent, error) {
	event := models.InteractionEvent{
		UserID:    req.UserID,
		ItemID:    req.ItemID,
		Type:      req.Type,
		Timestamp: time.Now().UTC(),
	}
	if req.Timestamp != nil {
		sec, frac := math.Modf(*req.Timestamp)
		event.Timestamp = time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO user_interactions (user_id, item_id, type, timestamp)
		VALUES ($1, $2, $3, $4)`,
		event.UserID, event.ItemID, event.Type, event.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store interaction: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishInteraction(ctx, event); err != nil {
			s.logger.WithError(err).Warn("Failed to publish interaction event")
		}
	}
	if s.metrics != nil {
		s.metrics.IncInteractionsLogged(event.Type)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": event.UserID,
		"item_id": event.ItemID,
		"type":    event.Type,
	}).Info("Interaction recorded")

	return &event, nil
}

// ReadAll returns the complete interaction log in insertion order. Every
// retrain replays the full log; there is no incremental cursor.
func (s *InteractionService) ReadAll(ctx context.Context) ([]models.InteractionEvent, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, item_id, type, timestamp
		FROM user_interactions
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	var events []models.InteractionEvent
	for rows.Next() {
		var event models.InteractionEvent
		if err := rows.Scan(&event.UserID, &event.ItemID, &event.Type, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read interactions: %w", err)
	}

	return events, nil
}
