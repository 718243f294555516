package models

import "time"

const (
	InteractionTap  = "tap"
	InteractionCart = "cart"
)

// InteractionEvent is one logged (user, item, type, timestamp) row. Events are
// immutable once logged and are replayed in full by every retrain.
type InteractionEvent struct {
	UserID    string    `json:"user_id" db:"user_id"`
	ItemID    string    `json:"item_id" db:"item_id"`
	Type      string    `json:"type" db:"type"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// WeightedInteraction is a training row: an interaction event after the fixed
// type weight table has been applied, or a historical baseline row that
// already carries a weight.
type WeightedInteraction struct {
	UserID string  `json:"user_id"`
	ItemID string  `json:"item_id"`
	Weight float64 `json:"interaction_score"`
}

type InteractionRequest struct {
	UserID string `json:"user_id" validate:"required"`
	ItemID string `json:"item_id" validate:"required"`
	Type   string `json:"type" validate:"required,oneof=tap cart"`
	// Unix seconds; defaults to server time when omitted.
	Timestamp *float64 `json:"timestamp,omitempty"`
}

type InteractionResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}
