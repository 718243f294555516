package services

import "errors"

// Error taxonomy surfaced by the core services. Handlers map these onto HTTP
// status codes; everything else is treated as internal.
var (
	// Not-found class: surfaced directly, no retry.
	ErrTenantNotFound = errors.New("tenant not found")
	ErrModelNotFound  = errors.New("model not found for tenant")
	ErrUserNotFound   = errors.New("user not found in model mapping")

	// Validation class.
	ErrInvalidCount = errors.New("count must be at least 1")
	ErrEmptyDataset = errors.New("training dataset is empty")
	ErrNoCandidates = errors.New("no candidate items available")

	// Conflict class: retryable by the caller.
	ErrTenantExists      = errors.New("tenant already registered")
	ErrRetrainInProgress = errors.New("retrain already in progress")

	// Upstream class: scorer or trainer failure. Always wrapped with the
	// underlying cause.
	ErrScoringFailed  = errors.New("scoring failed")
	ErrTrainingFailed = errors.New("training failed")
)
