package models

import "time"

const (
	RetrainStateIdle    = "idle"
	RetrainStateRunning = "running"
	RetrainStateFailed  = "failed"
)

// TenantStatus reports the retrain job state for one tenant. A failed state
// keeps the last error until the next accepted retrain request.
type TenantStatus struct {
	TenantKey  string     `json:"tenant_key"`
	State      string     `json:"state"`
	Generation uint64     `json:"generation"`
	LastError  *string    `json:"last_error,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type TrainResponse struct {
	Message string `json:"message"`
	APIKey  string `json:"api_key"`
	Users   int    `json:"num_users"`
	Items   int    `json:"num_items"`
}

type RetrainResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
