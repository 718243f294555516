package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/KmSasikumar/EcommProductRecommender2/internal/database"
)

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

type HealthService struct {
	db     *database.Database
	logger *logrus.Logger
}

func NewHealthService(db *database.Database, logger *logrus.Logger) *HealthService {
	return &HealthService{db: db, logger: logger}
}

func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]string),
	}

	if err := s.db.PG.Ping(ctx); err != nil {
		status.Checks["postgres"] = err.Error()
		status.Status = "unhealthy"
		s.logger.WithError(err).Warn("PostgreSQL health check failed")
	} else {
		status.Checks["postgres"] = "ok"
	}

	if err := s.db.Redis.Ping(ctx).Err(); err != nil {
		status.Checks["redis"] = err.Error()
		status.Status = "unhealthy"
		s.logger.WithError(err).Warn("Redis health check failed")
	} else {
		status.Checks["redis"] = "ok"
	}

	return status
}
