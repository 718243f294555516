package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/KmSasikumar/EcommProductRecommender2/internal/config"
	"github.com/KmSasikumar/EcommProductRecommender2/internal/services"
	"github.com/KmSasikumar/EcommProductRecommender2/internal/validation"
)

// Handlers holds the HTTP layer. All domain decisions live in the services;
// handlers bind, validate, dispatch, and translate errors to status codes.
type Handlers struct {
	services *services.Services
	validate *validator.Validate
	products *validation.ProductValidator
	maxCount int
	logger   *logrus.Logger
}

func New(cfg *config.Config, svcs *services.Services, logger *logrus.Logger) (*Handlers, error) {
	productValidator, err := validation.NewProductValidator()
	if err != nil {
		return nil, err
	}

	return &Handlers{
		services: svcs,
		validate: validator.New(),
		products: productValidator,
		maxCount: cfg.Recommend.MaxCount,
		logger:   logger,
	}, nil
}

// tenantKey returns the API key the auth middleware resolved for this request.
func tenantKey(c *gin.Context) string {
	return c.GetString("api_key")
}

func errorBody(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// writeError maps service errors onto HTTP status codes. Unknown errors stay
// opaque 500s so internals never leak to clients.
func (h *Handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTenantNotFound):
		c.JSON(http.StatusNotFound, errorBody("TENANT_NOT_FOUND", "No tenant is registered for this API key"))
	case errors.Is(err, services.ErrModelNotFound):
		c.JSON(http.StatusNotFound, errorBody("MODEL_NOT_FOUND", "No model is available for this tenant"))
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, errorBody("USER_NOT_FOUND", "User is not known to the current model"))
	case errors.Is(err, services.ErrNoCandidates):
		c.JSON(http.StatusNotFound, errorBody("NO_CANDIDATES", "The current model has no items to recommend"))
	case errors.Is(err, services.ErrInvalidCount):
		c.JSON(http.StatusBadRequest, errorBody("INVALID_COUNT", "Requested count must be positive"))
	case errors.Is(err, services.ErrEmptyDataset):
		c.JSON(http.StatusBadRequest, errorBody("EMPTY_DATASET", "Training dataset contains no usable rows"))
	case errors.Is(err, services.ErrRetrainInProgress):
		c.JSON(http.StatusConflict, errorBody("RETRAIN_IN_PROGRESS", "A retrain is already running for this tenant"))
	case errors.Is(err, services.ErrTenantExists):
		c.JSON(http.StatusConflict, errorBody("TENANT_EXISTS", "Tenant already exists"))
	case errors.Is(err, services.ErrTrainingFailed):
		h.logger.WithError(err).Error("Training failed")
		c.JSON(http.StatusInternalServerError, errorBody("TRAINING_FAILED", "Model training failed"))
	default:
		h.logger.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, errorBody("INTERNAL_ERROR", "Internal server error"))
	}
}
