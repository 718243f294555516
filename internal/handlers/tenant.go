package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KmSasikumar/EcommProductRecommender2/internal/services"
	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

// TrainModel creates a new tenant from an uploaded weighted interaction CSV.
// The response carries the freshly issued API key; all further calls for this
// tenant authenticate with it.
func (h *Handlers) TrainModel(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("MISSING_FILE", "Multipart field 'file' with a CSV dataset is required"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_FILE", "Uploaded file could not be opened"))
		return
	}
	defer f.Close()

	dataset, err := services.ParseWeightedCSV(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_CSV", err.Error()))
		return
	}

	apiKey, handle, err := h.services.Tenants.CreateTenant(c.Request.Context(), dataset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TrainResponse{
		Message: "Model trained successfully",
		APIKey:  apiKey,
		Users:   handle.UserCount(),
		Items:   handle.ItemCount(),
	})
}

// RequestRetrain accepts a background retrain for the authenticated tenant.
// The call returns as soon as the run is accepted; progress is polled through
// RetrainStatus.
func (h *Handlers) RequestRetrain(c *gin.Context) {
	if err := h.services.Scheduler.Request(tenantKey(c)); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, models.RetrainResponse{
		Message: "Retraining started",
		Status:  models.RetrainStateRunning,
	})
}

// RetrainStatus reports the tenant's retrain state and model generation.
func (h *Handlers) RetrainStatus(c *gin.Context) {
	status, err := h.services.Scheduler.Status(tenantKey(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
