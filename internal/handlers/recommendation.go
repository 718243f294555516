package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

// GetRecommendations serves the hybrid ranking for the authenticated tenant.
func (h *Handlers) GetRecommendations(c *gin.Context) {
	var req models.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_REQUEST", "Request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", err.Error()))
		return
	}
	if req.Count > h.maxCount {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_COUNT", "Requested count exceeds the configured maximum"))
		return
	}

	resp, err := h.services.Recommendation.Recommend(c.Request.Context(), tenantKey(c), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if resp.Recommendations == nil {
		resp.Recommendations = []models.RecommendationItem{}
	}
	c.JSON(http.StatusOK, resp)
}
