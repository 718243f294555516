package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

// SearchProducts runs a plain catalog search without model re-ranking.
func (h *Handlers) SearchProducts(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_REQUEST", "Request body must be valid JSON"))
		return
	}

	products, err := h.services.Catalog.Find(c.Request.Context(), req.Query)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	c.JSON(http.StatusOK, models.SearchResponse{Products: products})
}
