package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

// RecordInteraction appends one event to the interaction log.
func (h *Handlers) RecordInteraction(c *gin.Context) {
	var req models.InteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_REQUEST", "Request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", err.Error()))
		return
	}

	if _, err := h.services.Interactions.Record(c.Request.Context(), &req); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.InteractionResponse{
		Message: "Interaction recorded",
		Success: true,
	})
}
