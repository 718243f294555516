package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

// UpsertProduct stores one catalog entry, validated against the product
// schema before it touches the database.
func (h *Handlers) UpsertProduct(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_REQUEST", "Failed to read request body"))
		return
	}

	if err := h.products.Validate(body); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", err.Error()))
		return
	}

	var product models.Product
	if err := json.Unmarshal(body, &product); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_REQUEST", "Request body must be valid JSON"))
		return
	}

	if err := h.services.Catalog.Upsert(c.Request.Context(), product); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product stored", "id": product.ID})
}

// BulkImportProducts validates and stores a JSON array of products. Invalid
// entries are skipped and reported; valid entries still land.
func (h *Handlers) BulkImportProducts(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_REQUEST", "Failed to read request body"))
		return
	}

	var documents []json.RawMessage
	if err := json.Unmarshal(body, &documents); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_REQUEST", "Request body must be a JSON array of products"))
		return
	}

	result := models.BulkImportResult{}
	for i, doc := range documents {
		if err := h.products.Validate(doc); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("entry %d: %v", i, err))
			continue
		}

		var product models.Product
		if err := json.Unmarshal(doc, &product); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("entry %d: %v", i, err))
			continue
		}

		if err := h.services.Catalog.Upsert(c.Request.Context(), product); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("entry %d: %v", i, err))
			continue
		}
		result.Inserted++
	}

	status := http.StatusOK
	if result.Inserted == 0 && result.Failed > 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}
