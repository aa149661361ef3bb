package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rigforge/internal/catalog"
	apperrors "rigforge/internal/errors"
	"rigforge/internal/models"
)

// PartHandler serves the parts catalog snapshot.
type PartHandler struct {
	catalog *catalog.Store
}

// NewPartHandler creates a new PartHandler.
func NewPartHandler(catalogStore *catalog.Store) *PartHandler {
	return &PartHandler{catalog: catalogStore}
}

// GetParts lists catalog parts, optionally filtered by type.
// @Summary     Browse the parts catalog
// @Description List catalog parts from the current snapshot, optionally filtered by part type
// @Tags        parts
// @Produce     json
// @Security    BearerAuth
// @Param       type query string false "Part type (CPU, GPU, RAM, SSD, HDD, Motherboard, PowerSupply, Case)"
// @Success     200 {object} map[string][]models.Part "Catalog parts"
// @Failure     400 {object} ErrorResponse "Unknown part type"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /parts [get]
func (h *PartHandler) GetParts(c *gin.Context) {
	snap := h.catalog.Snapshot()

	if raw := c.Query("type"); raw != "" {
		partType := models.Category(raw)
		if !models.ValidCategory(partType) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown part type: "+raw))
			return
		}
		parts := snap.PartsByType(partType)
		if parts == nil {
			parts = []models.Part{}
		}
		c.JSON(http.StatusOK, gin.H{"parts": parts})
		return
	}

	parts := make([]models.Part, 0, snap.Len())
	for _, t := range models.Categories() {
		parts = append(parts, snap.PartsByType(t)...)
	}
	c.JSON(http.StatusOK, gin.H{"parts": parts})
}
