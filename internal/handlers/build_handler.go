package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rigforge/internal/allocator"
	"rigforge/internal/catalog"
	apperrors "rigforge/internal/errors"
	"rigforge/internal/models"
	"rigforge/internal/services"
)

// BuildHandler handles build generation and build ledger requests.
type BuildHandler struct {
	buildService services.BuildServicer
	allocator    *allocator.Allocator
	catalog      *catalog.Store
}

// NewBuildHandler creates a new BuildHandler.
func NewBuildHandler(buildService services.BuildServicer, alloc *allocator.Allocator, catalogStore *catalog.Store) *BuildHandler {
	return &BuildHandler{buildService: buildService, allocator: alloc, catalog: catalogStore}
}

// CreateBuildRequest represents the request payload for generating a build.
type CreateBuildRequest struct {
	Budget float64 `json:"budget" binding:"required,gt=0"`
}

// EditComponentRequest represents the request payload for swapping one component.
type EditComponentRequest struct {
	Slot  models.Slot `json:"slot" binding:"required,component_slot"`
	Name  string      `json:"name" binding:"required,min=1,max=200"`
	Price float64     `json:"price" binding:"required,gt=0"`
}

// ReplaceBuildRequest represents the request payload for replacing a whole build.
type ReplaceBuildRequest struct {
	Components models.ComponentMap `json:"components" binding:"required"`
}

// CreateBuild generates a build for the requested budget and saves it.
// @Summary     Generate a build
// @Description Generate a parts list for the given budget and save it for the user
// @Tags        builds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBuildRequest true "Target budget"
// @Success     201 {object} models.Build "Build created"
// @Failure     400 {object} ErrorResponse "Budget outside the supported range"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     422 {object} ErrorResponse "No valid part for a component"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /builds [post]
func (h *BuildHandler) CreateBuild(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	build, err := h.allocator.Generate(h.catalog.Snapshot(), req.Budget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	build, err = h.buildService.CreateBuild(c.Request.Context(), build, userID)
	if err != nil && !isIndexWarning(err) {
		respondWithError(c, err)
		return
	}

	resp := gin.H{"build": build}
	if isIndexWarning(err) {
		resp["warning"] = apperrors.ErrBuildIndexInconsistent.Message
	}
	c.JSON(http.StatusCreated, resp)
}

// GetBuilds lists the authenticated user's builds in creation order.
// @Summary     Get builds
// @Description Get all builds owned by the authenticated user
// @Tags        builds
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.Build "User builds"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /builds [get]
func (h *BuildHandler) GetBuilds(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	builds, err := h.buildService.GetUserBuilds(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"builds": builds})
}

// GetBuild fetches one build owned by the authenticated user.
// @Summary     Get build by ID
// @Description Get a specific build by ID
// @Tags        builds
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Build ID"
// @Success     200 {object} models.Build "Build details"
// @Failure     400 {object} ErrorResponse "Invalid build ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Build not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /builds/{id} [get]
func (h *BuildHandler) GetBuild(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	buildID, err := parseBuildID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	build, err := h.buildService.GetBuildByID(c.Request.Context(), buildID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if build.UserID != userID {
		respondWithError(c, apperrors.ErrForbidden)
		return
	}

	c.JSON(http.StatusOK, gin.H{"build": build})
}

// EditComponent swaps one component of a build.
// @Summary     Edit one component
// @Description Replace one component slot's part and re-derive the overall price
// @Tags        builds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Build ID"
// @Param       request body EditComponentRequest true "New component"
// @Success     200 {object} models.Build "Updated build"
// @Failure     400 {object} ErrorResponse "Invalid input or component slot"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Build not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /builds/{id}/component [put]
func (h *BuildHandler) EditComponent(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	buildID, err := parseBuildID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req EditComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.requireOwner(c, buildID, userID); err != nil {
		respondWithError(c, err)
		return
	}

	build, err := h.buildService.EditComponent(c.Request.Context(), buildID, req.Slot, req.Name, req.Price)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"build": build})
}

// ReplaceBuild upserts a full build document under the caller's account.
// @Summary     Replace a build
// @Description Replace the full build document, inserting it if it does not exist
// @Tags        builds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Build ID"
// @Param       request body ReplaceBuildRequest true "Full component map"
// @Success     200 {object} models.Build "Replaced build"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /builds/{id} [put]
func (h *BuildHandler) ReplaceBuild(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	buildID, err := parseBuildID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReplaceBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	// Upsert semantics: an absent build is the insert path, so only an
	// existing build owned by someone else is rejected.
	if err := h.requireOwner(c, buildID, userID); err != nil && !errors.Is(err, apperrors.ErrBuildNotFound) {
		respondWithError(c, err)
		return
	}

	build, err := h.buildService.ReplaceBuild(c.Request.Context(), buildID, userID, req.Components)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"build": build})
}

// DeleteBuild removes a build and its index entry.
// @Summary     Delete a build
// @Description Delete a build and remove it from the user's build index
// @Tags        builds
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Build ID"
// @Success     200 {object} map[string]string "Build deleted"
// @Failure     400 {object} ErrorResponse "Invalid build ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Build not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /builds/{id} [delete]
func (h *BuildHandler) DeleteBuild(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	buildID, err := parseBuildID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.requireOwner(c, buildID, userID); err != nil {
		respondWithError(c, err)
		return
	}

	err = h.buildService.DeleteBuild(c.Request.Context(), buildID, userID)
	if err != nil && !isIndexWarning(err) {
		respondWithError(c, err)
		return
	}

	resp := gin.H{"message": "Build deleted"}
	if isIndexWarning(err) {
		resp["warning"] = apperrors.ErrBuildIndexInconsistent.Message
	}
	c.JSON(http.StatusOK, resp)
}

// requireOwner fails unless the build exists and belongs to userID.
func (h *BuildHandler) requireOwner(c *gin.Context, buildID, userID string) error {
	build, err := h.buildService.GetBuildByID(c.Request.Context(), buildID)
	if err != nil {
		return err
	}
	if build.UserID != userID {
		return apperrors.ErrForbidden
	}
	return nil
}
