package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"incubation-backend/internal/models"
	"incubation-backend/internal/workflow"
)

type MilestonesHandler struct {
	base
}

func NewMilestonesHandler(service *workflow.Service, logger *slog.Logger) *MilestonesHandler {
	return &MilestonesHandler{base: newBase(service, logger)}
}

// CreateMilestone godoc
// @Summary     Add milestone
// @Description Adds a milestone to a project assigned to the calling freelancer. Progress is clamped to 0..100 and determines the status.
// @Tags        milestones
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       request body models.MilestoneRequest true "Milestone"
// @Success     201 {object} models.Milestone
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /projects/{project_id}/milestones [post]
func (h *MilestonesHandler) CreateMilestone(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	var req models.MilestoneRequest
	if !bind(c, &req) {
		return
	}

	milestone, err := h.service.CreateMilestone(c.Request.Context(), userID, projectID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, milestone)
}

// ListMilestones godoc
// @Summary     List milestones
// @Tags        milestones
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.MilestoneListResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/milestones [get]
func (h *MilestonesHandler) ListMilestones(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	milestones, err := h.service.ListMilestones(c.Request.Context(), userID, projectID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MilestoneListResponse{Milestones: nonNil(milestones)})
}

// UpdateMilestone godoc
// @Summary     Update milestone
// @Tags        milestones
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       milestone_id path string true "Milestone ID (UUID)"
// @Param       request body models.MilestoneUpdateRequest true "Fields to change"
// @Success     200 {object} models.Milestone
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /milestones/{milestone_id} [patch]
func (h *MilestonesHandler) UpdateMilestone(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	milestoneID, ok := pathID(c, "milestone_id")
	if !ok {
		return
	}

	var req models.MilestoneUpdateRequest
	if !bind(c, &req) {
		return
	}

	milestone, err := h.service.UpdateMilestone(c.Request.Context(), userID, milestoneID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, milestone)
}

// DeleteMilestone godoc
// @Summary     Delete milestone
// @Tags        milestones
// @Security    Bearer
// @Param       milestone_id path string true "Milestone ID (UUID)"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Router      /milestones/{milestone_id} [delete]
func (h *MilestonesHandler) DeleteMilestone(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	milestoneID, ok := pathID(c, "milestone_id")
	if !ok {
		return
	}

	if err := h.service.DeleteMilestone(c.Request.Context(), userID, milestoneID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
