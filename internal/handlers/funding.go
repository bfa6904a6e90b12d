package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"incubation-backend/internal/models"
	"incubation-backend/internal/workflow"
)

type FundingHandler struct {
	base
}

func NewFundingHandler(service *workflow.Service, logger *slog.Logger) *FundingHandler {
	return &FundingHandler{base: newBase(service, logger)}
}

// CreateFunding godoc
// @Summary     Create funding round
// @Description Creates a funding round targeted at exactly one investor or at all investors, and notifies every recipient
// @Tags        funding
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.FundingRequest true "Funding round"
// @Success     201 {object} models.FundingResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /funding [post]
func (h *FundingHandler) CreateFunding(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	var req models.FundingRequest
	if !bind(c, &req) {
		return
	}

	round, err := h.service.CreateFunding(c.Request.Context(), userID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewFundingResponse(round))
}

// ListFunding godoc
// @Summary     List funding rounds
// @Description Startups see their rounds, investors the rounds addressed to them
// @Tags        funding
// @Produce     json
// @Security    Bearer
// @Param       status query string false "REQUESTED, PENDING, APPROVED or REJECTED"
// @Success     200 {object} models.FundingListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /funding [get]
func (h *FundingHandler) ListFunding(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	status := models.FundingStatus(strings.ToUpper(c.Query("status")))
	rounds, err := h.service.ListFunding(c.Request.Context(), userID, status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]models.FundingResponse, len(rounds))
	for i := range rounds {
		out[i] = models.NewFundingResponse(&rounds[i])
	}
	c.JSON(http.StatusOK, models.FundingListResponse{Funding: out})
}

// GetFunding godoc
// @Summary     Get funding round
// @Tags        funding
// @Produce     json
// @Security    Bearer
// @Param       funding_id path string true "Funding round ID (UUID)"
// @Success     200 {object} models.FundingResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /funding/{funding_id} [get]
func (h *FundingHandler) GetFunding(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	fundingID, ok := pathID(c, "funding_id")
	if !ok {
		return
	}

	round, err := h.service.GetFunding(c.Request.Context(), userID, fundingID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewFundingResponse(round))
}

// UpdateFunding godoc
// @Summary     Update funding round
// @Description Edits a round that is not yet approved. Editing a rejected round resubmits it as PENDING.
// @Tags        funding
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       funding_id path string true "Funding round ID (UUID)"
// @Param       request body models.FundingUpdateRequest true "Fields to change"
// @Success     200 {object} models.FundingResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /funding/{funding_id} [patch]
func (h *FundingHandler) UpdateFunding(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	fundingID, ok := pathID(c, "funding_id")
	if !ok {
		return
	}

	var req models.FundingUpdateRequest
	if !bind(c, &req) {
		return
	}

	round, err := h.service.UpdateFunding(c.Request.Context(), userID, fundingID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewFundingResponse(round))
}

// DeleteFunding godoc
// @Summary     Delete funding round
// @Tags        funding
// @Security    Bearer
// @Param       funding_id path string true "Funding round ID (UUID)"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /funding/{funding_id} [delete]
func (h *FundingHandler) DeleteFunding(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	fundingID, ok := pathID(c, "funding_id")
	if !ok {
		return
	}

	if err := h.service.DeleteFunding(c.Request.Context(), userID, fundingID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DecideFunding godoc
// @Summary     Decide funding round
// @Description Lets a recipient investor move a round to PENDING, APPROVED or REJECTED
// @Tags        funding
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       funding_id path string true "Funding round ID (UUID)"
// @Param       request body models.FundingDecisionRequest true "Decision"
// @Success     200 {object} models.FundingResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /funding/{funding_id}/decision [post]
func (h *FundingHandler) DecideFunding(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	fundingID, ok := pathID(c, "funding_id")
	if !ok {
		return
	}

	var req models.FundingDecisionRequest
	if !bind(c, &req) {
		return
	}

	round, err := h.service.DecideFunding(c.Request.Context(), userID, fundingID, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewFundingResponse(round))
}
