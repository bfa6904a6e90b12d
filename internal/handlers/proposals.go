package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"incubation-backend/internal/models"
	"incubation-backend/internal/workflow"
)

type ProposalsHandler struct {
	base
}

func NewProposalsHandler(service *workflow.Service, logger *slog.Logger) *ProposalsHandler {
	return &ProposalsHandler{base: newBase(service, logger)}
}

// SubmitProposal godoc
// @Summary     Submit proposal
// @Description Submits or resubmits the calling freelancer's proposal for an open project. Accepts JSON or multipart with an optional attachment.
// @Tags        proposals
// @Accept      json,mpfd
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       request body models.ProposalRequest true "Proposal"
// @Param       attachment formData file false "Proposal attachment"
// @Success     201 {object} models.Proposal
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /projects/{project_id}/proposals [post]
func (h *ProposalsHandler) SubmitProposal(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	var req models.ProposalRequest
	if !bind(c, &req) {
		return
	}
	attachment, ok := upload(c, "attachment")
	if !ok {
		return
	}

	proposal, err := h.service.SubmitProposal(c.Request.Context(), userID, projectID, req, attachment)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, proposal)
}

// ListProjectProposals godoc
// @Summary     List proposals for a project
// @Tags        proposals
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.ProposalListResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/proposals [get]
func (h *ProposalsHandler) ListProjectProposals(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}
	h.list(c, projectID)
}

// ListProposals godoc
// @Summary     List proposals
// @Description Startups see proposals on their projects, freelancers their own submissions
// @Tags        proposals
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ProposalListResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /proposals [get]
func (h *ProposalsHandler) ListProposals(c *gin.Context) {
	h.list(c, uuid.Nil)
}

func (h *ProposalsHandler) list(c *gin.Context, projectID uuid.UUID) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	proposals, err := h.service.ListProposals(c.Request.Context(), userID, projectID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ProposalListResponse{Proposals: nonNil(proposals)})
}

// ApproveProposal godoc
// @Summary     Approve proposal
// @Description Approves a proposal, assigns its freelancer to the project and supersedes the other pending proposals
// @Tags        proposals
// @Produce     json
// @Security    Bearer
// @Param       proposal_id path string true "Proposal ID (UUID)"
// @Success     200 {object} models.Assignment
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /proposals/{proposal_id}/approve [post]
func (h *ProposalsHandler) ApproveProposal(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	proposalID, ok := pathID(c, "proposal_id")
	if !ok {
		return
	}

	assignment, err := h.service.ApproveProposal(c.Request.Context(), userID, proposalID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// RejectProposal godoc
// @Summary     Reject proposal
// @Tags        proposals
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       proposal_id path string true "Proposal ID (UUID)"
// @Param       request body models.RejectProposalRequest false "Optional rejection note"
// @Success     200 {object} models.Proposal
// @Failure     403 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /proposals/{proposal_id}/reject [post]
func (h *ProposalsHandler) RejectProposal(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	proposalID, ok := pathID(c, "proposal_id")
	if !ok {
		return
	}

	// The note is optional, so an empty body is accepted.
	var req models.RejectProposalRequest
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}

	proposal, err := h.service.RejectProposal(c.Request.Context(), userID, proposalID, req.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, proposal)
}
