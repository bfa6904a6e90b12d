package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"incubation-backend/internal/models"
	"incubation-backend/internal/workflow"
)

type MentorshipHandler struct {
	base
}

func NewMentorshipHandler(service *workflow.Service, logger *slog.Logger) *MentorshipHandler {
	return &MentorshipHandler{base: newBase(service, logger)}
}

// RequestSession godoc
// @Summary     Request mentorship session
// @Tags        mentorship
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.SessionRequest true "Session"
// @Success     201 {object} models.SessionResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /mentorship [post]
func (h *MentorshipHandler) RequestSession(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	var req models.SessionRequest
	if !bind(c, &req) {
		return
	}

	session, err := h.service.RequestSession(c.Request.Context(), userID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewSessionResponse(session))
}

// ListSessions godoc
// @Summary     List mentorship sessions
// @Description Startups see the sessions they requested, mentors the sessions addressed to them
// @Tags        mentorship
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.SessionListResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /mentorship [get]
func (h *MentorshipHandler) ListSessions(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	sessions, err := h.service.ListSessions(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]models.SessionResponse, len(sessions))
	for i := range sessions {
		out[i] = models.NewSessionResponse(&sessions[i])
	}
	c.JSON(http.StatusOK, models.SessionListResponse{Sessions: out})
}

// GetSession godoc
// @Summary     Get mentorship session
// @Tags        mentorship
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.SessionResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /mentorship/{session_id} [get]
func (h *MentorshipHandler) GetSession(c *gin.Context) {
	h.sessionAction(c, h.service.GetSession)
}

// UpdateSession godoc
// @Summary     Edit mentorship session
// @Description Edits an open session. Every edit sends the session back to the mentor for approval.
// @Tags        mentorship
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Param       request body models.SessionUpdateRequest true "Fields to change"
// @Success     200 {object} models.SessionResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /mentorship/{session_id} [patch]
func (h *MentorshipHandler) UpdateSession(c *gin.Context) {
	var req models.SessionUpdateRequest
	h.sessionAction(c, func(ctx context.Context, userID, sessionID uuid.UUID) (*models.MentorshipSession, error) {
		return h.service.UpdateSession(ctx, userID, sessionID, req)
	}, &req)
}

// DeleteSession godoc
// @Summary     Delete mentorship session
// @Tags        mentorship
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     204
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /mentorship/{session_id} [delete]
func (h *MentorshipHandler) DeleteSession(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "session_id")
	if !ok {
		return
	}

	if err := h.service.DeleteSession(c.Request.Context(), userID, sessionID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CancelSession godoc
// @Summary     Cancel mentorship session
// @Tags        mentorship
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.SessionResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /mentorship/{session_id}/cancel [post]
func (h *MentorshipHandler) CancelSession(c *gin.Context) {
	h.sessionAction(c, h.service.CancelSession)
}

// ApproveSession godoc
// @Summary     Approve mentorship session
// @Tags        mentorship
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.SessionResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /mentorship/{session_id}/approve [post]
func (h *MentorshipHandler) ApproveSession(c *gin.Context) {
	h.sessionAction(c, h.service.MentorApprove)
}

// RejectSession godoc
// @Summary     Reject mentorship session
// @Tags        mentorship
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.SessionResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /mentorship/{session_id}/reject [post]
func (h *MentorshipHandler) RejectSession(c *gin.Context) {
	h.sessionAction(c, h.service.MentorReject)
}

// SetSessionStatus godoc
// @Summary     Set mentorship session status
// @Description Lets the mentor move a session to SCHEDULED, COMPLETED or CANCELLED
// @Tags        mentorship
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Param       request body models.SessionStatusRequest true "Status"
// @Success     200 {object} models.SessionResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /mentorship/{session_id}/status [post]
func (h *MentorshipHandler) SetSessionStatus(c *gin.Context) {
	var req models.SessionStatusRequest
	h.sessionAction(c, func(ctx context.Context, userID, sessionID uuid.UUID) (*models.MentorshipSession, error) {
		return h.service.MentorSetStatus(ctx, userID, sessionID, req.Status)
	}, &req)
}

type sessionFunc func(ctx context.Context, userID, sessionID uuid.UUID) (*models.MentorshipSession, error)

// sessionAction resolves the caller and session id, binds body when given,
// and renders the resulting session.
func (h *MentorshipHandler) sessionAction(c *gin.Context, fn sessionFunc, body ...interface{}) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "session_id")
	if !ok {
		return
	}
	for _, req := range body {
		if !bind(c, req) {
			return
		}
	}

	session, err := fn(c.Request.Context(), userID, sessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewSessionResponse(session))
}
