package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"incubation-backend/internal/models"
	"incubation-backend/internal/workflow"
)

type IdentityHandler struct {
	base
}

func NewIdentityHandler(service *workflow.Service, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{base: newBase(service, logger)}
}

// GetMe godoc
// @Summary     Current profile
// @Description Returns the caller's registered role profile and client home route
// @Tags        identity
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.MeResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /me [get]
func (h *IdentityHandler) GetMe(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	actor, err := h.service.GetActor(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MeResponse{Actor: actor, HomePath: models.HomePath(actor.Role)})
}

// Register godoc
// @Summary     Register role profile
// @Description Creates the caller's profile for exactly one role. Accepts JSON or multipart with an optional avatar file.
// @Tags        identity
// @Accept      json,mpfd
// @Produce     json
// @Security    Bearer
// @Param       request body models.RegisterRequest true "Profile"
// @Param       avatar formData file false "Avatar image"
// @Success     201 {object} models.MeResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /me [post]
func (h *IdentityHandler) Register(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	var req models.RegisterRequest
	if !bind(c, &req) {
		return
	}
	avatar, ok := upload(c, "avatar")
	if !ok {
		return
	}

	actor, err := h.service.RegisterActor(c.Request.Context(), userID, req, avatar)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.MeResponse{Actor: actor, HomePath: models.HomePath(actor.Role)})
}

// ListMentors godoc
// @Summary     List mentors
// @Tags        identity
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ActorListResponse
// @Router      /mentors [get]
func (h *IdentityHandler) ListMentors(c *gin.Context) {
	if _, ok := h.caller(c); !ok {
		return
	}
	actors, err := h.service.ListMentors(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ActorListResponse{Actors: nonNil(actors)})
}

// ListInvestors godoc
// @Summary     List investors
// @Tags        identity
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ActorListResponse
// @Router      /investors [get]
func (h *IdentityHandler) ListInvestors(c *gin.Context) {
	if _, ok := h.caller(c); !ok {
		return
	}
	actors, err := h.service.ListInvestors(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ActorListResponse{Actors: nonNil(actors)})
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
