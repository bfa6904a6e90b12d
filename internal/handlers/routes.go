package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"incubation-backend/internal/workflow"
)

// RegisterRoutes mounts every authenticated endpoint on api.
func RegisterRoutes(api *gin.RouterGroup, service *workflow.Service, logger *slog.Logger) {
	identity := NewIdentityHandler(service, logger)
	projects := NewProjectsHandler(service, logger)
	proposals := NewProposalsHandler(service, logger)
	milestones := NewMilestonesHandler(service, logger)
	funding := NewFundingHandler(service, logger)
	mentorship := NewMentorshipHandler(service, logger)
	notifications := NewNotificationsHandler(service, logger)

	// Identity
	api.GET("/me", identity.GetMe)
	api.POST("/me", identity.Register)
	api.GET("/mentors", identity.ListMentors)
	api.GET("/investors", identity.ListInvestors)

	// Projects
	api.POST("/projects", projects.CreateProject)
	api.GET("/projects", projects.ListProjects)
	api.GET("/projects/:project_id", projects.GetProject)
	api.PATCH("/projects/:project_id", projects.UpdateProject)
	api.DELETE("/projects/:project_id", projects.DeleteProject)
	api.POST("/projects/:project_id/complete", projects.CompleteProject)
	api.POST("/projects/:project_id/assignment", projects.AssignEmployee)
	api.DELETE("/projects/:project_id/assignment", projects.DeactivateAssignment)
	api.POST("/employees", projects.CreateEmployee)
	api.GET("/employees", projects.ListEmployees)

	// Proposals
	api.POST("/projects/:project_id/proposals", proposals.SubmitProposal)
	api.GET("/projects/:project_id/proposals", proposals.ListProjectProposals)
	api.GET("/proposals", proposals.ListProposals)
	api.POST("/proposals/:proposal_id/approve", proposals.ApproveProposal)
	api.POST("/proposals/:proposal_id/reject", proposals.RejectProposal)

	// Milestones
	api.POST("/projects/:project_id/milestones", milestones.CreateMilestone)
	api.GET("/projects/:project_id/milestones", milestones.ListMilestones)
	api.PATCH("/milestones/:milestone_id", milestones.UpdateMilestone)
	api.DELETE("/milestones/:milestone_id", milestones.DeleteMilestone)

	// Funding
	api.POST("/funding", funding.CreateFunding)
	api.GET("/funding", funding.ListFunding)
	api.GET("/funding/:funding_id", funding.GetFunding)
	api.PATCH("/funding/:funding_id", funding.UpdateFunding)
	api.DELETE("/funding/:funding_id", funding.DeleteFunding)
	api.POST("/funding/:funding_id/decision", funding.DecideFunding)

	// Mentorship
	api.POST("/mentorship", mentorship.RequestSession)
	api.GET("/mentorship", mentorship.ListSessions)
	api.GET("/mentorship/:session_id", mentorship.GetSession)
	api.PATCH("/mentorship/:session_id", mentorship.UpdateSession)
	api.DELETE("/mentorship/:session_id", mentorship.DeleteSession)
	api.POST("/mentorship/:session_id/cancel", mentorship.CancelSession)
	api.POST("/mentorship/:session_id/approve", mentorship.ApproveSession)
	api.POST("/mentorship/:session_id/reject", mentorship.RejectSession)
	api.POST("/mentorship/:session_id/status", mentorship.SetSessionStatus)

	// Notifications and dashboard
	api.GET("/notifications", notifications.ListNotifications)
	api.POST("/notifications/:notification_id/read", notifications.MarkRead)
	api.GET("/dashboard", notifications.Dashboard)
}
