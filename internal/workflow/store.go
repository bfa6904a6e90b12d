package workflow

import (
	"context"

	"github.com/google/uuid"
	"incubation-backend/internal/models"
)

// Store runs fn inside a single database transaction. If fn returns an
// error every write made through tx is rolled back.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the persistence surface used by the workflows. Update methods use
// the entity's Version as an optimistic precondition and bump it on success;
// a lost race returns models.ErrStaleVersion. Lookups of missing rows
// return models.ErrNotFound.
type Tx interface {
	GetActor(ctx context.Context, id uuid.UUID) (*models.Actor, error)
	CreateActor(ctx context.Context, actor *models.Actor) error
	ListActorsByRole(ctx context.Context, role models.Role) ([]models.Actor, error)

	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
	UpdateProject(ctx context.Context, project *models.Project) error
	DeleteProject(ctx context.Context, id uuid.UUID) error

	CreateProposal(ctx context.Context, proposal *models.Proposal) error
	GetProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	FindProposal(ctx context.Context, projectID, freelancerID uuid.UUID) (*models.Proposal, error)
	ListProposals(ctx context.Context, filter models.ProposalFilter) ([]models.Proposal, error)
	UpdateProposal(ctx context.Context, proposal *models.Proposal) error

	GetAssignment(ctx context.Context, projectID uuid.UUID) (*models.Assignment, error)
	SaveAssignment(ctx context.Context, assignment *models.Assignment) error

	CreateEmployee(ctx context.Context, employee *models.Employee) error
	GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	ListEmployees(ctx context.Context, startupID uuid.UUID) ([]models.Employee, error)

	CreateMilestone(ctx context.Context, milestone *models.Milestone) error
	GetMilestone(ctx context.Context, id uuid.UUID) (*models.Milestone, error)
	ListMilestones(ctx context.Context, projectID, freelancerID uuid.UUID) ([]models.Milestone, error)
	UpdateMilestone(ctx context.Context, milestone *models.Milestone) error
	DeleteMilestone(ctx context.Context, id uuid.UUID) error

	CreateFunding(ctx context.Context, round *models.FundingRound) error
	GetFunding(ctx context.Context, id uuid.UUID) (*models.FundingRound, error)
	ListFunding(ctx context.Context, filter models.FundingFilter) ([]models.FundingRound, error)
	UpdateFunding(ctx context.Context, round *models.FundingRound) error
	AppendFundingHistory(ctx context.Context, roundID uuid.UUID, change models.StatusChange) error
	DeleteFunding(ctx context.Context, id uuid.UUID) error

	CreateSession(ctx context.Context, session *models.MentorshipSession) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.MentorshipSession, error)
	ListSessions(ctx context.Context, filter models.SessionFilter) ([]models.MentorshipSession, error)
	UpdateSession(ctx context.Context, session *models.MentorshipSession) error
	DeleteSession(ctx context.Context, id uuid.UUID) error

	CreateNotifications(ctx context.Context, notifications []models.Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error

	CountByStatus(ctx context.Context, subject models.Subject, startupID uuid.UUID) (map[string]int, error)
	CountEmployees(ctx context.Context, startupID uuid.UUID) (int, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}
