package workflow_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"incubation-backend/internal/models"
	"incubation-backend/internal/workflow"
)

func TestApproveProposal_AssignsAndSupersedesSiblings(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	alice := f.register(models.RoleFreelancer, "Alice")
	bob := f.register(models.RoleFreelancer, "Bob")

	project := f.openProject(startup, "Landing page")
	winner := f.propose(alice, project.ID)
	loser := f.propose(bob, project.ID)

	assignment, err := f.service.ApproveProposal(f.ctx, startup, winner.ID)
	require.NoError(t, err)
	assert.True(t, assignment.ActiveFor(alice))
	assert.False(t, assignment.EmployeeID.Valid)
	assert.Equal(t, "Freelancer", assignment.Role)

	got, err := f.service.GetProject(f.ctx, startup, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectAssigned, got.Status)

	proposals, err := f.service.ListProposals(f.ctx, startup, project.ID)
	require.NoError(t, err)
	statuses := map[uuid.UUID]models.ProposalStatus{}
	for _, p := range proposals {
		statuses[p.ID] = p.Status
	}
	assert.Equal(t, models.ProposalApproved, statuses[winner.ID])
	assert.Equal(t, models.ProposalSuperseded, statuses[loser.ID])

	aliceNotes, err := f.service.ListNotifications(f.ctx, alice, true)
	require.NoError(t, err)
	require.Len(t, aliceNotes, 1)
	assert.Equal(t, "Project Proposal Approved", aliceNotes[0].Title)
	assert.Equal(t, "Your proposal for project 'Landing page' has been approved.", aliceNotes[0].Message)

	assert.Equal(t, []string{"Project Proposal Closed"}, f.titles(bob))
	assert.Equal(t, 2, countTitle(f.titles(startup), "New Project Proposal"))
}

func TestApproveProposal_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	alice := f.register(models.RoleFreelancer, "Alice")
	project := f.openProject(startup, "API")
	proposal := f.propose(alice, project.ID)

	first, err := f.service.ApproveProposal(f.ctx, startup, proposal.ID)
	require.NoError(t, err)
	second, err := f.service.ApproveProposal(f.ctx, startup, proposal.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.notifications(alice), 1)
}

func TestApproveProposal_OnlyOnePerProject(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	alice := f.register(models.RoleFreelancer, "Alice")
	bob := f.register(models.RoleFreelancer, "Bob")
	project := f.openProject(startup, "API")
	first := f.propose(alice, project.ID)
	second := f.propose(bob, project.ID)

	_, err := f.service.ApproveProposal(f.ctx, startup, first.ID)
	require.NoError(t, err)

	_, err = f.service.ApproveProposal(f.ctx, startup, second.ID)
	assert.ErrorIs(t, err, workflow.ErrConflict)

	_, err = f.service.RejectProposal(f.ctx, startup, first.ID, "")
	assert.ErrorIs(t, err, workflow.ErrConflict)
}

func TestApproveProposal_OtherStartupForbidden(t *testing.T) {
	f := newFixture(t)
	owner := f.register(models.RoleStartup, "Acme Labs")
	other := f.register(models.RoleStartup, "Globex")
	alice := f.register(models.RoleFreelancer, "Alice")
	project := f.openProject(owner, "API")
	proposal := f.propose(alice, project.ID)

	_, err := f.service.ApproveProposal(f.ctx, other, proposal.ID)
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	_, err = f.service.ApproveProposal(f.ctx, alice, proposal.ID)
	assert.ErrorIs(t, err, workflow.ErrForbidden)
}

func TestSubmitProposal_Rules(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	alice := f.register(models.RoleFreelancer, "Alice")
	carol := f.register(models.RoleFreelancer, "Carol")
	project := f.openProject(startup, "Mobile app")

	_, err := f.service.SubmitProposal(f.ctx, alice, project.ID, models.ProposalRequest{Text: "  "}, nil)
	assert.ErrorIs(t, err, workflow.ErrValidation)

	_, err = f.service.SubmitProposal(f.ctx, startup, project.ID, models.ProposalRequest{Text: "hi"}, nil)
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	proposal := f.propose(alice, project.ID)
	_, err = f.service.ApproveProposal(f.ctx, startup, proposal.ID)
	require.NoError(t, err)

	// Approved proposals cannot be resubmitted.
	_, err = f.service.SubmitProposal(f.ctx, alice, project.ID, models.ProposalRequest{Text: "again"}, nil)
	assert.ErrorIs(t, err, workflow.ErrConflict)

	// The project is no longer open.
	_, err = f.service.SubmitProposal(f.ctx, carol, project.ID, models.ProposalRequest{Text: "late"}, nil)
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestSubmitProposal_ClosedProjectNotFound(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	alice := f.register(models.RoleFreelancer, "Alice")

	project, err := f.service.CreateProject(f.ctx, startup, models.ProjectRequest{
		Name:      "Internal tooling",
		StartDate: testNow,
	}, nil)
	require.NoError(t, err)

	_, err = f.service.SubmitProposal(f.ctx, alice, project.ID, models.ProposalRequest{Text: "let me"}, nil)
	assert.ErrorIs(t, err, workflow.ErrNotFound)

	_, err = f.service.SubmitProposal(f.ctx, alice, uuid.New(), models.ProposalRequest{Text: "let me"}, nil)
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestRejectThenResubmit_OverwritesInPlace(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	alice := f.register(models.RoleFreelancer, "Alice")
	project := f.openProject(startup, "Data pipeline")
	proposal := f.propose(alice, project.ID)

	rejected, err := f.service.RejectProposal(f.ctx, startup, proposal.ID, "budget too high")
	require.NoError(t, err)
	assert.Equal(t, models.ProposalRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionNote)
	assert.Equal(t, "budget too high", *rejected.RejectionNote)

	// Rejecting again is a no-op.
	_, err = f.service.RejectProposal(f.ctx, startup, proposal.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Project Proposal Rejected"}, f.titles(alice))

	resubmitted, err := f.service.SubmitProposal(f.ctx, alice, project.ID, models.ProposalRequest{
		Text:                 "Cheaper offer",
		ExpectedPaymentCents: 90000,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, proposal.ID, resubmitted.ID)
	assert.Equal(t, models.ProposalPending, resubmitted.Status)
	assert.Nil(t, resubmitted.RejectionNote)
	assert.Equal(t, "Cheaper offer", resubmitted.Text)

	proposals, err := f.service.ListProposals(f.ctx, alice, uuid.Nil)
	require.NoError(t, err)
	assert.Len(t, proposals, 1)
}

func TestListProjects_FreelancerScopes(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	alice := f.register(models.RoleFreelancer, "Alice")

	open := f.openProject(startup, "Open one")
	proposedTo := f.openProject(startup, "Proposed to")
	f.propose(alice, proposedTo.ID)
	assigned := f.assigned(startup, alice)

	available, err := f.service.ListProjects(f.ctx, alice, workflow.ScopeAvailable)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, open.ID, available[0].ID)

	mine, err := f.service.ListProjects(f.ctx, alice, workflow.ScopeAssigned)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, assigned.ID, mine[0].ID)

	_, err = f.service.ListProjects(f.ctx, alice, "everything")
	assert.ErrorIs(t, err, workflow.ErrValidation)

	all, err := f.service.ListProjects(f.ctx, startup, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProjectStatus_CannotReopenAfterApproval(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	alice := f.register(models.RoleFreelancer, "Alice")
	bob := f.register(models.RoleFreelancer, "Bob")
	project := f.openProject(startup, "Landing page")
	winner := f.propose(alice, project.ID)
	loser := f.propose(bob, project.ID)
	_, err := f.service.ApproveProposal(f.ctx, startup, winner.ID)
	require.NoError(t, err)

	planned, ongoing := models.ProjectPlanned, models.ProjectOngoing
	_, err = f.service.UpdateProject(f.ctx, startup, project.ID, models.ProjectUpdateRequest{Status: &planned}, nil)
	assert.ErrorIs(t, err, workflow.ErrConflict)
	_, err = f.service.UpdateProject(f.ctx, startup, project.ID, models.ProjectUpdateRequest{Status: &ongoing}, nil)
	assert.ErrorIs(t, err, workflow.ErrConflict)

	// The approval still binds the project after the assignment is dropped.
	_, err = f.service.DeactivateAssignment(f.ctx, startup, project.ID)
	require.NoError(t, err)
	_, err = f.service.UpdateProject(f.ctx, startup, project.ID, models.ProjectUpdateRequest{Status: &planned}, nil)
	assert.ErrorIs(t, err, workflow.ErrConflict)

	name := "Landing page v2"
	updated, err := f.service.UpdateProject(f.ctx, startup, project.ID, models.ProjectUpdateRequest{Name: &name}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectAssigned, updated.Status)

	_, err = f.service.SubmitProposal(f.ctx, bob, project.ID, models.ProposalRequest{Text: "try again"}, nil)
	assert.ErrorIs(t, err, workflow.ErrConflict)

	proposals, err := f.service.ListProposals(f.ctx, startup, project.ID)
	require.NoError(t, err)
	for _, p := range proposals {
		if p.ID == loser.ID {
			assert.Equal(t, models.ProposalSuperseded, p.Status)
		}
	}
}

func TestApproveProposal_RequiresPlannedProject(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	alice := f.register(models.RoleFreelancer, "Alice")
	project := f.openProject(startup, "Landing page")
	proposal := f.propose(alice, project.ID)

	completed, planned := models.ProjectCompleted, models.ProjectPlanned
	_, err := f.service.UpdateProject(f.ctx, startup, project.ID, models.ProjectUpdateRequest{Status: &completed}, nil)
	require.NoError(t, err)

	_, err = f.service.ApproveProposal(f.ctx, startup, proposal.ID)
	assert.ErrorIs(t, err, workflow.ErrConflict)

	got, err := f.service.GetProject(f.ctx, startup, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectCompleted, got.Status)
	mine, err := f.service.ListProjects(f.ctx, alice, workflow.ScopeAssigned)
	require.NoError(t, err)
	assert.Empty(t, mine)

	// Reopening is fine while nobody has been approved.
	_, err = f.service.UpdateProject(f.ctx, startup, project.ID, models.ProjectUpdateRequest{Status: &planned}, nil)
	require.NoError(t, err)
	_, err = f.service.ApproveProposal(f.ctx, startup, proposal.ID)
	require.NoError(t, err)
}
