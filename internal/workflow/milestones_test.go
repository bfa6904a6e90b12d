package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"incubation-backend/internal/models"
	"incubation-backend/internal/workflow"
)

func TestCreateMilestone_ClampsProgress(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	alice := f.register(models.RoleFreelancer, "Alice")
	project := f.assigned(startup, alice)

	milestone, err := f.service.CreateMilestone(f.ctx, alice, project.ID, models.MilestoneRequest{
		Title:    "Ship v1",
		Progress: 150,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, milestone.Progress)
	assert.Equal(t, models.MilestoneCompleted, milestone.Status)

	titles := f.titles(startup)
	assert.Equal(t, 1, countTitle(titles, "New Milestone Added"))
	assert.Equal(t, 1, countTitle(titles, "Milestone Completed"))
}

func TestUpdateMilestone_CompletionNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	alice := f.register(models.RoleFreelancer, "Alice")
	project := f.assigned(startup, alice)

	milestone, err := f.service.CreateMilestone(f.ctx, alice, project.ID, models.MilestoneRequest{Title: "Design"})
	require.NoError(t, err)
	assert.Equal(t, models.MilestonePending, milestone.Status)

	half := 50
	updated, err := f.service.UpdateMilestone(f.ctx, alice, milestone.ID, models.MilestoneUpdateRequest{Progress: &half})
	require.NoError(t, err)
	assert.Equal(t, models.MilestoneInProgress, updated.Status)

	full := 100
	for i := 0; i < 2; i++ {
		updated, err = f.service.UpdateMilestone(f.ctx, alice, milestone.ID, models.MilestoneUpdateRequest{Progress: &full})
		require.NoError(t, err)
		assert.Equal(t, models.MilestoneCompleted, updated.Status)
	}
	assert.Equal(t, 1, countTitle(f.titles(startup), "Milestone Completed"))

	negative := -20
	updated, err = f.service.UpdateMilestone(f.ctx, alice, milestone.ID, models.MilestoneUpdateRequest{Progress: &negative})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Progress)
	assert.Equal(t, models.MilestonePending, updated.Status)
}

func TestMilestones_RequireActiveAssignment(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	alice := f.register(models.RoleFreelancer, "Alice")
	bob := f.register(models.RoleFreelancer, "Bob")
	project := f.assigned(startup, alice)

	_, err := f.service.CreateMilestone(f.ctx, bob, project.ID, models.MilestoneRequest{Title: "Sneaky"})
	assert.ErrorIs(t, err, workflow.ErrNotFound)

	milestone, err := f.service.CreateMilestone(f.ctx, alice, project.ID, models.MilestoneRequest{Title: "Design"})
	require.NoError(t, err)

	err = f.service.DeleteMilestone(f.ctx, bob, milestone.ID)
	assert.ErrorIs(t, err, workflow.ErrNotFound)

	list, err := f.service.ListMilestones(f.ctx, startup, project.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.service.DeactivateAssignment(f.ctx, startup, project.ID)
	require.NoError(t, err)
	_, err = f.service.CreateMilestone(f.ctx, alice, project.ID, models.MilestoneRequest{Title: "After"})
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestCompleteProject_FreezesMilestones(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	alice := f.register(models.RoleFreelancer, "Alice")
	project := f.assigned(startup, alice)

	milestone, err := f.service.CreateMilestone(f.ctx, alice, project.ID, models.MilestoneRequest{Title: "Design"})
	require.NoError(t, err)

	completed, err := f.service.CompleteProject(f.ctx, alice, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectCompleted, completed.Status)
	assert.Equal(t, 1, countTitle(f.titles(startup), "Project Completed"))

	_, err = f.service.CreateMilestone(f.ctx, alice, project.ID, models.MilestoneRequest{Title: "More"})
	assert.ErrorIs(t, err, workflow.ErrConflict)

	half := 50
	_, err = f.service.UpdateMilestone(f.ctx, alice, milestone.ID, models.MilestoneUpdateRequest{Progress: &half})
	assert.ErrorIs(t, err, workflow.ErrConflict)

	// Completing twice is a no-op.
	_, err = f.service.CompleteProject(f.ctx, alice, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, countTitle(f.titles(startup), "Project Completed"))
}

func TestAssignEmployee(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	alice := f.register(models.RoleFreelancer, "Alice")

	employee, err := f.service.CreateEmployee(f.ctx, startup, models.EmployeeRequest{Name: "Erin", Role: "Engineer"}, nil)
	require.NoError(t, err)

	project, err := f.service.CreateProject(f.ctx, startup, models.ProjectRequest{Name: "Internal", StartDate: testNow}, nil)
	require.NoError(t, err)

	assignment, err := f.service.AssignEmployee(f.ctx, startup, project.ID, models.AssignEmployeeRequest{EmployeeID: employee.ID})
	require.NoError(t, err)
	assert.True(t, assignment.IsActive)
	assert.Equal(t, employee.ID, assignment.EmployeeID.UUID)
	assert.False(t, assignment.FreelancerID.Valid)
	assert.Equal(t, "Engineer", assignment.Role)

	freelanced := f.assigned(startup, alice)
	_, err = f.service.AssignEmployee(f.ctx, startup, freelanced.ID, models.AssignEmployeeRequest{EmployeeID: employee.ID})
	assert.ErrorIs(t, err, workflow.ErrConflict)

	_, err = f.service.DeactivateAssignment(f.ctx, startup, freelanced.ID)
	require.NoError(t, err)
	swapped, err := f.service.AssignEmployee(f.ctx, startup, freelanced.ID, models.AssignEmployeeRequest{EmployeeID: employee.ID, Role: "Lead"})
	require.NoError(t, err)
	assert.Equal(t, "Lead", swapped.Role)
	assert.False(t, swapped.FreelancerID.Valid)

	employees, err := f.service.ListEmployees(f.ctx, startup)
	require.NoError(t, err)
	assert.Len(t, employees, 1)
}

func TestProjectEdits(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	other := f.register(models.RoleStartup, "Globex")
	project := f.openProject(startup, "Website")

	assigned := models.ProjectAssigned
	_, err := f.service.UpdateProject(f.ctx, startup, project.ID, models.ProjectUpdateRequest{Status: &assigned}, nil)
	assert.ErrorIs(t, err, workflow.ErrValidation)

	name := "Website v2"
	_, err = f.service.UpdateProject(f.ctx, other, project.ID, models.ProjectUpdateRequest{Name: &name}, nil)
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	updated, err := f.service.UpdateProject(f.ctx, startup, project.ID, models.ProjectUpdateRequest{Name: &name}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Website v2", updated.Name)
	assert.Equal(t, project.Version+1, updated.Version)

	require.NoError(t, f.service.DeleteProject(f.ctx, startup, project.ID))
	_, err = f.service.GetProject(f.ctx, startup, project.ID)
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}
