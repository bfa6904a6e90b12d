package workflow_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"incubation-backend/internal/models"
	"incubation-backend/internal/workflow"
)

func (f *fixture) requestSession(startupID, mentorID uuid.UUID) *models.MentorshipSession {
	f.t.Helper()
	session, err := f.service.RequestSession(f.ctx, startupID, models.SessionRequest{
		MentorID:    mentorID,
		Topic:       "Go-to-market",
		ScheduledAt: testNow.Add(48 * time.Hour),
		Notes:       "bring the deck",
	})
	require.NoError(f.t, err)
	return session
}

func TestRequestSession_NotifiesBothSides(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	mentor := f.register(models.RoleMentor, "Maya")

	session := f.requestSession(startup, mentor)
	assert.Equal(t, models.SessionRequested, session.State)
	assert.Equal(t, models.ApprovalPending, session.ApprovalStatus())
	assert.Equal(t, models.StatusRequested, session.Status())

	assert.Equal(t, []string{"Mentorship Session Requested"}, f.titles(mentor))
	assert.Equal(t, []string{"Mentorship Request Sent"}, f.titles(startup))

	notMentor := f.register(models.RoleInvestor, "Ivy")
	_, err := f.service.RequestSession(f.ctx, startup, models.SessionRequest{
		MentorID:    notMentor,
		Topic:       "Go-to-market",
		ScheduledAt: testNow,
	})
	assert.ErrorIs(t, err, workflow.ErrNotFound)

	_, err = f.service.RequestSession(f.ctx, startup, models.SessionRequest{MentorID: mentor, Topic: "x"})
	assert.ErrorIs(t, err, workflow.ErrValidation)
}

func TestUpdateSession_ScheduledNeedsReapproval(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	mentor := f.register(models.RoleMentor, "Maya")
	session := f.requestSession(startup, mentor)

	approved, err := f.service.MentorApprove(f.ctx, mentor, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionScheduled, approved.State)
	assert.Equal(t, models.ApprovalApproved, approved.ApprovalStatus())
	assert.Equal(t, models.StatusScheduled, approved.Status())

	later := testNow.Add(72 * time.Hour)
	edited, err := f.service.UpdateSession(f.ctx, startup, session.ID, models.SessionUpdateRequest{ScheduledAt: &later})
	require.NoError(t, err)
	assert.Equal(t, models.SessionRequested, edited.State)
	assert.Equal(t, models.ApprovalPending, edited.ApprovalStatus())
	assert.True(t, edited.ScheduledAt.Equal(later))

	mentorTitles := f.titles(mentor)
	assert.Equal(t, 1, countTitle(mentorTitles, "Mentorship Session Needs Re-approval"))
	assert.Equal(t, 0, countTitle(mentorTitles, "Mentorship Session Modified"))

	topic := "Fundraising"
	_, err = f.service.UpdateSession(f.ctx, startup, session.ID, models.SessionUpdateRequest{Topic: &topic})
	require.NoError(t, err)
	mentorTitles = f.titles(mentor)
	assert.Equal(t, 1, countTitle(mentorTitles, "Mentorship Session Needs Re-approval"))
	assert.Equal(t, 1, countTitle(mentorTitles, "Mentorship Session Modified"))
}

func TestMentorTransitions(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	mentor := f.register(models.RoleMentor, "Maya")
	otherMentor := f.register(models.RoleMentor, "Otto")
	session := f.requestSession(startup, mentor)

	_, err := f.service.MentorApprove(f.ctx, otherMentor, session.ID)
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	_, err = f.service.MentorSetStatus(f.ctx, mentor, session.ID, models.StatusCompleted)
	assert.ErrorIs(t, err, workflow.ErrConflict)

	_, err = f.service.MentorSetStatus(f.ctx, mentor, session.ID, models.StatusRequested)
	assert.ErrorIs(t, err, workflow.ErrValidation)

	_, err = f.service.MentorApprove(f.ctx, mentor, session.ID)
	require.NoError(t, err)
	// Approving twice changes nothing.
	_, err = f.service.MentorApprove(f.ctx, mentor, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, countTitle(f.titles(startup), "Mentorship Session Approved"))

	completed, err := f.service.MentorSetStatus(f.ctx, mentor, session.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, completed.State)
	assert.Equal(t, models.ApprovalApproved, completed.ApprovalStatus())
	assert.Equal(t, 1, countTitle(f.titles(startup), "Mentorship Session Completed"))

	_, err = f.service.MentorReject(f.ctx, mentor, session.ID)
	assert.ErrorIs(t, err, workflow.ErrConflict)

	_, err = f.service.CancelSession(f.ctx, startup, session.ID)
	assert.ErrorIs(t, err, workflow.ErrConflict)

	topic := "Too late"
	_, err = f.service.UpdateSession(f.ctx, startup, session.ID, models.SessionUpdateRequest{Topic: &topic})
	assert.ErrorIs(t, err, workflow.ErrConflict)
}

func TestMentorReject(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	mentor := f.register(models.RoleMentor, "Maya")
	session := f.requestSession(startup, mentor)

	rejected, err := f.service.MentorReject(f.ctx, mentor, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, rejected.ApprovalStatus())
	assert.Equal(t, models.StatusCancelled, rejected.Status())
	assert.Equal(t, []string{"Mentorship Session Rejected", "Mentorship Request Sent"}, f.titles(startup))

	// Cancelling a rejected session is a no-op.
	cancelled, err := f.service.CancelSession(f.ctx, startup, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionRejected, cancelled.State)
}

func TestCancelSession(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	other := f.register(models.RoleStartup, "Globex")
	mentor := f.register(models.RoleMentor, "Maya")
	session := f.requestSession(startup, mentor)

	_, err := f.service.CancelSession(f.ctx, other, session.ID)
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	cancelled, err := f.service.CancelSession(f.ctx, startup, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, cancelled.State)
	assert.Equal(t, models.ApprovalStatus(""), cancelled.ApprovalStatus())
	assert.Equal(t, models.StatusCancelled, cancelled.Status())

	_, err = f.service.CancelSession(f.ctx, startup, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, countTitle(f.titles(mentor), "Mentorship Session Cancelled"))

	_, err = f.service.MentorApprove(f.ctx, mentor, session.ID)
	assert.ErrorIs(t, err, workflow.ErrConflict)
}

func TestSessionVisibility(t *testing.T) {
	f := newFixture(t)
	startup := f.register(models.RoleStartup, "Acme Labs")
	mentor := f.register(models.RoleMentor, "Maya")
	otherMentor := f.register(models.RoleMentor, "Otto")
	freelancer := f.register(models.RoleFreelancer, "Alice")
	session := f.requestSession(startup, mentor)

	got, err := f.service.GetSession(f.ctx, mentor, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	_, err = f.service.GetSession(f.ctx, otherMentor, session.ID)
	assert.ErrorIs(t, err, workflow.ErrNotFound)

	_, err = f.service.ListSessions(f.ctx, freelancer)
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	list, err := f.service.ListSessions(f.ctx, otherMentor)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, f.service.DeleteSession(f.ctx, startup, session.ID))
	_, err = f.service.GetSession(f.ctx, startup, session.ID)
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}
