package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeProgress(t *testing.T) {
	tests := []struct {
		in       int
		progress int
		status   MilestoneStatus
	}{
		{-5, 0, MilestonePending},
		{0, 0, MilestonePending},
		{1, 1, MilestoneInProgress},
		{99, 99, MilestoneInProgress},
		{100, 100, MilestoneCompleted},
		{150, 100, MilestoneCompleted},
	}
	for _, tt := range tests {
		progress, status := NormalizeProgress(tt.in)
		assert.Equal(t, tt.progress, progress, "input %d", tt.in)
		assert.Equal(t, tt.status, status, "input %d", tt.in)
	}
}

func TestFundingRound_Validate(t *testing.T) {
	investor := uuid.NullUUID{UUID: uuid.New(), Valid: true}

	assert.ErrorIs(t, (&FundingRound{}).Validate(), ErrFundingTargetMissing)
	assert.ErrorIs(t, (&FundingRound{InvestorID: investor, AllInvestors: true}).Validate(), ErrFundingTargetAmbiguous)
	assert.NoError(t, (&FundingRound{InvestorID: investor}).Validate())
	assert.NoError(t, (&FundingRound{AllInvestors: true}).Validate())
}

func TestFundingRound_HistoryLog(t *testing.T) {
	at := time.Date(2025, 1, 2, 15, 4, 5, 0, time.FixedZone("CET", 3600))
	round := &FundingRound{History: []StatusChange{
		{At: at, From: FundingRequested, To: FundingRejected},
		{At: at.Add(time.Hour), From: FundingRejected, To: FundingPending},
	}}

	assert.Equal(t, "2025-01-02T14:04:05Z | REQUESTED → REJECTED", round.History[0].String())
	assert.Equal(t,
		"2025-01-02T14:04:05Z | REQUESTED → REJECTED\n2025-01-02T15:04:05Z | REJECTED → PENDING\n",
		round.HistoryLog())
	assert.Empty(t, (&FundingRound{}).HistoryLog())
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, "25000.00", FormatAmount(2500000))
	assert.Equal(t, "-12.30", FormatAmount(-1230))
}

func TestMentorshipSession_Projections(t *testing.T) {
	tests := []struct {
		state    SessionState
		approval ApprovalStatus
		status   SessionStatus
		closed   bool
	}{
		{SessionRequested, ApprovalPending, StatusRequested, false},
		{SessionScheduled, ApprovalApproved, StatusScheduled, false},
		{SessionCompleted, ApprovalApproved, StatusCompleted, true},
		{SessionRejected, ApprovalRejected, StatusCancelled, true},
		{SessionCancelled, "", StatusCancelled, true},
	}
	for _, tt := range tests {
		s := &MentorshipSession{State: tt.state}
		assert.Equal(t, tt.approval, s.ApprovalStatus(), string(tt.state))
		assert.Equal(t, tt.status, s.Status(), string(tt.state))
		assert.Equal(t, tt.closed, s.Closed(), string(tt.state))
	}
}

func TestAssignment_ActiveFor(t *testing.T) {
	freelancer := uuid.New()
	a := &Assignment{FreelancerID: uuid.NullUUID{UUID: freelancer, Valid: true}, IsActive: true}
	assert.True(t, a.ActiveFor(freelancer))
	assert.False(t, a.ActiveFor(uuid.New()))

	a.IsActive = false
	assert.False(t, a.ActiveFor(freelancer))

	var missing *Assignment
	assert.False(t, missing.ActiveFor(freelancer))
}

func TestRoles(t *testing.T) {
	assert.True(t, RoleInvestor.Valid())
	assert.False(t, Role("CEO").Valid())
	assert.Equal(t, "/startup/dashboard", HomePath(RoleStartup))
	assert.Equal(t, "/mentors/dashboard", HomePath(RoleMentor))
	assert.Equal(t, "/admin/", HomePath(RoleAdmin))
}

func TestNewSessionResponse(t *testing.T) {
	s := &MentorshipSession{ID: uuid.New(), State: SessionScheduled, Topic: "GTM"}
	resp := NewSessionResponse(s)
	assert.Equal(t, ApprovalApproved, resp.ApprovalStatus)
	assert.Equal(t, StatusScheduled, resp.Status)
	assert.Equal(t, s.ID, resp.ID)
}
