package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"incubation-backend/internal/models"
	"incubation-backend/internal/workflow"
)

func newProject(startupID uuid.UUID) *models.Project {
	return &models.Project{
		ID:        uuid.New(),
		StartupID: startupID,
		Name:      "p",
		Status:    models.ProjectPlanned,
		Version:   1,
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	project := newProject(uuid.New())
	errAbort := errors.New("abort")

	err := s.WithTx(ctx, func(tx workflow.Tx) error {
		require.NoError(t, tx.CreateProject(ctx, project))
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	err = s.WithTx(ctx, func(tx workflow.Tx) error {
		_, err := tx.GetProject(ctx, project.ID)
		return err
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateProject_VersionCheck(t *testing.T) {
	ctx := context.Background()
	s := New()
	project := newProject(uuid.New())

	require.NoError(t, s.WithTx(ctx, func(tx workflow.Tx) error {
		return tx.CreateProject(ctx, project)
	}))

	stale := *project
	require.NoError(t, s.WithTx(ctx, func(tx workflow.Tx) error {
		project.Name = "renamed"
		return tx.UpdateProject(ctx, project)
	}))
	assert.Equal(t, 2, project.Version)

	err := s.WithTx(ctx, func(tx workflow.Tx) error {
		return tx.UpdateProject(ctx, &stale)
	})
	assert.ErrorIs(t, err, models.ErrStaleVersion)

	err = s.WithTx(ctx, func(tx workflow.Tx) error {
		return tx.UpdateProject(ctx, newProject(uuid.New()))
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFundingHistory_AppendOnly(t *testing.T) {
	ctx := context.Background()
	s := New()
	round := &models.FundingRound{
		ID:           uuid.New(),
		StartupID:    uuid.New(),
		AllInvestors: true,
		Status:       models.FundingRequested,
		Recipients:   []uuid.UUID{uuid.New()},
		Version:      1,
	}
	change := models.StatusChange{At: time.Now(), From: models.FundingRequested, To: models.FundingPending}

	require.NoError(t, s.WithTx(ctx, func(tx workflow.Tx) error {
		if err := tx.CreateFunding(ctx, round); err != nil {
			return err
		}
		if err := tx.AppendFundingHistory(ctx, round.ID, change); err != nil {
			return err
		}
		// Updates never rewrite stored history.
		round.History = nil
		round.Status = models.FundingPending
		return tx.UpdateFunding(ctx, round)
	}))

	require.NoError(t, s.WithTx(ctx, func(tx workflow.Tx) error {
		got, err := tx.GetFunding(ctx, round.ID)
		require.NoError(t, err)
		assert.Equal(t, models.FundingPending, got.Status)
		require.Len(t, got.History, 1)
		assert.Equal(t, models.FundingPending, got.History[0].To)

		// Returned slices are copies.
		got.Recipients[0] = uuid.Nil
		again, err := tx.GetFunding(ctx, round.ID)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, again.Recipients[0])
		return nil
	}))
}

func TestNotifications_ScopedToRecipient(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner, stranger := uuid.New(), uuid.New()
	first := models.Notification{ID: uuid.New(), UserID: owner, Title: "first"}
	second := models.Notification{ID: uuid.New(), UserID: owner, Title: "second"}

	require.NoError(t, s.WithTx(ctx, func(tx workflow.Tx) error {
		return tx.CreateNotifications(ctx, []models.Notification{first, second})
	}))

	require.NoError(t, s.WithTx(ctx, func(tx workflow.Tx) error {
		notes, err := tx.ListNotifications(ctx, owner, false)
		require.NoError(t, err)
		require.Len(t, notes, 2)
		assert.Equal(t, "second", notes[0].Title)

		assert.ErrorIs(t, tx.MarkNotificationRead(ctx, first.ID, stranger), models.ErrNotFound)
		require.NoError(t, tx.MarkNotificationRead(ctx, first.ID, owner))

		unread, err := tx.CountUnread(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, 1, unread)
		return nil
	}))

	s.FailNotifications(errors.New("insert failed"))
	err := s.WithTx(ctx, func(tx workflow.Tx) error {
		return tx.CreateNotifications(ctx, []models.Notification{{ID: uuid.New(), UserID: owner}})
	})
	assert.Error(t, err)
}

func TestDeleteProject_Cascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	project := newProject(uuid.New())
	freelancer := uuid.New()
	proposal := &models.Proposal{ID: uuid.New(), ProjectID: project.ID, FreelancerID: freelancer, Status: models.ProposalPending, Version: 1}
	milestone := &models.Milestone{ID: uuid.New(), ProjectID: project.ID, FreelancerID: freelancer}

	require.NoError(t, s.WithTx(ctx, func(tx workflow.Tx) error {
		require.NoError(t, tx.CreateProject(ctx, project))
		require.NoError(t, tx.CreateProposal(ctx, proposal))
		require.NoError(t, tx.CreateMilestone(ctx, milestone))
		return tx.DeleteProject(ctx, project.ID)
	}))

	require.NoError(t, s.WithTx(ctx, func(tx workflow.Tx) error {
		_, err := tx.GetProposal(ctx, proposal.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		_, err = tx.GetMilestone(ctx, milestone.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		return nil
	}))
}
