package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"incubation-backend/internal/models"
)

// CreateMilestone records progress on a project the freelancer is actively
// assigned to and tells the startup about it.
func (s *Service) CreateMilestone(ctx context.Context, freelancerID, projectID uuid.UUID, req models.MilestoneRequest) (*models.Milestone, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, validationf("title is required")
	}

	var out *models.Milestone
	err := s.inTx(ctx, func(tx Tx, ob *outbox) error {
		project, err := s.openAssignedProject(ctx, tx, freelancerID, projectID)
		if err != nil {
			return err
		}

		now := s.now()
		milestone := &models.Milestone{
			ID:           uuid.New(),
			ProjectID:    project.ID,
			FreelancerID: freelancerID,
			Title:        title,
			Description:  strings.TrimSpace(req.Description),
			DueDate:      req.DueDate,
			Remarks:      strings.TrimSpace(req.Remarks),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		milestone.SetProgress(req.Progress)
		if err := tx.CreateMilestone(ctx, milestone); err != nil {
			return fmt.Errorf("failed to create milestone: %w", err)
		}
		ob.transition("milestone", "NEW", milestone.Status)

		notes := []models.Notification{note(project.StartupID, "New Milestone Added",
			fmt.Sprintf("A new milestone '%s' was added to project '%s'.", milestone.Title, project.Name))}
		if milestone.Status == models.MilestoneCompleted {
			notes = append(notes, milestoneCompleted(project, milestone))
		}
		out = milestone
		return s.notify(ctx, tx, ob, notes...)
	})
	return out, err
}

func (s *Service) UpdateMilestone(ctx context.Context, freelancerID, milestoneID uuid.UUID, req models.MilestoneUpdateRequest) (*models.Milestone, error) {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, validationf("title cannot be empty")
	}

	var out *models.Milestone
	err := s.inTx(ctx, func(tx Tx, ob *outbox) error {
		milestone, project, err := s.ownMilestone(ctx, tx, freelancerID, milestoneID)
		if err != nil {
			return err
		}

		from := milestone.Status
		if req.Title != nil {
			milestone.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			milestone.Description = strings.TrimSpace(*req.Description)
		}
		if req.DueDate != nil {
			milestone.DueDate = req.DueDate
		}
		if req.Remarks != nil {
			milestone.Remarks = strings.TrimSpace(*req.Remarks)
		}
		if req.Progress != nil {
			milestone.SetProgress(*req.Progress)
		}
		milestone.UpdatedAt = s.now()
		if err := tx.UpdateMilestone(ctx, milestone); err != nil {
			return storeErr(err, "milestone")
		}

		out = milestone
		if from == milestone.Status {
			return nil
		}
		ob.transition("milestone", from, milestone.Status)
		if milestone.Status != models.MilestoneCompleted {
			return nil
		}
		return s.notify(ctx, tx, ob, milestoneCompleted(project, milestone))
	})
	return out, err
}

func (s *Service) DeleteMilestone(ctx context.Context, freelancerID, milestoneID uuid.UUID) error {
	return s.inTx(ctx, func(tx Tx, _ *outbox) error {
		if _, _, err := s.ownMilestone(ctx, tx, freelancerID, milestoneID); err != nil {
			return err
		}
		return storeErr(tx.DeleteMilestone(ctx, milestoneID), "milestone")
	})
}

// ListMilestones returns the milestones of a project. The assigned
// freelancer sees their own, the owning startup sees all of them.
func (s *Service) ListMilestones(ctx context.Context, actorID, projectID uuid.UUID) ([]models.Milestone, error) {
	var out []models.Milestone
	err := s.inTx(ctx, func(tx Tx, _ *outbox) error {
		actor, err := s.actor(ctx, tx, actorID)
		if err != nil {
			return err
		}

		freelancerID := uuid.Nil
		switch actor.Role {
		case models.RoleStartup:
			if _, err := s.ownedProject(ctx, tx, actorID, projectID); err != nil {
				return err
			}
		case models.RoleFreelancer:
			if _, err := s.assignedProject(ctx, tx, actorID, projectID); err != nil {
				return err
			}
			freelancerID = actorID
		default:
			return forbiddenf("only startups and freelancers can view milestones")
		}

		out, err = tx.ListMilestones(ctx, projectID, freelancerID)
		if err != nil {
			return fmt.Errorf("failed to list milestones: %w", err)
		}
		return nil
	})
	return out, err
}

func milestoneCompleted(project *models.Project, milestone *models.Milestone) models.Notification {
	return note(project.StartupID, "Milestone Completed",
		fmt.Sprintf("Milestone '%s' on project '%s' has been completed.", milestone.Title, project.Name))
}

// openAssignedProject is assignedProject for mutations: a completed project
// is frozen.
func (s *Service) openAssignedProject(ctx context.Context, tx Tx, freelancerID, projectID uuid.UUID) (*models.Project, error) {
	if _, err := s.requireRole(ctx, tx, freelancerID, models.RoleFreelancer); err != nil {
		return nil, err
	}
	project, err := s.assignedProject(ctx, tx, freelancerID, projectID)
	if err != nil {
		return nil, err
	}
	if project.Status == models.ProjectCompleted {
		return nil, conflictf("project '%s' is completed", project.Name)
	}
	return project, nil
}

func (s *Service) ownMilestone(ctx context.Context, tx Tx, freelancerID, milestoneID uuid.UUID) (*models.Milestone, *models.Project, error) {
	milestone, err := tx.GetMilestone(ctx, milestoneID)
	if err != nil {
		return nil, nil, storeErr(err, "milestone")
	}
	if milestone.FreelancerID != freelancerID {
		return nil, nil, notFoundf("milestone not found")
	}
	project, err := s.openAssignedProject(ctx, tx, freelancerID, milestone.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return milestone, project, nil
}
