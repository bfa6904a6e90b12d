package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"incubation-backend/internal/models"
)

// SubmitProposal files a freelancer's proposal against an open project. A
// previous PENDING or REJECTED proposal for the same project is overwritten
// in place; an APPROVED one blocks resubmission.
func (s *Service) SubmitProposal(ctx context.Context, freelancerID, projectID uuid.UUID, req models.ProposalRequest, attachment *models.Upload) (*models.Proposal, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, validationf("proposal_text is required")
	}
	if req.ExpectedPaymentCents < 0 {
		return nil, validationf("expected_payment_cents cannot be negative")
	}

	url := s.upload(ctx, attachment, "proposal_attachments")

	var out *models.Proposal
	err := s.inTx(ctx, func(tx Tx, ob *outbox) error {
		freelancer, err := s.requireRole(ctx, tx, freelancerID, models.RoleFreelancer)
		if err != nil {
			return err
		}
		project, err := tx.GetProject(ctx, projectID)
		if err != nil {
			return storeErr(err, "project")
		}

		existing, err := tx.FindProposal(ctx, projectID, freelancerID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("failed to look up previous proposal: %w", err)
		}
		if existing != nil {
			switch existing.Status {
			case models.ProposalApproved:
				return conflictf("your proposal for this project was already approved")
			case models.ProposalSuperseded:
				return conflictf("another proposal for this project was already approved")
			}
		}
		if !project.OpenToFreelancers || project.Status != models.ProjectPlanned {
			return notFoundf("project is not open for proposals")
		}

		now := s.now()
		if existing != nil {
			from := existing.Status
			existing.Text = text
			existing.ExpectedTimeline = strings.TrimSpace(req.ExpectedTimeline)
			existing.ExpectedPaymentCents = req.ExpectedPaymentCents
			existing.Status = models.ProposalPending
			existing.RejectionNote = nil
			existing.SubmittedAt = now
			existing.UpdatedAt = now
			if url != nil {
				existing.AttachmentURL = url
			}
			if err := tx.UpdateProposal(ctx, existing); err != nil {
				return storeErr(err, "proposal")
			}
			ob.transition("proposal", from, models.ProposalPending)
			out = existing
		} else {
			out = &models.Proposal{
				ID:                   uuid.New(),
				ProjectID:            projectID,
				FreelancerID:         freelancerID,
				Text:                 text,
				ExpectedTimeline:     strings.TrimSpace(req.ExpectedTimeline),
				ExpectedPaymentCents: req.ExpectedPaymentCents,
				AttachmentURL:        url,
				Status:               models.ProposalPending,
				Version:              1,
				SubmittedAt:          now,
				UpdatedAt:            now,
			}
			if err := tx.CreateProposal(ctx, out); err != nil {
				return storeErr(err, "proposal")
			}
			ob.transition("proposal", "NEW", models.ProposalPending)
		}

		return s.notify(ctx, tx, ob, note(project.StartupID, "New Project Proposal",
			fmt.Sprintf("%s submitted a proposal for project '%s'.", freelancer.DisplayName, project.Name)))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApproveProposal approves a PENDING proposal, binds the freelancer as the
// project's single active assignment and closes every other pending
// proposal on the project as SUPERSEDED, all in one transaction.
func (s *Service) ApproveProposal(ctx context.Context, startupID, proposalID uuid.UUID) (*models.Assignment, error) {
	var out *models.Assignment
	err := s.inTx(ctx, func(tx Tx, ob *outbox) error {
		if _, err := s.requireRole(ctx, tx, startupID, models.RoleStartup); err != nil {
			return err
		}
		proposal, project, err := s.ownedProposal(ctx, tx, startupID, proposalID)
		if err != nil {
			return err
		}

		switch proposal.Status {
		case models.ProposalPending:
		case models.ProposalApproved:
			assignment, err := tx.GetAssignment(ctx, project.ID)
			if err == nil && assignment.ActiveFor(proposal.FreelancerID) {
				out = assignment
				return nil
			}
			return conflictf("proposal is already approved")
		default:
			return conflictf("cannot approve a %s proposal", strings.ToLower(string(proposal.Status)))
		}
		if project.Status != models.ProjectPlanned {
			return conflictf("project is %s and no longer accepts proposals", strings.ToLower(string(project.Status)))
		}

		approved, err := tx.ListProposals(ctx, models.ProposalFilter{ProjectID: project.ID, Status: models.ProposalApproved})
		if err != nil {
			return fmt.Errorf("failed to list approved proposals: %w", err)
		}
		if len(approved) > 0 {
			return conflictf("project already has an approved proposal")
		}

		now := s.now()
		proposal.Status = models.ProposalApproved
		proposal.UpdatedAt = now
		if err := tx.UpdateProposal(ctx, proposal); err != nil {
			return storeErr(err, "proposal")
		}
		ob.transition("proposal", models.ProposalPending, models.ProposalApproved)

		assignment, err := tx.GetAssignment(ctx, project.ID)
		switch {
		case errors.Is(err, models.ErrNotFound):
			assignment = &models.Assignment{ID: uuid.New(), ProjectID: project.ID}
		case err != nil:
			return fmt.Errorf("failed to load assignment: %w", err)
		}
		assignment.FreelancerID = uuid.NullUUID{UUID: proposal.FreelancerID, Valid: true}
		assignment.EmployeeID = uuid.NullUUID{}
		assignment.Role = "Freelancer"
		assignment.AssignedAt = now
		assignment.IsActive = true
		if err := tx.SaveAssignment(ctx, assignment); err != nil {
			return storeErr(err, "assignment")
		}

		from := project.Status
		project.Status = models.ProjectAssigned
		project.UpdatedAt = now
		if err := tx.UpdateProject(ctx, project); err != nil {
			return storeErr(err, "project")
		}
		ob.transition("project", from, models.ProjectAssigned)

		notes := []models.Notification{note(proposal.FreelancerID, "Project Proposal Approved",
			fmt.Sprintf("Your proposal for project '%s' has been approved.", project.Name))}

		pending, err := tx.ListProposals(ctx, models.ProposalFilter{ProjectID: project.ID, Status: models.ProposalPending})
		if err != nil {
			return fmt.Errorf("failed to list pending proposals: %w", err)
		}
		for i := range pending {
			sibling := &pending[i]
			if sibling.ID == proposal.ID {
				continue
			}
			sibling.Status = models.ProposalSuperseded
			sibling.UpdatedAt = now
			if err := tx.UpdateProposal(ctx, sibling); err != nil {
				return storeErr(err, "proposal")
			}
			ob.transition("proposal", models.ProposalPending, models.ProposalSuperseded)
			notes = append(notes, note(sibling.FreelancerID, "Project Proposal Closed",
				fmt.Sprintf("Project '%s' has been assigned to another freelancer. Your proposal is closed.", project.Name)))
		}

		out = assignment
		return s.notify(ctx, tx, ob, notes...)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RejectProposal rejects a PENDING proposal with an optional note.
// Rejecting an already rejected proposal is a no-op.
func (s *Service) RejectProposal(ctx context.Context, startupID, proposalID uuid.UUID, rejectionNote string) (*models.Proposal, error) {
	var out *models.Proposal
	err := s.inTx(ctx, func(tx Tx, ob *outbox) error {
		if _, err := s.requireRole(ctx, tx, startupID, models.RoleStartup); err != nil {
			return err
		}
		proposal, project, err := s.ownedProposal(ctx, tx, startupID, proposalID)
		if err != nil {
			return err
		}

		switch proposal.Status {
		case models.ProposalPending:
		case models.ProposalRejected:
			out = proposal
			return nil
		default:
			return conflictf("cannot reject a %s proposal", strings.ToLower(string(proposal.Status)))
		}

		proposal.Status = models.ProposalRejected
		proposal.UpdatedAt = s.now()
		if trimmed := strings.TrimSpace(rejectionNote); trimmed != "" {
			proposal.RejectionNote = &trimmed
		}
		if err := tx.UpdateProposal(ctx, proposal); err != nil {
			return storeErr(err, "proposal")
		}
		ob.transition("proposal", models.ProposalPending, models.ProposalRejected)

		message := fmt.Sprintf("Your proposal for project '%s' has been rejected.", project.Name)
		if proposal.RejectionNote != nil {
			message += " Note: " + *proposal.RejectionNote
		}
		out = proposal
		return s.notify(ctx, tx, ob, note(proposal.FreelancerID, "Project Proposal Rejected", message))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListProposals returns proposals visible to the actor: a startup sees the
// proposals on its projects, a freelancer its own. projectID narrows the
// result when set.
func (s *Service) ListProposals(ctx context.Context, actorID, projectID uuid.UUID) ([]models.Proposal, error) {
	var out []models.Proposal
	err := s.inTx(ctx, func(tx Tx, _ *outbox) error {
		actor, err := s.actor(ctx, tx, actorID)
		if err != nil {
			return err
		}

		filter := models.ProposalFilter{ProjectID: projectID}
		switch actor.Role {
		case models.RoleStartup:
			if projectID != uuid.Nil {
				project, err := tx.GetProject(ctx, projectID)
				if err != nil {
					return storeErr(err, "project")
				}
				if project.StartupID != actorID {
					return notFoundf("project not found")
				}
			}
			filter.StartupID = actorID
		case models.RoleFreelancer:
			filter.FreelancerID = actorID
		default:
			return forbiddenf("only startups and freelancers have proposals")
		}

		out, err = tx.ListProposals(ctx, filter)
		return err
	})
	return out, err
}

func (s *Service) ownedProposal(ctx context.Context, tx Tx, startupID, proposalID uuid.UUID) (*models.Proposal, *models.Project, error) {
	proposal, err := tx.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, nil, storeErr(err, "proposal")
	}
	project, err := tx.GetProject(ctx, proposal.ProjectID)
	if err != nil {
		return nil, nil, storeErr(err, "project")
	}
	if project.StartupID != startupID {
		return nil, nil, forbiddenf("proposal belongs to another startup's project")
	}
	return proposal, project, nil
}
