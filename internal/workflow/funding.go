package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"incubation-backend/internal/models"
)

// CreateFunding opens a funding round addressed to one investor or to every
// investor registered right now. The recipient list is frozen on the round.
func (s *Service) CreateFunding(ctx context.Context, startupID uuid.UUID, req models.FundingRequest) (*models.FundingRound, error) {
	name := strings.TrimSpace(req.RoundName)
	if name == "" {
		return nil, validationf("round_name is required")
	}
	if req.AmountCents <= 0 {
		return nil, validationf("amount must be positive")
	}

	now := s.now()
	round := &models.FundingRound{
		ID:           uuid.New(),
		StartupID:    startupID,
		AllInvestors: req.AllInvestors,
		RoundName:    name,
		AmountCents:  req.AmountCents,
		Status:       models.FundingRequested,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.InvestorID != nil {
		round.InvestorID = uuid.NullUUID{UUID: *req.InvestorID, Valid: true}
	}
	if err := round.Validate(); err != nil {
		return nil, validationf("%s", err)
	}

	err := s.inTx(ctx, func(tx Tx, ob *outbox) error {
		startup, err := s.requireRole(ctx, tx, startupID, models.RoleStartup)
		if err != nil {
			return err
		}
		if round.Recipients, err = s.snapshotRecipients(ctx, tx, round); err != nil {
			return err
		}
		if err := tx.CreateFunding(ctx, round); err != nil {
			return fmt.Errorf("failed to create funding round: %w", err)
		}
		ob.transition("funding", "NEW", models.FundingRequested)

		message := fmt.Sprintf("%s created a funding round: %s for $%s",
			startup.DisplayName, round.RoundName, models.FormatAmount(round.AmountCents))
		notes := make([]models.Notification, 0, len(round.Recipients))
		for _, investorID := range round.Recipients {
			notes = append(notes, note(investorID, "Funding Round Created", message))
		}
		return s.notify(ctx, tx, ob, notes...)
	})
	if err != nil {
		return nil, err
	}
	return round, nil
}

// UpdateFunding edits a round that has not been approved. Editing a rejected
// round resubmits it as PENDING.
func (s *Service) UpdateFunding(ctx context.Context, startupID, fundingID uuid.UUID, req models.FundingUpdateRequest) (*models.FundingRound, error) {
	if req.RoundName != nil && strings.TrimSpace(*req.RoundName) == "" {
		return nil, validationf("round_name cannot be empty")
	}
	if req.AmountCents != nil && *req.AmountCents <= 0 {
		return nil, validationf("amount must be positive")
	}

	var out *models.FundingRound
	err := s.inTx(ctx, func(tx Tx, ob *outbox) error {
		startup, err := s.requireRole(ctx, tx, startupID, models.RoleStartup)
		if err != nil {
			return err
		}
		round, err := s.ownedFunding(ctx, tx, startupID, fundingID)
		if err != nil {
			return err
		}
		if round.Status == models.FundingApproved {
			return conflictf("approved funding rounds cannot be edited")
		}

		if req.RoundName != nil {
			round.RoundName = strings.TrimSpace(*req.RoundName)
		}
		if req.AmountCents != nil {
			round.AmountCents = *req.AmountCents
		}
		if req.InvestorID != nil || req.AllInvestors != nil {
			if req.InvestorID != nil {
				round.InvestorID = uuid.NullUUID{UUID: *req.InvestorID, Valid: *req.InvestorID != uuid.Nil}
			} else {
				round.InvestorID = uuid.NullUUID{}
			}
			round.AllInvestors = req.AllInvestors != nil && *req.AllInvestors
			if err := round.Validate(); err != nil {
				return validationf("%s", err)
			}
			if round.Recipients, err = s.snapshotRecipients(ctx, tx, round); err != nil {
				return err
			}
		}

		from := round.Status
		resubmitted := from == models.FundingRejected
		if resubmitted {
			round.Status = models.FundingPending
		}
		change := models.StatusChange{At: s.now(), From: from, To: round.Status}
		round.UpdatedAt = change.At
		if err := tx.UpdateFunding(ctx, round); err != nil {
			return storeErr(err, "funding round")
		}
		if err := s.logStatusChange(ctx, tx, round, change); err != nil {
			return err
		}
		out = round
		if !resubmitted {
			return nil
		}
		ob.transition("funding", from, round.Status)

		message := fmt.Sprintf("%s resubmitted funding round %s for $%s",
			startup.DisplayName, round.RoundName, models.FormatAmount(round.AmountCents))
		notes := make([]models.Notification, 0, len(round.Recipients)+1)
		for _, investorID := range round.Recipients {
			notes = append(notes, note(investorID, "Funding Round Resubmitted", message))
		}
		notes = append(notes, note(startupID, "Funding Round Resubmitted",
			fmt.Sprintf("Your funding round %s is pending review again.", round.RoundName)))
		return s.notify(ctx, tx, ob, notes...)
	})
	return out, err
}

var decisionTitles = map[models.FundingStatus]string{
	models.FundingPending:  "Funding Round Under Review",
	models.FundingApproved: "Funding Round Approved",
	models.FundingRejected: "Funding Round Rejected",
}

// DecideFunding records an investor's answer on a round addressed to them.
func (s *Service) DecideFunding(ctx context.Context, investorID, fundingID uuid.UUID, status models.FundingStatus) (*models.FundingRound, error) {
	switch status {
	case models.FundingPending, models.FundingApproved, models.FundingRejected:
	default:
		return nil, validationf("status must be one of PENDING, APPROVED or REJECTED")
	}

	var out *models.FundingRound
	err := s.inTx(ctx, func(tx Tx, ob *outbox) error {
		investor, err := s.requireRole(ctx, tx, investorID, models.RoleInvestor)
		if err != nil {
			return err
		}
		round, err := tx.GetFunding(ctx, fundingID)
		if err != nil {
			return storeErr(err, "funding round")
		}
		if !round.HasRecipient(investorID) {
			return notFoundf("funding round not found")
		}

		out = round
		if round.Status == status {
			return nil
		}
		switch round.Status {
		case models.FundingRequested, models.FundingPending:
		default:
			return conflictf("funding round is already %s", strings.ToLower(string(round.Status)))
		}

		change := models.StatusChange{At: s.now(), From: round.Status, To: status}
		round.Status = status
		round.UpdatedAt = change.At
		if err := tx.UpdateFunding(ctx, round); err != nil {
			return storeErr(err, "funding round")
		}
		if err := s.logStatusChange(ctx, tx, round, change); err != nil {
			return err
		}
		ob.transition("funding", change.From, change.To)

		return s.notify(ctx, tx, ob, note(round.StartupID, decisionTitles[status],
			fmt.Sprintf("%s marked your funding round %s as %s.", investor.DisplayName, round.RoundName, status)))
	})
	return out, err
}

// DeleteFunding removes a round. Approved rounds are kept.
func (s *Service) DeleteFunding(ctx context.Context, startupID, fundingID uuid.UUID) error {
	return s.inTx(ctx, func(tx Tx, _ *outbox) error {
		if _, err := s.requireRole(ctx, tx, startupID, models.RoleStartup); err != nil {
			return err
		}
		round, err := s.ownedFunding(ctx, tx, startupID, fundingID)
		if err != nil {
			return err
		}
		if round.Status == models.FundingApproved {
			return conflictf("approved funding rounds cannot be deleted")
		}
		return storeErr(tx.DeleteFunding(ctx, fundingID), "funding round")
	})
}

func (s *Service) GetFunding(ctx context.Context, actorID, fundingID uuid.UUID) (*models.FundingRound, error) {
	var out *models.FundingRound
	err := s.inTx(ctx, func(tx Tx, _ *outbox) error {
		actor, err := s.actor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		round, err := tx.GetFunding(ctx, fundingID)
		if err != nil {
			return storeErr(err, "funding round")
		}
		switch actor.Role {
		case models.RoleStartup:
			if round.StartupID != actorID {
				return notFoundf("funding round not found")
			}
		case models.RoleInvestor:
			if !round.HasRecipient(actorID) {
				return notFoundf("funding round not found")
			}
		default:
			return forbiddenf("only startups and investors can view funding rounds")
		}
		out = round
		return nil
	})
	return out, err
}

// ListFunding returns a startup's rounds or the rounds addressed to an investor.
func (s *Service) ListFunding(ctx context.Context, actorID uuid.UUID, status models.FundingStatus) ([]models.FundingRound, error) {
	if status != "" && !status.Valid() {
		return nil, validationf("unknown funding status %q", status)
	}

	var out []models.FundingRound
	err := s.inTx(ctx, func(tx Tx, _ *outbox) error {
		actor, err := s.actor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		filter := models.FundingFilter{Status: status}
		switch actor.Role {
		case models.RoleStartup:
			filter.StartupID = actorID
		case models.RoleInvestor:
			filter.RecipientID = actorID
		default:
			return forbiddenf("only startups and investors have funding rounds")
		}
		out, err = tx.ListFunding(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list funding rounds: %w", err)
		}
		return nil
	})
	return out, err
}

// logStatusChange appends one audit entry. Entries are never rewritten.
func (s *Service) logStatusChange(ctx context.Context, tx Tx, round *models.FundingRound, change models.StatusChange) error {
	if err := tx.AppendFundingHistory(ctx, round.ID, change); err != nil {
		return fmt.Errorf("failed to append funding history: %w", err)
	}
	round.History = append(round.History, change)
	return nil
}

func (s *Service) snapshotRecipients(ctx context.Context, tx Tx, round *models.FundingRound) ([]uuid.UUID, error) {
	if round.InvestorID.Valid {
		investor, err := tx.GetActor(ctx, round.InvestorID.UUID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, validationf("investor %s does not exist", round.InvestorID.UUID)
			}
			return nil, fmt.Errorf("failed to load investor: %w", err)
		}
		if investor.Role != models.RoleInvestor {
			return nil, validationf("%s is not an investor", round.InvestorID.UUID)
		}
		return []uuid.UUID{investor.ID}, nil
	}

	investors, err := tx.ListActorsByRole(ctx, models.RoleInvestor)
	if err != nil {
		return nil, fmt.Errorf("failed to list investors: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(investors))
	for _, inv := range investors {
		ids = append(ids, inv.ID)
	}
	return ids, nil
}

func (s *Service) ownedFunding(ctx context.Context, tx Tx, startupID, fundingID uuid.UUID) (*models.FundingRound, error) {
	round, err := tx.GetFunding(ctx, fundingID)
	if err != nil {
		return nil, storeErr(err, "funding round")
	}
	if round.StartupID != startupID {
		return nil, forbiddenf("funding round belongs to another startup")
	}
	return round, nil
}
