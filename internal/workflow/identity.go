package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"incubation-backend/internal/models"
)

var avatarFolders = map[models.Role]string{
	models.RoleStartup:    "startups",
	models.RoleFreelancer: "freelancer_profiles",
	models.RoleMentor:     "mentor_profiles",
	models.RoleInvestor:   "investor_profiles",
}

// RegisterActor records the role and profile of an authenticated user. The
// role cannot be changed afterwards and ADMIN cannot be self-assigned.
func (s *Service) RegisterActor(ctx context.Context, userID uuid.UUID, req models.RegisterRequest, avatar *models.Upload) (*models.Actor, error) {
	if !req.Role.Valid() {
		return nil, validationf("unknown role %q", req.Role)
	}
	if req.Role == models.RoleAdmin {
		return nil, validationf("the ADMIN role cannot be self-assigned")
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return nil, validationf("display_name is required")
	}

	url := s.upload(ctx, avatar, avatarFolders[req.Role])

	actor := &models.Actor{
		ID:          userID,
		Role:        req.Role,
		Email:       strings.TrimSpace(req.Email),
		DisplayName: name,
		Headline:    strings.TrimSpace(req.Headline),
		AvatarURL:   url,
		CreatedAt:   s.now(),
	}
	err := s.inTx(ctx, func(tx Tx, _ *outbox) error {
		if _, err := tx.GetActor(ctx, userID); err == nil {
			return conflictf("a profile is already registered for this account")
		} else if !errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("failed to load actor: %w", err)
		}
		if err := tx.CreateActor(ctx, actor); err != nil {
			return storeErr(err, "actor")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return actor, nil
}

func (s *Service) GetActor(ctx context.Context, userID uuid.UUID) (*models.Actor, error) {
	var actor *models.Actor
	err := s.inTx(ctx, func(tx Tx, _ *outbox) error {
		var err error
		actor, err = tx.GetActor(ctx, userID)
		return storeErr(err, "profile")
	})
	return actor, err
}

// ListMentors and ListInvestors back the pickers used when requesting a
// session or targeting a funding round.
func (s *Service) ListMentors(ctx context.Context) ([]models.Actor, error) {
	return s.listByRole(ctx, models.RoleMentor)
}

func (s *Service) ListInvestors(ctx context.Context) ([]models.Actor, error) {
	return s.listByRole(ctx, models.RoleInvestor)
}

func (s *Service) listByRole(ctx context.Context, role models.Role) ([]models.Actor, error) {
	var actors []models.Actor
	err := s.inTx(ctx, func(tx Tx, _ *outbox) error {
		var err error
		actors, err = tx.ListActorsByRole(ctx, role)
		return err
	})
	return actors, err
}

func (s *Service) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	var out []models.Notification
	err := s.inTx(ctx, func(tx Tx, _ *outbox) error {
		var err error
		out, err = tx.ListNotifications(ctx, userID, unreadOnly)
		return err
	})
	return out, err
}

// MarkNotificationRead flips the read flag. Notifications addressed to
// someone else are reported as not found.
func (s *Service) MarkNotificationRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.inTx(ctx, func(tx Tx, _ *outbox) error {
		return storeErr(tx.MarkNotificationRead(ctx, notificationID, userID), "notification")
	})
}
