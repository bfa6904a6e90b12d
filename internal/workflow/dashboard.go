package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"incubation-backend/internal/models"
)

// dashboardKeys lists every status reported per subject, so empty
// collections still show up as zero counts.
var dashboardKeys = map[models.Subject][]string{
	models.SubjectProjects:   statusKeys(models.ProjectStatuses),
	models.SubjectProposals:  statusKeys(models.ProposalStatuses),
	models.SubjectFunding:    statusKeys(models.FundingStatuses),
	models.SubjectMentorship: statusKeys(models.SessionStates),
}

func statusKeys[T ~string](statuses []T) []string {
	keys := make([]string, len(statuses))
	for i, s := range statuses {
		keys[i] = string(s)
	}
	return keys
}

// Dashboard aggregates a startup's workflow state. It never writes.
func (s *Service) Dashboard(ctx context.Context, startupID uuid.UUID) (*models.Dashboard, error) {
	out := &models.Dashboard{StartupID: startupID}
	err := s.inTx(ctx, func(tx Tx, _ *outbox) error {
		if _, err := s.requireRole(ctx, tx, startupID, models.RoleStartup); err != nil {
			return err
		}

		for subject, dst := range map[models.Subject]*models.StatusCounts{
			models.SubjectProjects:   &out.Projects,
			models.SubjectProposals:  &out.Proposals,
			models.SubjectFunding:    &out.Funding,
			models.SubjectMentorship: &out.Mentorship,
		} {
			counts, err := tx.CountByStatus(ctx, subject, startupID)
			if err != nil {
				return fmt.Errorf("failed to count %s: %w", subject, err)
			}
			*dst = tally(dashboardKeys[subject], counts)
		}

		var err error
		if out.Employees, err = tx.CountEmployees(ctx, startupID); err != nil {
			return fmt.Errorf("failed to count employees: %w", err)
		}
		if out.UnreadNotifications, err = tx.CountUnread(ctx, startupID); err != nil {
			return fmt.Errorf("failed to count unread notifications: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func tally(keys []string, counts map[string]int) models.StatusCounts {
	out := models.StatusCounts{ByStatus: make(map[string]int, len(keys))}
	for _, k := range keys {
		out.ByStatus[k] = 0
	}
	for k, n := range counts {
		out.ByStatus[k] += n
		out.Total += n
	}
	return out
}
