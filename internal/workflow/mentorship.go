package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"incubation-backend/internal/models"
)

const sessionTimeLayout = "2006-01-02 15:04 MST"

func (s *Service) RequestSession(ctx context.Context, startupID uuid.UUID, req models.SessionRequest) (*models.MentorshipSession, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, validationf("topic is required")
	}
	if req.ScheduledAt.IsZero() {
		return nil, validationf("session_date is required")
	}

	var out *models.MentorshipSession
	err := s.inTx(ctx, func(tx Tx, ob *outbox) error {
		startup, err := s.requireRole(ctx, tx, startupID, models.RoleStartup)
		if err != nil {
			return err
		}
		mentor, err := tx.GetActor(ctx, req.MentorID)
		if err != nil {
			return storeErr(err, "mentor")
		}
		if mentor.Role != models.RoleMentor {
			return notFoundf("mentor not found")
		}

		now := s.now()
		session := &models.MentorshipSession{
			ID:          uuid.New(),
			StartupID:   startupID,
			MentorID:    mentor.ID,
			Topic:       topic,
			ScheduledAt: req.ScheduledAt,
			Notes:       strings.TrimSpace(req.Notes),
			State:       models.SessionRequested,
			Version:     1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.CreateSession(ctx, session); err != nil {
			return fmt.Errorf("failed to create mentorship session: %w", err)
		}
		ob.transition("mentorship", "NEW", models.SessionRequested)

		when := session.ScheduledAt.UTC().Format(sessionTimeLayout)
		out = session
		return s.notify(ctx, tx, ob,
			note(mentor.ID, "Mentorship Session Requested",
				fmt.Sprintf("%s requested a mentorship session on '%s' for %s.", startup.DisplayName, topic, when)),
			note(startupID, "Mentorship Request Sent",
				fmt.Sprintf("Your mentorship request to %s for %s has been sent.", mentor.DisplayName, when)),
		)
	})
	return out, err
}

// MentorApprove schedules a requested session. Approving a scheduled session
// again changes nothing.
func (s *Service) MentorApprove(ctx context.Context, mentorID, sessionID uuid.UUID) (*models.MentorshipSession, error) {
	return s.mentorTransition(ctx, mentorID, sessionID, models.SessionScheduled)
}

func (s *Service) MentorReject(ctx context.Context, mentorID, sessionID uuid.UUID) (*models.MentorshipSession, error) {
	return s.mentorTransition(ctx, mentorID, sessionID, models.SessionRejected)
}

// MentorSetStatus moves a session along the scheduling axis. REQUESTED can
// not be targeted; the mentor uses approve or reject for the approval axis.
func (s *Service) MentorSetStatus(ctx context.Context, mentorID, sessionID uuid.UUID, status models.SessionStatus) (*models.MentorshipSession, error) {
	var target models.SessionState
	switch status {
	case models.StatusScheduled:
		target = models.SessionScheduled
	case models.StatusCompleted:
		target = models.SessionCompleted
	case models.StatusCancelled:
		target = models.SessionCancelled
	default:
		return nil, validationf("status must be one of SCHEDULED, COMPLETED or CANCELLED")
	}
	return s.mentorTransition(ctx, mentorID, sessionID, target)
}

// mentorMoves lists the states a mentor may move a session into from each state.
var mentorMoves = map[models.SessionState][]models.SessionState{
	models.SessionRequested: {models.SessionScheduled, models.SessionRejected, models.SessionCancelled},
	models.SessionScheduled: {models.SessionCompleted, models.SessionRejected, models.SessionCancelled},
}

var mentorTitles = map[models.SessionState]string{
	models.SessionScheduled: "Mentorship Session Approved",
	models.SessionRejected:  "Mentorship Session Rejected",
	models.SessionCompleted: "Mentorship Session Completed",
	models.SessionCancelled: "Mentorship Session Cancelled",
}

func (s *Service) mentorTransition(ctx context.Context, mentorID, sessionID uuid.UUID, target models.SessionState) (*models.MentorshipSession, error) {
	var out *models.MentorshipSession
	err := s.inTx(ctx, func(tx Tx, ob *outbox) error {
		mentor, err := s.requireRole(ctx, tx, mentorID, models.RoleMentor)
		if err != nil {
			return err
		}
		session, err := tx.GetSession(ctx, sessionID)
		if err != nil {
			return storeErr(err, "mentorship session")
		}
		if session.MentorID != mentorID {
			return forbiddenf("session is assigned to another mentor")
		}

		out = session
		if session.State == target {
			return nil
		}
		if !canMove(session.State, target) {
			return conflictf("cannot move a %s session to %s",
				strings.ToLower(string(session.State)), strings.ToLower(string(target)))
		}

		from := session.State
		session.State = target
		session.UpdatedAt = s.now()
		if err := tx.UpdateSession(ctx, session); err != nil {
			return storeErr(err, "mentorship session")
		}
		ob.transition("mentorship", from, target)

		return s.notify(ctx, tx, ob, note(session.StartupID, mentorTitles[target],
			fmt.Sprintf("%s marked your session '%s' on %s as %s.", mentor.DisplayName, session.Topic,
				session.ScheduledAt.UTC().Format(sessionTimeLayout), strings.ToLower(string(target)))))
	})
	return out, err
}

func canMove(from, to models.SessionState) bool {
	for _, allowed := range mentorMoves[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// UpdateSession edits a session that is still open. A scheduled session goes
// back to REQUESTED and needs the mentor's approval again.
func (s *Service) UpdateSession(ctx context.Context, startupID, sessionID uuid.UUID, req models.SessionUpdateRequest) (*models.MentorshipSession, error) {
	if req.Topic != nil && strings.TrimSpace(*req.Topic) == "" {
		return nil, validationf("topic cannot be empty")
	}
	if req.ScheduledAt != nil && req.ScheduledAt.IsZero() {
		return nil, validationf("session_date cannot be empty")
	}

	var out *models.MentorshipSession
	err := s.inTx(ctx, func(tx Tx, ob *outbox) error {
		startup, session, err := s.ownedSession(ctx, tx, startupID, sessionID)
		if err != nil {
			return err
		}
		if session.Closed() {
			return conflictf("a %s session cannot be edited", strings.ToLower(string(session.State)))
		}

		if req.Topic != nil {
			session.Topic = strings.TrimSpace(*req.Topic)
		}
		if req.ScheduledAt != nil {
			session.ScheduledAt = *req.ScheduledAt
		}
		if req.Notes != nil {
			session.Notes = strings.TrimSpace(*req.Notes)
		}

		from := session.State
		session.State = models.SessionRequested
		session.UpdatedAt = s.now()
		if err := tx.UpdateSession(ctx, session); err != nil {
			return storeErr(err, "mentorship session")
		}

		out = session
		when := session.ScheduledAt.UTC().Format(sessionTimeLayout)
		if from == models.SessionScheduled {
			ob.transition("mentorship", from, models.SessionRequested)
			return s.notify(ctx, tx, ob, note(session.MentorID, "Mentorship Session Needs Re-approval",
				fmt.Sprintf("%s changed the session '%s' on %s. Please approve it again.", startup.DisplayName, session.Topic, when)))
		}
		return s.notify(ctx, tx, ob, note(session.MentorID, "Mentorship Session Modified",
			fmt.Sprintf("%s updated the requested session '%s' on %s.", startup.DisplayName, session.Topic, when)))
	})
	return out, err
}

// CancelSession withdraws a requested or scheduled session. Sessions already
// cancelled or rejected are left alone; completed ones cannot be cancelled.
func (s *Service) CancelSession(ctx context.Context, startupID, sessionID uuid.UUID) (*models.MentorshipSession, error) {
	var out *models.MentorshipSession
	err := s.inTx(ctx, func(tx Tx, ob *outbox) error {
		startup, session, err := s.ownedSession(ctx, tx, startupID, sessionID)
		if err != nil {
			return err
		}

		out = session
		switch session.State {
		case models.SessionCancelled, models.SessionRejected:
			return nil
		case models.SessionCompleted:
			return conflictf("a completed session cannot be cancelled")
		}

		from := session.State
		session.State = models.SessionCancelled
		session.UpdatedAt = s.now()
		if err := tx.UpdateSession(ctx, session); err != nil {
			return storeErr(err, "mentorship session")
		}
		ob.transition("mentorship", from, models.SessionCancelled)

		return s.notify(ctx, tx, ob, note(session.MentorID, "Mentorship Session Cancelled",
			fmt.Sprintf("%s cancelled the session '%s' on %s.", startup.DisplayName, session.Topic,
				session.ScheduledAt.UTC().Format(sessionTimeLayout))))
	})
	return out, err
}

func (s *Service) DeleteSession(ctx context.Context, startupID, sessionID uuid.UUID) error {
	return s.inTx(ctx, func(tx Tx, _ *outbox) error {
		if _, _, err := s.ownedSession(ctx, tx, startupID, sessionID); err != nil {
			return err
		}
		return storeErr(tx.DeleteSession(ctx, sessionID), "mentorship session")
	})
}

func (s *Service) GetSession(ctx context.Context, actorID, sessionID uuid.UUID) (*models.MentorshipSession, error) {
	var out *models.MentorshipSession
	err := s.inTx(ctx, func(tx Tx, _ *outbox) error {
		actor, err := s.actor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		session, err := tx.GetSession(ctx, sessionID)
		if err != nil {
			return storeErr(err, "mentorship session")
		}
		switch actor.Role {
		case models.RoleStartup:
			if session.StartupID != actorID {
				return notFoundf("mentorship session not found")
			}
		case models.RoleMentor:
			if session.MentorID != actorID {
				return notFoundf("mentorship session not found")
			}
		default:
			return forbiddenf("only startups and mentors have mentorship sessions")
		}
		out = session
		return nil
	})
	return out, err
}

// ListSessions returns the sessions a startup requested or a mentor was asked for.
func (s *Service) ListSessions(ctx context.Context, actorID uuid.UUID) ([]models.MentorshipSession, error) {
	var out []models.MentorshipSession
	err := s.inTx(ctx, func(tx Tx, _ *outbox) error {
		actor, err := s.actor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		var filter models.SessionFilter
		switch actor.Role {
		case models.RoleStartup:
			filter.StartupID = actorID
		case models.RoleMentor:
			filter.MentorID = actorID
		default:
			return forbiddenf("only startups and mentors have mentorship sessions")
		}
		out, err = tx.ListSessions(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list mentorship sessions: %w", err)
		}
		return nil
	})
	return out, err
}

func (s *Service) ownedSession(ctx context.Context, tx Tx, startupID, sessionID uuid.UUID) (*models.Actor, *models.MentorshipSession, error) {
	startup, err := s.requireRole(ctx, tx, startupID, models.RoleStartup)
	if err != nil {
		return nil, nil, err
	}
	session, err := tx.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, storeErr(err, "mentorship session")
	}
	if session.StartupID != startupID {
		return nil, nil, forbiddenf("session belongs to another startup")
	}
	return startup, session, nil
}
