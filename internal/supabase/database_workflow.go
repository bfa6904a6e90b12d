package supabase

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"incubation-backend/internal/models"
)

var fundingColumns = []string{
	"id", "startup_id", "investor_id", "all_investors", "round_name", "amount_cents", "status",
	"recipients::text[]", "version", "created_at", "updated_at",
}

func uuidStrings(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func parseUUIDs(in pq.StringArray) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(in))
	for _, s := range in {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid recipient id %q: %w", s, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func scanFunding(r rowScanner) (models.FundingRound, error) {
	var (
		f          models.FundingRound
		recipients pq.StringArray
	)
	err := r.Scan(&f.ID, &f.StartupID, &f.InvestorID, &f.AllInvestors, &f.RoundName, &f.AmountCents, &f.Status,
		&recipients, &f.Version, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return f, err
	}
	f.Recipients, err = parseUUIDs(recipients)
	return f, err
}

// loadHistory fills the audit trail of each round, oldest entry first.
func (t *pgTx) loadHistory(ctx context.Context, rounds []models.FundingRound) error {
	if len(rounds) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(rounds))
	index := make(map[uuid.UUID]int, len(rounds))
	for i, r := range rounds {
		ids[i] = r.ID
		index[r.ID] = i
	}

	rows, err := t.query(ctx, psql.Select("funding_id", "changed_at", "old_status", "new_status").
		From("funding_status_history").
		Where("funding_id = ANY(?::uuid[])", uuidStrings(ids)).
		OrderBy("id ASC"))
	if err != nil {
		return fmt.Errorf("failed to load funding history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     uuid.UUID
			change models.StatusChange
		)
		if err := rows.Scan(&id, &change.At, &change.From, &change.To); err != nil {
			return fmt.Errorf("failed to scan funding history: %w", err)
		}
		i := index[id]
		rounds[i].History = append(rounds[i].History, change)
	}
	return rows.Err()
}

func (t *pgTx) CreateFunding(ctx context.Context, f *models.FundingRound) error {
	_, err := t.exec(ctx, psql.Insert("funding_rounds").
		Columns("id", "startup_id", "investor_id", "all_investors", "round_name", "amount_cents", "status",
			"recipients", "version", "created_at", "updated_at").
		Values(f.ID, f.StartupID, f.InvestorID, f.AllInvestors, f.RoundName, f.AmountCents, f.Status,
			sq.Expr("?::uuid[]", uuidStrings(f.Recipients)), f.Version, f.CreatedAt, f.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to create funding round: %w", err)
	}
	return nil
}

func (t *pgTx) GetFunding(ctx context.Context, id uuid.UUID) (*models.FundingRound, error) {
	var f models.FundingRound
	err := t.getOne(ctx, psql.Select(fundingColumns...).From("funding_rounds").Where(sq.Eq{"id": id}),
		"funding round", func(r rowScanner) (err error) {
			f, err = scanFunding(r)
			return err
		})
	if err != nil {
		return nil, err
	}
	rounds := []models.FundingRound{f}
	if err := t.loadHistory(ctx, rounds); err != nil {
		return nil, err
	}
	return &rounds[0], nil
}

func (t *pgTx) ListFunding(ctx context.Context, filter models.FundingFilter) ([]models.FundingRound, error) {
	q := psql.Select(fundingColumns...).From("funding_rounds").OrderBy("created_at DESC")
	if filter.StartupID != uuid.Nil {
		q = q.Where(sq.Eq{"startup_id": filter.StartupID})
	}
	if filter.RecipientID != uuid.Nil {
		q = q.Where("?::uuid = ANY(recipients)", filter.RecipientID)
	}
	if filter.Status != "" {
		q = q.Where(sq.Eq{"status": filter.Status})
	}
	rounds, err := listRows(ctx, t, q, "funding rounds", scanFunding)
	if err != nil {
		return nil, err
	}
	if err := t.loadHistory(ctx, rounds); err != nil {
		return nil, err
	}
	return rounds, nil
}

func (t *pgTx) UpdateFunding(ctx context.Context, f *models.FundingRound) error {
	err := t.updateVersioned(ctx, "funding_rounds", f.ID, psql.Update("funding_rounds").
		Set("investor_id", f.InvestorID).
		Set("all_investors", f.AllInvestors).
		Set("round_name", f.RoundName).
		Set("amount_cents", f.AmountCents).
		Set("status", f.Status).
		Set("recipients", sq.Expr("?::uuid[]", uuidStrings(f.Recipients))).
		Set("updated_at", f.UpdatedAt).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": f.ID, "version": f.Version}))
	if err != nil {
		return err
	}
	f.Version++
	return nil
}

func (t *pgTx) AppendFundingHistory(ctx context.Context, roundID uuid.UUID, change models.StatusChange) error {
	_, err := t.exec(ctx, psql.Insert("funding_status_history").
		Columns("funding_id", "changed_at", "old_status", "new_status").
		Values(roundID, change.At, change.From, change.To))
	if err != nil {
		return fmt.Errorf("failed to append funding history: %w", err)
	}
	return nil
}

func (t *pgTx) DeleteFunding(ctx context.Context, id uuid.UUID) error {
	res, err := t.exec(ctx, psql.Delete("funding_rounds").Where(sq.Eq{"id": id}))
	return mustAffect(res, err, "funding round")
}

var sessionColumns = []string{
	"id", "startup_id", "mentor_id", "topic", "session_date", "notes", "state", "version", "created_at", "updated_at",
}

func scanSession(r rowScanner) (models.MentorshipSession, error) {
	var s models.MentorshipSession
	err := r.Scan(&s.ID, &s.StartupID, &s.MentorID, &s.Topic, &s.ScheduledAt, &s.Notes, &s.State, &s.Version,
		&s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (t *pgTx) CreateSession(ctx context.Context, s *models.MentorshipSession) error {
	_, err := t.exec(ctx, psql.Insert("mentorship_sessions").Columns(sessionColumns...).
		Values(s.ID, s.StartupID, s.MentorID, s.Topic, s.ScheduledAt, s.Notes, s.State, s.Version,
			s.CreatedAt, s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to create mentorship session: %w", err)
	}
	return nil
}

func (t *pgTx) GetSession(ctx context.Context, id uuid.UUID) (*models.MentorshipSession, error) {
	var s models.MentorshipSession
	err := t.getOne(ctx, psql.Select(sessionColumns...).From("mentorship_sessions").Where(sq.Eq{"id": id}),
		"mentorship session", func(r rowScanner) (err error) {
			s, err = scanSession(r)
			return err
		})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (t *pgTx) ListSessions(ctx context.Context, f models.SessionFilter) ([]models.MentorshipSession, error) {
	q := psql.Select(sessionColumns...).From("mentorship_sessions").OrderBy("session_date DESC")
	if f.StartupID != uuid.Nil {
		q = q.Where(sq.Eq{"startup_id": f.StartupID})
	}
	if f.MentorID != uuid.Nil {
		q = q.Where(sq.Eq{"mentor_id": f.MentorID})
	}
	return listRows(ctx, t, q, "mentorship sessions", scanSession)
}

func (t *pgTx) UpdateSession(ctx context.Context, s *models.MentorshipSession) error {
	err := t.updateVersioned(ctx, "mentorship_sessions", s.ID, psql.Update("mentorship_sessions").
		Set("topic", s.Topic).
		Set("session_date", s.ScheduledAt).
		Set("notes", s.Notes).
		Set("state", s.State).
		Set("updated_at", s.UpdatedAt).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": s.ID, "version": s.Version}))
	if err != nil {
		return err
	}
	s.Version++
	return nil
}

func (t *pgTx) DeleteSession(ctx context.Context, id uuid.UUID) error {
	res, err := t.exec(ctx, psql.Delete("mentorship_sessions").Where(sq.Eq{"id": id}))
	return mustAffect(res, err, "mentorship session")
}

// CreateNotifications inserts all rows in one statement under a savepoint, so
// a failure can be swallowed by the caller without poisoning the transaction.
func (t *pgTx) CreateNotifications(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	q := psql.Insert("notifications").Columns("id", "user_id", "title", "message", "read", "created_at")
	for _, n := range notifications {
		q = q.Values(n.ID, n.UserID, n.Title, n.Message, n.Read, n.CreatedAt)
	}

	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT notifications"); err != nil {
		return fmt.Errorf("failed to open savepoint: %w", err)
	}
	if _, err := t.exec(ctx, q); err != nil {
		if _, rbErr := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT notifications"); rbErr != nil {
			return fmt.Errorf("failed to roll back notifications (%v): %w", rbErr, err)
		}
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT notifications"); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

func (t *pgTx) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	q := psql.Select("id", "user_id", "title", "message", "read", "created_at").
		From("notifications").Where(sq.Eq{"user_id": userID}).OrderBy("created_at DESC")
	if unreadOnly {
		q = q.Where(sq.Eq{"read": false})
	}
	return listRows(ctx, t, q, "notifications", func(r rowScanner) (models.Notification, error) {
		var n models.Notification
		err := r.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Read, &n.CreatedAt)
		return n, err
	})
}

func (t *pgTx) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	res, err := t.exec(ctx, psql.Update("notifications").Set("read", true).
		Where(sq.Eq{"id": id, "user_id": userID}))
	return mustAffect(res, err, "notification")
}

// countQueries maps each dashboard subject to a status-grouping query for one startup.
var countQueries = map[models.Subject]func(startupID uuid.UUID) sq.SelectBuilder{
	models.SubjectProjects: func(id uuid.UUID) sq.SelectBuilder {
		return psql.Select("status", "COUNT(*)").From("projects").Where(sq.Eq{"startup_id": id}).GroupBy("status")
	},
	models.SubjectProposals: func(id uuid.UUID) sq.SelectBuilder {
		return psql.Select("pr.status", "COUNT(*)").From("proposals pr").
			Join("projects p ON p.id = pr.project_id").Where(sq.Eq{"p.startup_id": id}).GroupBy("pr.status")
	},
	models.SubjectFunding: func(id uuid.UUID) sq.SelectBuilder {
		return psql.Select("status", "COUNT(*)").From("funding_rounds").Where(sq.Eq{"startup_id": id}).GroupBy("status")
	},
	models.SubjectMentorship: func(id uuid.UUID) sq.SelectBuilder {
		return psql.Select("state", "COUNT(*)").From("mentorship_sessions").Where(sq.Eq{"startup_id": id}).GroupBy("state")
	},
}

func (t *pgTx) CountByStatus(ctx context.Context, subject models.Subject, startupID uuid.UUID) (map[string]int, error) {
	build, ok := countQueries[subject]
	if !ok {
		return nil, fmt.Errorf("unknown dashboard subject %q", subject)
	}
	type bucket struct {
		status string
		count  int
	}
	buckets, err := listRows(ctx, t, build(startupID), string(subject), func(r rowScanner) (bucket, error) {
		var b bucket
		err := r.Scan(&b.status, &b.count)
		return b, err
	})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(buckets))
	for _, b := range buckets {
		counts[b.status] = b.count
	}
	return counts, nil
}

func (t *pgTx) count(ctx context.Context, b sq.SelectBuilder, what string) (int, error) {
	var n int
	err := t.getOne(ctx, b, what, func(r rowScanner) error { return r.Scan(&n) })
	return n, err
}

func (t *pgTx) CountEmployees(ctx context.Context, startupID uuid.UUID) (int, error) {
	return t.count(ctx, psql.Select("COUNT(*)").From("employees").
		Where(sq.Eq{"startup_id": startupID, "is_active": true}), "employees")
}

func (t *pgTx) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return t.count(ctx, psql.Select("COUNT(*)").From("notifications").
		Where(sq.Eq{"user_id": userID, "read": false}), "unread notifications")
}
