package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"incubation-backend/internal/models"
	"incubation-backend/internal/workflow"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// uniqueViolation is the SQLSTATE Postgres reports for a unique index hit.
const uniqueViolation = "23505"

// pgError maps driver errors the workflow can act on to storage sentinels.
func pgError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", models.ErrDuplicate, pqErr.Constraint)
	}
	return err
}

// DatabaseClient is the Postgres implementation of workflow.Store.
type DatabaseClient struct {
	db *sql.DB
}

var (
	_ workflow.Store = (*DatabaseClient)(nil)
	_ workflow.Tx    = (*pgTx)(nil)
)

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) WithTx(ctx context.Context, fn func(tx workflow.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&pgTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

type pgTx struct {
	tx *sql.Tx
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (t *pgTx) exec(ctx context.Context, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	res, err := t.tx.ExecContext(ctx, query, args...)
	return res, pgError(err)
}

func (t *pgTx) query(ctx context.Context, b sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *pgTx) queryRow(ctx context.Context, b sq.Sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return t.tx.QueryRowContext(ctx, query, args...), nil
}

// getOne runs a single-row select and maps sql.ErrNoRows to models.ErrNotFound.
func (t *pgTx) getOne(ctx context.Context, b sq.Sqlizer, what string, scan func(rowScanner) error) error {
	row, err := t.queryRow(ctx, b)
	if err != nil {
		return err
	}
	if err := scan(row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to get %s: %w", what, err)
	}
	return nil
}

func listRows[T any](ctx context.Context, t *pgTx, b sq.Sqlizer, what string, scan func(rowScanner) (T, error)) ([]T, error) {
	rows, err := t.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", what, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", what, err)
	}
	return out, nil
}

// mustAffect turns a zero-row write into ErrNotFound.
func mustAffect(res sql.Result, err error, what string) error {
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", what, err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// updateVersioned applies b, which must filter on id and version. A miss is
// reported as ErrStaleVersion when the row still exists.
func (t *pgTx) updateVersioned(ctx context.Context, table string, id uuid.UUID, b sq.UpdateBuilder) error {
	res, err := t.exec(ctx, b)
	if err := mustAffect(res, err, table); !errors.Is(err, models.ErrNotFound) {
		return err
	}

	var n int
	row, err := t.queryRow(ctx, psql.Select("COUNT(*)").From(table).Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if err := row.Scan(&n); err != nil {
		return fmt.Errorf("failed to check %s: %w", table, err)
	}
	if n > 0 {
		return models.ErrStaleVersion
	}
	return models.ErrNotFound
}

func (t *pgTx) GetActor(ctx context.Context, id uuid.UUID) (*models.Actor, error) {
	var a models.Actor
	err := t.getOne(ctx, psql.Select("id", "role", "email", "display_name", "headline", "avatar_url", "created_at").
		From("actors").Where(sq.Eq{"id": id}), "actor", func(r rowScanner) error {
		return r.Scan(&a.ID, &a.Role, &a.Email, &a.DisplayName, &a.Headline, &a.AvatarURL, &a.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (t *pgTx) CreateActor(ctx context.Context, a *models.Actor) error {
	_, err := t.exec(ctx, psql.Insert("actors").
		Columns("id", "role", "email", "display_name", "headline", "avatar_url", "created_at").
		Values(a.ID, a.Role, a.Email, a.DisplayName, a.Headline, a.AvatarURL, a.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create actor: %w", err)
	}
	return nil
}

func (t *pgTx) ListActorsByRole(ctx context.Context, role models.Role) ([]models.Actor, error) {
	return listRows(ctx, t, psql.Select("id", "role", "email", "display_name", "headline", "avatar_url", "created_at").
		From("actors").Where(sq.Eq{"role": role}).OrderBy("created_at ASC", "id ASC"),
		"actors", func(r rowScanner) (models.Actor, error) {
			var a models.Actor
			err := r.Scan(&a.ID, &a.Role, &a.Email, &a.DisplayName, &a.Headline, &a.AvatarURL, &a.CreatedAt)
			return a, err
		})
}

var projectColumns = []string{
	"p.id", "p.startup_id", "p.name", "p.description", "p.requirements_url", "p.start_date", "p.end_date",
	"p.status", "p.open_to_freelancers", "p.version", "p.created_at", "p.updated_at",
}

func scanProject(r rowScanner) (models.Project, error) {
	var p models.Project
	err := r.Scan(&p.ID, &p.StartupID, &p.Name, &p.Description, &p.RequirementsURL, &p.StartDate, &p.EndDate,
		&p.Status, &p.OpenToFreelancers, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (t *pgTx) CreateProject(ctx context.Context, p *models.Project) error {
	_, err := t.exec(ctx, psql.Insert("projects").
		Columns("id", "startup_id", "name", "description", "requirements_url", "start_date", "end_date",
			"status", "open_to_freelancers", "version", "created_at", "updated_at").
		Values(p.ID, p.StartupID, p.Name, p.Description, p.RequirementsURL, p.StartDate, p.EndDate,
			p.Status, p.OpenToFreelancers, p.Version, p.CreatedAt, p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (t *pgTx) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := t.getOne(ctx, psql.Select(projectColumns...).From("projects p").Where(sq.Eq{"p.id": id}),
		"project", func(r rowScanner) (err error) {
			p, err = scanProject(r)
			return err
		})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *pgTx) ListProjects(ctx context.Context, f models.ProjectFilter) ([]models.Project, error) {
	q := psql.Select(projectColumns...).From("projects p").OrderBy("p.created_at DESC")
	if f.StartupID != uuid.Nil {
		q = q.Where(sq.Eq{"p.startup_id": f.StartupID})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"p.status": f.Status})
	}
	if f.OpenToFreelancers {
		q = q.Where(sq.Eq{"p.open_to_freelancers": true})
	}
	if f.ExcludeProposedBy != uuid.Nil {
		q = q.Where("NOT EXISTS (SELECT 1 FROM proposals pr WHERE pr.project_id = p.id AND pr.freelancer_id = ?)", f.ExcludeProposedBy)
	}
	if f.AssignedTo != uuid.Nil {
		q = q.Join("project_assignments a ON a.project_id = p.id").
			Where(sq.Eq{"a.freelancer_id": f.AssignedTo, "a.is_active": true})
	}
	return listRows(ctx, t, q, "projects", scanProject)
}

func (t *pgTx) UpdateProject(ctx context.Context, p *models.Project) error {
	err := t.updateVersioned(ctx, "projects", p.ID, psql.Update("projects").
		Set("name", p.Name).
		Set("description", p.Description).
		Set("requirements_url", p.RequirementsURL).
		Set("start_date", p.StartDate).
		Set("end_date", p.EndDate).
		Set("status", p.Status).
		Set("open_to_freelancers", p.OpenToFreelancers).
		Set("updated_at", p.UpdatedAt).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": p.ID, "version": p.Version}))
	if err != nil {
		return err
	}
	p.Version++
	return nil
}

func (t *pgTx) DeleteProject(ctx context.Context, id uuid.UUID) error {
	res, err := t.exec(ctx, psql.Delete("projects").Where(sq.Eq{"id": id}))
	return mustAffect(res, err, "project")
}

var proposalColumns = []string{
	"pr.id", "pr.project_id", "pr.freelancer_id", "pr.proposal_text", "pr.expected_timeline",
	"pr.expected_payment_cents", "pr.attachment_url", "pr.status", "pr.rejection_note", "pr.version",
	"pr.submitted_at", "pr.updated_at",
}

func scanProposal(r rowScanner) (models.Proposal, error) {
	var p models.Proposal
	err := r.Scan(&p.ID, &p.ProjectID, &p.FreelancerID, &p.Text, &p.ExpectedTimeline,
		&p.ExpectedPaymentCents, &p.AttachmentURL, &p.Status, &p.RejectionNote, &p.Version,
		&p.SubmittedAt, &p.UpdatedAt)
	return p, err
}

func (t *pgTx) CreateProposal(ctx context.Context, p *models.Proposal) error {
	_, err := t.exec(ctx, psql.Insert("proposals").
		Columns("id", "project_id", "freelancer_id", "proposal_text", "expected_timeline",
			"expected_payment_cents", "attachment_url", "status", "rejection_note", "version",
			"submitted_at", "updated_at").
		Values(p.ID, p.ProjectID, p.FreelancerID, p.Text, p.ExpectedTimeline,
			p.ExpectedPaymentCents, p.AttachmentURL, p.Status, p.RejectionNote, p.Version,
			p.SubmittedAt, p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to create proposal: %w", err)
	}
	return nil
}

func (t *pgTx) getProposal(ctx context.Context, where sq.Eq) (*models.Proposal, error) {
	var p models.Proposal
	err := t.getOne(ctx, psql.Select(proposalColumns...).From("proposals pr").Where(where),
		"proposal", func(r rowScanner) (err error) {
			p, err = scanProposal(r)
			return err
		})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *pgTx) GetProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	return t.getProposal(ctx, sq.Eq{"pr.id": id})
}

func (t *pgTx) FindProposal(ctx context.Context, projectID, freelancerID uuid.UUID) (*models.Proposal, error) {
	return t.getProposal(ctx, sq.Eq{"pr.project_id": projectID, "pr.freelancer_id": freelancerID})
}

func (t *pgTx) ListProposals(ctx context.Context, f models.ProposalFilter) ([]models.Proposal, error) {
	q := psql.Select(proposalColumns...).From("proposals pr").OrderBy("pr.submitted_at DESC")
	if f.ProjectID != uuid.Nil {
		q = q.Where(sq.Eq{"pr.project_id": f.ProjectID})
	}
	if f.FreelancerID != uuid.Nil {
		q = q.Where(sq.Eq{"pr.freelancer_id": f.FreelancerID})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"pr.status": f.Status})
	}
	if f.StartupID != uuid.Nil {
		q = q.Join("projects p ON p.id = pr.project_id").Where(sq.Eq{"p.startup_id": f.StartupID})
	}
	return listRows(ctx, t, q, "proposals", scanProposal)
}

func (t *pgTx) UpdateProposal(ctx context.Context, p *models.Proposal) error {
	err := t.updateVersioned(ctx, "proposals", p.ID, psql.Update("proposals").
		Set("proposal_text", p.Text).
		Set("expected_timeline", p.ExpectedTimeline).
		Set("expected_payment_cents", p.ExpectedPaymentCents).
		Set("attachment_url", p.AttachmentURL).
		Set("status", p.Status).
		Set("rejection_note", p.RejectionNote).
		Set("submitted_at", p.SubmittedAt).
		Set("updated_at", p.UpdatedAt).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": p.ID, "version": p.Version}))
	if err != nil {
		return err
	}
	p.Version++
	return nil
}

func (t *pgTx) GetAssignment(ctx context.Context, projectID uuid.UUID) (*models.Assignment, error) {
	var a models.Assignment
	err := t.getOne(ctx, psql.Select("id", "project_id", "freelancer_id", "employee_id", "role", "assigned_at", "is_active").
		From("project_assignments").Where(sq.Eq{"project_id": projectID}), "assignment", func(r rowScanner) error {
		return r.Scan(&a.ID, &a.ProjectID, &a.FreelancerID, &a.EmployeeID, &a.Role, &a.AssignedAt, &a.IsActive)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SaveAssignment upserts on project_id; a project has at most one assignment row.
func (t *pgTx) SaveAssignment(ctx context.Context, a *models.Assignment) error {
	_, err := t.exec(ctx, psql.Insert("project_assignments").
		Columns("id", "project_id", "freelancer_id", "employee_id", "role", "assigned_at", "is_active").
		Values(a.ID, a.ProjectID, a.FreelancerID, a.EmployeeID, a.Role, a.AssignedAt, a.IsActive).
		Suffix(`ON CONFLICT (project_id) DO UPDATE SET
			freelancer_id = EXCLUDED.freelancer_id,
			employee_id = EXCLUDED.employee_id,
			role = EXCLUDED.role,
			assigned_at = EXCLUDED.assigned_at,
			is_active = EXCLUDED.is_active`))
	if err != nil {
		return fmt.Errorf("failed to save assignment: %w", err)
	}
	return nil
}

var employeeColumns = []string{"id", "startup_id", "name", "role", "email", "profile_picture_url", "is_active", "created_at"}

func scanEmployee(r rowScanner) (models.Employee, error) {
	var e models.Employee
	err := r.Scan(&e.ID, &e.StartupID, &e.Name, &e.Role, &e.Email, &e.ProfilePictureURL, &e.IsActive, &e.CreatedAt)
	return e, err
}

func (t *pgTx) CreateEmployee(ctx context.Context, e *models.Employee) error {
	_, err := t.exec(ctx, psql.Insert("employees").Columns(employeeColumns...).
		Values(e.ID, e.StartupID, e.Name, e.Role, e.Email, e.ProfilePictureURL, e.IsActive, e.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

func (t *pgTx) GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var e models.Employee
	err := t.getOne(ctx, psql.Select(employeeColumns...).From("employees").Where(sq.Eq{"id": id}),
		"employee", func(r rowScanner) (err error) {
			e, err = scanEmployee(r)
			return err
		})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (t *pgTx) ListEmployees(ctx context.Context, startupID uuid.UUID) ([]models.Employee, error) {
	return listRows(ctx, t, psql.Select(employeeColumns...).From("employees").
		Where(sq.Eq{"startup_id": startupID}).OrderBy("created_at ASC"), "employees", scanEmployee)
}

var milestoneColumns = []string{
	"id", "project_id", "freelancer_id", "title", "description", "due_date", "progress", "status",
	"remarks", "created_at", "updated_at",
}

func scanMilestone(r rowScanner) (models.Milestone, error) {
	var m models.Milestone
	err := r.Scan(&m.ID, &m.ProjectID, &m.FreelancerID, &m.Title, &m.Description, &m.DueDate, &m.Progress,
		&m.Status, &m.Remarks, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (t *pgTx) CreateMilestone(ctx context.Context, m *models.Milestone) error {
	_, err := t.exec(ctx, psql.Insert("milestones").Columns(milestoneColumns...).
		Values(m.ID, m.ProjectID, m.FreelancerID, m.Title, m.Description, m.DueDate, m.Progress, m.Status,
			m.Remarks, m.CreatedAt, m.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to create milestone: %w", err)
	}
	return nil
}

func (t *pgTx) GetMilestone(ctx context.Context, id uuid.UUID) (*models.Milestone, error) {
	var m models.Milestone
	err := t.getOne(ctx, psql.Select(milestoneColumns...).From("milestones").Where(sq.Eq{"id": id}),
		"milestone", func(r rowScanner) (err error) {
			m, err = scanMilestone(r)
			return err
		})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (t *pgTx) ListMilestones(ctx context.Context, projectID, freelancerID uuid.UUID) ([]models.Milestone, error) {
	q := psql.Select(milestoneColumns...).From("milestones").Where(sq.Eq{"project_id": projectID}).OrderBy("created_at ASC")
	if freelancerID != uuid.Nil {
		q = q.Where(sq.Eq{"freelancer_id": freelancerID})
	}
	return listRows(ctx, t, q, "milestones", scanMilestone)
}

func (t *pgTx) UpdateMilestone(ctx context.Context, m *models.Milestone) error {
	res, err := t.exec(ctx, psql.Update("milestones").
		Set("title", m.Title).
		Set("description", m.Description).
		Set("due_date", m.DueDate).
		Set("progress", m.Progress).
		Set("status", m.Status).
		Set("remarks", m.Remarks).
		Set("updated_at", m.UpdatedAt).
		Where(sq.Eq{"id": m.ID}))
	return mustAffect(res, err, "milestone")
}

func (t *pgTx) DeleteMilestone(ctx context.Context, id uuid.UUID) error {
	res, err := t.exec(ctx, psql.Delete("milestones").Where(sq.Eq{"id": id}))
	return mustAffect(res, err, "milestone")
}
