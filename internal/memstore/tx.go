package memstore

import (
	"context"

	"github.com/google/uuid"
	"incubation-backend/internal/models"
)

func (t *tx) GetActor(_ context.Context, id uuid.UUID) (*models.Actor, error) {
	a, ok := t.actors[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (t *tx) CreateActor(_ context.Context, actor *models.Actor) error {
	t.actors[actor.ID] = *actor
	t.track(actor.ID)
	return nil
}

func (t *tx) ListActorsByRole(_ context.Context, role models.Role) ([]models.Actor, error) {
	var out []models.Actor
	for _, a := range t.actors {
		if a.Role == role {
			out = append(out, a)
		}
	}
	return oldestFirst(t, out, func(a models.Actor) uuid.UUID { return a.ID }), nil
}

func (t *tx) CreateProject(_ context.Context, project *models.Project) error {
	t.projects[project.ID] = *project
	t.track(project.ID)
	return nil
}

func (t *tx) GetProject(_ context.Context, id uuid.UUID) (*models.Project, error) {
	p, ok := t.projects[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (t *tx) ListProjects(_ context.Context, f models.ProjectFilter) ([]models.Project, error) {
	var out []models.Project
	for _, p := range t.projects {
		if f.StartupID != uuid.Nil && p.StartupID != f.StartupID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.OpenToFreelancers && !p.OpenToFreelancers {
			continue
		}
		if f.ExcludeProposedBy != uuid.Nil && t.hasProposal(p.ID, f.ExcludeProposedBy) {
			continue
		}
		if f.AssignedTo != uuid.Nil {
			a, ok := t.assignments[p.ID]
			if !ok || !a.ActiveFor(f.AssignedTo) {
				continue
			}
		}
		out = append(out, p)
	}
	return newestFirst(t, out, func(p models.Project) uuid.UUID { return p.ID }), nil
}

func (t *tx) hasProposal(projectID, freelancerID uuid.UUID) bool {
	for _, p := range t.proposals {
		if p.ProjectID == projectID && p.FreelancerID == freelancerID {
			return true
		}
	}
	return false
}

func (t *tx) UpdateProject(_ context.Context, project *models.Project) error {
	cur, ok := t.projects[project.ID]
	if !ok {
		return models.ErrNotFound
	}
	if cur.Version != project.Version {
		return models.ErrStaleVersion
	}
	project.Version++
	t.projects[project.ID] = *project
	return nil
}

func (t *tx) DeleteProject(_ context.Context, id uuid.UUID) error {
	if _, ok := t.projects[id]; !ok {
		return models.ErrNotFound
	}
	delete(t.projects, id)
	delete(t.assignments, id)
	for pid, p := range t.proposals {
		if p.ProjectID == id {
			delete(t.proposals, pid)
		}
	}
	for mid, m := range t.milestones {
		if m.ProjectID == id {
			delete(t.milestones, mid)
		}
	}
	return nil
}

func (t *tx) CreateProposal(_ context.Context, proposal *models.Proposal) error {
	t.proposals[proposal.ID] = *proposal
	t.track(proposal.ID)
	return nil
}

func (t *tx) GetProposal(_ context.Context, id uuid.UUID) (*models.Proposal, error) {
	p, ok := t.proposals[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (t *tx) FindProposal(_ context.Context, projectID, freelancerID uuid.UUID) (*models.Proposal, error) {
	for _, p := range t.proposals {
		if p.ProjectID == projectID && p.FreelancerID == freelancerID {
			return &p, nil
		}
	}
	return nil, models.ErrNotFound
}

func (t *tx) ListProposals(_ context.Context, f models.ProposalFilter) ([]models.Proposal, error) {
	var out []models.Proposal
	for _, p := range t.proposals {
		if f.ProjectID != uuid.Nil && p.ProjectID != f.ProjectID {
			continue
		}
		if f.FreelancerID != uuid.Nil && p.FreelancerID != f.FreelancerID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.StartupID != uuid.Nil && t.projects[p.ProjectID].StartupID != f.StartupID {
			continue
		}
		out = append(out, p)
	}
	return newestFirst(t, out, func(p models.Proposal) uuid.UUID { return p.ID }), nil
}

func (t *tx) UpdateProposal(_ context.Context, proposal *models.Proposal) error {
	cur, ok := t.proposals[proposal.ID]
	if !ok {
		return models.ErrNotFound
	}
	if cur.Version != proposal.Version {
		return models.ErrStaleVersion
	}
	proposal.Version++
	t.proposals[proposal.ID] = *proposal
	return nil
}

func (t *tx) GetAssignment(_ context.Context, projectID uuid.UUID) (*models.Assignment, error) {
	a, ok := t.assignments[projectID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (t *tx) SaveAssignment(_ context.Context, assignment *models.Assignment) error {
	t.assignments[assignment.ProjectID] = *assignment
	t.track(assignment.ID)
	return nil
}

func (t *tx) CreateEmployee(_ context.Context, employee *models.Employee) error {
	t.employees[employee.ID] = *employee
	t.track(employee.ID)
	return nil
}

func (t *tx) GetEmployee(_ context.Context, id uuid.UUID) (*models.Employee, error) {
	e, ok := t.employees[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &e, nil
}

func (t *tx) ListEmployees(_ context.Context, startupID uuid.UUID) ([]models.Employee, error) {
	var out []models.Employee
	for _, e := range t.employees {
		if e.StartupID == startupID {
			out = append(out, e)
		}
	}
	return oldestFirst(t, out, func(e models.Employee) uuid.UUID { return e.ID }), nil
}

func (t *tx) CreateMilestone(_ context.Context, milestone *models.Milestone) error {
	t.milestones[milestone.ID] = *milestone
	t.track(milestone.ID)
	return nil
}

func (t *tx) GetMilestone(_ context.Context, id uuid.UUID) (*models.Milestone, error) {
	m, ok := t.milestones[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &m, nil
}

func (t *tx) ListMilestones(_ context.Context, projectID, freelancerID uuid.UUID) ([]models.Milestone, error) {
	var out []models.Milestone
	for _, m := range t.milestones {
		if m.ProjectID != projectID {
			continue
		}
		if freelancerID != uuid.Nil && m.FreelancerID != freelancerID {
			continue
		}
		out = append(out, m)
	}
	return oldestFirst(t, out, func(m models.Milestone) uuid.UUID { return m.ID }), nil
}

func (t *tx) UpdateMilestone(_ context.Context, milestone *models.Milestone) error {
	if _, ok := t.milestones[milestone.ID]; !ok {
		return models.ErrNotFound
	}
	t.milestones[milestone.ID] = *milestone
	return nil
}

func (t *tx) DeleteMilestone(_ context.Context, id uuid.UUID) error {
	if _, ok := t.milestones[id]; !ok {
		return models.ErrNotFound
	}
	delete(t.milestones, id)
	return nil
}

func (t *tx) CreateFunding(_ context.Context, round *models.FundingRound) error {
	t.funding[round.ID] = copyFunding(*round)
	t.track(round.ID)
	return nil
}

func (t *tx) GetFunding(_ context.Context, id uuid.UUID) (*models.FundingRound, error) {
	f, ok := t.funding[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	f = copyFunding(f)
	return &f, nil
}

func (t *tx) ListFunding(_ context.Context, filter models.FundingFilter) ([]models.FundingRound, error) {
	var out []models.FundingRound
	for _, f := range t.funding {
		if filter.StartupID != uuid.Nil && f.StartupID != filter.StartupID {
			continue
		}
		if filter.RecipientID != uuid.Nil && !f.HasRecipient(filter.RecipientID) {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		out = append(out, copyFunding(f))
	}
	return newestFirst(t, out, func(f models.FundingRound) uuid.UUID { return f.ID }), nil
}

// UpdateFunding leaves the stored history alone; it only grows through
// AppendFundingHistory.
func (t *tx) UpdateFunding(_ context.Context, round *models.FundingRound) error {
	cur, ok := t.funding[round.ID]
	if !ok {
		return models.ErrNotFound
	}
	if cur.Version != round.Version {
		return models.ErrStaleVersion
	}
	round.Version++
	next := copyFunding(*round)
	next.History = cur.History
	t.funding[round.ID] = next
	return nil
}

func (t *tx) AppendFundingHistory(_ context.Context, roundID uuid.UUID, change models.StatusChange) error {
	cur, ok := t.funding[roundID]
	if !ok {
		return models.ErrNotFound
	}
	cur.History = append(cur.History, change)
	t.funding[roundID] = cur
	return nil
}

func (t *tx) DeleteFunding(_ context.Context, id uuid.UUID) error {
	if _, ok := t.funding[id]; !ok {
		return models.ErrNotFound
	}
	delete(t.funding, id)
	return nil
}

func (t *tx) CreateSession(_ context.Context, session *models.MentorshipSession) error {
	t.sessions[session.ID] = *session
	t.track(session.ID)
	return nil
}

func (t *tx) GetSession(_ context.Context, id uuid.UUID) (*models.MentorshipSession, error) {
	s, ok := t.sessions[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &s, nil
}

func (t *tx) ListSessions(_ context.Context, f models.SessionFilter) ([]models.MentorshipSession, error) {
	var out []models.MentorshipSession
	for _, s := range t.sessions {
		if f.StartupID != uuid.Nil && s.StartupID != f.StartupID {
			continue
		}
		if f.MentorID != uuid.Nil && s.MentorID != f.MentorID {
			continue
		}
		out = append(out, s)
	}
	return newestFirst(t, out, func(s models.MentorshipSession) uuid.UUID { return s.ID }), nil
}

func (t *tx) UpdateSession(_ context.Context, session *models.MentorshipSession) error {
	cur, ok := t.sessions[session.ID]
	if !ok {
		return models.ErrNotFound
	}
	if cur.Version != session.Version {
		return models.ErrStaleVersion
	}
	session.Version++
	t.sessions[session.ID] = *session
	return nil
}

func (t *tx) DeleteSession(_ context.Context, id uuid.UUID) error {
	if _, ok := t.sessions[id]; !ok {
		return models.ErrNotFound
	}
	delete(t.sessions, id)
	return nil
}

func (t *tx) CreateNotifications(_ context.Context, notifications []models.Notification) error {
	if t.notificationErr != nil {
		return t.notificationErr
	}
	for _, n := range notifications {
		t.notifications[n.ID] = n
		t.track(n.ID)
	}
	return nil
}

func (t *tx) ListNotifications(_ context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range t.notifications {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	return newestFirst(t, out, func(n models.Notification) uuid.UUID { return n.ID }), nil
}

func (t *tx) MarkNotificationRead(_ context.Context, id, userID uuid.UUID) error {
	n, ok := t.notifications[id]
	if !ok || n.UserID != userID {
		return models.ErrNotFound
	}
	n.Read = true
	t.notifications[id] = n
	return nil
}

func (t *tx) CountByStatus(_ context.Context, subject models.Subject, startupID uuid.UUID) (map[string]int, error) {
	counts := map[string]int{}
	switch subject {
	case models.SubjectProjects:
		for _, p := range t.projects {
			if p.StartupID == startupID {
				counts[string(p.Status)]++
			}
		}
	case models.SubjectProposals:
		for _, p := range t.proposals {
			if t.projects[p.ProjectID].StartupID == startupID {
				counts[string(p.Status)]++
			}
		}
	case models.SubjectFunding:
		for _, f := range t.funding {
			if f.StartupID == startupID {
				counts[string(f.Status)]++
			}
		}
	case models.SubjectMentorship:
		for _, s := range t.sessions {
			if s.StartupID == startupID {
				counts[string(s.State)]++
			}
		}
	}
	return counts, nil
}

func (t *tx) CountEmployees(_ context.Context, startupID uuid.UUID) (int, error) {
	n := 0
	for _, e := range t.employees {
		if e.StartupID == startupID && e.IsActive {
			n++
		}
	}
	return n, nil
}

func (t *tx) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, note := range t.notifications {
		if note.UserID == userID && !note.Read {
			n++
		}
	}
	return n, nil
}
