package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"incubation-backend/internal/models"
)

// Project list scopes for freelancers.
const (
	ScopeAvailable = "available"
	ScopeAssigned  = "assigned"
)

func validateProjectStatus(status models.ProjectStatus) error {
	switch status {
	case models.ProjectPlanned, models.ProjectOngoing, models.ProjectCompleted:
		return nil
	case models.ProjectAssigned:
		return validationf("ASSIGNED is set by approving a proposal, not by editing")
	}
	return validationf("unknown project status %q", status)
}

func (s *Service) CreateProject(ctx context.Context, startupID uuid.UUID, req models.ProjectRequest, requirements *models.Upload) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationf("name is required")
	}
	if req.StartDate.IsZero() {
		return nil, validationf("start_date is required")
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return nil, validationf("end_date cannot be before start_date")
	}
	status := req.Status
	if status == "" {
		status = models.ProjectPlanned
	}
	if err := validateProjectStatus(status); err != nil {
		return nil, err
	}

	url := s.upload(ctx, requirements, "project_requirements")

	now := s.now()
	project := &models.Project{
		ID:                uuid.New(),
		StartupID:         startupID,
		Name:              name,
		Description:       strings.TrimSpace(req.Description),
		RequirementsURL:   url,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Status:            status,
		OpenToFreelancers: req.OpenToFreelancers,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err := s.inTx(ctx, func(tx Tx, ob *outbox) error {
		if _, err := s.requireRole(ctx, tx, startupID, models.RoleStartup); err != nil {
			return err
		}
		if err := tx.CreateProject(ctx, project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		ob.transition("project", "NEW", status)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// GetProject returns a project visible to the actor: the owning startup, or a
// freelancer for whom it is open, assigned or already proposed to.
func (s *Service) GetProject(ctx context.Context, actorID, projectID uuid.UUID) (*models.Project, error) {
	var out *models.Project
	err := s.inTx(ctx, func(tx Tx, _ *outbox) error {
		actor, err := s.actor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		project, err := tx.GetProject(ctx, projectID)
		if err != nil {
			return storeErr(err, "project")
		}

		switch actor.Role {
		case models.RoleStartup:
			if project.StartupID != actorID {
				return notFoundf("project not found")
			}
		case models.RoleFreelancer:
			visible, err := s.visibleToFreelancer(ctx, tx, project, actorID)
			if err != nil {
				return err
			}
			if !visible {
				return notFoundf("project not found")
			}
		default:
			return forbiddenf("only startups and freelancers can view projects")
		}
		out = project
		return nil
	})
	return out, err
}

func (s *Service) visibleToFreelancer(ctx context.Context, tx Tx, project *models.Project, freelancerID uuid.UUID) (bool, error) {
	if project.OpenToFreelancers && project.Status == models.ProjectPlanned {
		return true, nil
	}
	assignment, err := tx.GetAssignment(ctx, project.ID)
	switch {
	case err == nil:
		if assignment.ActiveFor(freelancerID) {
			return true, nil
		}
	case !errors.Is(err, models.ErrNotFound):
		return false, fmt.Errorf("failed to load assignment: %w", err)
	}
	_, err = tx.FindProposal(ctx, project.ID, freelancerID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, models.ErrNotFound):
		return false, nil
	}
	return false, fmt.Errorf("failed to look up proposal: %w", err)
}

// ListProjects returns the startup's own projects, or for a freelancer either
// the projects still open to them (scope "available") or those actively
// assigned to them (scope "assigned").
func (s *Service) ListProjects(ctx context.Context, actorID uuid.UUID, scope string) ([]models.Project, error) {
	var out []models.Project
	err := s.inTx(ctx, func(tx Tx, _ *outbox) error {
		actor, err := s.actor(ctx, tx, actorID)
		if err != nil {
			return err
		}

		var filter models.ProjectFilter
		switch actor.Role {
		case models.RoleStartup:
			filter.StartupID = actorID
		case models.RoleFreelancer:
			switch scope {
			case "", ScopeAvailable:
				filter.OpenToFreelancers = true
				filter.Status = models.ProjectPlanned
				filter.ExcludeProposedBy = actorID
			case ScopeAssigned:
				filter.AssignedTo = actorID
			default:
				return validationf("unknown scope %q", scope)
			}
		default:
			return forbiddenf("only startups and freelancers can list projects")
		}

		out, err = tx.ListProjects(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		return nil
	})
	return out, err
}

func (s *Service) UpdateProject(ctx context.Context, startupID, projectID uuid.UUID, req models.ProjectUpdateRequest, requirements *models.Upload) (*models.Project, error) {
	if req.Status != nil {
		if err := validateProjectStatus(*req.Status); err != nil {
			return nil, err
		}
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, validationf("name cannot be empty")
	}

	url := s.upload(ctx, requirements, "project_requirements")

	var out *models.Project
	err := s.inTx(ctx, func(tx Tx, ob *outbox) error {
		project, err := s.ownedProject(ctx, tx, startupID, projectID)
		if err != nil {
			return err
		}

		from := project.Status
		if req.Name != nil {
			project.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			project.Description = strings.TrimSpace(*req.Description)
		}
		if req.StartDate != nil {
			project.StartDate = *req.StartDate
		}
		if req.EndDate != nil {
			project.EndDate = req.EndDate
		}
		if req.OpenToFreelancers != nil {
			project.OpenToFreelancers = *req.OpenToFreelancers
		}
		if req.Status != nil && *req.Status != from {
			if from == models.ProjectAssigned || *req.Status == models.ProjectPlanned {
				bound, err := s.hasBoundFreelancer(ctx, tx, project.ID)
				if err != nil {
					return err
				}
				if bound {
					return conflictf("a freelancer was already approved for this project")
				}
			}
			project.Status = *req.Status
		}
		if url != nil {
			project.RequirementsURL = url
		}
		if project.EndDate != nil && project.EndDate.Before(project.StartDate) {
			return validationf("end_date cannot be before start_date")
		}

		project.UpdatedAt = s.now()
		if err := tx.UpdateProject(ctx, project); err != nil {
			return storeErr(err, "project")
		}
		if from != project.Status {
			ob.transition("project", from, project.Status)
		}
		out = project
		return nil
	})
	return out, err
}

// hasBoundFreelancer reports whether a proposal on the project was approved
// or a freelancer still holds its active assignment.
func (s *Service) hasBoundFreelancer(ctx context.Context, tx Tx, projectID uuid.UUID) (bool, error) {
	approved, err := tx.ListProposals(ctx, models.ProposalFilter{ProjectID: projectID, Status: models.ProposalApproved})
	if err != nil {
		return false, fmt.Errorf("failed to list approved proposals: %w", err)
	}
	if len(approved) > 0 {
		return true, nil
	}
	assignment, err := tx.GetAssignment(ctx, projectID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to load assignment: %w", err)
	}
	return assignment.IsActive && assignment.FreelancerID.Valid, nil
}

func (s *Service) DeleteProject(ctx context.Context, startupID, projectID uuid.UUID) error {
	return s.inTx(ctx, func(tx Tx, _ *outbox) error {
		if _, err := s.ownedProject(ctx, tx, startupID, projectID); err != nil {
			return err
		}
		return storeErr(tx.DeleteProject(ctx, projectID), "project")
	})
}

// AssignEmployee staffs a project with one of the startup's own employees.
// An active freelancer assignment has to be deactivated first.
func (s *Service) AssignEmployee(ctx context.Context, startupID, projectID uuid.UUID, req models.AssignEmployeeRequest) (*models.Assignment, error) {
	var out *models.Assignment
	err := s.inTx(ctx, func(tx Tx, _ *outbox) error {
		project, err := s.ownedProject(ctx, tx, startupID, projectID)
		if err != nil {
			return err
		}
		employee, err := tx.GetEmployee(ctx, req.EmployeeID)
		if err != nil {
			return storeErr(err, "employee")
		}
		if employee.StartupID != startupID {
			return notFoundf("employee not found")
		}
		if !employee.IsActive {
			return conflictf("employee %s is inactive", employee.Name)
		}

		assignment, err := tx.GetAssignment(ctx, project.ID)
		switch {
		case errors.Is(err, models.ErrNotFound):
			assignment = &models.Assignment{ID: uuid.New(), ProjectID: project.ID}
		case err != nil:
			return fmt.Errorf("failed to load assignment: %w", err)
		case assignment.IsActive && assignment.FreelancerID.Valid:
			return conflictf("project is assigned to a freelancer")
		}

		role := strings.TrimSpace(req.Role)
		if role == "" {
			role = employee.Role
		}
		assignment.FreelancerID = uuid.NullUUID{}
		assignment.EmployeeID = uuid.NullUUID{UUID: employee.ID, Valid: true}
		assignment.Role = role
		assignment.AssignedAt = s.now()
		assignment.IsActive = true
		if err := tx.SaveAssignment(ctx, assignment); err != nil {
			return fmt.Errorf("failed to save assignment: %w", err)
		}
		out = assignment
		return nil
	})
	return out, err
}

// DeactivateAssignment soft-deactivates the project's assignment. The row is
// kept for history.
func (s *Service) DeactivateAssignment(ctx context.Context, startupID, projectID uuid.UUID) (*models.Assignment, error) {
	var out *models.Assignment
	err := s.inTx(ctx, func(tx Tx, _ *outbox) error {
		if _, err := s.ownedProject(ctx, tx, startupID, projectID); err != nil {
			return err
		}
		assignment, err := tx.GetAssignment(ctx, projectID)
		if err != nil {
			return storeErr(err, "assignment")
		}
		if assignment.IsActive {
			assignment.IsActive = false
			if err := tx.SaveAssignment(ctx, assignment); err != nil {
				return fmt.Errorf("failed to save assignment: %w", err)
			}
		}
		out = assignment
		return nil
	})
	return out, err
}

// CompleteProject lets the assigned freelancer close out the project.
func (s *Service) CompleteProject(ctx context.Context, freelancerID, projectID uuid.UUID) (*models.Project, error) {
	var out *models.Project
	err := s.inTx(ctx, func(tx Tx, ob *outbox) error {
		freelancer, err := s.requireRole(ctx, tx, freelancerID, models.RoleFreelancer)
		if err != nil {
			return err
		}
		project, err := s.assignedProject(ctx, tx, freelancerID, projectID)
		if err != nil {
			return err
		}
		if project.Status == models.ProjectCompleted {
			out = project
			return nil
		}

		from := project.Status
		project.Status = models.ProjectCompleted
		project.UpdatedAt = s.now()
		if err := tx.UpdateProject(ctx, project); err != nil {
			return storeErr(err, "project")
		}
		ob.transition("project", from, models.ProjectCompleted)

		out = project
		return s.notify(ctx, tx, ob, note(project.StartupID, "Project Completed",
			fmt.Sprintf("%s marked project '%s' as completed.", freelancer.DisplayName, project.Name)))
	})
	return out, err
}

func (s *Service) CreateEmployee(ctx context.Context, startupID uuid.UUID, req models.EmployeeRequest, picture *models.Upload) (*models.Employee, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationf("name is required")
	}

	url := s.upload(ctx, picture, "employee_profiles")

	employee := &models.Employee{
		ID:                uuid.New(),
		StartupID:         startupID,
		Name:              name,
		Role:              strings.TrimSpace(req.Role),
		Email:             strings.TrimSpace(req.Email),
		ProfilePictureURL: url,
		IsActive:          true,
		CreatedAt:         s.now(),
	}
	err := s.inTx(ctx, func(tx Tx, _ *outbox) error {
		if _, err := s.requireRole(ctx, tx, startupID, models.RoleStartup); err != nil {
			return err
		}
		if err := tx.CreateEmployee(ctx, employee); err != nil {
			return fmt.Errorf("failed to create employee: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *Service) ListEmployees(ctx context.Context, startupID uuid.UUID) ([]models.Employee, error) {
	var out []models.Employee
	err := s.inTx(ctx, func(tx Tx, _ *outbox) error {
		if _, err := s.requireRole(ctx, tx, startupID, models.RoleStartup); err != nil {
			return err
		}
		var err error
		out, err = tx.ListEmployees(ctx, startupID)
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}
		return nil
	})
	return out, err
}

// ownedProject loads a project and checks that the startup owns it.
func (s *Service) ownedProject(ctx context.Context, tx Tx, startupID, projectID uuid.UUID) (*models.Project, error) {
	if _, err := s.requireRole(ctx, tx, startupID, models.RoleStartup); err != nil {
		return nil, err
	}
	project, err := tx.GetProject(ctx, projectID)
	if err != nil {
		return nil, storeErr(err, "project")
	}
	if project.StartupID != startupID {
		return nil, forbiddenf("project belongs to another startup")
	}
	return project, nil
}

// assignedProject loads a project the freelancer is actively assigned to.
func (s *Service) assignedProject(ctx context.Context, tx Tx, freelancerID, projectID uuid.UUID) (*models.Project, error) {
	project, err := tx.GetProject(ctx, projectID)
	if err != nil {
		return nil, storeErr(err, "project")
	}
	assignment, err := tx.GetAssignment(ctx, projectID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, notFoundf("no active assignment on this project")
		}
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	if !assignment.ActiveFor(freelancerID) {
		return nil, notFoundf("no active assignment on this project")
	}
	return project, nil
}
