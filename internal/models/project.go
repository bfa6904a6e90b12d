package models

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectPlanned   ProjectStatus = "PLANNED"
	ProjectOngoing   ProjectStatus = "ONGOING"
	ProjectAssigned  ProjectStatus = "ASSIGNED"
	ProjectCompleted ProjectStatus = "COMPLETED"
)

var ProjectStatuses = []ProjectStatus{ProjectPlanned, ProjectOngoing, ProjectAssigned, ProjectCompleted}

type Project struct {
	ID                uuid.UUID     `json:"id"`
	StartupID         uuid.UUID     `json:"startup_id"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	RequirementsURL   *string       `json:"requirements_url,omitempty"`
	StartDate         time.Time     `json:"start_date"`
	EndDate           *time.Time    `json:"end_date,omitempty"`
	Status            ProjectStatus `json:"status"`
	OpenToFreelancers bool          `json:"open_to_freelancers"`
	Version           int           `json:"version"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// ProjectFilter narrows ListProjects. Zero values are ignored.
type ProjectFilter struct {
	StartupID         uuid.UUID
	Status            ProjectStatus
	OpenToFreelancers bool
	// ExcludeProposedBy drops projects the freelancer already proposed to.
	ExcludeProposedBy uuid.UUID
	// AssignedTo keeps projects with an active assignment to the freelancer.
	AssignedTo uuid.UUID
}

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "PENDING"
	ProposalApproved ProposalStatus = "APPROVED"
	ProposalRejected ProposalStatus = "REJECTED"
	// ProposalSuperseded is terminal: another proposal on the project was approved.
	ProposalSuperseded ProposalStatus = "SUPERSEDED"
)

var ProposalStatuses = []ProposalStatus{ProposalPending, ProposalApproved, ProposalRejected, ProposalSuperseded}

type Proposal struct {
	ID                   uuid.UUID      `json:"id"`
	ProjectID            uuid.UUID      `json:"project_id"`
	FreelancerID         uuid.UUID      `json:"freelancer_id"`
	Text                 string         `json:"proposal_text"`
	ExpectedTimeline     string         `json:"expected_timeline,omitempty"`
	ExpectedPaymentCents int64          `json:"expected_payment_cents,omitempty"`
	AttachmentURL        *string        `json:"attachment_url,omitempty"`
	Status               ProposalStatus `json:"status"`
	RejectionNote        *string        `json:"rejection_note,omitempty"`
	Version              int            `json:"version"`
	SubmittedAt          time.Time      `json:"submitted_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

type ProposalFilter struct {
	ProjectID    uuid.UUID
	StartupID    uuid.UUID
	FreelancerID uuid.UUID
	Status       ProposalStatus
}

// Assignment binds a project to exactly one freelancer or internal employee.
type Assignment struct {
	ID           uuid.UUID     `json:"id"`
	ProjectID    uuid.UUID     `json:"project_id"`
	FreelancerID uuid.NullUUID `json:"freelancer_id"`
	EmployeeID   uuid.NullUUID `json:"employee_id"`
	Role         string        `json:"role,omitempty"`
	AssignedAt   time.Time     `json:"assigned_at"`
	IsActive     bool          `json:"is_active"`
}

func (a *Assignment) ActiveFor(freelancerID uuid.UUID) bool {
	return a != nil && a.IsActive && a.FreelancerID.Valid && a.FreelancerID.UUID == freelancerID
}

type Employee struct {
	ID                uuid.UUID `json:"id"`
	StartupID         uuid.UUID `json:"startup_id"`
	Name              string    `json:"name"`
	Role              string    `json:"role,omitempty"`
	Email             string    `json:"email,omitempty"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
}
