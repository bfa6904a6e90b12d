package models

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Role        Role   `json:"role" form:"role" binding:"required" example:"STARTUP"`
	Email       string `json:"email" form:"email"`
	DisplayName string `json:"display_name" form:"display_name" binding:"required"`
	// Headline is the industry, skills, expertise area or investment focus.
	Headline string `json:"headline" form:"headline"`
}

type ProjectRequest struct {
	Name              string        `json:"name" form:"name" binding:"required"`
	Description       string        `json:"description" form:"description"`
	StartDate         time.Time     `json:"start_date" form:"start_date" time_format:"2006-01-02" binding:"required"`
	EndDate           *time.Time    `json:"end_date,omitempty" form:"end_date" time_format:"2006-01-02"`
	Status            ProjectStatus `json:"status,omitempty" form:"status" example:"PLANNED"`
	OpenToFreelancers bool          `json:"open_to_freelancers" form:"open_to_freelancers"`
}

type ProjectUpdateRequest struct {
	Name              *string        `json:"name,omitempty" form:"name"`
	Description       *string        `json:"description,omitempty" form:"description"`
	StartDate         *time.Time     `json:"start_date,omitempty" form:"start_date" time_format:"2006-01-02"`
	EndDate           *time.Time     `json:"end_date,omitempty" form:"end_date" time_format:"2006-01-02"`
	Status            *ProjectStatus `json:"status,omitempty" form:"status"`
	OpenToFreelancers *bool          `json:"open_to_freelancers,omitempty" form:"open_to_freelancers"`
}

type ProposalRequest struct {
	Text                 string `json:"proposal_text" form:"proposal_text" binding:"required"`
	ExpectedTimeline     string `json:"expected_timeline" form:"expected_timeline"`
	ExpectedPaymentCents int64  `json:"expected_payment_cents" form:"expected_payment_cents"`
}

type RejectProposalRequest struct {
	Note string `json:"note"`
}

type AssignEmployeeRequest struct {
	EmployeeID uuid.UUID `json:"employee_id" binding:"required"`
	Role       string    `json:"role"`
}

type EmployeeRequest struct {
	Name  string `json:"name" form:"name" binding:"required"`
	Role  string `json:"role" form:"role"`
	Email string `json:"email" form:"email"`
}

type MilestoneRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Progress    int        `json:"progress"`
	Remarks     string     `json:"remarks"`
}

type MilestoneUpdateRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Progress    *int       `json:"progress,omitempty"`
	Remarks     *string    `json:"remarks,omitempty"`
}

type FundingRequest struct {
	RoundName    string     `json:"round_name" binding:"required" example:"Seed"`
	AmountCents  int64      `json:"amount_cents" binding:"required" example:"2500000"`
	InvestorID   *uuid.UUID `json:"investor_id,omitempty"`
	AllInvestors bool       `json:"all_investors"`
}

// FundingUpdateRequest retargets the round when either target field is set.
type FundingUpdateRequest struct {
	RoundName    *string    `json:"round_name,omitempty"`
	AmountCents  *int64     `json:"amount_cents,omitempty"`
	InvestorID   *uuid.UUID `json:"investor_id,omitempty"`
	AllInvestors *bool      `json:"all_investors,omitempty"`
}

type FundingDecisionRequest struct {
	Status FundingStatus `json:"status" binding:"required" example:"APPROVED"`
}

type SessionRequest struct {
	MentorID    uuid.UUID `json:"mentor_id" binding:"required"`
	Topic       string    `json:"topic" binding:"required"`
	ScheduledAt time.Time `json:"session_date" binding:"required"`
	Notes       string    `json:"notes"`
}

type SessionUpdateRequest struct {
	Topic       *string    `json:"topic,omitempty"`
	ScheduledAt *time.Time `json:"session_date,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

type SessionStatusRequest struct {
	Status SessionStatus `json:"status" binding:"required" example:"COMPLETED"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
