package models

import (
	"time"

	"github.com/google/uuid"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// MeResponse is the caller's profile plus the route their client lands on.
type MeResponse struct {
	Actor    *Actor `json:"actor"`
	HomePath string `json:"home_path"`
}

type ProjectListResponse struct {
	Projects []Project `json:"projects"`
}

type ProposalListResponse struct {
	Proposals []Proposal `json:"proposals"`
}

type MilestoneListResponse struct {
	Milestones []Milestone `json:"milestones"`
}

type EmployeeListResponse struct {
	Employees []Employee `json:"employees"`
}

type ActorListResponse struct {
	Actors []Actor `json:"actors"`
}

// FundingResponse adds the rendered audit log to a round.
type FundingResponse struct {
	FundingRound
	HistoryLog  string `json:"history_log"`
	AmountLabel string `json:"amount_label"`
}

func NewFundingResponse(f *FundingRound) FundingResponse {
	return FundingResponse{
		FundingRound: *f,
		HistoryLog:   f.HistoryLog(),
		AmountLabel:  FormatAmount(f.AmountCents),
	}
}

type FundingListResponse struct {
	Funding []FundingResponse `json:"funding"`
}

// SessionResponse exposes both legacy axes next to the canonical state.
type SessionResponse struct {
	ID             uuid.UUID      `json:"id"`
	StartupID      uuid.UUID      `json:"startup_id"`
	MentorID       uuid.UUID      `json:"mentor_id"`
	Topic          string         `json:"topic"`
	ScheduledAt    time.Time      `json:"session_date"`
	Notes          string         `json:"notes,omitempty"`
	State          SessionState   `json:"state"`
	ApprovalStatus ApprovalStatus `json:"approval_status,omitempty"`
	Status         SessionStatus  `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func NewSessionResponse(s *MentorshipSession) SessionResponse {
	return SessionResponse{
		ID:             s.ID,
		StartupID:      s.StartupID,
		MentorID:       s.MentorID,
		Topic:          s.Topic,
		ScheduledAt:    s.ScheduledAt,
		Notes:          s.Notes,
		State:          s.State,
		ApprovalStatus: s.ApprovalStatus(),
		Status:         s.Status(),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	Unread        int            `json:"unread"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
