package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the single source of truth for a mentorship session. The
// legacy approval_status and status axes are projections of it.
type SessionState string

const (
	SessionRequested SessionState = "REQUESTED"
	SessionScheduled SessionState = "SCHEDULED"
	SessionRejected  SessionState = "REJECTED"
	SessionCompleted SessionState = "COMPLETED"
	SessionCancelled SessionState = "CANCELLED"
)

var SessionStates = []SessionState{SessionRequested, SessionScheduled, SessionRejected, SessionCompleted, SessionCancelled}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// SessionStatus is the scheduling axis exposed to clients.
type SessionStatus string

const (
	StatusRequested SessionStatus = "REQUESTED"
	StatusScheduled SessionStatus = "SCHEDULED"
	StatusCompleted SessionStatus = "COMPLETED"
	StatusCancelled SessionStatus = "CANCELLED"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case StatusRequested, StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type MentorshipSession struct {
	ID          uuid.UUID    `json:"id"`
	StartupID   uuid.UUID    `json:"startup_id"`
	MentorID    uuid.UUID    `json:"mentor_id"`
	Topic       string       `json:"topic"`
	ScheduledAt time.Time    `json:"session_date"`
	Notes       string       `json:"notes,omitempty"`
	State       SessionState `json:"state"`
	Version     int          `json:"version"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ApprovalStatus is empty for sessions the startup cancelled.
func (s *MentorshipSession) ApprovalStatus() ApprovalStatus {
	switch s.State {
	case SessionRequested:
		return ApprovalPending
	case SessionScheduled, SessionCompleted:
		return ApprovalApproved
	case SessionRejected:
		return ApprovalRejected
	}
	return ""
}

func (s *MentorshipSession) Status() SessionStatus {
	switch s.State {
	case SessionRequested:
		return StatusRequested
	case SessionScheduled:
		return StatusScheduled
	case SessionCompleted:
		return StatusCompleted
	}
	return StatusCancelled
}

// Closed reports whether the session can no longer be edited by the startup.
func (s *MentorshipSession) Closed() bool {
	return s.State == SessionCancelled || s.State == SessionRejected || s.State == SessionCompleted
}

type SessionFilter struct {
	StartupID uuid.UUID
	MentorID  uuid.UUID
}
