package models

import (
	"time"

	"github.com/google/uuid"
)

type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "PENDING"
	MilestoneInProgress MilestoneStatus = "IN_PROGRESS"
	MilestoneCompleted  MilestoneStatus = "COMPLETED"
)

type Milestone struct {
	ID           uuid.UUID       `json:"id"`
	ProjectID    uuid.UUID       `json:"project_id"`
	FreelancerID uuid.UUID       `json:"freelancer_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
	Progress     int             `json:"progress"`
	Status       MilestoneStatus `json:"status"`
	Remarks      string          `json:"remarks,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NormalizeProgress clamps progress to [0, 100] and derives the status from it.
func NormalizeProgress(progress int) (int, MilestoneStatus) {
	switch {
	case progress >= 100:
		return 100, MilestoneCompleted
	case progress > 0:
		return progress, MilestoneInProgress
	default:
		return 0, MilestonePending
	}
}

// SetProgress applies NormalizeProgress to the milestone in place.
func (m *Milestone) SetProgress(progress int) {
	m.Progress, m.Status = NormalizeProgress(progress)
}
