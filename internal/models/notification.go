package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// UserEvent is a realtime message addressed to one user's channel.
type UserEvent struct {
	UserID  uuid.UUID
	Event   string
	Payload map[string]interface{}
}

// Subject names a workflow collection counted by the dashboard.
type Subject string

const (
	SubjectProjects   Subject = "projects"
	SubjectProposals  Subject = "proposals"
	SubjectFunding    Subject = "funding"
	SubjectMentorship Subject = "mentorship"
)

type StatusCounts struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

type Dashboard struct {
	StartupID           uuid.UUID    `json:"startup_id"`
	Projects            StatusCounts `json:"projects"`
	Proposals           StatusCounts `json:"proposals"`
	Funding             StatusCounts `json:"funding"`
	Mentorship          StatusCounts `json:"mentorship"`
	Employees           int          `json:"employees"`
	UnreadNotifications int          `json:"unread_notifications"`
}

// Upload is a file received from a client, handed to the storage collaborator.
type Upload struct {
	Filename string
	MimeType string
	Data     []byte
}
