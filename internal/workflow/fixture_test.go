package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"incubation-backend/internal/memstore"
	"incubation-backend/internal/models"
	"incubation-backend/internal/workflow"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	t       *testing.T
	ctx     context.Context
	store   *memstore.Store
	service *workflow.Service
	media   *fakeMedia
	events  *fakeEvents
}

func newFixture(t *testing.T, opts ...workflow.Option) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		store:  memstore.New(),
		media:  &fakeMedia{},
		events: &fakeEvents{},
	}
	base := []workflow.Option{
		workflow.WithMedia(f.media),
		workflow.WithEvents(f.events),
		workflow.WithClock(func() time.Time { return testNow }),
	}
	f.service = workflow.NewService(f.store, append(base, opts...)...)
	return f
}

func (f *fixture) register(role models.Role, name string) uuid.UUID {
	f.t.Helper()
	id := uuid.New()
	_, err := f.service.RegisterActor(f.ctx, id, models.RegisterRequest{
		Role:        role,
		Email:       fmt.Sprintf("%s@example.com", id.String()[:8]),
		DisplayName: name,
	}, nil)
	require.NoError(f.t, err)
	return id
}

func (f *fixture) openProject(startupID uuid.UUID, name string) *models.Project {
	f.t.Helper()
	project, err := f.service.CreateProject(f.ctx, startupID, models.ProjectRequest{
		Name:              name,
		Description:       "Build the thing",
		StartDate:         testNow,
		OpenToFreelancers: true,
	}, nil)
	require.NoError(f.t, err)
	return project
}

func (f *fixture) propose(freelancerID, projectID uuid.UUID) *models.Proposal {
	f.t.Helper()
	proposal, err := f.service.SubmitProposal(f.ctx, freelancerID, projectID, models.ProposalRequest{
		Text:                 "I can deliver this in four weeks",
		ExpectedTimeline:     "4 weeks",
		ExpectedPaymentCents: 150000,
	}, nil)
	require.NoError(f.t, err)
	return proposal
}

// assigned returns a project with an approved proposal from freelancerID.
func (f *fixture) assigned(startupID, freelancerID uuid.UUID) *models.Project {
	f.t.Helper()
	project := f.openProject(startupID, "Assigned work")
	proposal := f.propose(freelancerID, project.ID)
	_, err := f.service.ApproveProposal(f.ctx, startupID, proposal.ID)
	require.NoError(f.t, err)
	return project
}

func (f *fixture) notifications(userID uuid.UUID) []models.Notification {
	f.t.Helper()
	notes, err := f.service.ListNotifications(f.ctx, userID, false)
	require.NoError(f.t, err)
	return notes
}

func (f *fixture) titles(userID uuid.UUID) []string {
	f.t.Helper()
	var out []string
	for _, n := range f.notifications(userID) {
		out = append(out, n.Title)
	}
	return out
}

func countTitle(titles []string, title string) int {
	n := 0
	for _, t := range titles {
		if t == title {
			n++
		}
	}
	return n
}

type fakeMedia struct {
	mu      sync.Mutex
	err     error
	folders []string
}

func (m *fakeMedia) Upload(_ context.Context, _ []byte, filename, _ string, folder string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.folders = append(m.folders, folder)
	return "https://cdn.example.com/" + folder + "/" + filename, nil
}

type publishedEvent struct {
	userID uuid.UUID
	event  string
	title  string
}

type fakeEvents struct {
	mu      sync.Mutex
	err     error
	batches int
	events  []publishedEvent
}

func (e *fakeEvents) PublishUserEvents(_ context.Context, events []models.UserEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.batches++
	for _, ev := range events {
		title, _ := ev.Payload["title"].(string)
		e.events = append(e.events, publishedEvent{userID: ev.UserID, event: ev.Event, title: title})
	}
	return nil
}

func (e *fakeEvents) published() []publishedEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]publishedEvent(nil), e.events...)
}

var errBoom = errors.New("boom")
