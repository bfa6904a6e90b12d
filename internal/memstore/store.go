// Package memstore keeps the whole workflow state in process memory. It backs
// the server when no DATABASE_URL is configured and every workflow test.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"incubation-backend/internal/models"
	"incubation-backend/internal/workflow"
)

type state struct {
	seq           int64
	order         map[uuid.UUID]int64
	actors        map[uuid.UUID]models.Actor
	projects      map[uuid.UUID]models.Project
	proposals     map[uuid.UUID]models.Proposal
	assignments   map[uuid.UUID]models.Assignment // keyed by project
	employees     map[uuid.UUID]models.Employee
	milestones    map[uuid.UUID]models.Milestone
	funding       map[uuid.UUID]models.FundingRound
	sessions      map[uuid.UUID]models.MentorshipSession
	notifications map[uuid.UUID]models.Notification
}

func newState() *state {
	return &state{
		order:         map[uuid.UUID]int64{},
		actors:        map[uuid.UUID]models.Actor{},
		projects:      map[uuid.UUID]models.Project{},
		proposals:     map[uuid.UUID]models.Proposal{},
		assignments:   map[uuid.UUID]models.Assignment{},
		employees:     map[uuid.UUID]models.Employee{},
		milestones:    map[uuid.UUID]models.Milestone{},
		funding:       map[uuid.UUID]models.FundingRound{},
		sessions:      map[uuid.UUID]models.MentorshipSession{},
		notifications: map[uuid.UUID]models.Notification{},
	}
}

func cloneMap[V any](in map[uuid.UUID]V, copyValue func(V) V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(in))
	for k, v := range in {
		if copyValue != nil {
			v = copyValue(v)
		}
		out[k] = v
	}
	return out
}

func copyFunding(f models.FundingRound) models.FundingRound {
	f.Recipients = append([]uuid.UUID(nil), f.Recipients...)
	f.History = append([]models.StatusChange(nil), f.History...)
	return f
}

func (s *state) clone() *state {
	return &state{
		seq:           s.seq,
		order:         cloneMap(s.order, nil),
		actors:        cloneMap(s.actors, nil),
		projects:      cloneMap(s.projects, nil),
		proposals:     cloneMap(s.proposals, nil),
		assignments:   cloneMap(s.assignments, nil),
		employees:     cloneMap(s.employees, nil),
		milestones:    cloneMap(s.milestones, nil),
		funding:       cloneMap(s.funding, copyFunding),
		sessions:      cloneMap(s.sessions, nil),
		notifications: cloneMap(s.notifications, nil),
	}
}

// Store serialises transactions behind one mutex. Each transaction works on
// a copy of the state that replaces the live one only on commit.
type Store struct {
	mu              sync.Mutex
	data            *state
	notificationErr error
}

var (
	_ workflow.Store = (*Store)(nil)
	_ workflow.Tx    = (*tx)(nil)
)

func New() *Store {
	return &Store{data: newState()}
}

// FailNotifications makes every notification insert return err until it is
// called again with nil.
func (s *Store) FailNotifications(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notificationErr = err
}

func (s *Store) WithTx(ctx context.Context, fn func(tx workflow.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{state: s.data.clone(), notificationErr: s.notificationErr}
	if err := fn(t); err != nil {
		return err
	}
	s.data = t.state
	return nil
}

type tx struct {
	*state
	notificationErr error
}

func (t *tx) track(id uuid.UUID) {
	if _, ok := t.order[id]; ok {
		return
	}
	t.seq++
	t.order[id] = t.seq
}

// newestFirst sorts by insertion order, most recent first.
func newestFirst[T any](t *tx, items []T, id func(T) uuid.UUID) []T {
	sort.SliceStable(items, func(i, j int) bool {
		return t.order[id(items[i])] > t.order[id(items[j])]
	})
	return items
}

func oldestFirst[T any](t *tx, items []T, id func(T) uuid.UUID) []T {
	sort.SliceStable(items, func(i, j int) bool {
		return t.order[id(items[i])] < t.order[id(items[j])]
	})
	return items
}
