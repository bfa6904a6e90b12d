package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"incubation-backend/internal/models"
)

func TestStoreErr(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"missing row", models.ErrNotFound, ErrNotFound},
		{"stale version", fmt.Errorf("write: %w", models.ErrStaleVersion), ErrConflict},
		{"unique index", fmt.Errorf("failed to write proposals: %w", models.ErrDuplicate), ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, storeErr(tt.in, "proposal"), tt.want)
		})
	}

	assert.NoError(t, storeErr(nil, "proposal"))

	boom := errors.New("connection reset")
	err := storeErr(boom, "proposal")
	assert.ErrorIs(t, err, boom)
	for _, kind := range []error{ErrValidation, ErrForbidden, ErrNotFound, ErrConflict} {
		assert.NotErrorIs(t, err, kind)
	}
}

// failingStore rejects every transaction with a fixed error.
type failingStore struct{ err error }

func (s failingStore) WithTx(context.Context, func(Tx) error) error { return s.err }

func TestInTx_DuplicateBecomesConflict(t *testing.T) {
	s := NewService(failingStore{err: fmt.Errorf("failed to create actor: %w", models.ErrDuplicate)})

	err := s.inTx(context.Background(), func(Tx, *outbox) error { return nil })
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, models.ErrDuplicate)

	already := fmt.Errorf("%w: %w", ErrConflict, models.ErrDuplicate)
	s = NewService(failingStore{err: already})
	assert.Equal(t, already, s.inTx(context.Background(), func(Tx, *outbox) error { return nil }))
}
