package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"incubation-backend/internal/metrics"
	"incubation-backend/internal/models"
)

// MediaStore uploads a file and returns its public URL.
type MediaStore interface {
	Upload(ctx context.Context, data []byte, filename, mimeType, folder string) (string, error)
}

// EventPublisher pushes events to users' realtime channels in one call.
type EventPublisher interface {
	PublishUserEvents(ctx context.Context, events []models.UserEvent) error
}

type Service struct {
	store               Store
	media               MediaStore
	events              EventPublisher
	logger              *slog.Logger
	strictNotifications bool
	now                 func() time.Time
}

type Option func(*Service)

func WithMedia(media MediaStore) Option {
	return func(s *Service) { s.media = media }
}

func WithEvents(events EventPublisher) Option {
	return func(s *Service) { s.events = events }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithStrictNotifications makes a failed notification insert abort the
// transition instead of being logged and skipped.
func WithStrictNotifications(strict bool) Option {
	return func(s *Service) { s.strictNotifications = strict }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type transition struct {
	workflow, from, to string
}

// outbox collects side effects of one transaction that are only reported
// once it has committed.
type outbox struct {
	notifications []models.Notification
	transitions   []transition
}

func (o *outbox) transition(workflow string, from, to interface{}) {
	o.transitions = append(o.transitions, transition{
		workflow: workflow,
		from:     fmt.Sprint(from),
		to:       fmt.Sprint(to),
	})
}

func (s *Service) inTx(ctx context.Context, fn func(tx Tx, ob *outbox) error) error {
	var ob *outbox
	err := s.store.WithTx(ctx, func(tx Tx) error {
		ob = &outbox{}
		return fn(tx, ob)
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) && !errors.Is(err, ErrConflict) {
			return fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return err
	}

	for _, t := range ob.transitions {
		metrics.Transitions.WithLabelValues(t.workflow, t.from, t.to).Inc()
	}
	if len(ob.notifications) > 0 {
		metrics.Notifications.WithLabelValues("created").Add(float64(len(ob.notifications)))
		s.broadcast(ctx, ob.notifications)
	}
	return nil
}

func note(userID uuid.UUID, title, message string) models.Notification {
	return models.Notification{UserID: userID, Title: title, Message: message}
}

// notify inserts notifications inside the running transaction. Insert
// failures are logged and swallowed unless strict notifications are enabled.
func (s *Service) notify(ctx context.Context, tx Tx, ob *outbox, notes ...models.Notification) error {
	if len(notes) == 0 {
		return nil
	}
	now := s.now()
	for i := range notes {
		notes[i].ID = uuid.New()
		notes[i].CreatedAt = now
	}

	if err := tx.CreateNotifications(ctx, notes); err != nil {
		metrics.Notifications.WithLabelValues("failed").Add(float64(len(notes)))
		if s.strictNotifications {
			return fmt.Errorf("failed to create notifications: %w", err)
		}
		s.logger.Warn("notification insert failed, continuing",
			"recipients", len(notes), "title", notes[0].Title, "error", err)
		return nil
	}

	ob.notifications = append(ob.notifications, notes...)
	return nil
}

// broadcast sends every committed notification in a single batch.
func (s *Service) broadcast(ctx context.Context, notes []models.Notification) {
	if s.events == nil {
		return
	}
	events := make([]models.UserEvent, 0, len(notes))
	for _, n := range notes {
		events = append(events, models.UserEvent{
			UserID: n.UserID,
			Event:  "notification_created",
			Payload: map[string]interface{}{
				"notification_id": n.ID.String(),
				"title":           n.Title,
				"message":         n.Message,
				"created_at":      n.CreatedAt,
			},
		})
	}
	if err := s.events.PublishUserEvents(ctx, events); err != nil {
		metrics.Notifications.WithLabelValues("broadcast_failed").Add(float64(len(events)))
		s.logger.Warn("realtime broadcast failed", "recipients", len(events), "error", err)
	}
}

// upload stores a file outside of any transaction. A failed upload is
// logged and yields a nil URL so the owning entity is still saved.
func (s *Service) upload(ctx context.Context, file *models.Upload, folder string) *string {
	if file == nil || len(file.Data) == 0 {
		return nil
	}
	if s.media == nil {
		s.logger.Warn("media storage not configured, dropping upload", "folder", folder, "filename", file.Filename)
		metrics.Uploads.WithLabelValues(folder, "skipped").Inc()
		return nil
	}

	url, err := s.media.Upload(ctx, file.Data, file.Filename, file.MimeType, folder)
	if err != nil {
		s.logger.Warn("media upload failed, saving without it",
			"folder", folder, "filename", file.Filename, "error", err)
		metrics.Uploads.WithLabelValues(folder, "failed").Inc()
		return nil
	}
	metrics.Uploads.WithLabelValues(folder, "ok").Inc()
	return &url
}

func (s *Service) requireRole(ctx context.Context, tx Tx, userID uuid.UUID, role models.Role) (*models.Actor, error) {
	actor, err := tx.GetActor(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, forbiddenf("no profile registered for this account")
		}
		return nil, fmt.Errorf("failed to load actor: %w", err)
	}
	if actor.Role != role {
		return nil, forbiddenf("action requires the %s role", role)
	}
	return actor, nil
}

func (s *Service) actor(ctx context.Context, tx Tx, userID uuid.UUID) (*models.Actor, error) {
	actor, err := tx.GetActor(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, forbiddenf("no profile registered for this account")
		}
		return nil, fmt.Errorf("failed to load actor: %w", err)
	}
	return actor, nil
}
