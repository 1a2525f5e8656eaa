package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"skyvision-booking/internal/auth"
	"skyvision-booking/internal/booking"
	"skyvision-booking/internal/events"
	"skyvision-booking/internal/lock"
	"skyvision-booking/internal/models"
	"skyvision-booking/pkg/sl"
)

type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Rooms
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListRooms(ctx context.Context) ([]*models.Room, error)
	DeleteRoom(ctx context.Context, id string) error

	// Bookings
	booking.Source
	booking.TimelineSource
	GetBooking(ctx context.Context, id string) (*booking.Record, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]booking.Record, error)
	UpdateBookingStatus(ctx context.Context, id string, from, to booking.Status) error
	SetBookingDocument(ctx context.Context, id, document string) (string, error)
	DeleteBooking(ctx context.Context, id string) error
	RunInRoomTx(ctx context.Context, roomID string, fn func(tx booking.ReserveTx) error) error
}

type Sessions interface {
	Create(ctx context.Context, userID string) (string, time.Time, error)
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

type FileStore interface {
	Save(ctx context.Context, r io.Reader) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Remove(ctx context.Context, name string) error
}

type Deps struct {
	Store     Store
	Locker    lock.Locker
	Sessions  Sessions
	Limiter   Limiter
	Files     FileStore
	Publisher events.Publisher
}

type Options struct {
	LockTTL        time.Duration
	LockWait       time.Duration
	LockRetry      time.Duration
	Location       *time.Location
	PasswordParams auth.Params
}

type Service struct {
	log       *slog.Logger
	store     Store
	locker    lock.Locker
	sessions  Sessions
	limiter   Limiter
	files     FileStore
	publisher events.Publisher
	timeline  *booking.Timeline
	opts      Options
}

func NewService(log *slog.Logger, deps Deps, opts Options) *Service {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Second
	}
	if opts.LockRetry <= 0 {
		opts.LockRetry = 50 * time.Millisecond
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.PasswordParams == (auth.Params{}) {
		opts.PasswordParams = auth.DefaultParams
	}
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}

	return &Service{
		log:       log,
		store:     deps.Store,
		locker:    deps.Locker,
		sessions:  deps.Sessions,
		limiter:   deps.Limiter,
		files:     deps.Files,
		publisher: deps.Publisher,
		timeline:  booking.NewTimeline(deps.Store, log, opts.Location),
		opts:      opts,
	}
}

// publish never fails the caller; the write it reports is already committed.
func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.Error("failed to publish event",
			slog.String("type", string(e.Type)),
			slog.String("booking_id", e.BookingID),
			sl.Err(err),
		)
	}
}
