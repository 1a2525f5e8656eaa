package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"skyvision-booking/internal/auth"
	"skyvision-booking/internal/booking"
	"skyvision-booking/internal/events"
	"skyvision-booking/internal/models"
	"skyvision-booking/pkg/handlers/slogdiscard"
	"skyvision-booking/pkg/response"
)

var (
	admin = models.Principal{UserID: "admin-1", Name: "Root", Email: "root@example.com", Admin: true}
	alice = models.Principal{UserID: "user-1", Name: "Alice", Email: "alice@example.com"}
	bob   = models.Principal{UserID: "user-2", Name: "Bob", Email: "bob@example.com"}
)

var errStorageDown = errors.New("connection refused")

// memStore keeps everything in maps and applies the same filters as Postgres.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users    map[string]*models.User
	rooms    map[string]*models.Room
	bookings map[string]booking.Record

	activeErr   error
	inserts     int
	activeReads int
}

func newMemStore() *memStore {
	s := &memStore{
		users:    map[string]*models.User{},
		rooms:    map[string]*models.Room{},
		bookings: map[string]booking.Record{},
	}

	for _, p := range []models.Principal{admin, alice, bob} {
		role := models.RoleUser
		if p.Admin {
			role = models.RoleAdmin
		}
		s.users[p.UserID] = &models.User{ID: p.UserID, Name: p.Name, Email: p.Email, Role: role}
	}

	s.rooms["room-1"] = &models.Room{ID: "room-1", Name: "A-101", Capacity: 30}
	s.rooms["room-2"] = &models.Room{ID: "room-2", Name: "B-202", Capacity: 12}

	return s
}

func (s *memStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return response.ErrExists
		}
	}
	user.CreatedAt = time.Now()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, response.ErrNotFound
}

func (s *memStore) CreateRoom(_ context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rooms {
		if r.Name == room.Name {
			return response.ErrExists
		}
	}
	cp := *room
	s.rooms[room.ID] = &cp
	return nil
}

func (s *memStore) GetRoom(_ context.Context, id string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) ListRooms(_ context.Context) ([]*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Room
	for _, r := range s.rooms {
		cp := *r
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *models.Room) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *memStore) DeleteRoom(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; !ok {
		return response.ErrNotFound
	}
	for _, b := range s.bookings {
		if b.RoomID == id {
			return response.ErrRoomInUse
		}
	}
	delete(s.rooms, id)
	return nil
}

func active(r booking.Record) bool {
	return r.Status == string(booking.StatusPending) || r.Status == string(booking.StatusApproved)
}

func (s *memStore) ActiveBookingsForRoom(_ context.Context, roomID, excludeID string) ([]booking.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeReads++
	if s.activeErr != nil {
		return nil, s.activeErr
	}

	var out []booking.Record
	for _, r := range s.bookings {
		if r.RoomID == roomID && active(r) && r.ID != excludeID {
			out = append(out, s.join(r))
		}
	}
	return out, nil
}

func (s *memStore) ActiveRegularOn(_ context.Context, date booking.Date) ([]booking.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []booking.Record
	for _, r := range s.bookings {
		if active(r) && r.AnchorDate == date && !strings.HasPrefix(r.Purpose, booking.BulkTag) {
			out = append(out, s.join(r))
		}
	}
	return out, nil
}

func (s *memStore) ActiveBulk(_ context.Context) ([]booking.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []booking.Record
	for _, r := range s.bookings {
		if active(r) && strings.HasPrefix(r.Purpose, booking.BulkTag) {
			out = append(out, s.join(r))
		}
	}
	return out, nil
}

func (s *memStore) join(r booking.Record) booking.Record {
	if room, ok := s.rooms[r.RoomID]; ok {
		r.RoomName = room.Name
	}
	if u, ok := s.users[r.UserID]; ok {
		r.OwnerName = u.Name
		r.OwnerEmail = u.Email
	}
	return r
}

func (s *memStore) GetBooking(_ context.Context, id string) (*booking.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.bookings[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	r = s.join(r)
	return &r, nil
}

func (s *memStore) ListBookings(_ context.Context, f models.BookingFilter) ([]booking.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []booking.Record
	for _, r := range s.bookings {
		if f.UserID != "" && r.UserID != f.UserID {
			continue
		}
		if f.RoomID != "" && r.RoomID != f.RoomID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, s.join(r))
	}
	slices.SortFunc(out, func(a, b booking.Record) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *memStore) UpdateBookingStatus(_ context.Context, id string, from, to booking.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.bookings[id]
	if !ok {
		return response.ErrNotFound
	}
	if r.Status != string(from) {
		return response.ErrInvalidState
	}
	r.Status = string(to)
	s.bookings[id] = r
	return nil
}

func (s *memStore) SetBookingDocument(_ context.Context, id, document string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.bookings[id]
	if !ok {
		return "", response.ErrNotFound
	}
	prev := r.Document
	r.Document = document
	s.bookings[id] = r
	return prev, nil
}

func (s *memStore) DeleteBooking(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[id]; !ok {
		return response.ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s *memStore) RunInRoomTx(ctx context.Context, roomID string, fn func(tx booking.ReserveTx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if _, err := s.GetRoom(ctx, roomID); err != nil {
		return err
	}

	return fn(memTx{s})
}

type memTx struct {
	*memStore
}

func (t memTx) Insert(_ context.Context, rec *booking.Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rooms[rec.RoomID]; !ok {
		return response.ErrNotFound
	}
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	t.bookings[rec.ID] = *rec
	t.inserts++
	return nil
}

func (t memTx) Update(_ context.Context, rec *booking.Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.bookings[rec.ID]
	if !ok || cur.Status != string(booking.StatusPending) {
		return response.ErrInvalidState
	}
	rec.CreatedAt = cur.CreatedAt
	rec.UpdatedAt = time.Now()
	rec.Status = cur.Status
	t.bookings[rec.ID] = *rec
	return nil
}

// seed stores a record directly, bypassing the conflict check.
func (s *memStore) seed(t *testing.T, rec booking.Record) {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()

	require.NotEmpty(t, rec.ID)
	s.bookings[rec.ID] = rec
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]string
	err  error
	n    int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]string{}}
}

func (l *fakeLocker) Lock(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return "", false, l.err
	}
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	l.n++
	token := key + "#" + strings.Repeat("x", l.n)
	l.held[key] = token
	return token, true, nil
}

func (l *fakeLocker) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}

type fakeSessions struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (f *fakeSessions) Create(_ context.Context, userID string) (string, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	token := "token-" + userID
	f.tokens[token] = userID
	return token, time.Now().Add(time.Hour), nil
}

func (f *fakeSessions) Get(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.tokens[token]
	if !ok {
		return "", response.ErrUnauthorized
	}
	return id, nil
}

func (f *fakeSessions) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.tokens, token)
	return nil
}

type fakeLimiter struct {
	limit    int
	attempts map[string]int
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	f.attempts[key]++
	return f.attempts[key] <= f.limit, nil
}

func (f *fakeLimiter) Reset(_ context.Context, key string) error {
	delete(f.attempts, key)
	return nil
}

type fakeFiles struct {
	mu        sync.Mutex
	files     map[string][]byte
	removed   []string
	removeErr error
	n         int
}

func (f *fakeFiles) Save(_ context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return "", response.ErrUnsupportedMedia
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.n++
	name := strings.Repeat("d", f.n) + ".pdf"
	f.files[name] = data
	return name, nil
}

func (f *fakeFiles) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.files[name]
	if !ok {
		return nil, response.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeFiles) Remove(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.removed = append(f.removed, name)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.files, name)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, e events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakePublisher) types() []events.Type {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]events.Type, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc       *Service
	store     *memStore
	locker    *fakeLocker
	sessions  *fakeSessions
	limiter   *fakeLimiter
	files     *fakeFiles
	publisher *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:     newMemStore(),
		locker:    newFakeLocker(),
		sessions:  &fakeSessions{tokens: map[string]string{}},
		limiter:   &fakeLimiter{limit: 3, attempts: map[string]int{}},
		files:     &fakeFiles{files: map[string][]byte{}},
		publisher: &fakePublisher{},
	}

	f.svc = NewService(slogdiscard.NewDiscardLogger(), Deps{
		Store:     f.store,
		Locker:    f.locker,
		Sessions:  f.sessions,
		Limiter:   f.limiter,
		Files:     f.files,
		Publisher: f.publisher,
	}, Options{
		LockTTL:   time.Second,
		LockWait:  30 * time.Millisecond,
		LockRetry: 10 * time.Millisecond,
		Location:  time.UTC,
		PasswordParams: auth.Params{
			Memory:      1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
	})

	return f
}

func record(id, roomID, userID, date, start, end, purpose, status string) booking.Record {
	d, err := booking.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return booking.Record{
		ID:         id,
		RoomID:     roomID,
		UserID:     userID,
		AnchorDate: d,
		StartTime:  start,
		EndTime:    end,
		Purpose:    purpose,
		Status:     status,
	}
}
