package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// fakeStore mirrors the MySQL store's guarantees: Create checks overlap and
// inserts atomically, Transition runs fn under a lock and discards fn's
// changes when it fails.
type fakeStore struct {
	mu   sync.Mutex
	rows map[string]model.Reservation
	seq  int

	createErr error
	commitErr error
	// overlapErrs are returned by successive FindOverlapping calls.
	overlapErrs []error
}

func newFakeStore() *fakeStore { return &fakeStore{rows: map[string]model.Reservation{}} }

func (f *fakeStore) put(res model.Reservation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[res.ID] = res
}

func (f *fakeStore) get(id string) model.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

func (f *fakeStore) Create(ctx context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, r := range f.rows {
		if r.RoomID == res.RoomID && r.Overlaps(res.CheckInDate, res.CheckOutDate) {
			return repository.ErrConflict
		}
	}
	f.seq++
	if res.ID == "" {
		res.ID = fmt.Sprintf("res-%d", f.seq)
	}
	res.CreatedAt = time.Now().UTC()
	res.UpdatedAt = res.CreatedAt
	f.rows[res.ID] = *res
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (f *fakeStore) List(ctx context.Context) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Reservation, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) ListByHotel(ctx context.Context, hotelID string) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Reservation{}
	for _, r := range f.rows {
		if r.HotelID == hotelID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) FindOverlapping(ctx context.Context, roomID string, checkIn, checkOut time.Time) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.overlapErrs) > 0 {
		err := f.overlapErrs[0]
		f.overlapErrs = f.overlapErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	out := []model.Reservation{}
	for _, r := range f.rows {
		if r.RoomID == roomID && r.Overlaps(checkIn, checkOut) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) Transition(ctx context.Context, id string, fn repository.TransitionFunc) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := fn(ctx, &r); err != nil {
		return nil, err
	}
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	r.UpdatedAt = time.Now().UTC()
	f.rows[id] = r
	return &r, nil
}

type fakeRooms struct {
	mu        sync.Mutex
	rooms     map[string]*model.Room
	hotels    map[string]*model.Hotel
	getErr    error
	updateErr error
	getCalls  int
	updates   []model.RoomState
}

func newFakeRooms() *fakeRooms {
	return &fakeRooms{
		rooms: map[string]*model.Room{
			"room-1": {ID: "room-1", HotelID: "hotel-1", RoomNumber: "101", RoomType: "double", Price: 90, State: model.RoomAvailable},
			"room-2": {ID: "room-2", HotelID: "hotel-1", RoomNumber: "102", RoomType: "suite", Price: 150, State: model.RoomAvailable},
		},
		hotels: map[string]*model.Hotel{
			"hotel-1": {ID: "hotel-1", Name: "Hotel Mar Azul", Email: "recepcion@marazul.test"},
		},
	}
}

func (f *fakeRooms) state(id string) model.RoomState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rooms[id].State
}

func (f *fakeRooms) GetRoomByID(ctx context.Context, id string) (*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.rooms[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRooms) GetRoomByNumberAndHotel(ctx context.Context, hotelID, number string) (*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, r := range f.rooms {
		if r.HotelID == hotelID && r.RoomNumber == number {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRooms) UpdateRoomState(ctx context.Context, id string, state model.RoomState) (*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	r, ok := f.rooms[id]
	if !ok {
		return nil, nil
	}
	f.updates = append(f.updates, state)
	r.State = state
	cp := *r
	return &cp, nil
}

func (f *fakeRooms) GetHotelByID(ctx context.Context, id string) (*model.Hotel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.hotels[id]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
	err   error
	calls int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*model.User{
		"user-1": {ID: "user-1", Email: "ana@example.com", FirstName: "Ana", LastName: "García", Role: "client"},
	}}
}

func (f *fakeUsers) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	err    error
	emails []model.Email
	events []model.EventName
	last   model.RealtimeEvent
}

func (f *fakeNotifier) SendEmail(ctx context.Context, email model.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.emails = append(f.emails, email)
	return nil
}

func (f *fakeNotifier) Emit(ctx context.Context, event model.EventName, payload model.RealtimeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	f.last = payload
	return nil
}

func (f *fakeNotifier) subjects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.emails))
	for _, e := range f.emails {
		out = append(out, e.Subject)
	}
	return out
}

type fixture struct {
	svc      *ReservationService
	store    *fakeStore
	rooms    *fakeRooms
	users    *fakeUsers
	notifier *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    newFakeStore(),
		rooms:    newFakeRooms(),
		users:    newFakeUsers(),
		notifier: &fakeNotifier{},
	}
	f.svc = NewReservationService(f.store, f.rooms, f.users, f.notifier, zaptest.NewLogger(t), "https://mihotel.com/reviews/new")
	return f
}

// seed stores a reservation for room-1 directly, bypassing Create.
func (f *fixture) seed(id string, status model.Status, payment model.PaymentStatus) model.Reservation {
	res := model.Reservation{
		ID:            id,
		UserID:        "user-1",
		HotelID:       "hotel-1",
		RoomID:        "room-1",
		CheckInDate:   june(10),
		CheckOutDate:  june(15),
		TotalPrice:    450,
		Status:        status,
		PaymentStatus: payment,
	}
	f.store.put(res)
	return res
}

func june(d int) time.Time { return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC) }

func ptr[T any](v T) *T { return &v }

func input(roomID string, in, out time.Time) CreateInput {
	return CreateInput{
		UserID:       "user-1",
		HotelID:      "hotel-1",
		RoomID:       roomID,
		CheckInDate:  ptr(in),
		CheckOutDate: ptr(out),
		TotalPrice:   450,
	}
}

var errDown = errors.New("connection refused")
