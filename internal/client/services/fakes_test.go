package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tuparking/tuparking/internal/client/api"
	"github.com/tuparking/tuparking/internal/client/models"
	"github.com/tuparking/tuparking/internal/client/session"
	"github.com/tuparking/tuparking/internal/client/storage"
	"github.com/tuparking/tuparking/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeClient implements api.Client in memory. NetworkCalls counts every
// method that would touch the network, so tests can assert that local
// validation short-circuits before any request is issued.
type fakeClient struct {
	mu           sync.Mutex
	NetworkCalls int
	Token        string

	LoginResult   *api.AuthResult
	LoginErr      error
	Profile       *models.UserProfile
	ProfileErr    error
	GetProfileFn  func(ctx context.Context) (*models.UserProfile, error)
	Facilities    []models.Facility
	FacilitiesErr error
	Reservations  []models.Reservation
	ReservErr     error
	Created       *models.Reservation
	CreateErr     error
	CancelErr     error
	Vehicles      []models.Vehicle
	VehiclesErr   error
	RechargeRes   *api.RechargeResult
	RechargeErr   error
	TransferErr   error
	Txns          []models.Transaction
	TxnsErr       error
}

func (f *fakeClient) network() {
	f.mu.Lock()
	f.NetworkCalls++
	f.mu.Unlock()
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.NetworkCalls
}

func (f *fakeClient) SetToken(token string) { f.Token = token }
func (f *fakeClient) ClearToken()           { f.Token = "" }

func (f *fakeClient) Login(ctx context.Context, email, password string) (*api.AuthResult, error) {
	f.network()
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	return f.LoginResult, nil
}

func (f *fakeClient) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResult, error) {
	f.network()
	return f.LoginResult, f.LoginErr
}

func (f *fakeClient) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	f.network()
	if f.GetProfileFn != nil {
		return f.GetProfileFn(ctx)
	}
	if f.ProfileErr != nil {
		return nil, f.ProfileErr
	}
	u := *f.Profile
	return &u, nil
}

func (f *fakeClient) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.UserProfile, error) {
	f.network()
	return f.Profile, f.ProfileErr
}

func (f *fakeClient) ListFacilities(ctx context.Context) ([]models.Facility, error) {
	f.network()
	return f.Facilities, f.FacilitiesErr
}

func (f *fakeClient) GetFacility(ctx context.Context, id int64) (*models.Facility, error) {
	f.network()
	for _, fac := range f.Facilities {
		if fac.ID == id {
			c := fac
			return &c, nil
		}
	}
	return nil, f.FacilitiesErr
}

func (f *fakeClient) ListReservations(ctx context.Context, state models.ReservationState) ([]models.Reservation, error) {
	f.network()
	if f.ReservErr != nil {
		return nil, f.ReservErr
	}
	if state == "" {
		return f.Reservations, nil
	}
	var out []models.Reservation
	for _, r := range f.Reservations {
		if r.State == state {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeClient) CreateReservation(ctx context.Context, req api.ReservationRequest) (*models.Reservation, error) {
	f.network()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	return f.Created, nil
}

func (f *fakeClient) CancelReservation(ctx context.Context, id int64) error {
	f.network()
	return f.CancelErr
}

func (f *fakeClient) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	f.network()
	return f.Vehicles, f.VehiclesErr
}

func (f *fakeClient) AddVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error) {
	f.network()
	if f.VehiclesErr != nil {
		return nil, f.VehiclesErr
	}
	v.ID = int64(len(f.Vehicles) + 1)
	f.Vehicles = append(f.Vehicles, v)
	return &v, nil
}

func (f *fakeClient) DeleteVehicle(ctx context.Context, id int64) error {
	f.network()
	return f.VehiclesErr
}

func (f *fakeClient) Recharge(ctx context.Context, amount decimal.Decimal, method string) (*api.RechargeResult, error) {
	f.network()
	return f.RechargeRes, f.RechargeErr
}

func (f *fakeClient) Transfer(ctx context.Context, recipient string, amount decimal.Decimal) error {
	f.network()
	return f.TransferErr
}

func (f *fakeClient) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	f.network()
	return f.Txns, f.TxnsErr
}

func (f *fakeClient) Close() error { return nil }

// memReservations is an in-memory reservations.Repository for tests.
type memReservations struct {
	mu    sync.Mutex
	items map[int64]models.Reservation
}

func newMemReservations() *memReservations {
	return &memReservations{items: map[int64]models.Reservation{}}
}

func (m *memReservations) ReplaceAll(ctx context.Context, items []models.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = map[int64]models.Reservation{}
	for _, r := range items {
		m.items[r.ID] = r
	}
	return nil
}

func (m *memReservations) Upsert(ctx context.Context, item *models.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = *item
	return nil
}

func (m *memReservations) SetState(ctx context.Context, id int64, state models.ReservationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if ok {
		r.State = state
		m.items[id] = r
	}
	return nil
}

func (m *memReservations) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memReservations) GetAll(ctx context.Context) ([]models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Reservation, 0, len(m.items))
	for _, r := range m.items {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

// memTransactions is an in-memory transactions.Repository for tests.
type memTransactions struct {
	mu    sync.Mutex
	items []models.Transaction
}

func (m *memTransactions) ReplaceAll(ctx context.Context, items []models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]models.Transaction(nil), items...)
	return nil
}

func (m *memTransactions) Append(ctx context.Context, item *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.items {
		if t.ID == item.ID {
			return nil
		}
	}
	m.items = append(m.items, *item)
	return nil
}

func (m *memTransactions) GetAll(ctx context.Context) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.Transaction(nil), m.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// authedSession logs user into a fresh Manager backed by the fake client.
func authedSession(t *testing.T, client *fakeClient, user models.UserProfile) *session.Manager {
	t.Helper()

	client.LoginResult = &api.AuthResult{Token: "t1", User: user}
	m := session.NewManager(client, storage.NewMemoryStore(), testLogger())
	_, err := m.Login(context.Background(), user.Email, "secret123")
	require.NoError(t, err)

	// the login round-trip is setup, not part of what tests count
	client.mu.Lock()
	client.NetworkCalls = 0
	client.mu.Unlock()

	return m
}

func profileWithBalance(balance string) models.UserProfile {
	return models.UserProfile{
		ID:      1,
		Name:    "Ana",
		Email:   "ana@example.com",
		Balance: decimal.RequireFromString(balance),
	}
}
