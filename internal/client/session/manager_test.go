package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuparking/tuparking/internal/client/api"
	"github.com/tuparking/tuparking/internal/client/models"
	"github.com/tuparking/tuparking/internal/client/storage"
	"github.com/tuparking/tuparking/internal/common"
	"github.com/tuparking/tuparking/internal/logging"

	"io"
	"log/slog"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ---- fake client ----

// fakeClient implements api.Client for Manager unit tests.
type fakeClient struct {
	LoginRes   *api.AuthResult
	LoginErr   error
	LoginCalls int

	RegisterRes   *api.AuthResult
	RegisterErr   error
	RegisterCalls int

	ProfileRes   *models.UserProfile
	ProfileErr   error
	ProfileCalls int

	UpdateRes *models.UserProfile
	UpdateErr error

	Token string

	NetworkCalls int
}

func (f *fakeClient) SetToken(token string) { f.Token = token }
func (f *fakeClient) ClearToken()           { f.Token = "" }
func (f *fakeClient) Close() error          { return nil }

func (f *fakeClient) Login(ctx context.Context, email, password string) (*api.AuthResult, error) {
	f.LoginCalls++
	f.NetworkCalls++
	return f.LoginRes, f.LoginErr
}

func (f *fakeClient) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResult, error) {
	f.RegisterCalls++
	f.NetworkCalls++
	return f.RegisterRes, f.RegisterErr
}

func (f *fakeClient) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	f.ProfileCalls++
	f.NetworkCalls++
	return f.ProfileRes, f.ProfileErr
}

func (f *fakeClient) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.UserProfile, error) {
	f.NetworkCalls++
	return f.UpdateRes, f.UpdateErr
}

func (f *fakeClient) ListFacilities(ctx context.Context) ([]models.Facility, error) {
	f.NetworkCalls++
	return nil, nil
}

func (f *fakeClient) GetFacility(ctx context.Context, id int64) (*models.Facility, error) {
	f.NetworkCalls++
	return nil, nil
}

func (f *fakeClient) ListReservations(ctx context.Context, state models.ReservationState) ([]models.Reservation, error) {
	f.NetworkCalls++
	return nil, nil
}

func (f *fakeClient) CreateReservation(ctx context.Context, req api.ReservationRequest) (*models.Reservation, error) {
	f.NetworkCalls++
	return nil, nil
}

func (f *fakeClient) CancelReservation(ctx context.Context, id int64) error {
	f.NetworkCalls++
	return nil
}

func (f *fakeClient) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	f.NetworkCalls++
	return nil, nil
}

func (f *fakeClient) AddVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error) {
	f.NetworkCalls++
	return nil, nil
}

func (f *fakeClient) DeleteVehicle(ctx context.Context, id int64) error {
	f.NetworkCalls++
	return nil
}

func (f *fakeClient) Recharge(ctx context.Context, amount decimal.Decimal, method string) (*api.RechargeResult, error) {
	f.NetworkCalls++
	return nil, nil
}

func (f *fakeClient) Transfer(ctx context.Context, recipient string, amount decimal.Decimal) error {
	f.NetworkCalls++
	return nil
}

func (f *fakeClient) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	f.NetworkCalls++
	return nil, nil
}

// ---- failing store ----

type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, common.ErrStorageUnavailable
}

func (failingStore) Set(ctx context.Context, key, value string) error {
	return common.ErrStorageUnavailable
}

func (failingStore) Remove(ctx context.Context, key string) error {
	return common.ErrStorageUnavailable
}

// ---- helpers ----

func assertInvariant(t *testing.T, s Snapshot) {
	t.Helper()
	authed := s.Status == StatusAuthenticated
	assert.Equal(t, authed, s.Token != "", "token present iff authenticated")
	assert.Equal(t, authed, s.User != nil, "user present iff token present")
}

func anaProfile() models.UserProfile {
	return models.UserProfile{
		ID:      1,
		Name:    "Ana",
		Email:   "a@x.com",
		Balance: decimal.RequireFromString("5.00"),
	}
}

func seedStore(t *testing.T, s storage.Store, token string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, common.StorageKeyToken, token))
	require.NoError(t, s.Set(ctx, common.StorageKeyUser, `{"id":1,"nombre":"Ana","correo":"a@x.com","saldo":5.00}`))
}

func expiredJWT(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

// ---- tests ----

func TestNewManager_StartsRestoring(t *testing.T) {
	m := NewManager(&fakeClient{}, storage.NewMemoryStore(), testLogger())
	assert.Equal(t, StatusRestoring, m.Snapshot().Status)
}

func TestRestore_WithPersistedSession_AuthenticatesOffline(t *testing.T) {
	fc := &fakeClient{}
	store := storage.NewMemoryStore()
	seedStore(t, store, "t1")

	m := NewManager(fc, store, testLogger())
	m.Restore(context.Background())

	snap := m.Snapshot()
	assertInvariant(t, snap)
	assert.Equal(t, StatusAuthenticated, snap.Status)
	assert.Equal(t, "t1", snap.Token)
	assert.Equal(t, "Ana", snap.User.Name)
	assert.Equal(t, "t1", fc.Token, "token installed on the api client")
	assert.Zero(t, fc.NetworkCalls, "restore never touches the network")
}

func TestRestore_EmptyStore_Unauthenticated(t *testing.T) {
	m := NewManager(&fakeClient{}, storage.NewMemoryStore(), testLogger())
	m.Restore(context.Background())

	snap := m.Snapshot()
	assertInvariant(t, snap)
	assert.Equal(t, StatusUnauthenticated, snap.Status)
}

func TestRestore_StorageFailure_DegradesToUnauthenticated(t *testing.T) {
	m := NewManager(&fakeClient{}, failingStore{}, testLogger())
	m.Restore(context.Background())

	snap := m.Snapshot()
	assertInvariant(t, snap)
	assert.Equal(t, StatusUnauthenticated, snap.Status)
}

func TestRestore_ExpiredJWT_Unauthenticated(t *testing.T) {
	store := storage.NewMemoryStore()
	seedStore(t, store, expiredJWT(t))

	m := NewManager(&fakeClient{}, store, testLogger())
	m.Restore(context.Background())

	snap := m.Snapshot()
	assertInvariant(t, snap)
	assert.Equal(t, StatusUnauthenticated, snap.Status)

	_, ok, err := store.Get(context.Background(), common.StorageKeyToken)
	require.NoError(t, err)
	assert.False(t, ok, "expired token removed from the store")
}

func TestRestore_Idempotent(t *testing.T) {
	store := storage.NewMemoryStore()
	seedStore(t, store, "t1")

	m := NewManager(&fakeClient{}, store, testLogger())
	ctx := context.Background()

	m.Restore(ctx)
	first := m.Snapshot()

	// a second restore is a no-op, even if the store changed meanwhile
	require.NoError(t, store.Remove(ctx, common.StorageKeyToken))
	m.Restore(ctx)

	assert.Equal(t, first, m.Snapshot())
}

func TestLogin_Success(t *testing.T) {
	user := anaProfile()
	fc := &fakeClient{LoginRes: &api.AuthResult{Token: "t1", User: user}}
	store := storage.NewMemoryStore()

	m := NewManager(fc, store, testLogger())
	got, err := m.Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)

	snap := m.Snapshot()
	assertInvariant(t, snap)
	assert.Equal(t, StatusAuthenticated, snap.Status)
	assert.True(t, snap.User.Balance.Equal(decimal.RequireFromString("5.00")))

	// token and user persisted
	token, ok, err := store.Get(context.Background(), common.StorageKeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "t1", token)
}

func TestLogin_Rejected_NoCredentialsHeld(t *testing.T) {
	fc := &fakeClient{LoginErr: &api.Error{Kind: api.KindClient, Status: 401, Message: "credenciales incorrectas"}}

	m := NewManager(fc, storage.NewMemoryStore(), testLogger())
	_, err := m.Login(context.Background(), "a@x.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "credenciales incorrectas", api.MessageOf(err))

	snap := m.Snapshot()
	assertInvariant(t, snap)
	assert.Equal(t, StatusAuthFailed, snap.Status)
	assert.Equal(t, 1, fc.LoginCalls, "no automatic retry")
}

func TestRegister_Validation_FailsBeforeNetwork(t *testing.T) {
	tests := []struct {
		name string
		req  api.RegisterRequest
	}{
		{name: "empty national id", req: api.RegisterRequest{Email: "a@x.com", Name: "Ana", Password: "secret1"}},
		{name: "empty name", req: api.RegisterRequest{NationalID: "070", Email: "a@x.com", Password: "secret1"}},
		{name: "malformed email", req: api.RegisterRequest{NationalID: "070", Email: "not-an-email", Name: "Ana", Password: "secret1"}},
		{name: "short password", req: api.RegisterRequest{NationalID: "070", Email: "a@x.com", Name: "Ana", Password: "pw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{}
			m := NewManager(fc, storage.NewMemoryStore(), testLogger())

			_, err := m.Register(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, common.IsValidation(err), "want validation error, got %v", err)
			assert.Zero(t, fc.NetworkCalls, "validation must not reach the network")
		})
	}
}

func TestRegister_Success_AutoAuthenticates(t *testing.T) {
	user := anaProfile()
	fc := &fakeClient{RegisterRes: &api.AuthResult{Token: "t9", User: user}}

	m := NewManager(fc, storage.NewMemoryStore(), testLogger())
	req := api.RegisterRequest{NationalID: "0706175189", Email: "a@x.com", Name: "Ana", Phone: "", Password: "secret1"}

	_, err := m.Register(context.Background(), req)
	require.NoError(t, err)

	snap := m.Snapshot()
	assertInvariant(t, snap)
	assert.Equal(t, StatusAuthenticated, snap.Status)
	assert.Equal(t, "t9", snap.Token)
}

func TestLogout_StorageFailure_StillLogsOut(t *testing.T) {
	user := anaProfile()
	fc := &fakeClient{LoginRes: &api.AuthResult{Token: "t1", User: user}}

	m := NewManager(fc, failingStore{}, testLogger())
	_, err := m.Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)

	m.Logout(context.Background())

	snap := m.Snapshot()
	assertInvariant(t, snap)
	assert.Equal(t, StatusUnauthenticated, snap.Status)
	assert.Empty(t, fc.Token, "api client token cleared")
}

func TestUpdateProfile_RequiresAuthentication(t *testing.T) {
	fc := &fakeClient{}
	m := NewManager(fc, storage.NewMemoryStore(), testLogger())
	m.Restore(context.Background())

	name := "Ana María"
	_, err := m.UpdateProfile(context.Background(), models.ProfileUpdate{Name: &name})
	require.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.Zero(t, fc.NetworkCalls)
}

func TestUpdateProfile_MergesServerResult(t *testing.T) {
	user := anaProfile()
	updated := user
	updated.Name = "Ana María"

	fc := &fakeClient{
		LoginRes:  &api.AuthResult{Token: "t1", User: user},
		UpdateRes: &updated,
	}
	m := NewManager(fc, storage.NewMemoryStore(), testLogger())
	_, err := m.Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)

	name := "Ana María"
	got, err := m.UpdateProfile(context.Background(), models.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", got.Name)
	assert.Equal(t, "Ana María", m.Snapshot().User.Name)
}

func TestRefreshProfile_InstallsServerBalance(t *testing.T) {
	user := anaProfile()
	refreshed := user
	refreshed.Balance = decimal.RequireFromString("11.25")

	fc := &fakeClient{
		LoginRes:   &api.AuthResult{Token: "t1", User: user},
		ProfileRes: &refreshed,
	}
	m := NewManager(fc, storage.NewMemoryStore(), testLogger())
	_, err := m.Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)

	_, err = m.RefreshProfile(context.Background())
	require.NoError(t, err)

	balance, ok := m.Balance()
	require.True(t, ok)
	assert.True(t, balance.Equal(decimal.RequireFromString("11.25")))
}

func TestApplyBalance(t *testing.T) {
	user := anaProfile()
	fc := &fakeClient{LoginRes: &api.AuthResult{Token: "t1", User: user}}
	m := NewManager(fc, storage.NewMemoryStore(), testLogger())
	_, err := m.Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)

	m.ApplyBalance(context.Background(), decimal.RequireFromString("25.50"))

	balance, ok := m.Balance()
	require.True(t, ok)
	assert.True(t, balance.Equal(decimal.RequireFromString("25.50")))
}

func TestSubscribe_NotifiedOnTransitions(t *testing.T) {
	user := anaProfile()
	fc := &fakeClient{LoginRes: &api.AuthResult{Token: "t1", User: user}}
	m := NewManager(fc, storage.NewMemoryStore(), testLogger())

	var seen []Status
	unsubscribe := m.Subscribe(func(s Snapshot) { seen = append(seen, s.Status) })

	_, err := m.Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	m.Logout(context.Background())

	require.Equal(t, []Status{StatusAuthenticated, StatusUnauthenticated}, seen)

	unsubscribe()
	_, _ = m.Login(context.Background(), "a@x.com", "secret1")
	assert.Len(t, seen, 2, "no notifications after unsubscribe")
}

func TestLogin_NetworkFailure_LeavesUnauthenticated(t *testing.T) {
	fc := &fakeClient{LoginErr: &api.Error{Kind: api.KindNetwork, Message: "server unreachable", Status: 0}}
	m := NewManager(fc, storage.NewMemoryStore(), testLogger())

	_, err := m.Login(context.Background(), "a@x.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, api.KindNetwork, api.KindOf(err))

	snap := m.Snapshot()
	assertInvariant(t, snap)
	assert.Equal(t, StatusUnauthenticated, snap.Status)
}

func TestRestore_OpaqueToken_RestoresOptimistically(t *testing.T) {
	store := storage.NewMemoryStore()
	seedStore(t, store, "opaque-token-not-a-jwt")

	m := NewManager(&fakeClient{}, store, testLogger())
	m.Restore(context.Background())

	assert.Equal(t, StatusAuthenticated, m.Snapshot().Status)
}

func TestTokenExpired(t *testing.T) {
	assert.True(t, tokenExpired(mustSign(t, time.Now().Add(-time.Minute))))
	assert.False(t, tokenExpired(mustSign(t, time.Now().Add(time.Hour))))
	assert.False(t, tokenExpired("opaque"))
}

func mustSign(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()})
	signed, err := token.SignedString([]byte("k"))
	require.NoError(t, err)
	return signed
}

func TestLoginError_IsNotValidation(t *testing.T) {
	err := &api.Error{Kind: api.KindClient, Status: 400, Message: "correo ya registrado"}
	assert.False(t, common.IsValidation(err))
	assert.False(t, errors.Is(err, common.ErrUnauthenticated))
}
