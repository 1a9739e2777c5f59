// Package session owns the authentication state machine: it is the single
// source of truth for who is logged in, which bearer token outgoing calls
// carry, and the cached user profile including balance. All mutations of
// session state go through the Manager; everything else is a read-only
// consumer via Snapshot and Subscribe.
package session

import (
	"context"
	"encoding/json"
	"regexp"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/tuparking/tuparking/internal/client/api"
	"github.com/tuparking/tuparking/internal/client/models"
	"github.com/tuparking/tuparking/internal/client/storage"
	"github.com/tuparking/tuparking/internal/common"
	"github.com/tuparking/tuparking/internal/logging"
)

// Status is the session lifecycle state.
type Status string

const (
	StatusRestoring       Status = "restoring"
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticated   Status = "authenticated"
	StatusAuthFailed      Status = "authentication_failed"
)

// Snapshot is an immutable view of the session. Invariant: Token is non-empty
// iff Status is StatusAuthenticated iff User is non-nil.
type Snapshot struct {
	Status Status
	Token  string
	User   *models.UserProfile
}

// Manager implements the session state machine over a remote API client and
// a persistent store. Safe for concurrent use.
type Manager struct {
	client api.Client
	store  storage.Store
	log    logging.Logger

	mu     sync.RWMutex
	status Status
	token  string
	user   *models.UserProfile
	subs   map[int]func(Snapshot)
	nextID int

	restoreOnce sync.Once
}

// NewManager builds a Manager in the Restoring state; call Restore once at
// startup to resolve it.
func NewManager(client api.Client, store storage.Store, log logging.Logger) *Manager {
	return &Manager{
		client: client,
		store:  store,
		log:    log,
		status: StatusRestoring,
		subs:   map[int]func(Snapshot){},
	}
}

// Snapshot returns the current session view.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	s := Snapshot{Status: m.status, Token: m.token}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

// Subscribe registers fn to be called after every state change. The returned
// function unsubscribes.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// transition applies fn under the lock, then notifies subscribers with the
// resulting snapshot.
func (m *Manager) transition(fn func()) {
	m.mu.Lock()
	fn()
	snap := m.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(m.subs))
	for _, s := range m.subs {
		subs = append(subs, s)
	}
	m.mu.Unlock()

	for _, s := range subs {
		s(snap)
	}
}

func (m *Manager) setAuthenticated(token string, user *models.UserProfile) {
	m.client.SetToken(token)
	m.transition(func() {
		m.status = StatusAuthenticated
		m.token = token
		m.user = user
	})
}

func (m *Manager) setUnauthenticated(status Status) {
	m.client.ClearToken()
	m.transition(func() {
		m.status = status
		m.token = ""
		m.user = nil
	})
}

// Restore resolves the Restoring state from the persistent store. It runs at
// most once per process; later calls are no-ops, and the outcome is the same
// as for a single call. No server round-trip is made: a persisted token plus
// user record restores optimistically, anything else degrades to
// Unauthenticated (storage failure included, never a crash). The one local
// check is the token's own expiry claim, when it happens to be a JWT.
func (m *Manager) Restore(ctx context.Context) {
	m.restoreOnce.Do(func() { m.restore(ctx) })
}

func (m *Manager) restore(ctx context.Context) {
	token, ok, err := m.store.Get(ctx, common.StorageKeyToken)
	if err != nil {
		m.log.Warn(ctx, "session restore: store unavailable", "err", err)
		m.setUnauthenticated(StatusUnauthenticated)
		return
	}
	if !ok || token == "" {
		m.setUnauthenticated(StatusUnauthenticated)
		return
	}

	rawUser, ok, err := m.store.Get(ctx, common.StorageKeyUser)
	if err != nil || !ok {
		if err != nil {
			m.log.Warn(ctx, "session restore: store unavailable", "err", err)
		}
		m.setUnauthenticated(StatusUnauthenticated)
		return
	}

	var user models.UserProfile
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		m.log.Warn(ctx, "session restore: cached user unreadable", "err", err)
		m.setUnauthenticated(StatusUnauthenticated)
		return
	}

	if tokenExpired(token) {
		m.log.Info(ctx, "session restore: persisted token expired")
		m.clearPersisted(ctx)
		m.setUnauthenticated(StatusUnauthenticated)
		return
	}

	m.setAuthenticated(token, &user)
	m.log.Info(ctx, "session restored", "user", user.Email)
}

// tokenExpired inspects the token's exp claim without verifying the
// signature (the server remains the authority; this only avoids restoring a
// session the first request would reject anyway). Opaque tokens pass.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// emailRe is the same loose address check the registration form applies.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Login authenticates against the backend. On success the token and profile
// are persisted and the session becomes Authenticated; on rejection the
// session holds no credentials and the server's message is surfaced
// verbatim. No automatic retry.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.UserProfile, error) {
	res, err := m.client.Login(ctx, email, password)
	if err != nil {
		if api.KindOf(err) == api.KindClient {
			m.setUnauthenticated(StatusAuthFailed)
		} else {
			m.setUnauthenticated(StatusUnauthenticated)
		}
		return nil, err
	}

	m.persist(ctx, res.Token, &res.User)
	user := res.User
	m.setAuthenticated(res.Token, &user)
	m.log.Info(ctx, "login successful", "user", user.Email)
	return &user, nil
}

// Register validates the form client-side, creates the account, and
// auto-authenticates it. Validation failures return before any network call.
func (m *Manager) Register(ctx context.Context, req api.RegisterRequest) (*models.UserProfile, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	res, err := m.client.Register(ctx, req)
	if err != nil {
		if api.KindOf(err) == api.KindClient {
			m.setUnauthenticated(StatusAuthFailed)
		}
		return nil, err
	}

	m.persist(ctx, res.Token, &res.User)
	user := res.User
	m.setAuthenticated(res.Token, &user)
	m.log.Info(ctx, "registration successful", "user", user.Email)
	return &user, nil
}

func validateRegistration(req api.RegisterRequest) error {
	switch {
	case req.NationalID == "":
		return common.NewValidationError("cedula", "required")
	case req.Name == "":
		return common.NewValidationError("nombre", "required")
	case req.Email == "":
		return common.NewValidationError("correo", "required")
	case !emailRe.MatchString(req.Email):
		return common.NewValidationError("correo", "not a valid email address")
	case len(req.Password) < 6:
		return common.NewValidationError("contrasena", "must be at least 6 characters")
	}
	return nil
}

// Logout clears the session. The persisted entries are removed best-effort:
// a failing store never blocks the logical logout.
func (m *Manager) Logout(ctx context.Context) {
	m.clearPersisted(ctx)
	m.setUnauthenticated(StatusUnauthenticated)
	m.log.Info(ctx, "logged out")
}

func (m *Manager) clearPersisted(ctx context.Context) {
	if err := m.store.Remove(ctx, common.StorageKeyToken); err != nil {
		m.log.Warn(ctx, "clearing persisted token failed", "err", err)
	}
	if err := m.store.Remove(ctx, common.StorageKeyUser); err != nil {
		m.log.Warn(ctx, "clearing persisted user failed", "err", err)
	}
}

// UpdateProfile sends the changed fields, replaces the cached profile with
// the server's result, and re-persists it.
func (m *Manager) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.UserProfile, error) {
	snap := m.Snapshot()
	if snap.Status != StatusAuthenticated {
		return nil, common.ErrUnauthenticated
	}
	if update.Empty() {
		return nil, common.NewValidationError("", "nothing to update")
	}

	updated, err := m.client.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}

	m.persist(ctx, snap.Token, updated)
	m.transition(func() { m.user = updated })
	return updated, nil
}

// RefreshProfile re-fetches the profile so the cached balance reflects the
// server's authoritative value. This is the reconciliation point after every
// operation that changes balance.
func (m *Manager) RefreshProfile(ctx context.Context) (*models.UserProfile, error) {
	snap := m.Snapshot()
	if snap.Status != StatusAuthenticated {
		return nil, common.ErrUnauthenticated
	}

	user, err := m.client.GetProfile(ctx)
	if err != nil {
		return nil, err
	}

	m.persist(ctx, snap.Token, user)
	m.transition(func() { m.user = user })
	return user, nil
}

// ApplyBalance installs a server-returned balance (e.g. the recharge
// response) into the cached profile. The value must come from a server
// response, never from local arithmetic.
func (m *Manager) ApplyBalance(ctx context.Context, balance decimal.Decimal) {
	var persisted *models.UserProfile
	m.transition(func() {
		if m.user == nil {
			return
		}
		m.user.Balance = balance
		u := *m.user
		persisted = &u
	})

	if persisted != nil {
		m.persist(ctx, m.Snapshot().Token, persisted)
	}
}

// Balance returns the cached balance; ok is false when nobody is logged in.
func (m *Manager) Balance() (decimal.Decimal, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return decimal.Zero, false
	}
	return m.user.Balance, true
}

// persist writes the token and profile to the store, best-effort. A failure
// means the session will not survive a restart, which is survivable.
func (m *Manager) persist(ctx context.Context, token string, user *models.UserProfile) {
	if err := m.store.Set(ctx, common.StorageKeyToken, token); err != nil {
		m.log.Warn(ctx, "persisting token failed", "err", err)
		return
	}

	raw, err := json.Marshal(user)
	if err != nil {
		m.log.Warn(ctx, "encoding user for persistence failed", "err", err)
		return
	}
	if err := m.store.Set(ctx, common.StorageKeyUser, string(raw)); err != nil {
		m.log.Warn(ctx, "persisting user failed", "err", err)
	}
}
