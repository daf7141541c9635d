package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeUserStore struct {
	mu sync.Mutex

	byID map[string]domain.User

	// injected errors (if set, method returns error)
	findByEmailErr error
	findByIDErr    error
	countErr       error
	createErr      error
	saveErr        error

	// record calls
	creates int
	saves   int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: map[string]domain.User{}}
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findByEmailErr != nil {
		return domain.User{}, f.findByEmailErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (f *fakeUserStore) FindByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findByIDErr != nil {
		return domain.User{}, f.findByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserStore) CountAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.byID)), nil
}

func (f *fakeUserStore) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
	}
	f.creates++
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserStore) Save(ctx context.Context, u domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrUserNotFound()
	}
	f.saves++
	f.byID[u.ID] = u
	return nil
}

// put seeds a user directly, bypassing Create bookkeeping.
func (f *fakeUserStore) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
}

func (f *fakeUserStore) get(t *testing.T, id string) domain.User {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		t.Fatalf("user %q not stored", id)
	}
	return u
}

type fakeTokenStore struct {
	mu sync.Mutex

	byUser map[string]domain.RefreshToken

	findErr       error
	createErr     error
	deleteErr     error
	invalidateErr error

	// raceWinner, if set, is stored right before Create reports a duplicate.
	raceWinner *domain.RefreshToken

	creates int
	deletes int
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{byUser: map[string]domain.RefreshToken{}}
}

func (f *fakeTokenStore) FindByUser(ctx context.Context, userID string) (domain.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return domain.RefreshToken{}, f.findErr
	}
	t, ok := f.byUser[userID]
	if !ok {
		return domain.RefreshToken{}, domain.ErrRefreshTokenNotFound()
	}
	return t, nil
}

func (f *fakeTokenStore) Create(ctx context.Context, t domain.RefreshToken) (domain.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.RefreshToken{}, f.createErr
	}
	if f.raceWinner != nil {
		f.byUser[f.raceWinner.UserID] = *f.raceWinner
		f.raceWinner = nil
	}
	if _, ok := f.byUser[t.UserID]; ok {
		return domain.RefreshToken{}, domain.ErrRefreshTokenExists()
	}
	f.creates++
	t.ID = "rt-" + t.UserID
	f.byUser[t.UserID] = t
	return t, nil
}

func (f *fakeTokenStore) DeleteByUser(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes++
	delete(f.byUser, userID)
	return nil
}

func (f *fakeTokenStore) Invalidate(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.invalidateErr != nil {
		return f.invalidateErr
	}
	t, ok := f.byUser[userID]
	if !ok {
		return nil
	}
	t.IsValid = false
	f.byUser[userID] = t
	return nil
}

type fakeMailer struct {
	mu sync.Mutex

	verifyErr error
	resetErr  error

	verifications []VerificationEmail
	resets        []ResetPasswordEmail
}

func (m *fakeMailer) SendVerificationEmail(ctx context.Context, msg VerificationEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.verifyErr != nil {
		return m.verifyErr
	}
	m.verifications = append(m.verifications, msg)
	return nil
}

func (m *fakeMailer) SendResetPasswordEmail(ctx context.Context, msg ResetPasswordEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resets = append(m.resets, msg)
	return nil
}

func (m *fakeMailer) lastReset(t *testing.T) ResetPasswordEmail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.resets) == 0 {
		t.Fatalf("no reset email sent")
	}
	return m.resets[len(m.resets)-1]
}

// fakeHasher stores "hash:" + password so tests can read it back.
type fakeHasher struct {
	hashFn func(pw string) (string, error)
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeTokenHasher struct{}

func (fakeTokenHasher) Hash(t domain.ResetToken) domain.ResetTokenHash {
	return domain.ResetTokenHash("sha:" + string(t))
}

/*
Clock
*/

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

/*
Service builder
*/

type testEnv struct {
	svc    *Service
	users  *fakeUserStore
	tokens *fakeTokenStore
	mailer *fakeMailer
	hasher *fakeHasher
	clock  *fakeClock
	audits *[]auditEntry
}

func newSvcForTest(t *testing.T) testEnv {
	t.Helper()

	env := testEnv{
		users:  newFakeUserStore(),
		tokens: newFakeTokenStore(),
		mailer: &fakeMailer{},
		hasher: &fakeHasher{},
		clock:  &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		audits: &[]auditEntry{},
	}

	audits := env.audits
	env.svc = NewService(env.users, env.tokens, env.mailer, env.hasher, fakeTokenHasher{}, Config{
		Origin:           "https://app.test",
		PasswordResetTTL: 10 * time.Minute,
	}).
		WithClock(env.clock.Now).
		WithAudit(func(action string, fields map[string]string) {
			cp := map[string]string{}
			for k, v := range fields {
				cp[k] = v
			}
			*audits = append(*audits, auditEntry{action: action, fields: cp})
		})

	// sanity check: no nil ports
	if env.svc == nil {
		t.Fatalf("svc is nil")
	}

	return env
}

// seedVerified stores a verified user with password "secret1".
func (e testEnv) seedVerified(id, email string) domain.User {
	u := domain.User{
		ID:           id,
		Email:        email,
		Name:         "User " + id,
		PasswordHash: "hash:secret1",
		Role:         string(domain.RoleUser),
		IsVerified:   true,
	}
	e.users.put(u)
	return u
}

/*
Small assertions
*/

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code=%q, got err=%v", code, err)
	}
}

func lastAudit(t *testing.T, audits *[]auditEntry) auditEntry {
	t.Helper()
	if len(*audits) == 0 {
		t.Fatalf("no audit entries")
	}
	return (*audits)[len(*audits)-1]
}
