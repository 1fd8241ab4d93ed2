package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"account-service/internal/model"
	"account-service/internal/store"
	"account-service/pkg/jwtutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// fakeStore is an in-memory CredentialStore. Provision either commits
// all three rows or, when provisionErr is set, stores nothing at all,
// mirroring the transactional rollback of the real store.
type fakeStore struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*model.User
	tenants      map[uuid.UUID]*model.Tenant
	companies    map[uuid.UUID]*model.Company
	provisionErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[uuid.UUID]*model.User),
		tenants:   make(map[uuid.UUID]*model.Tenant),
		companies: make(map[uuid.UUID]*model.Company),
	}
}

func (f *fakeStore) FindUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindUserByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		found := *u
		return &found, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindTenantByID(_ context.Context, id uuid.UUID) (*model.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tenants[id]; ok {
		found := *t
		return &found, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) Provision(_ context.Context, tenant *model.Tenant, user *model.User, company *model.Company) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.provisionErr != nil {
		return f.provisionErr
	}
	for _, u := range f.users {
		if u.TenantID == user.TenantID && u.Email == user.Email {
			return store.ErrDuplicateEmail
		}
	}
	f.tenants[tenant.ID] = tenant
	f.users[user.ID] = user
	f.companies[company.ID] = company
	return nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func newTestService(t *testing.T) (*AuthService, *fakeStore, *jwtutil.Issuer) {
	t.Helper()
	fs := newFakeStore()
	issuer := jwtutil.NewIssuer(jwtutil.NewHMACSigner([]byte("test-key")), 15*time.Minute, 7*24*time.Hour)
	// MinCost keeps the tests fast; production wiring uses cost 12.
	svc := NewAuthService(fs, issuer, bcrypt.MinCost, zap.NewNop())
	return svc, fs, issuer
}

func registerReq() RegisterRequest {
	return RegisterRequest{
		Email:       "a@x.com",
		Password:    "longenough1",
		Name:        "Ana",
		CompanyName: "Acme",
		Country:     "MZ",
		Currency:    "MZN",
	}
}

func TestRegisterProvisionsTenantUserCompany(t *testing.T) {
	svc, fs, issuer := newTestService(t)

	result, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	assert.Equal(t, "Acme", result.Tenant.Name)
	assert.Equal(t, model.RoleTenantAdmin, result.User.Role)
	assert.Equal(t, "a@x.com", result.User.Email)
	assert.Equal(t, "Ana", result.User.Name)

	tenant, ok := fs.tenants[result.Tenant.ID]
	require.True(t, ok, "tenant row must exist")
	assert.Equal(t, "MZ", tenant.Country)
	assert.Equal(t, "MZN", tenant.Currency)
	assert.Equal(t, model.PlanStarter, tenant.Plan)
	assert.Equal(t, model.TenantStatusActive, tenant.Status)

	user, ok := fs.users[result.User.ID]
	require.True(t, ok, "user row must exist")
	assert.Equal(t, tenant.ID, user.TenantID)
	assert.NotEqual(t, "longenough1", user.Password, "password must be stored hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("longenough1")))

	require.Len(t, fs.companies, 1)
	for _, company := range fs.companies {
		assert.Equal(t, tenant.ID, company.TenantID)
		assert.Equal(t, "Acme", company.Name)
		assert.Equal(t, "MZN", company.Currency)
		assert.True(t, company.IsDefault)
	}

	claims, err := issuer.ParseAccess(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, result.Tenant.ID, claims.TenantID)
	assert.Equal(t, model.RoleTenantAdmin, claims.Role)

	refreshClaims, err := issuer.ParseRefresh(result.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, refreshClaims.UserID)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, fs, _ := newTestService(t)

	req := registerReq()
	req.Email = "  Ana.Admin@X.Com "
	result, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ana.admin@x.com", result.User.Email)

	user := fs.users[result.User.ID]
	assert.Equal(t, "ana.admin@x.com", user.Email)
}

func TestRegisterDuplicateEmailRejected(t *testing.T) {
	svc, fs, _ := newTestService(t)

	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	// Same email under a different company name still fails: the
	// duplicate check is global by email, not per tenant.
	req := registerReq()
	req.CompanyName = "Other Corp"
	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	assert.Len(t, fs.tenants, 1, "no second tenant may be created")
	assert.Len(t, fs.users, 1)
	assert.Len(t, fs.companies, 1)
}

func TestRegisterDuplicateRaceSurfacesAsDuplicate(t *testing.T) {
	// The pre-check passes (store is empty) but the unique constraint
	// fires at commit, as happens when two registrations race.
	svc, fs, _ := newTestService(t)
	fs.provisionErr = store.ErrDuplicateEmail

	_, err := svc.Register(context.Background(), registerReq())
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Empty(t, fs.tenants)
}

func TestRegisterProvisionFailureIsAtomic(t *testing.T) {
	svc, fs, _ := newTestService(t)
	fs.provisionErr = assert.AnError

	_, err := svc.Register(context.Background(), registerReq())
	assert.ErrorIs(t, err, ErrInternal)

	// No orphan rows of any kind after a rollback.
	assert.Empty(t, fs.tenants)
	assert.Empty(t, fs.users)
	assert.Empty(t, fs.companies)
}

func TestLoginSuccess(t *testing.T) {
	svc, _, _ := newTestService(t)

	registered, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "longenough1"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, result.User.ID)
	assert.Equal(t, registered.Tenant.ID, result.Tenant.ID)
	assert.Equal(t, "Acme", result.Tenant.Name)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	_, unknownErr := svc.Login(context.Background(), LoginRequest{Email: "nobody@x.com", Password: "longenough1"})
	_, wrongPassErr := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "wrong-password"})

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongPassErr, ErrInvalidCredentials)
	// Identical error values, so handlers cannot leak which case hit.
	assert.Equal(t, unknownErr, wrongPassErr)
}

func TestLoginNormalizesEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "A@X.COM", Password: "longenough1"})
	assert.NoError(t, err)
}

func TestRefreshReDerivesRoleFromStore(t *testing.T) {
	svc, fs, issuer := newTestService(t)

	registered, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	// Demote the user after the refresh token was issued.
	fs.mu.Lock()
	fs.users[registered.User.ID].Role = model.RoleUser
	fs.mu.Unlock()

	access, err := svc.Refresh(context.Background(), registered.RefreshToken)
	require.NoError(t, err)

	claims, err := issuer.ParseAccess(access)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, claims.Role, "refresh must pick up the current role, not the stale claim")
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	registered, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), registered.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRejectsDeletedUser(t *testing.T) {
	svc, fs, _ := newTestService(t)
	registered, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	fs.mu.Lock()
	delete(fs.users, registered.User.ID)
	fs.mu.Unlock()

	_, err = svc.Refresh(context.Background(), registered.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMe(t *testing.T) {
	svc, _, _ := newTestService(t)
	registered, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	user, tenant, err := svc.Me(context.Background(), registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, registered.User, *user)
	assert.Equal(t, registered.Tenant, *tenant)

	_, _, err = svc.Me(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordRoundTrip(t *testing.T) {
	for _, password := range []string{"longenough1", "correct horse battery staple", "päss wörd 12"} {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte(password)))
		assert.Error(t, bcrypt.CompareHashAndPassword(hash, []byte(password+"x")))
	}
}
