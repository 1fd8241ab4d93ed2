package store

import (
	"context"
	"errors"

	"account-service/internal/model"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a user insert violates the
	// (tenant_id, email) unique index. The storage-layer constraint is
	// the authoritative guard; callers must be prepared to see this
	// from Provision even after a clean duplicate pre-check.
	ErrDuplicateEmail = errors.New("email already exists")
)

// CredentialStore owns durable storage and uniqueness enforcement for
// Tenant, User and Company records.
type CredentialStore interface {
	// FindUserByEmail looks a user up by email alone, across all
	// tenants. Registration uses it as the duplicate pre-check and
	// login as the credential fetch.
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)

	// FindUserByID fetches a user by primary key. Token refresh uses
	// it to re-derive the role instead of trusting stale claims.
	FindUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// FindTenantByID fetches a tenant by primary key.
	FindTenantByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error)

	// Provision creates the tenant, its admin user and its default
	// company as one atomic unit: either all three rows exist
	// afterwards or none do.
	Provision(ctx context.Context, tenant *model.Tenant, user *model.User, company *model.Company) error

	// Ping reports whether the underlying database is reachable.
	Ping(ctx context.Context) error
}
