package model

import (
	"time"

	"github.com/google/uuid"
)

// Subscription plans
const (
	PlanStarter    = "starter"
	PlanGrowth     = "growth"
	PlanEnterprise = "enterprise"
)

// Tenant statuses
const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

// Tenant represents one customer organization stored in the database.
// This is the core of our multi-tenant architecture: every user and
// company row hangs off exactly one tenant, and the tenant ID is
// immutable after creation.
type Tenant struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Country   string    `json:"country" gorm:"type:varchar(2)"`
	Currency  string    `json:"currency" gorm:"type:varchar(3)"`
	Plan      string    `json:"plan" gorm:"type:varchar(20);not null;default:'starter'"`
	Status    string    `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
