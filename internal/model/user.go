package model

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleTenantAdmin = "tenant_admin"
	RoleUser        = "user"
	RoleAdmin       = "admin"
)

// User represents one login principal stored in the database. A user
// belongs to exactly one tenant; the composite unique index makes
// (tenant_id, email) the authoritative duplicate guard, so a racing
// registration fails at commit time rather than slipping past the
// pre-check.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_users_tenant_email"`
	Email     string    `json:"email" gorm:"type:varchar(100);not null;uniqueIndex:idx_users_tenant_email"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	Name      string    `json:"name" gorm:"type:varchar(100)"`
	Role      string    `json:"role" gorm:"type:varchar(50);not null;default:'user'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Tenant Tenant `json:"-" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
}
