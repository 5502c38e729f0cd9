package domain

import (
	"time"

	"github.com/google/uuid"
)

// TenantCreatedEvent is published after a company is registered and its
// admin user seeded. Subscribers run outside the registration transaction.
type TenantCreatedEvent struct {
	TenantID  uuid.UUID
	Name      string
	Subdomain string
	Timestamp time.Time
}

// UserCreatedEvent is published after a user is created inside an existing
// tenant (not for the seeded admin, which rides TenantCreatedEvent).
type UserCreatedEvent struct {
	TenantID  uuid.UUID
	UserID    uuid.UUID
	Email     string
	Role      UserRole
	Timestamp time.Time
}
