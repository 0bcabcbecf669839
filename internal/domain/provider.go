package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ProviderStatus string

const (
	ProviderStatusPending   ProviderStatus = "pending"
	ProviderStatusActive    ProviderStatus = "active"
	ProviderStatusVerified  ProviderStatus = "verified"
	ProviderStatusSuspended ProviderStatus = "suspended"
)

// Provider is a read model owned by the provider-management collaborator.
// The scheduling core never writes these rows.
type Provider struct {
	bun.BaseModel `bun:"table:providers"`

	ID              uuid.UUID      `bun:"id,pk,type:uuid"`
	Name            string         `bun:"name,notnull"`
	Status          ProviderStatus `bun:"status,notnull"`
	AcceptsBookings bool           `bun:"accepts_bookings,notnull"`
	CreatedAt       time.Time      `bun:"created_at,notnull"`
	UpdatedAt       time.Time      `bun:"updated_at,notnull"`
}

func (p *Provider) Bookable() bool {
	if !p.AcceptsBookings {
		return false
	}
	return p.Status == ProviderStatusActive || p.Status == ProviderStatusVerified
}

// Service is the offering a booking reserves. Read-only here, like Provider.
type Service struct {
	bun.BaseModel `bun:"table:services"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	ProviderID uuid.UUID `bun:"provider_id,notnull,type:uuid"`
	Name       string    `bun:"name,notnull"`
	Available  bool      `bun:"available,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

// AvailabilityWindow is one recurring weekly open interval for a provider.
// Weekday follows time.Weekday numbering (Sunday = 0). Open and close are
// minutes from midnight; the window covers [open, close).
type AvailabilityWindow struct {
	bun.BaseModel `bun:"table:availability_windows"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	ProviderID  uuid.UUID `bun:"provider_id,notnull,type:uuid"`
	Weekday     int       `bun:"weekday,notnull"`
	OpenMinute  int       `bun:"open_minute,notnull"`
	CloseMinute int       `bun:"close_minute,notnull"`
	Enabled     bool      `bun:"enabled,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}
