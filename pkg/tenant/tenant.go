package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tenant represents a customer account with the minimal information needed
// for request-scoped operations. Quota accounting keys everything by the
// tenant ID; the remaining fields exist for HTTP plumbing and logging.
type Tenant struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Subdomain string     `json:"subdomain"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the tenant has been soft-deleted.
func (t *Tenant) Deleted() bool {
	return t.DeletedAt != nil
}

// Provider loads tenant information from a data source.
// Implementations should handle various identifier formats
// (UUID, subdomain, etc.) based on application needs.
type Provider interface {
	// GetByIdentifier retrieves a tenant using any unique identifier.
	// Returns ErrTenantNotFound if no tenant matches the identifier.
	GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error)
}
