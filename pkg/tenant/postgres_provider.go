package tenant

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgProvider is the PostgreSQL Provider implementation.
type pgProvider struct {
	pool *pgxpool.Pool
}

// NewPostgresProvider returns a Provider backed by the given connection pool.
// Identifiers that parse as UUIDs are matched against the tenant ID,
// anything else against the subdomain.
func NewPostgresProvider(pool *pgxpool.Pool) Provider {
	return &pgProvider{pool: pool}
}

func (p *pgProvider) GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrInvalidIdentifier
	}

	const base = `SELECT id, name, subdomain, active, created_at, deleted_at FROM tenants `

	var row pgx.Row
	if id, err := uuid.Parse(identifier); err == nil {
		row = p.pool.QueryRow(ctx, base+`WHERE id = $1`, id)
	} else {
		row = p.pool.QueryRow(ctx, base+`WHERE subdomain = $1`, strings.ToLower(identifier))
	}

	var t Tenant
	if err := row.Scan(&t.ID, &t.Name, &t.Subdomain, &t.Active, &t.CreatedAt, &t.DeletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return &t, nil
}
