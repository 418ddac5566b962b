// Package audience expands a communication's declared audience into the
// concrete recipient set, scoped to one tenant.
package audience

import (
	"comms-hub/contract"
	"comms-hub/domain"
	errs "comms-hub/errors"
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var _ contract.IResolver = (*Resolver)(nil)

type Resolver struct {
	directory contract.Directory
	log       *slog.Logger
}

func NewResolver(directory contract.Directory, log *slog.Logger) *Resolver {
	return &Resolver{directory: directory, log: log}
}

// Resolve expands each role tag into the Directory's current membership,
// unions it with the explicitly-listed recipients and deduplicates by
// recipient id, keeping the first occurrence. Records whose tenant doesn't
// match are dropped with a consistency warning, never returned: the
// Directory is not trusted across the tenant boundary.
//
// An empty audience yields an empty set and no error; a communication may
// legitimately target nobody while drafted. Only a Directory transport
// failure aborts, with ErrDirectoryUnavailable.
func (r *Resolver) Resolve(ctx context.Context, tenantID string, audience domain.Audience) (domain.ResolvedAudience, error) {
	if tenantID == "" {
		return domain.ResolvedAudience{}, fmt.Errorf("tenant id is required")
	}

	resolved := domain.ResolvedAudience{TenantID: tenantID}
	seen := make(map[string]struct{})

	for _, role := range audience.Roles {
		members, err := r.directory.MembersOfRole(ctx, tenantID, role)
		if err != nil {
			r.log.Error("Directory role expansion failed", "tenant", tenantID, "role", role, "error", err)
			return domain.ResolvedAudience{}, fmt.Errorf("expanding role %q: %w", role, errs.ErrDirectoryUnavailable)
		}
		for _, member := range members {
			resolved = r.admit(resolved, seen, tenantID, member)
		}
	}

	for _, recipientID := range audience.Recipients {
		identity, err := r.directory.Identity(ctx, tenantID, recipientID)
		if errors.Is(err, errs.ErrRecipientNotFound) {
			r.log.Warn("Unknown explicit recipient dropped", "tenant", tenantID, "recipient", recipientID)
			continue
		}
		if err != nil {
			r.log.Error("Directory identity lookup failed", "tenant", tenantID, "recipient", recipientID, "error", err)
			return domain.ResolvedAudience{}, fmt.Errorf("looking up recipient %q: %w", recipientID, errs.ErrDirectoryUnavailable)
		}
		resolved = r.admit(resolved, seen, tenantID, identity)
	}

	return resolved, nil
}

// admit filters and deduplicates one candidate. Tenant mismatch fails
// closed: the record is logged and dropped.
func (r *Resolver) admit(resolved domain.ResolvedAudience, seen map[string]struct{}, tenantID string, identity domain.RecipientIdentity) domain.ResolvedAudience {
	if identity.TenantID != tenantID {
		r.log.Warn("Dropping cross-tenant directory record",
			"tenant", tenantID, "recipient", identity.ID, "recipient_tenant", identity.TenantID)
		return resolved
	}
	if _, ok := seen[identity.ID]; ok {
		return resolved
	}
	seen[identity.ID] = struct{}{}
	resolved.Members = append(resolved.Members, identity)
	return resolved
}
