// Package directory holds the in-memory Directory used in the
// single-binary setup and in tests. Production deployments replace it with
// a client for the host backend; the core depends only on the contract.
package directory

import (
	"comms-hub/contract"
	"comms-hub/domain"
	errs "comms-hub/errors"
	"context"
	"sort"
	"sync"
)

type Static struct {
	mu sync.RWMutex
	// tenant -> recipient id -> identity
	identities map[string]map[string]domain.RecipientIdentity
}

var _ contract.Directory = (*Static)(nil)

func NewStatic() *Static {
	return &Static{identities: make(map[string]map[string]domain.RecipientIdentity)}
}

// Seed adds identities, keyed under the tenant each record declares.
func (s *Static) Seed(identities ...domain.RecipientIdentity) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, identity := range identities {
		tenant, ok := s.identities[identity.TenantID]
		if !ok {
			tenant = make(map[string]domain.RecipientIdentity)
			s.identities[identity.TenantID] = tenant
		}
		tenant[identity.ID] = identity
	}
	return s
}

// MembersOfRole returns the tenant's current membership for a role, sorted
// by recipient id so resolution is deterministic for a fixed snapshot.
func (s *Static) MembersOfRole(_ context.Context, tenantID, role string) ([]domain.RecipientIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var members []domain.RecipientIdentity
	for _, identity := range s.identities[tenantID] {
		if identity.Role == role {
			members = append(members, identity)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

func (s *Static) Identity(_ context.Context, tenantID, recipientID string) (domain.RecipientIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.identities[tenantID][recipientID]
	if !ok {
		return domain.RecipientIdentity{}, errs.ErrRecipientNotFound
	}
	return identity, nil
}
