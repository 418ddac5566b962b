package domain

import "github.com/samber/lo"

// RecipientIdentity is produced by the Directory. The core treats it as a
// value and never mutates it.
type RecipientIdentity struct {
	ID       string
	TenantID string
	Address  string
	Role     string
}

// ResolvedAudience is the deduplicated set of recipients computed once per
// communication. Every member's TenantID equals the communication's TenantID;
// the resolver enforces this even against a misbehaving Directory.
type ResolvedAudience struct {
	TenantID string
	Members  []RecipientIdentity
}

func (ra ResolvedAudience) IsEmpty() bool {
	return len(ra.Members) == 0
}

// Addresses returns the contact addresses in member order, for the
// delivery job's target list.
func (ra ResolvedAudience) Addresses() []string {
	return lo.Map(ra.Members, func(m RecipientIdentity, _ int) string {
		return m.Address
	})
}

func (ra ResolvedAudience) Contains(recipientID string) bool {
	return lo.ContainsBy(ra.Members, func(m RecipientIdentity) bool {
		return m.ID == recipientID
	})
}
