package directory

import (
	"comms-hub/domain"
	errs "comms-hub/errors"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatic_MembersOfRole_Is_Tenant_Scoped_And_Sorted(t *testing.T) {
	req := require.New(t)
	dir := NewStatic().Seed(
		domain.RecipientIdentity{ID: "U2", TenantID: "T1", Address: "u2@school.example", Role: "teacher"},
		domain.RecipientIdentity{ID: "U1", TenantID: "T1", Address: "u1@school.example", Role: "teacher"},
		domain.RecipientIdentity{ID: "U3", TenantID: "T1", Address: "u3@school.example", Role: "parent"},
		domain.RecipientIdentity{ID: "U4", TenantID: "T2", Address: "u4@other.example", Role: "teacher"},
	)

	members, err := dir.MembersOfRole(context.Background(), "T1", "teacher")

	req.NoError(err)
	req.Len(members, 2)
	req.Equal("U1", members[0].ID)
	req.Equal("U2", members[1].ID)
}

func TestStatic_Identity(t *testing.T) {
	req := require.New(t)
	dir := NewStatic().Seed(
		domain.RecipientIdentity{ID: "U1", TenantID: "T1", Address: "u1@school.example", Role: "teacher"},
	)

	identity, err := dir.Identity(context.Background(), "T1", "U1")
	req.NoError(err)
	req.Equal("u1@school.example", identity.Address)

	// Same id under another tenant is not visible
	_, err = dir.Identity(context.Background(), "T2", "U1")
	req.ErrorIs(err, errs.ErrRecipientNotFound)

	_, err = dir.Identity(context.Background(), "T1", "ghost")
	req.ErrorIs(err, errs.ErrRecipientNotFound)
}
