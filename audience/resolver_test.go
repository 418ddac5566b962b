package audience

import (
	"comms-hub/domain"
	errs "comms-hub/errors"
	"comms-hub/mocks"
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func identity(id, tenant, role string) domain.RecipientIdentity {
	return domain.RecipientIdentity{ID: id, TenantID: tenant, Address: id + "@school.example", Role: role}
}

func TestResolver_Expands_Roles_And_Unions_Explicit_Recipients(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectory(ctrl)
	resolver := NewResolver(dir, testLogger())

	dir.EXPECT().MembersOfRole(ctx, "T1", "teacher").Return([]domain.RecipientIdentity{
		identity("U1", "T1", "teacher"),
		identity("U2", "T1", "teacher"),
	}, nil)
	dir.EXPECT().Identity(ctx, "T1", "U3").Return(identity("U3", "T1", "parent"), nil)

	resolved, err := resolver.Resolve(ctx, "T1", domain.Audience{
		Roles:      []string{"teacher"},
		Recipients: []string{"U3"},
	})

	req.NoError(err)
	req.Len(resolved.Members, 3)
	req.Equal([]string{"U1@school.example", "U2@school.example", "U3@school.example"}, resolved.Addresses())
}

func TestResolver_Deduplicates_By_Recipient_Id(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectory(ctrl)
	resolver := NewResolver(dir, testLogger())

	// Given U1 is both a teacher and explicitly listed
	dir.EXPECT().MembersOfRole(ctx, "T1", "teacher").Return([]domain.RecipientIdentity{
		identity("U1", "T1", "teacher"),
	}, nil)
	dir.EXPECT().Identity(ctx, "T1", "U1").Return(identity("U1", "T1", "teacher"), nil)

	resolved, err := resolver.Resolve(ctx, "T1", domain.Audience{
		Roles:      []string{"teacher"},
		Recipients: []string{"U1"},
	})

	req.NoError(err)
	req.Len(resolved.Members, 1)
}

func TestResolver_Drops_Cross_Tenant_Records(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectory(ctrl)
	resolver := NewResolver(dir, testLogger())

	// Given a misbehaving directory leaking a record from another tenant
	dir.EXPECT().MembersOfRole(ctx, "T1", "staff").Return([]domain.RecipientIdentity{
		identity("U1", "T1", "staff"),
		identity("EVIL", "T2", "staff"),
	}, nil)

	resolved, err := resolver.Resolve(ctx, "T1", domain.Audience{Roles: []string{"staff"}})

	// Then the foreign record is filtered out, not surfaced as an error
	req.NoError(err)
	req.Len(resolved.Members, 1)
	req.True(resolved.Contains("U1"))
	req.False(resolved.Contains("EVIL"))
}

func TestResolver_Empty_Audience_Yields_Empty_Set(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectory(ctrl)
	resolver := NewResolver(dir, testLogger())

	resolved, err := resolver.Resolve(context.Background(), "T1", domain.Audience{})

	req.NoError(err)
	req.True(resolved.IsEmpty())
}

func TestResolver_Role_With_No_Members_Yields_Empty_Set(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectory(ctrl)
	resolver := NewResolver(dir, testLogger())

	dir.EXPECT().MembersOfRole(ctx, "T1", "alumni").Return(nil, nil)

	resolved, err := resolver.Resolve(ctx, "T1", domain.Audience{Roles: []string{"alumni"}})

	req.NoError(err)
	req.True(resolved.IsEmpty())
}

func TestResolver_Unknown_Explicit_Recipient_Is_Dropped(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectory(ctrl)
	resolver := NewResolver(dir, testLogger())

	dir.EXPECT().Identity(ctx, "T1", "ghost").Return(domain.RecipientIdentity{}, errs.ErrRecipientNotFound)

	resolved, err := resolver.Resolve(ctx, "T1", domain.Audience{Recipients: []string{"ghost"}})

	req.NoError(err)
	req.True(resolved.IsEmpty())
}

func TestResolver_Directory_Failure_Aborts(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectory(ctrl)
	resolver := NewResolver(dir, testLogger())

	dir.EXPECT().MembersOfRole(ctx, "T1", "teacher").Return(nil, fmt.Errorf("connection refused"))

	_, err := resolver.Resolve(ctx, "T1", domain.Audience{Roles: []string{"teacher"}})

	req.ErrorIs(err, errs.ErrDirectoryUnavailable)
}

func TestResolver_Requires_Tenant(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	resolver := NewResolver(mocks.NewMockDirectory(ctrl), testLogger())

	_, err := resolver.Resolve(context.Background(), "", domain.Audience{})

	req.Error(err)
}
