package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRoles_PreservesOrder(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	resolved, err := svc.ResolveRoles(ctx, []string{"service_admin", "viewer", "asset_publisher"})
	require.NoError(t, err)
	require.Len(t, resolved, 3)

	assert.Equal(t, "service_admin", resolved[0].Name)
	assert.Equal(t, "viewer", resolved[1].Name)
	assert.Equal(t, "asset_publisher", resolved[2].Name)

	assert.Contains(t, resolved[0].Permissions, "services:manage")
	assert.Contains(t, resolved[1].Permissions, "catalog:read")
}

func TestResolveRoles_DropsMissingWithoutFailing(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	resolved, err := svc.ResolveRoles(ctx, []string{"viewer", "deleted_role", "asset_admin"})
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	assert.Equal(t, "viewer", resolved[0].Name)
	assert.Equal(t, "asset_admin", resolved[1].Name)
}

func TestResolveRoles_Empty(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)

	resolved, err := svc.ResolveRoles(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestResolvePermissions_DeduplicatesAcrossRoles(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	perms, err := svc.ResolvePermissions(ctx, []string{"asset_admin", "asset_publisher"})
	require.NoError(t, err)

	// both roles grant catalog:read and assets:publish; each appears once
	counts := make(map[string]int)
	for _, p := range perms {
		counts[p]++
	}
	for name, n := range counts {
		assert.Equal(t, 1, n, "permission %s duplicated", name)
	}
	assert.Contains(t, perms, "assets:manage")
	assert.Contains(t, perms, "assets:publish")
	assert.Contains(t, perms, "catalog:read")
}
