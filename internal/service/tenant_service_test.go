package service

import (
	"context"
	"strconv"
	"testing"

	"notes-service/internal/errs"
	"notes-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlanOwnTenant(t *testing.T) {
	f := setup(t)
	plan, err := f.tenants.GetPlan(context.Background(), f.acmeMember, "acme")
	require.NoError(t, err)
	assert.Equal(t, model.PlanFree, plan)

	plan, err = f.tenants.GetPlan(context.Background(), f.acmeMember, strconv.FormatUint(uint64(f.acmeMember.TenantID), 10))
	require.NoError(t, err)
	assert.Equal(t, model.PlanFree, plan)
}

func TestGetPlanCrossTenantIsNotFound(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, foreign := f.tenants.GetPlan(ctx, f.acmeMember, "globex")
	_, missing := f.tenants.GetPlan(ctx, f.acmeMember, "initech")
	assert.True(t, errs.Is(foreign, errs.NotFound))
	assert.Equal(t, errs.MessageOf(missing), errs.MessageOf(foreign))

	_, err := f.tenants.GetPlan(ctx, f.acmeMember, strconv.FormatUint(uint64(f.globexMember.TenantID), 10))
	assert.True(t, errs.Is(err, errs.NotFound))
}

func TestUpgradeRequiresAdmin(t *testing.T) {
	f := setup(t)
	_, err := f.tenants.Upgrade(context.Background(), f.acmeMember, "acme")
	assert.True(t, errs.Is(err, errs.Forbidden))

	plan, err := f.tenants.GetPlan(context.Background(), f.acmeMember, "acme")
	require.NoError(t, err)
	assert.Equal(t, model.PlanFree, plan)
}

func TestUpgradeCrossTenantIsNotFound(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.tenants.Upgrade(ctx, f.acmeAdmin, "globex")
	assert.True(t, errs.Is(err, errs.NotFound))

	plan, err := f.tenants.GetPlan(ctx, f.globexAdmin, "globex")
	require.NoError(t, err)
	assert.Equal(t, model.PlanFree, plan)
}

func TestUpgradeIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		plan, err := f.tenants.Upgrade(ctx, f.acmeAdmin, "acme")
		require.NoError(t, err)
		assert.Equal(t, model.PlanPro, plan)
	}

	plan, err := f.tenants.GetPlan(ctx, f.acmeMember, "acme")
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, plan)
}
