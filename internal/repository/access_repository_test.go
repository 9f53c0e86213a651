package repository

import (
	"context"
	"course_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessRepository_GrantIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccessRepository(db)
	ctx := context.Background()

	ok, err := repo.HasAccess(ctx, 1, "main")
	require.NoError(t, err)
	assert.False(t, ok)

	created, err := repo.Grant(ctx, &model.CourseAccess{UserID: 1, CourseSlug: "main", CheckoutSessionID: "cs_1", GrantedAt: now()})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Grant(ctx, &model.CourseAccess{UserID: 1, CourseSlug: "main", CheckoutSessionID: "cs_1", GrantedAt: now()})
	require.NoError(t, err)
	assert.False(t, created)

	ok, err = repo.HasAccess(ctx, 1, "main")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasAccess(ctx, 1, "other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAccessRepository_Exemptions(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccessRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.AddExemption(ctx, &model.ModuleAccessExemption{UserID: 1, ModuleID: 3, Reason: "transfer"}))
	require.NoError(t, repo.AddExemption(ctx, &model.ModuleAccessExemption{UserID: 1, ModuleID: 3, Reason: "updated"}))
	require.NoError(t, repo.AddExemption(ctx, &model.ModuleAccessExemption{UserID: 1, ModuleID: 4}))

	ids, err := repo.ListExemptModuleIDs(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{3, 4}, ids)

	n, err := repo.RemoveExemption(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ids, err = repo.ListExemptModuleIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{4}, ids)
}
