package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drover/internal/idempotent"
)

func TestRedisRepository_Add(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, false, true)

	ctx := context.Background()
	repo := idempotent.NewRedisRepository(infra.RedisClient, "test:idempotent:", 5*time.Second)

	added, err := repo.Add(ctx, "order-1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Add(ctx, "order-1")
	require.NoError(t, err)
	assert.False(t, added)

	added, err = repo.Add(ctx, "order-2")
	require.NoError(t, err)
	assert.True(t, added)
}

func TestRedisRepository_ContainsAndRemove(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, false, true)

	ctx := context.Background()
	repo := idempotent.NewRedisRepository(infra.RedisClient, "test:idempotent:", 5*time.Second)

	_, err := repo.Add(ctx, "order-3")
	require.NoError(t, err)

	contains, err := repo.Contains(ctx, "order-3")
	require.NoError(t, err)
	assert.True(t, contains)

	require.NoError(t, repo.Remove(ctx, "order-3"))

	contains, err = repo.Contains(ctx, "order-3")
	require.NoError(t, err)
	assert.False(t, contains)

	added, err := repo.Add(ctx, "order-3")
	require.NoError(t, err)
	assert.True(t, added)
}

func TestRedisRepository_WindowExpiry(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, false, true)

	ctx := context.Background()
	repo := idempotent.NewRedisRepository(infra.RedisClient, "test:idempotent:", 1*time.Second)

	added, err := repo.Add(ctx, "order-4")
	require.NoError(t, err)
	assert.True(t, added)

	time.Sleep(2 * time.Second)

	added, err = repo.Add(ctx, "order-4")
	require.NoError(t, err)
	assert.True(t, added, "key should be addable again after the window expires")
}

func TestRedisRepository_ContextCancellation(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, false, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := idempotent.NewRedisRepository(infra.RedisClient, "test:idempotent:", 5*time.Second)

	_, err := repo.Add(ctx, "order-5")
	require.Error(t, err)
}

func TestPostgresRepository_Add(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	ctx := context.Background()
	repo := idempotent.NewPostgresRepository(infra.PostgresDB, "route-a")

	added, err := repo.Add(ctx, "order-1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Add(ctx, "order-1")
	require.NoError(t, err)
	assert.False(t, added)
}

func TestPostgresRepository_ScopedByProcessor(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	ctx := context.Background()
	repoA := idempotent.NewPostgresRepository(infra.PostgresDB, "route-a")
	repoB := idempotent.NewPostgresRepository(infra.PostgresDB, "route-b")

	added, err := repoA.Add(ctx, "order-2")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repoB.Add(ctx, "order-2")
	require.NoError(t, err)
	assert.True(t, added, "same key under another processor is a distinct entry")

	contains, err := repoA.Contains(ctx, "order-2")
	require.NoError(t, err)
	assert.True(t, contains)
}

func TestPostgresRepository_Remove(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	ctx := context.Background()
	repo := idempotent.NewPostgresRepository(infra.PostgresDB, "route-c")

	_, err := repo.Add(ctx, "order-3")
	require.NoError(t, err)

	require.NoError(t, repo.Remove(ctx, "order-3"))

	contains, err := repo.Contains(ctx, "order-3")
	require.NoError(t, err)
	assert.False(t, contains)
}
