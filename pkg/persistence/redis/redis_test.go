package redis_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dukex/migromat/pkg/persistence"
	redisstore "github.com/dukex/migromat/pkg/persistence/redis"
	"github.com/dukex/migromat/pkg/testutil"
)

var redisContainer testcontainers.Container

func redisURL(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	if redisContainer == nil {
		var err error

		redisContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections"),
			},
			Started: true,
		})
		require.NoError(t, err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err)

	return "redis://" + endpoint + "/0"
}

func newStore(t *testing.T) *redisstore.Persistence {
	t.Helper()

	url := redisURL(t)

	store, err := redisstore.NewPersistence(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), url,
		redisstore.WithKeyPrefix("test:"+uuid.NewString()+":"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.Close(context.Background())
	})

	return store
}

func TestPersistence_Suite(t *testing.T) {
	testutil.RunPersistenceSuite(t, func(t *testing.T) persistence.Persistence {
		return newStore(t)
	})
}

func TestNewPersistence_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := redisstore.NewPersistence(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), "http://nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis url")
}
