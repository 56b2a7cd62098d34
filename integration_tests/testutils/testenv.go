package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/Black-And-White-Club/tabroom/app/eventbus"
	"github.com/Black-And-White-Club/tabroom/integration_tests/containers"
)

// TestEnvironment holds the containers and connections shared by a test package.
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer *nats.NATSContainer
	DB            *bun.DB
	PgConnStr     string
	NatsURL       string
	EventBus      eventbus.EventBus
	Logger        *slog.Logger
}

var (
	sharedEnv     *TestEnvironment
	sharedEnvErr  error
	sharedEnvOnce sync.Once
)

// GetOrCreateTestEnv returns the package-wide environment, starting the
// containers on first use. Tests are skipped under -short.
func GetOrCreateTestEnv(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	sharedEnvOnce.Do(func() {
		sharedEnv, sharedEnvErr = newTestEnvironment()
	})
	if sharedEnvErr != nil {
		t.Fatalf("failed to create test environment: %v", sharedEnvErr)
	}
	if err := CleanupDatabase(sharedEnv.Ctx, sharedEnv.DB); err != nil {
		t.Fatalf("failed to clean database: %v", err)
	}
	return sharedEnv
}

// ShutdownSharedEnv terminates the containers. Call it from TestMain.
func ShutdownSharedEnv() {
	if sharedEnv != nil {
		sharedEnv.Cleanup()
	}
}

func newTestEnvironment() (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	setupCtx, setupCancel := context.WithTimeout(ctx, 2*time.Minute)
	defer setupCancel()

	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(setupCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer
	env.PgConnStr = pgConnStr

	natsContainer, natsURL, err := containers.SetupNatsContainer(setupCtx)
	if err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer
	env.NatsURL = natsURL

	sqlDB, err := sql.Open("pgx", pgConnStr)
	if err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to open sql DB connection: %w", err)
	}
	env.DB = bun.NewDB(sqlDB, pgdialect.New())

	if err := RunMigrations(setupCtx, env.DB, pgConnStr); err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	bus, err := eventbus.NewEventBus(ctx, eventbus.Config{URL: natsURL}, env.Logger)
	if err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	env.EventBus = bus
	if err := eventbus.InitializeStreams(setupCtx, bus); err != nil {
		env.Cleanup()
		return nil, err
	}

	return env, nil
}

// Cleanup closes connections and terminates the containers.
func (env *TestEnvironment) Cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if env.EventBus != nil {
		_ = env.EventBus.Close()
	}
	if env.DB != nil {
		_ = env.DB.Close()
	}
	if env.NatsContainer != nil {
		_ = env.NatsContainer.Terminate(ctx)
	}
	if env.PgContainer != nil {
		_ = env.PgContainer.Terminate(ctx)
	}
	env.CancelContext()
}
