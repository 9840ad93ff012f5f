package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	natscontainer "github.com/testcontainers/testcontainers-go/modules/nats"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.opentelemetry.io/otel"

	roundservice "github.com/trycohn/1337-sub004/app/modules/round/application"
	rounddb "github.com/trycohn/1337-sub004/app/modules/round/infrastructure/repositories"
	roundmigrations "github.com/trycohn/1337-sub004/app/modules/round/infrastructure/repositories/migrations"
	tournamentservice "github.com/trycohn/1337-sub004/app/modules/tournament/application"
	tournamentdb "github.com/trycohn/1337-sub004/app/modules/tournament/infrastructure/repositories"
	tournamentmigrations "github.com/trycohn/1337-sub004/app/modules/tournament/infrastructure/repositories/migrations"
	"github.com/trycohn/1337-sub004/integration_tests/containers"
	"github.com/trycohn/1337-sub004/internal/eventbus"
	"github.com/trycohn/1337-sub004/internal/locks"
	"github.com/trycohn/1337-sub004/internal/observability"
)

// TestEnvironment wires real Postgres and NATS containers to the services,
// the same way the app composition root does.
type TestEnvironment struct {
	Ctx               context.Context
	DB                *bun.DB
	EventBus          eventbus.EventBus
	TournamentService tournamentservice.Service
	RoundService      roundservice.Service

	pgContainer   *pgcontainer.PostgresContainer
	natsContainer *natscontainer.NATSContainer
	cancel        context.CancelFunc
}

// NewTestEnvironment starts the containers, migrates both schemas, and builds
// the services. Tests must call Cleanup when done.
func NewTestEnvironment(t *testing.T) (*TestEnvironment, error) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)

	pgc, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	natsc, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		_ = pgc.Terminate(ctx)
		cancel()
		return nil, err
	}

	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(pgdb, pgdialect.New())

	if err := migrateAll(ctx, db); err != nil {
		_ = db.Close()
		_ = natsc.Terminate(ctx)
		_ = pgc.Terminate(ctx)
		cancel()
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus, err := eventbus.New(natsURL, logger)
	if err != nil {
		_ = db.Close()
		_ = natsc.Terminate(ctx)
		_ = pgc.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("failed to connect event bus: %w", err)
	}

	metrics := observability.NewMetrics(prometheus.NewRegistry(), "integration_test")
	tracer := otel.Tracer("integration-test")
	keyedLocks := locks.NewKeyedMutex()

	roundRepo := rounddb.NewRepository()
	tournamentRepo := tournamentdb.NewRepository()

	roundSvc := roundservice.NewRoundService(db, roundRepo, tournamentRepo, bus, logger, metrics, tracer, keyedLocks)
	tournamentSvc := tournamentservice.NewTournamentService(db, tournamentRepo, roundRepo, bus, logger, metrics, tracer, keyedLocks)

	return &TestEnvironment{
		Ctx:               ctx,
		DB:                db,
		EventBus:          bus,
		TournamentService: tournamentSvc,
		RoundService:      roundSvc,
		pgContainer:       pgc,
		natsContainer:     natsc,
		cancel:            cancel,
	}, nil
}

// Cleanup tears the environment down in reverse order.
func (e *TestEnvironment) Cleanup() {
	_ = e.EventBus.Close()
	_ = e.DB.Close()
	_ = e.natsContainer.Terminate(e.Ctx)
	_ = e.pgContainer.Terminate(e.Ctx)
	e.cancel()
}

func migrateAll(ctx context.Context, db *bun.DB) error {
	for name, migrations := range map[string]*migrate.Migrations{
		"tournament": tournamentmigrations.Migrations,
		"round":      roundmigrations.Migrations,
	} {
		migrator := migrate.NewMigrator(db, migrations,
			migrate.WithTableName(fmt.Sprintf("bun_migrations_%s", name)),
			migrate.WithLocksTableName(fmt.Sprintf("bun_migration_locks_%s", name)),
		)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to init %s migrations: %w", name, err)
		}
		if _, err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", name, err)
		}
	}
	return nil
}
