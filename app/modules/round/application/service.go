package roundservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/trycohn/1337-sub004/app/modules/round/application/parsers"
	rounddb "github.com/trycohn/1337-sub004/app/modules/round/infrastructure/repositories"
	tournamentdb "github.com/trycohn/1337-sub004/app/modules/tournament/infrastructure/repositories"
	"github.com/trycohn/1337-sub004/internal/eventbus"
	"github.com/trycohn/1337-sub004/internal/locks"
	"github.com/trycohn/1337-sub004/internal/observability"
	"github.com/trycohn/1337-sub004/internal/observability/attr"
	"github.com/trycohn/1337-sub004/internal/results"
)

const serviceName = "round"

// RoundService implements the Service interface. All mutating operations
// serialize on the per-tournament lock; reads go straight to the database.
type RoundService struct {
	db       bun.IDB
	repo     rounddb.Repository
	poolRepo tournamentdb.Repository
	EventBus eventbus.EventBus
	logger   *slog.Logger
	metrics  observability.Metrics
	tracer   trace.Tracer
	locks    *locks.KeyedMutex

	parserFactory parsers.ParserFactory
}

// NewRoundService creates a new RoundService.
func NewRoundService(
	db bun.IDB,
	repo rounddb.Repository,
	poolRepo tournamentdb.Repository,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	keyedLocks *locks.KeyedMutex,
) *RoundService {
	return &RoundService{
		db:       db,
		repo:     repo,
		poolRepo: poolRepo,
		EventBus: eventBus,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		locks:    keyedLocks,

		parserFactory: parsers.NewFactory(),
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic
// recovery.
func withTelemetry[S any, F any](
	s *RoundService,
	ctx context.Context,
	operationName string,
	tournamentID uuid.UUID,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {

	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("tournament_id", tournamentID.String()),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, operationName+" triggered",
		attr.String("operation", operationName),
		attr.TournamentID(tournamentID),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.TournamentID(tournamentID),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.String("operation", operationName),
			attr.TournamentID(tournamentID),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.String("operation", operationName),
			attr.TournamentID(tournamentID),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, operationName+" completed successfully",
			attr.String("operation", operationName),
			attr.TournamentID(tournamentID),
		)
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}
