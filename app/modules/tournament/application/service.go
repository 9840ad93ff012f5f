package tournamentservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	rounddb "github.com/trycohn/1337-sub004/app/modules/round/infrastructure/repositories"
	tournamentdb "github.com/trycohn/1337-sub004/app/modules/tournament/infrastructure/repositories"
	"github.com/trycohn/1337-sub004/internal/eventbus"
	"github.com/trycohn/1337-sub004/internal/locks"
	"github.com/trycohn/1337-sub004/internal/observability"
	"github.com/trycohn/1337-sub004/internal/observability/attr"
	"github.com/trycohn/1337-sub004/internal/results"
)

const serviceName = "tournament"

// TournamentService implements the Service interface.
type TournamentService struct {
	db        bun.IDB
	repo      tournamentdb.Repository
	roundRepo rounddb.Repository
	EventBus  eventbus.EventBus
	logger    *slog.Logger
	metrics   observability.Metrics
	tracer    trace.Tracer
	locks     *locks.KeyedMutex
}

// NewTournamentService creates a new TournamentService.
func NewTournamentService(
	db bun.IDB,
	repo tournamentdb.Repository,
	roundRepo rounddb.Repository,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	keyedLocks *locks.KeyedMutex,
) *TournamentService {
	return &TournamentService{
		db:        db,
		repo:      repo,
		roundRepo: roundRepo,
		EventBus:  eventBus,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		locks:     keyedLocks,
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic
// recovery.
func withTelemetry[S any, F any](
	s *TournamentService,
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

	if result.IsSuccess() {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}
