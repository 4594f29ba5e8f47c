// Package ledger implements the authoritative game ledger operations.
//
// Every mutating operation validates all of its preconditions before the
// first write, so a rejected call leaves no partial state. Operations on the
// same game are serialized: a second concurrent call is rejected rather than
// interleaved.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
	"github.com/louisbranch/elysium-descent/internal/platform/id"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/event"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
)

const tracerName = "github.com/louisbranch/elysium-descent/internal/services/ledger/api/ledger"

// Service executes ledger operations against the injected store.
type Service struct {
	store       storage.Store
	clock       func() time.Time
	idGenerator func() (string, error)
	tracer      trace.Tracer

	// gameLocks serializes mutations per game. TryLock keeps the reject
	// semantics: a second concurrent call fails instead of queueing.
	gameLocks sync.Map
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the service clock.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithIDGenerator overrides the event ID generator.
func WithIDGenerator(generator func() (string, error)) Option {
	return func(s *Service) {
		s.idGenerator = generator
	}
}

// WithTracer overrides the tracer used for operation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New creates a ledger Service with default dependencies.
func New(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		clock:       time.Now,
		idGenerator: id.NewID,
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name)
}

// lockGame acquires the per-game mutation lock. The returned func releases
// it. Contention is rejected, not queued.
func (s *Service) lockGame(gameID uint64) (func(), error) {
	muAny, _ := s.gameLocks.LoadOrStore(gameID, &sync.Mutex{})
	mu := muAny.(*sync.Mutex)
	if !mu.TryLock() {
		return nil, apperrors.WithMetadata(
			apperrors.CodeConcurrentMutation,
			"another operation for this game is still running",
			map[string]string{"game_id": strconv.FormatUint(gameID, 10)},
		)
	}
	return mu.Unlock, nil
}

// emit appends a journal event. The ID and timestamp are assigned here so
// callers only describe the fact.
func (s *Service) emit(ctx context.Context, evt event.Event, payload map[string]any) error {
	eventID, err := s.idGenerator()
	if err != nil {
		return fmt.Errorf("generate event id: %w", err)
	}
	evt.ID = eventID
	evt.Timestamp = s.clock()
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		evt.PayloadJSON = data
	}
	if _, err := s.store.AppendEvent(ctx, evt); err != nil {
		return fmt.Errorf("append %s event: %w", evt.Type, err)
	}
	return nil
}
