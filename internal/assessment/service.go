package assessment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Skufu/CareFusion/internal/risk"
)

const recordTimeout = 5 * time.Second

// Assessor is the part of Client the Service depends on.
type Assessor interface {
	Assess(ctx context.Context, mentalInput, physicalInput string) (Result, error)
	Converse(ctx context.Context, message, chatContext string) string
}

// Service runs the assessment workflow: assess, stamp, record.
type Service struct {
	client Assessor
	store  Store
	logger zerolog.Logger

	mu   sync.Mutex
	last map[string]time.Time
}

func NewService(client Assessor, store Store, logger zerolog.Logger) *Service {
	return &Service{
		client: client,
		store:  store,
		logger: logger.With().Str("component", "assessment_service").Logger(),
		last:   make(map[string]time.Time),
	}
}

// Assess runs one assessment for userID. A failed history write does not
// fail the call; Outcome.Saved reports it.
func (s *Service) Assess(ctx context.Context, userID, mentalInput, physicalInput string) (Outcome, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Outcome{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	r, err := s.client.Assess(ctx, mentalInput, physicalInput)
	if err != nil {
		return Outcome{}, err
	}

	r.ID = uuid.New()
	r.UserID = userID
	r.Timestamp = s.stamp(userID, r.Timestamp)

	// The result is already computed; keep it even if the caller has gone.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	saved := s.Record(recordCtx, userID, r) == nil
	cancel()

	s.logger.Info().
		Str("user_id", userID).
		Str("assessment_id", r.ID.String()).
		Str("level", string(r.Level)).
		Str("route", string(r.Route)).
		Bool("saved", saved).
		Msg("assessment completed")

	return Outcome{
		Result:  r,
		Target:  risk.Target(r.Route),
		Display: risk.DisplayFor(r.Level),
		Saved:   saved,
	}, nil
}

// Record appends r to the user's history. Errors are logged and returned
// wrapped in ErrPersistence; they never invalidate r.
func (s *Service) Record(ctx context.Context, userID string, r Result) error {
	if s.store == nil {
		return fmt.Errorf("%w: no history store configured", ErrPersistence)
	}
	if err := s.store.Append(ctx, userID, r); err != nil {
		s.logger.Error().Err(err).
			Str("user_id", userID).
			Str("assessment_id", r.ID.String()).
			Msg("failed to save assessment")
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// History returns the user's assessments, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]Result, error) {
	items, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list history: %w", ErrPersistence, err)
	}
	if items == nil {
		items = []Result{}
	}
	return items, nil
}

// Latest returns nil when the user has no assessments yet.
func (s *Service) Latest(ctx context.Context, userID string) (*Result, error) {
	items, err := s.History(ctx, userID)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return &items[0], nil
}

func (s *Service) Converse(ctx context.Context, message, chatContext string) string {
	return s.client.Converse(ctx, message, chatContext)
}

// stamp keeps timestamps strictly increasing per user within this
// process, at the microsecond precision the stores keep.
func (s *Service) stamp(userID string, ts time.Time) time.Time {
	if ts.IsZero() {
		ts = time.Now()
	}
	ts = ts.UTC().Truncate(time.Microsecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.last[userID]; ok && !ts.After(prev) {
		ts = prev.Add(time.Microsecond)
	}
	s.last[userID] = ts
	return ts
}
