// Package service provides the core orchestrator that implements the
// dependencies required by the HTTP API: effort intake, the asynchronous
// recognize-and-evaluate pipeline, and weekly digest aggregation.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/acclaimhq/acclaim/internal/adapters/catalog"
	effortqueue "github.com/acclaimhq/acclaim/internal/adapters/mq/queue"
	workerpool "github.com/acclaimhq/acclaim/internal/adapters/mq/worker"
	"github.com/acclaimhq/acclaim/internal/adapters/repository"
	"github.com/acclaimhq/acclaim/internal/domain/criteria"
	"github.com/acclaimhq/acclaim/internal/domain/dedupe"
	"github.com/acclaimhq/acclaim/internal/domain/digest"
	"github.com/acclaimhq/acclaim/internal/domain/model"
	"github.com/acclaimhq/acclaim/internal/domain/recognition"
	"github.com/acclaimhq/acclaim/pkg/logger"
	"github.com/acclaimhq/acclaim/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize     = 10000
	defaultDedupeSize    = 50000
	defaultRetryAttempts = 3
	defaultRetryBase     = 50 * time.Millisecond

	// evaluationSpan covers the longest badge window (quarter), so one
	// effort fetch serves every badge evaluation.
	evaluationSpan = 90 * 24 * time.Hour
)

// Service wires the recognition engine together.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	catalog *catalog.Catalog
	deduper dedupe.Deduper
	queue   effortqueue.Queue
	synth   *recognition.Synthesizer
	pool    *workerpool.Pool

	workerCount          int
	queueSize            int
	dedupeSize           int
	minRecognitionImpact int
	topRecognitions      int
	growthMetric         digest.GrowthMetric
	retryAttempts        int
	retryBase            time.Duration

	started bool

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:          runtime.NumCPU() * 2,
		queueSize:            defaultQueueSize,
		dedupeSize:           defaultDedupeSize,
		minRecognitionImpact: recognition.DefaultMinImpact,
		topRecognitions:      digest.DefaultTopN,
		growthMetric:         digest.GrowthByEffortCount,
		retryAttempts:        defaultRetryAttempts,
		retryBase:            defaultRetryBase,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting recognition engine...")

	if s.store == nil {
		s.store = repository.NewMemStore()
		s.logger.Info(ctx, "using in-memory store")
	}
	if s.catalog == nil {
		c, err := catalog.Load("")
		if err != nil {
			return fmt.Errorf("load default badge catalog: %w", err)
		}
		s.catalog = c
	}
	s.deduper = dedupe.NewMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = effortqueue.NewInMemoryQueue(
		effortqueue.WithCapacity(s.queueSize),
	)
	s.synth = recognition.NewSynthesizer(
		recognition.WithMinImpact(s.minRecognitionImpact),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "recognition engine started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("badges", s.catalog.Size()),
	)
	return nil
}

// Stop gracefully shuts down the service: the queue stops accepting, the
// workers drain what is left, then the store closes.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping recognition engine...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}
	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "recognition engine stopped")
}

// Submit validates an effort and hands it to the asynchronous pipeline.
// Duplicate ids and full-queue backpressure surface as sentinel errors so
// the intake layer can map them to distinct responses.
func (s *Service) Submit(ctx context.Context, e model.Effort) error {
	if !s.isStarted() {
		return ErrNotStarted
	}
	if err := e.Validate(); err != nil {
		metrics.RecordEffortRejected()
		return fmt.Errorf("%w: %v", ErrInvalidEffort, err)
	}
	if s.deduper.SeenAndRecord(ctx, e.ID) {
		metrics.RecordEffortDuplicate()
		return fmt.Errorf("%w: %s", ErrDuplicateEffort, e.ID)
	}
	if !s.queue.Enqueue(ctx, e) {
		// Give the id back so a later retry is not treated as a duplicate.
		s.deduper.Unrecord(ctx, e.ID)
		metrics.RecordEffortRejected()
		return fmt.Errorf("%w: effort %s", ErrBackpressure, e.ID)
	}
	return nil
}

// ProcessEffort runs the pipeline for one effort: persist the fact,
// synthesize its recognition, then re-evaluate the employee's badges.
// Called by the worker pool; a duplicate insert short-circuits to a no-op
// so replays stay idempotent.
func (s *Service) ProcessEffort(ctx context.Context, e model.Effort) error {
	err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.store.InsertEffort(ctx, e)
	})
	switch {
	case errors.Is(err, repository.ErrConflict):
		return nil
	case err != nil:
		s.deduper.Unrecord(ctx, e.ID)
		return fmt.Errorf("persist effort: %w", err)
	}
	metrics.RecordEffortIngested()

	if rec, ok := s.synth.Synthesize(e); ok {
		var inserted bool
		err := s.withRetry(ctx, func(ctx context.Context) error {
			var err error
			inserted, err = s.store.InsertRecognition(ctx, rec)
			return err
		})
		if err != nil {
			return fmt.Errorf("persist recognition: %w", err)
		}
		if inserted {
			metrics.RecordRecognitionCreated()
		}
	} else {
		metrics.RecordRecognitionSkipped()
	}

	if _, err := s.EvaluateBadges(ctx, e.EmployeeID, e.At); err != nil {
		return fmt.Errorf("evaluate badges: %w", err)
	}
	return nil
}

// EvaluateBadges evaluates every active badge for the employee as of the
// given instant and returns the newly earned awards. Already-awarded badges
// are skipped before any criteria work; a concurrent evaluation losing the
// insert race simply reports nothing new.
func (s *Service) EvaluateBadges(ctx context.Context, employeeID string, asOf time.Time) ([]model.BadgeAward, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	start := time.Now()
	defer func() {
		metrics.RecordEvaluationLatency(float64(time.Since(start).Milliseconds()))
	}()

	if _, err := s.store.FindEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	// One fetch covers the longest badge window; Evaluate re-filters per
	// badge.
	efforts, err := s.store.FindEfforts(ctx, employeeID, "", asOf.Add(-evaluationSpan), asOf.Add(time.Nanosecond))
	if err != nil {
		return nil, fmt.Errorf("fetch efforts: %w", err)
	}

	var earned []model.BadgeAward
	for _, def := range s.catalog.FindBadgeDefinitions(true) {
		if _, err := s.store.FindAward(ctx, employeeID, def.ID); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("check award: %w", err)
		}

		metrics.RecordBadgeEvaluation()
		res, err := criteria.Evaluate(def, efforts, asOf)
		if err != nil {
			return nil, err
		}
		if !res.Earned {
			continue
		}

		award := model.BadgeAward{
			EmployeeID: employeeID,
			BadgeID:    def.ID,
			EarnedAt:   asOf,
			Progress:   res.Progress,
		}
		var won bool
		err = s.withRetry(ctx, func(ctx context.Context) error {
			var err error
			won, err = s.store.InsertAwardIfAbsent(ctx, award)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("record award: %w", err)
		}
		if won {
			metrics.RecordBadgeAwarded()
			earned = append(earned, award)
			s.logger.Info(ctx, "badge awarded",
				logger.String("employee_id", employeeID),
				logger.String("badge_id", def.ID),
			)
		}
	}
	return earned, nil
}

// BadgeProgress reports the current progress of every active badge for the
// employee, earned ones included.
func (s *Service) BadgeProgress(ctx context.Context, employeeID string, asOf time.Time) (map[string]int, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	if _, err := s.store.FindEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	efforts, err := s.store.FindEfforts(ctx, employeeID, "", asOf.Add(-evaluationSpan), asOf.Add(time.Nanosecond))
	if err != nil {
		return nil, fmt.Errorf("fetch efforts: %w", err)
	}

	progress := make(map[string]int)
	for _, def := range s.catalog.FindBadgeDefinitions(true) {
		if _, err := s.store.FindAward(ctx, employeeID, def.ID); err == nil {
			progress[def.ID] = 100
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("check award: %w", err)
		}
		res, err := criteria.Evaluate(def, efforts, asOf)
		if err != nil {
			return nil, err
		}
		progress[def.ID] = res.Progress
	}
	return progress, nil
}

// GenerateDigest aggregates one employee's week into a digest and persists
// it. Regenerating the same window overwrites the previous digest.
func (s *Service) GenerateDigest(ctx context.Context, employeeID string, weekStart, weekEnd time.Time) (model.WeeklyDigest, error) {
	if !s.isStarted() {
		return model.WeeklyDigest{}, ErrNotStarted
	}
	start := time.Now()
	defer func() {
		metrics.RecordDigestLatency(float64(time.Since(start).Milliseconds()))
	}()

	ws, we, err := model.NormalizeWeek(weekStart, weekEnd)
	if err != nil {
		return model.WeeklyDigest{}, err
	}
	if _, err := s.store.FindEmployee(ctx, employeeID); err != nil {
		return model.WeeklyDigest{}, err
	}

	efforts, err := s.store.FindEfforts(ctx, employeeID, "", ws, we)
	if err != nil {
		return model.WeeklyDigest{}, fmt.Errorf("fetch efforts: %w", err)
	}
	recs, err := s.store.FindRecognitions(ctx, employeeID, ws, we)
	if err != nil {
		return model.WeeklyDigest{}, fmt.Errorf("fetch recognitions: %w", err)
	}
	awards, err := s.store.FindAwards(ctx, employeeID, ws, we)
	if err != nil {
		return model.WeeklyDigest{}, fmt.Errorf("fetch awards: %w", err)
	}
	// The preceding window of equal length feeds the growth comparison.
	previous, err := s.store.FindEfforts(ctx, employeeID, "", ws.Add(-7*24*time.Hour), ws)
	if err != nil {
		return model.WeeklyDigest{}, fmt.Errorf("fetch previous efforts: %w", err)
	}

	names := make(map[string]string)
	for _, def := range s.catalog.FindBadgeDefinitions(false) {
		names[def.ID] = def.Name
	}

	d := digest.Build(digest.Input{
		EmployeeID:   employeeID,
		WeekStart:    ws,
		WeekEnd:      we,
		Efforts:      efforts,
		Recognitions: recs,
		Awards:       awards,
		Previous:     previous,
		BadgeNames:   names,
		TopN:         s.topRecognitions,
		Growth:       s.growthMetric,
		GeneratedAt:  time.Now().UTC(),
	})

	err = s.withRetry(ctx, func(ctx context.Context) error {
		return s.store.UpsertDigest(ctx, d)
	})
	if err != nil {
		return model.WeeklyDigest{}, fmt.Errorf("persist digest: %w", err)
	}
	metrics.RecordDigestGenerated()
	return d, nil
}

// GetDigest returns the stored digest for the employee's week.
func (s *Service) GetDigest(ctx context.Context, employeeID string, weekStart time.Time) (model.WeeklyDigest, error) {
	if !s.isStarted() {
		return model.WeeklyDigest{}, ErrNotStarted
	}
	ws, _, err := model.NormalizeWeek(weekStart, weekStart.Add(7*24*time.Hour))
	if err != nil {
		return model.WeeklyDigest{}, err
	}
	return s.store.FindDigest(ctx, employeeID, ws)
}

// RegisterEmployee validates and stores a new employee.
func (s *Service) RegisterEmployee(ctx context.Context, e model.Employee) error {
	if !s.isStarted() {
		return ErrNotStarted
	}
	switch {
	case strings.TrimSpace(e.ID) == "":
		return fmt.Errorf("%w: missing id", ErrInvalidEmployee)
	case strings.TrimSpace(e.Name) == "":
		return fmt.Errorf("%w: missing name", ErrInvalidEmployee)
	case strings.TrimSpace(e.Email) == "":
		return fmt.Errorf("%w: missing email", ErrInvalidEmployee)
	}
	if e.JoinedAt.IsZero() {
		e.JoinedAt = time.Now().UTC()
	}
	e.Active = true

	err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.store.InsertEmployee(ctx, e)
	})
	if err != nil {
		return err
	}
	metrics.RecordEmployeeRegistered()
	return nil
}

// GetEmployee returns one employee record.
func (s *Service) GetEmployee(ctx context.Context, id string) (model.Employee, error) {
	if !s.isStarted() {
		return model.Employee{}, ErrNotStarted
	}
	return s.store.FindEmployee(ctx, id)
}

// ListRecognitions returns the employee's recognitions, oldest first.
func (s *Service) ListRecognitions(ctx context.Context, employeeID string) ([]model.Recognition, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	if _, err := s.store.FindEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.store.FindRecognitions(ctx, employeeID, time.Time{}, time.Time{})
}

// ListBadges returns the badge definitions in the catalog.
func (s *Service) ListBadges(_ context.Context, activeOnly bool) []model.BadgeDefinition {
	if !s.isStarted() {
		return nil
	}
	return s.catalog.FindBadgeDefinitions(activeOnly)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"worker_count": s.workerCount,
		"queue_size":   s.queueSize,
		"dedupe_size":  s.dedupeSize,
	}
	if s.started {
		stats["queue_length"] = s.queue.Len(context.Background())
		stats["badge_count"] = s.catalog.Size()
		stats["dedupe_entries"] = s.deduper.Size()
	}
	return stats
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// withRetry runs op, retrying transient store failures with exponential
// backoff. Non-transient errors return immediately.
func (s *Service) withRetry(ctx context.Context, op func(context.Context) error) error {
	delay := s.retryBase
	var err error
	for attempt := 0; attempt < s.retryAttempts; attempt++ {
		if attempt > 0 {
			metrics.RecordStoreRetry()
			select {
			case <-time.After(delay):
				delay *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err = op(ctx); err == nil || !errors.Is(err, repository.ErrUnavailable) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrRetriesExhausted, err)
}
