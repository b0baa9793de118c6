package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Service is the only entry point to persisted records at runtime.
// A single mutex serializes every read-modify-write sequence, so each
// exported operation is atomic with respect to every other one.
type Service struct {
	mu       sync.Mutex
	repo     Repository
	legacy   LegacySource
	seed     func() []Record
	logger   *slog.Logger
	readOnly bool

	stats struct {
		sync.RWMutex
		ready       bool
		lastRebuild *time.Time
		upserts     int
		records     int
	}
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLegacySource registers the legacy store merged during Rebuild.
func WithLegacySource(src LegacySource) ServiceOption {
	return func(s *Service) {
		s.legacy = src
	}
}

// WithSeed sets the provider of default records used when the store is empty.
// The provider must return a fresh slice on every call.
func WithSeed(seed func() []Record) ServiceOption {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithServiceLogger sets the logger for the service.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServiceReadOnly rejects Upsert and makes Rebuild skip the write-back.
func WithServiceReadOnly(readOnly bool) ServiceOption {
	return func(s *Service) {
		s.readOnly = readOnly
	}
}

// NewService creates a new Service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:   repo,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RebuildReport summarizes one Rebuild pass.
type RebuildReport struct {
	Seed    int  `json:"seed"`
	Current int  `json:"current"`
	Legacy  int  `json:"legacy"`
	Total   int  `json:"total"`
	Written bool `json:"written"`
}

// Rebuild merges seed, current and legacy records (later wins on equal
// phrases) and writes the result back as the canonical store.
// It is safe to call more than once.
func (s *Service) Rebuild(ctx context.Context) (RebuildReport, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return RebuildReport{}, err
	}
	defer unlock()

	var report RebuildReport

	seed := s.seedRecords()
	report.Seed = len(seed)

	current, err := s.repo.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load store: %w", err)
	}
	report.Current = len(current)

	var legacy []Record
	if s.legacy != nil {
		legacy, err = s.legacy.LoadLegacy(ctx)
		if err != nil {
			return report, fmt.Errorf("failed to load legacy store: %w", err)
		}
	}
	report.Legacy = len(legacy)

	merged := Merge(seed, current, legacy)
	report.Total = len(merged)

	if s.readOnly {
		s.logger.Info("read-only mode, skipping store rebuild write", "records", report.Total)
	} else {
		if err := s.repo.Save(ctx, Sorted(merged)); err != nil {
			return report, fmt.Errorf("failed to write store: %w", err)
		}
		report.Written = true
	}

	s.logger.Debug("store rebuilt",
		"seed", report.Seed,
		"current", report.Current,
		"legacy", report.Legacy,
		"total", report.Total,
	)

	now := time.Now()
	s.stats.Lock()
	s.stats.ready = true
	s.stats.lastRebuild = &now
	s.stats.records = report.Total
	s.stats.Unlock()

	return report, nil
}

// ListAll returns every record ordered by case-insensitive phrase.
// When the store is empty, the seed set is returned instead.
func (s *Service) ListAll(ctx context.Context) ([]Record, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	store, err := s.loadMap(ctx)
	if err != nil {
		return nil, err
	}
	return Sorted(store), nil
}

// Upsert validates the submitted record, inserts or replaces it by phrase and
// rewrites the whole store. It returns the record exactly as stored.
func (s *Service) Upsert(ctx context.Context, phrase, argumentaire string, sources []Source) (Record, error) {
	clean, err := ValidateRecord(Record{Phrase: phrase, Argumentaire: argumentaire, Sources: sources})
	if err != nil {
		return Record{}, err
	}
	if s.readOnly {
		return Record{}, ErrReadOnly
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return Record{}, err
	}
	defer unlock()

	store, err := s.loadMap(ctx)
	if err != nil {
		return Record{}, err
	}
	store[clean.Phrase] = clean

	if err := s.repo.Save(ctx, Sorted(store)); err != nil {
		return Record{}, fmt.Errorf("failed to write store: %w", err)
	}

	s.logger.Debug("record upserted", "phrase", clean.Phrase, "sources", len(clean.Sources))

	s.stats.Lock()
	s.stats.upserts++
	s.stats.records = len(store)
	s.stats.Unlock()

	return clean.Clone(), nil
}

// Watch observes changes of the persisted store if the repository supports it.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	return w.Watch(ctx)
}

// ReadOnly reports whether mutating operations are rejected.
func (s *Service) ReadOnly() bool {
	return s.readOnly
}

// loadMap must be called with the lock held.
func (s *Service) loadMap(ctx context.Context) (map[string]Record, error) {
	current, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}
	store := Merge(current)
	if len(store) == 0 {
		store = Merge(s.seedRecords())
	}
	return store, nil
}

func (s *Service) seedRecords() []Record {
	if s.seed == nil {
		return nil
	}
	return s.seed()
}

// lock takes the process-wide mutex and, when the repository supports it,
// the cross-process lock. The returned func releases both.
func (s *Service) lock(ctx context.Context) (func(), error) {
	s.mu.Lock()
	locker, ok := s.repo.(Locker)
	if !ok {
		return s.mu.Unlock, nil
	}
	release, err := locker.Lock(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	return func() {
		release()
		s.mu.Unlock()
	}, nil
}
