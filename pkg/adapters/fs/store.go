package fs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/argumentaire/pkg/core"
)

// DefaultLockTimeout bounds how long Lock waits for another process.
const DefaultLockTimeout = 5 * time.Second

// Config holds the configuration for the file-backed store.
type Config struct {
	Path             string // canonical store file, e.g. "data/argumentaires.json"
	MustExist        bool   // fail Initialize when the parent directory is missing
	CrossProcessLock bool   // guard Lock with a sibling lock file
	LockTimeout      time.Duration
	LockStaleAfter   time.Duration // age at which a lock file is reclaimed; defaults to DefaultLockStaleAfter
	Logger           *slog.Logger
	Serializers      map[string]Serializer // by extension; defaults to DefaultSerializers
}

// Store implements core.Repository on top of a single file.
// It keeps no cache: every Load reads the file again.
type Store struct {
	Path       string
	config     Config
	serializer Serializer
	lock       *lockFile

	mu            sync.RWMutex
	watcherActive bool
	writes        int
	lastWrite     *time.Time
}

// NewStore creates a new file-backed store. The serializer is chosen from the
// file extension.
func NewStore(config Config) (*Store, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Serializers == nil {
		config.Serializers = DefaultSerializers()
	}
	if config.LockTimeout == 0 {
		config.LockTimeout = DefaultLockTimeout
	}
	if config.LockStaleAfter == 0 {
		config.LockStaleAfter = DefaultLockStaleAfter
	}

	serializer, err := serializerForPath(config.Path, config.Serializers)
	if err != nil {
		return nil, err
	}

	return &Store{
		Path:       config.Path,
		config:     config,
		serializer: serializer,
		lock: &lockFile{
			path:       config.Path + ".lock",
			timeout:    config.LockTimeout,
			staleAfter: config.LockStaleAfter,
			logger:     config.Logger,
		},
	}, nil
}

// Initialize makes sure the directory holding the store exists.
func (s *Store) Initialize(ctx context.Context) error {
	dir := filepath.Dir(s.Path)
	if s.config.MustExist {
		info, err := os.Stat(dir)
		if os.IsNotExist(err) {
			return fmt.Errorf("store directory does not exist: %s", dir)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("store directory is not a directory: %s", dir)
		}
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	return nil
}

// Load reads and sanitizes the persisted records.
// A missing, unreadable or corrupt file is reported as an empty store.
func (s *Store) Load(ctx context.Context) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			s.config.Logger.Debug("store file not found, starting empty", "path", s.Path)
		} else {
			s.config.Logger.Warn("store file unreadable, treating as empty", "path", s.Path, "error", err)
		}
		return []core.Record{}, nil
	}
	defer f.Close()

	records, err := s.serializer.Parse(f)
	if err != nil {
		s.config.Logger.Warn("store file corrupt, treating as empty", "path", s.Path, "error", err)
		return []core.Record{}, nil
	}
	return records, nil
}

// Save sorts records by case-insensitive phrase and atomically replaces the store file.
// Any failure is returned; the previous content is left in place.
func (s *Store) Save(ctx context.Context, records []core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sorted := make([]core.Record, len(records))
	copy(sorted, records)
	core.SortRecords(sorted)

	data, err := s.serializer.Serialize(sorted)
	if err != nil {
		return fmt.Errorf("failed to serialize store: %w", err)
	}

	if err := writeFileAtomic(s.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}

	s.config.Logger.Debug("store written", "path", s.Path, "count", len(sorted))

	now := time.Now()
	s.mu.Lock()
	s.writes++
	s.lastWrite = &now
	s.mu.Unlock()

	return nil
}

// Lock implements core.Locker. Without CrossProcessLock it only returns a no-op release.
func (s *Store) Lock(ctx context.Context) (func(), error) {
	if !s.config.CrossProcessLock {
		return func() {}, nil
	}
	return s.lock.acquire(ctx)
}

var _ core.Repository = (*Store)(nil)
var _ core.Locker = (*Store)(nil)
var _ core.Watchable = (*Store)(nil)
