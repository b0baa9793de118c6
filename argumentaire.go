package argumentaire

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/argumentaire/internal/platform"
	"github.com/aretw0/argumentaire/pkg/core"
)

// Version exposes the version of the library.
// See version.go for the implementation using go:embed.

// --- Types ---

// Record is a public alias for a catalogue entry.
type Record = core.Record

// Source is a public alias for a supporting source of an entry.
type Source = core.Source

// Instance is a public alias for a fully wired catalogue.
type Instance = platform.Instance

// --- Errors ---

var (
	ErrInvalidRecord = core.ErrInvalidRecord
	ErrReadOnly      = core.ErrReadOnly
	ErrLockTimeout   = core.ErrLockTimeout
)

// --- Configuration ---

// Option defines a functional option for configuring the catalogue.
type Option = platform.Option

// Config is the on-disk configuration (argumentaire.yaml or argumentaire.toml).
type Config = platform.Config

// WithAutoInit creates the data directory when missing.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithStoreFile sets the canonical store file name.
func WithStoreFile(name string) Option {
	return platform.WithStoreFile(name)
}

// WithLegacyFile sets the legacy SQLite database. Empty disables it.
func WithLegacyFile(name string) Option {
	return platform.WithLegacyFile(name)
}

// WithSeed replaces the built-in seed set.
func WithSeed(fn func() []Record) Option {
	return platform.WithSeed(fn)
}

// WithReadOnly rejects submissions and never writes the store.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithCrossProcessLock guards store access with a lock file.
func WithCrossProcessLock(enabled bool) Option {
	return platform.WithCrossProcessLock(enabled)
}

// WithLockTimeout bounds how long the cross-process lock is awaited.
func WithLockTimeout(d time.Duration) Option {
	return platform.WithLockTimeout(d)
}

// WithRebuild controls the startup merge.
func WithRebuild(enabled bool) Option {
	return platform.WithRebuild(enabled)
}

// --- Factory ---

// New creates a catalogue service over dataDir and runs the startup merge.
func New(dataDir string, opts ...Option) (*core.Service, error) {
	return platform.New(dataDir, opts...)
}

// Open is New that also returns the wired adapters and the merge report.
func Open(ctx context.Context, dataDir string, opts ...Option) (*Instance, error) {
	return platform.Open(ctx, dataDir, opts...)
}

// Init initializes a repository explicitly.
func Init(dataDir string, opts ...Option) (core.Repository, error) {
	return platform.Init(dataDir, opts...)
}

// LoadConfig reads an argumentaire.yaml/.yml/.toml file.
func LoadConfig(path string) (Config, error) {
	return platform.LoadConfig(path)
}

// --- Safety & Utils ---

// ResolveDataDir determines the actual data directory based on safety rules.
func ResolveDataDir(userPath string, forceTemp bool) string {
	return platform.ResolveDataDir(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindDataRoot looks upwards for a directory holding catalogue data.
func FindDataRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
