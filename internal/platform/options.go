package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/argumentaire/pkg/core"
	"github.com/aretw0/argumentaire/pkg/seed"
)

// Default file names inside the data directory.
const (
	DefaultStoreFile  = "argumentaires.json"
	DefaultLegacyFile = "argumentaires.db"
)

// options holds the internal configuration for the catalogue.
type options struct {
	repository core.Repository
	legacy     core.LegacySource
	logger     *slog.Logger
	storeFile  string
	legacyFile string
	seed       func() []core.Record
	config     map[string]interface{}
}

// Option defines a functional option for configuring the catalogue.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		storeFile:  DefaultStoreFile,
		legacyFile: DefaultLegacyFile,
		seed:       seed.Records,
		config:     make(map[string]interface{}),
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger for the service and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStoreFile sets the canonical store file name, relative to the data
// directory unless absolute. The extension picks the format (.json, .yaml).
func WithStoreFile(name string) Option {
	return func(o *options) {
		o.storeFile = name
	}
}

// WithLegacyFile sets the legacy SQLite database, relative to the data
// directory unless absolute. Empty disables the legacy source.
func WithLegacyFile(name string) Option {
	return func(o *options) {
		o.legacyFile = name
	}
}

// WithLegacySource injects a custom legacy source instead of the SQLite reader.
func WithLegacySource(src core.LegacySource) Option {
	return func(o *options) {
		o.legacy = src
	}
}

// WithSeed replaces the built-in seed set. A nil func disables seeding.
func WithSeed(fn func() []core.Record) Option {
	return func(o *options) {
		o.seed = fn
	}
}

// WithRepository allows injecting a custom storage adapter (e.g. mock).
// If provided, the default file store is skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAutoInit creates the data directory when missing.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.config["auto_init"] = auto
	}
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithForceTemp forces the data directory under the OS temp dir (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true) the data directory is re-rooted under the OS temp dir.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Upsert returns ErrReadOnly.
// 2. Rebuild merges but does not write.
// 3. The data directory is never created.
// 4. The dev sandbox is bypassed (uses the real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithCrossProcessLock guards every store access with a lock file so that
// several processes can share one data directory.
func WithCrossProcessLock(enabled bool) Option {
	return func(o *options) {
		o.config["cross_process_lock"] = enabled
	}
}

// WithLockTimeout bounds how long the cross-process lock is awaited.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) {
		o.config["lock_timeout"] = d
	}
}

// WithRebuild controls whether New runs the startup merge. Defaults to true.
func WithRebuild(enabled bool) Option {
	return func(o *options) {
		o.config["rebuild"] = enabled
	}
}
