package platform

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/argumentaire/pkg/adapters/fs"
	"github.com/aretw0/argumentaire/pkg/adapters/sqlite"
	"github.com/aretw0/argumentaire/pkg/core"
)

// Init prepares the data directory and returns the configured repository.
// The data directory may be re-rooted by the dev sandbox (see ResolveDataDir).
func Init(dataDir string, opts ...Option) (core.Repository, error) {
	o := buildOptions(opts)
	repo, _, err := initRepository(dataDir, o)
	return repo, err
}

// initRepository returns the repository and the resolved data directory.
func initRepository(dataDir string, o *options) (core.Repository, string, error) {
	if o.repository != nil {
		if err := o.repository.Initialize(context.Background()); err != nil {
			return nil, "", err
		}
		return o.repository, dataDir, nil
	}
	return initFS(dataDir, o)
}

// initFS handles the initialization logic for the file store.
func initFS(dataDir string, o *options) (core.Repository, string, error) {
	autoInit, _ := o.config["auto_init"].(bool)
	tempDir, _ := o.config["temp_dir"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)
	crossProcess, _ := o.config["cross_process_lock"].(bool)
	lockTimeout, _ := o.config["lock_timeout"].(time.Duration)

	// Default to true (safe) if not present.
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	// Bypass the sandbox when read-only (inherently safe) or explicitly disabled.
	bypassSafety := isReadOnly || !devSafety

	useTemp := tempDir || (IsDevRun() && !bypassSafety)
	resolved := ResolveDataDir(dataDir, useTemp)

	logger := loggerOrDiscard(o.logger)
	if useTemp && filepath.Clean(resolved) != filepath.Clean(dataDir) {
		logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", dataDir, "resolved_path", resolved)
	}

	store, err := fs.NewStore(fs.Config{
		Path:             resolvePath(resolved, o.storeFile),
		MustExist:        mustExist || isReadOnly || (!autoInit && !useTemp),
		CrossProcessLock: crossProcess,
		LockTimeout:      lockTimeout,
		Logger:           logger,
	})
	if err != nil {
		return nil, "", err
	}

	// A read-only catalogue never creates anything; a missing directory
	// simply reads as an empty store.
	if !isReadOnly {
		if err := store.Initialize(context.Background()); err != nil {
			return nil, "", err
		}
	}
	return store, resolved, nil
}

// initLegacy returns the legacy source to merge at startup, or nil.
func initLegacy(dataDir string, o *options) core.LegacySource {
	if o.legacy != nil {
		return o.legacy
	}
	if o.legacyFile == "" {
		return nil
	}
	return sqlite.NewLegacyStore(resolvePath(dataDir, o.legacyFile), loggerOrDiscard(o.logger))
}

func resolvePath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}
