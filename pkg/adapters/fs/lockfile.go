package fs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aretw0/argumentaire/pkg/core"
)

const lockPollInterval = 10 * time.Millisecond

// DefaultLockStaleAfter is the age past which a lock file is reclaimed even
// when its owner cannot be proven dead. Holders keep the lock for one
// read-modify-write, far below this bound.
const DefaultLockStaleAfter = time.Minute

// lockFile is an advisory lock shared by every process using the same store.
// It is held while a file created with O_EXCL exists. The file holds the
// owner's pid so that a lock left by a crashed process can be reclaimed.
type lockFile struct {
	path       string
	timeout    time.Duration
	staleAfter time.Duration
	logger     *slog.Logger
}

// acquire blocks until the lock file is created, ctx ends or the timeout elapses.
func (l *lockFile) acquire(ctx context.Context) (func(), error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() {
				os.Remove(l.path)
			}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
		if l.reclaimStale() {
			continue
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return nil, fmt.Errorf("%w: %s", core.ErrLockTimeout, l.path)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// reclaimStale removes the lock file when its owner is gone or it is older
// than staleAfter, and reports whether it did.
func (l *lockFile) reclaimStale() bool {
	content, info, err := l.read()
	if err != nil {
		// Released between our attempt and now; retry right away.
		return os.IsNotExist(err)
	}

	pid, hasPid := parsePid(content)
	age := time.Since(info.ModTime())

	var reason string
	switch {
	case hasPid && !processAlive(pid):
		reason = "owner process is gone"
	case l.staleAfter > 0 && age > l.staleAfter:
		reason = "lock file too old"
	default:
		return false
	}

	// Another process may have reclaimed and re-taken the lock meanwhile;
	// only remove the exact file we judged.
	again, againInfo, err := l.read()
	if err != nil {
		return os.IsNotExist(err)
	}
	if !bytes.Equal(again, content) || !againInfo.ModTime().Equal(info.ModTime()) {
		return false
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return false
	}

	if l.logger != nil {
		l.logger.Warn("reclaimed stale store lock", "path", l.path, "pid", pid, "age", age, "reason", reason)
	}
	return true
}

func (l *lockFile) read() ([]byte, os.FileInfo, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, nil, err
	}
	content, err := os.ReadFile(l.path)
	if err != nil {
		return nil, nil, err
	}
	return content, info, nil
}

// parsePid reads the owner pid. An empty file is a lock being written.
func parsePid(content []byte) (int, bool) {
	pid, err := strconv.Atoi(string(bytes.TrimSpace(content)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
