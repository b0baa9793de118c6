// Package sqlite reads the legacy SQLite catalogue that predates the JSON store.
// The database is only ever opened read-only.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	_ "modernc.org/sqlite"

	"github.com/aretw0/argumentaire/pkg/core"
)

const legacyQuery = `SELECT phrase, argumentaire, sources FROM argumentaires`

// LegacyStore implements core.LegacySource over a table
// argumentaires(phrase TEXT PRIMARY KEY, argumentaire TEXT, sources TEXT).
type LegacyStore struct {
	Path   string
	logger *slog.Logger

	mu       sync.RWMutex
	lastRead *time.Time
	lastRows int
	lastErr  string
}

// NewLegacyStore creates a reader for the database at path.
// A nil logger discards output.
func NewLegacyStore(path string, logger *slog.Logger) *LegacyStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LegacyStore{Path: path, logger: logger}
}

// LoadLegacy returns every usable row. A missing database, or one that cannot
// be opened or queried, yields no records and no error.
func (l *LegacyStore) LoadLegacy(ctx context.Context) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.Path == "" {
		return []core.Record{}, nil
	}
	if _, err := os.Stat(l.Path); err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("legacy database unreadable, skipping", "path", l.Path, "error", err)
		}
		l.record(0, err)
		return []core.Record{}, nil
	}

	records, err := l.read(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.logger.Warn("legacy database unreadable, skipping", "path", l.Path, "error", err)
		l.record(0, err)
		return []core.Record{}, nil
	}

	l.logger.Debug("legacy database loaded", "path", l.Path, "count", len(records))
	l.record(len(records), nil)
	return records, nil
}

func (l *LegacyStore) read(ctx context.Context) ([]core.Record, error) {
	db, err := sql.Open("sqlite", l.Path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", l.Path, err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, legacyQuery)
	if err != nil {
		return nil, fmt.Errorf("query legacy rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []core.Record{}
	for rows.Next() {
		var phrase, argumentaire, sources sql.NullString
		if err := rows.Scan(&phrase, &argumentaire, &sources); err != nil {
			return nil, fmt.Errorf("scan legacy row: %w", err)
		}
		raw := map[string]any{
			"phrase":       phrase.String,
			"argumentaire": argumentaire.String,
			"sources":      decodeSources(sources.String),
		}
		if r, ok := core.SanitizeRaw(raw); ok {
			records = append(records, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate legacy rows: %w", err)
	}
	return records, nil
}

// decodeSources parses the JSON text stored in the sources column.
// Anything that does not decode is treated as no sources.
func decodeSources(text string) any {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil
	}
	return v
}

func (l *LegacyStore) record(rows int, err error) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastRead = &now
	l.lastRows = rows
	l.lastErr = ""
	if err != nil && !os.IsNotExist(err) {
		l.lastErr = err.Error()
	}
}

// LegacyState exposes the outcome of the last read.
type LegacyState struct {
	Path     string     `json:"path"`
	LastRead *time.Time `json:"last_read,omitempty"`
	Rows     int        `json:"rows"`
	Error    string     `json:"error,omitempty"`
}

// State implements introspection.Introspectable.
func (l *LegacyStore) State() any {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return LegacyState{
		Path:     l.Path,
		LastRead: l.lastRead,
		Rows:     l.lastRows,
		Error:    l.lastErr,
	}
}

// ComponentType implements introspection.Component.
func (l *LegacyStore) ComponentType() string {
	return "legacy-sqlite"
}

var _ core.LegacySource = (*LegacyStore)(nil)
var _ introspection.Introspectable = (*LegacyStore)(nil)
var _ introspection.Component = (*LegacyStore)(nil)
