// Package argumentaire is the Composition Root for the argumentaire catalogue.
//
// The catalogue pairs common phrases with a counter-argument and the sources
// backing it. The core domain (pkg/core) is isolated from persistence: the
// canonical store is a single JSON file written atomically (pkg/adapters/fs),
// an older SQLite database is merged in read-only at startup
// (pkg/adapters/sqlite), and the HTTP and MCP front-ends talk to the same
// core.Service.
//
// Features:
//
//   - **Atomic Persistence**: every write replaces the store through a temp file and a rename.
//   - **Merge on Startup**: seed, current store and legacy database, the legacy layer winning.
//   - **Serialized Access**: one lock per process, optionally a lock file across processes.
//   - **Sanitized Records**: trimmed fields, empty sources dropped, required fields enforced.
//
// Usage:
//
//	svc, err := argumentaire.New("./data",
//		argumentaire.WithAutoInit(true),
//		argumentaire.WithLogger(logger),
//	)
//
//	rec, err := svc.Upsert(ctx, "phrase", "counter-argument", nil)
package argumentaire
