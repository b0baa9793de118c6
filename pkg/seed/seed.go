// Package seed holds the built-in default records used to bootstrap an empty store.
package seed

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aretw0/argumentaire/pkg/core"
)

//go:embed argumentaires.json
var raw []byte

var parsed = sync.OnceValues(func() ([]any, error) {
	var items []any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("invalid embedded seed: %w", err)
	}
	return items, nil
})

// Records returns the sanitized seed set. Every call builds a new slice,
// so callers are free to modify the result.
func Records() []core.Record {
	items, err := parsed()
	if err != nil {
		// The seed is compiled in; a decode failure is a build defect.
		panic(err)
	}
	return core.SanitizeAll(items)
}

// Raw returns a copy of the embedded seed document.
func Raw() []byte {
	return bytes.Clone(raw)
}
