package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/argumentaire/pkg/core"
)

// Serializer defines how the catalogue is read and written in a specific file format.
type Serializer interface {
	// Parse reads a list of records from r. Malformed entries are skipped;
	// an error means the document as a whole could not be decoded.
	Parse(r io.Reader) ([]core.Record, error)
	// Serialize encodes records in the given order.
	Serialize(records []core.Record) ([]byte, error)
}

// DefaultSerializers returns the standard set of serializers keyed by extension.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		".json": NewJSONSerializer(),
		".yaml": NewYAMLSerializer(),
		".yml":  NewYAMLSerializer(),
	}
}

// SerializerFor returns the serializer for a format name ("json", "yaml")
// or a file extension (".json").
func SerializerFor(format string) (Serializer, error) {
	ext := strings.ToLower(format)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if s, ok := DefaultSerializers()[ext]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

func serializerForPath(path string, registry map[string]Serializer) (Serializer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if s, ok := registry[ext]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("no serializer registered for %q", ext)
}

// normalize guarantees the wire shape: an array, and sources never null.
func normalize(records []core.Record) []core.Record {
	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		if r.Sources == nil {
			r.Sources = []core.Source{}
		}
		out = append(out, r)
	}
	return out
}

// --- JSON Serializer ---

// JSONSerializer handles the canonical store format: a JSON array indented
// with two spaces, UTF-8 kept literal, terminated by a newline.
type JSONSerializer struct{}

// NewJSONSerializer creates a new JSON serializer.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

func (s *JSONSerializer) Parse(r io.Reader) ([]core.Record, error) {
	var payload any
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if err := expectEOF(decoder); err != nil {
		return nil, err
	}
	items, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("invalid json: expected an array, got %T", payload)
	}
	return core.SanitizeAll(items), nil
}

func (s *JSONSerializer) Serialize(records []core.Record) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	// Encode appends the trailing newline.
	if err := encoder.Encode(normalize(records)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// expectEOF rejects anything but whitespace after the decoded value.
// More is not enough here: it reports false on a stray ']' or '}'.
func expectEOF(decoder *json.Decoder) error {
	if _, err := decoder.Token(); err != io.EOF {
		return fmt.Errorf("invalid json: trailing data after the array")
	}
	return nil
}

// --- YAML Serializer ---

// YAMLSerializer reads and writes the catalogue as a YAML sequence.
type YAMLSerializer struct{}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer() *YAMLSerializer {
	return &YAMLSerializer{}
}

func (s *YAMLSerializer) Parse(r io.Reader) ([]core.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var payload any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if payload == nil {
		return []core.Record{}, nil
	}
	items, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("invalid yaml: expected a sequence, got %T", payload)
	}
	return core.SanitizeAll(items), nil
}

func (s *YAMLSerializer) Serialize(records []core.Record) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(normalize(records)); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
