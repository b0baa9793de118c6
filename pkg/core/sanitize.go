package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SanitizeSource trims every field and drops the source when nothing is left.
func SanitizeSource(s Source) (Source, bool) {
	out := Source{
		Titre:  strings.TrimSpace(s.Titre),
		Auteur: strings.TrimSpace(s.Auteur),
		URL:    strings.TrimSpace(s.URL),
	}
	if out == (Source{}) {
		return Source{}, false
	}
	return out, true
}

// SanitizeRecord normalizes a record: phrase and argumentaire are trimmed and
// required, empty sources are removed. The returned Sources is never nil.
func SanitizeRecord(r Record) (Record, bool) {
	out := Record{
		Phrase:       strings.TrimSpace(r.Phrase),
		Argumentaire: strings.TrimSpace(r.Argumentaire),
		Sources:      make([]Source, 0, len(r.Sources)),
	}
	if out.Phrase == "" || out.Argumentaire == "" {
		return Record{}, false
	}
	for _, s := range r.Sources {
		if clean, ok := SanitizeSource(s); ok {
			out.Sources = append(out.Sources, clean)
		}
	}
	return out, true
}

// ValidateRecord sanitizes r and reports which required field is missing.
func ValidateRecord(r Record) (Record, error) {
	if strings.TrimSpace(r.Phrase) == "" {
		return Record{}, fmt.Errorf("%w: phrase is required", ErrInvalidRecord)
	}
	if strings.TrimSpace(r.Argumentaire) == "" {
		return Record{}, fmt.Errorf("%w: argumentaire is required", ErrInvalidRecord)
	}
	clean, _ := SanitizeRecord(r)
	return clean, nil
}

// SanitizeRaw reduces an untyped value (decoded JSON, tool arguments, legacy
// rows) to a Record. Anything that is not an object, or lacks a phrase or an
// argumentaire, is rejected.
func SanitizeRaw(raw any) (Record, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return Record{}, false
	}
	return SanitizeRecord(Record{
		Phrase:       scalarString(m["phrase"]),
		Argumentaire: scalarString(m["argumentaire"]),
		Sources:      SourcesFromRaw(m["sources"]),
	})
}

// SanitizeRawSource reduces an untyped value to a Source.
func SanitizeRawSource(raw any) (Source, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return Source{}, false
	}
	return SanitizeSource(Source{
		Titre:  scalarString(m["titre"]),
		Auteur: scalarString(m["auteur"]),
		URL:    scalarString(m["url"]),
	})
}

// SourcesFromRaw converts an untyped sources value. A value that is not a
// list yields no sources; malformed elements are skipped.
func SourcesFromRaw(raw any) []Source {
	list, ok := raw.([]any)
	if !ok {
		return []Source{}
	}
	out := make([]Source, 0, len(list))
	for _, item := range list {
		if s, ok := SanitizeRawSource(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// SanitizeAll keeps the records that survive SanitizeRaw, in input order.
func SanitizeAll(raws []any) []Record {
	out := make([]Record, 0, len(raws))
	for _, raw := range raws {
		if r, ok := SanitizeRaw(raw); ok {
			out = append(out, r)
		}
	}
	return out
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		// Objects and lists are not valid field values.
		return ""
	}
}
