package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/aretw0/argumentaire/pkg/core"
)

// Error messages returned to the front-end.
const (
	msgMissingBody     = "Corps JSON manquant"
	msgInvalidJSON     = "JSON invalide"
	msgRequiredFields  = "'phrase' et 'argumentaire' sont requis"
	msgInvalidSources  = "'sources' doit être un tableau d'objets"
	msgUnknownEndpoint = "Endpoint inconnu"
	msgReadOnly        = "Catalogue en lecture seule"
	msgThrottled       = "Trop de requêtes"
	msgInternal        = "Erreur interne"
	msgBodyTooLarge    = "Corps JSON trop volumineux"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.catalogue.ListAll(r.Context())
	if err != nil {
		s.logger.Error("list failed", "error", err, "request_id", requestIDFrom(r.Context()))
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, msgThrottled)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, msgMissingBody)
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, msgMissingBody)
		return
	}

	payload, ok := decodeObject(body)
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	phrase := strings.TrimSpace(stringField(payload["phrase"]))
	argumentaire := strings.TrimSpace(stringField(payload["argumentaire"]))
	if phrase == "" || argumentaire == "" {
		writeError(w, http.StatusBadRequest, msgRequiredFields)
		return
	}

	rawSources, present := payload["sources"]
	if present && rawSources != nil {
		if _, isList := rawSources.([]any); !isList {
			writeError(w, http.StatusBadRequest, msgInvalidSources)
			return
		}
	}

	record, err := s.catalogue.Upsert(r.Context(), phrase, argumentaire, core.SourcesFromRaw(rawSources))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, record)
	case errors.Is(err, core.ErrInvalidRecord):
		writeError(w, http.StatusBadRequest, msgRequiredFields)
	case errors.Is(err, core.ErrReadOnly):
		writeError(w, http.StatusForbidden, msgReadOnly)
	default:
		s.logger.Error("upsert failed", "error", err, "phrase", phrase, "request_id", requestIDFrom(r.Context()))
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := make(map[string]any, len(s.components))
	for _, c := range s.components {
		status[c.ComponentType()] = c.State()
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnknown(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, msgUnknownEndpoint)
}

// decodeObject accepts a single JSON object and nothing else.
func decodeObject(body []byte) (map[string]any, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, false
	}
	// More reports false on a stray '}', so probe for the end of input instead.
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	m, ok := payload.(map[string]any)
	return m, ok
}

// stringField reads an optional text field; only strings count.
func stringField(v any) string {
	s, _ := v.(string)
	return s
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
