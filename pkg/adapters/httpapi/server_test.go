package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/argumentaire/pkg/adapters/fs"
	"github.com/aretw0/argumentaire/pkg/core"
)

// newTestServer wires a real service over a temp store.
func newTestServer(t *testing.T, opts ...Option) (*core.Service, *fs.Store, *httptest.Server) {
	t.Helper()

	dir := t.TempDir()
	store, err := fs.NewStore(fs.Config{Path: filepath.Join(dir, "argumentaires.json")})
	require.NoError(t, err)
	require.NoError(t, store.Initialize(context.Background()))

	svc := core.NewService(store, core.WithSeed(func() []core.Record {
		return []core.Record{{Phrase: "Seed", Argumentaire: "seeded", Sources: []core.Source{}}}
	}))

	ts := httptest.NewServer(New(svc, opts...).Handler())
	t.Cleanup(ts.Close)
	return svc, store, ts
}

func postRaw(t *testing.T, client *http.Client, url, body string) *http.Response {
	t.Helper()
	resp, err := client.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestListArgumentaires_SeedWhenEmpty(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/api/argumentaires")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	got := decodeJSON[[]core.Record](t, resp)
	require.Len(t, got, 1)
	assert.Equal(t, "Seed", got[0].Phrase)
}

func TestSubmitArgumentaire(t *testing.T) {
	_, store, ts := newTestServer(t)
	client := ts.Client()

	resp := postRaw(t, client, ts.URL+"/api/argumentaires", `{
		"phrase": "  CI phrase test ",
		"argumentaire": "Validation des sauvegardes.",
		"sources": [{"titre": "GitLab CI"}, {"titre": " ", "url": ""}, "skipped"]
	}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeJSON[map[string]any](t, resp)
	assert.Equal(t, "CI phrase test", got["phrase"])
	assert.Equal(t, []any{map[string]any{"titre": "GitLab CI"}}, got["sources"])

	listResp, err := client.Get(ts.URL + "/api/argumentaires")
	require.NoError(t, err)
	list := decodeJSON[[]core.Record](t, listResp)
	var phrases []string
	for _, r := range list {
		phrases = append(phrases, r.Phrase)
	}
	assert.Equal(t, []string{"CI phrase test", "Seed"}, phrases)

	data, err := os.ReadFile(store.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"titre": "GitLab CI"`)
}

func TestSubmitArgumentaire_NoHTMLEscaping(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp := postRaw(t, ts.Client(), ts.URL+"/api/argumentaires",
		`{"phrase":"<é>","argumentaire":"a & b","sources":null}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Contains(t, string(body), `"phrase":"<é>"`)
	assert.Contains(t, string(body), `"argumentaire":"a & b"`)
	assert.Contains(t, string(body), `"sources":[]`)
}

func TestSubmitArgumentaire_Validation(t *testing.T) {
	_, store, ts := newTestServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"Empty Body", "", msgMissingBody},
		{"Whitespace Body", "   ", msgMissingBody},
		{"Invalid JSON", "{nope", msgInvalidJSON},
		{"Array Body", `[{"phrase":"p","argumentaire":"a"}]`, msgInvalidJSON},
		{"Trailing Garbage", `{"phrase":"p","argumentaire":"a"} {}`, msgInvalidJSON},
		{"Trailing Closing Brace", `{"phrase":"p","argumentaire":"a"} }`, msgInvalidJSON},
		{"Missing Phrase", `{"argumentaire":"a"}`, msgRequiredFields},
		{"Blank Argumentaire", `{"phrase":"p","argumentaire":"   "}`, msgRequiredFields},
		{"Numeric Phrase", `{"phrase":42,"argumentaire":"a"}`, msgRequiredFields},
		{"Sources Object", `{"phrase":"p","argumentaire":"a","sources":{"titre":"t"}}`, msgInvalidSources},
		{"Sources String", `{"phrase":"p","argumentaire":"a","sources":"t"}`, msgInvalidSources},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postRaw(t, ts.Client(), ts.URL+"/api/argumentaires", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			got := decodeJSON[errorResponse](t, resp)
			assert.Equal(t, tt.want, got.Error)
		})
	}

	assert.NoFileExists(t, store.Path, "rejected submissions must not touch the store")
}

func TestSubmitArgumentaire_BodyTooLarge(t *testing.T) {
	_, _, ts := newTestServer(t, WithMaxBodyBytes(64))

	body := `{"phrase":"p","argumentaire":"` + strings.Repeat("x", 128) + `"}`
	resp := postRaw(t, ts.Client(), ts.URL+"/api/argumentaires", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	resp.Body.Close()
}

func TestSubmitArgumentaire_RateLimited(t *testing.T) {
	_, _, ts := newTestServer(t, WithRateLimit(0.001, 1))

	first := postRaw(t, ts.Client(), ts.URL+"/api/argumentaires", `{"phrase":"p","argumentaire":"a"}`)
	assert.Equal(t, http.StatusOK, first.StatusCode)
	first.Body.Close()

	second := postRaw(t, ts.Client(), ts.URL+"/api/argumentaires", `{"phrase":"q","argumentaire":"b"}`)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.Equal(t, "1", second.Header.Get("Retry-After"))
	second.Body.Close()
}

type stubCatalogue struct {
	upsertErr error
	listErr   error
}

func (s stubCatalogue) ListAll(context.Context) ([]core.Record, error) {
	return []core.Record{}, s.listErr
}

func (s stubCatalogue) Upsert(_ context.Context, phrase, argumentaire string, sources []core.Source) (core.Record, error) {
	if s.upsertErr != nil {
		return core.Record{}, s.upsertErr
	}
	return core.Record{Phrase: phrase, Argumentaire: argumentaire, Sources: sources}, nil
}

func TestSubmitArgumentaire_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"Read Only", core.ErrReadOnly, http.StatusForbidden},
		{"Lock Timeout", core.ErrLockTimeout, http.StatusInternalServerError},
		{"Write Failure", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(New(stubCatalogue{upsertErr: tt.err}).Handler())
			defer ts.Close()

			resp := postRaw(t, ts.Client(), ts.URL+"/api/argumentaires", `{"phrase":"p","argumentaire":"a"}`)
			assert.Equal(t, tt.status, resp.StatusCode)
			resp.Body.Close()
		})
	}

	t.Run("List Failure", func(t *testing.T) {
		ts := httptest.NewServer(New(stubCatalogue{listErr: errors.New("boom")}).Handler())
		defer ts.Close()

		resp, err := ts.Client().Get(ts.URL + "/api/argumentaires")
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestRouting(t *testing.T) {
	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>Argumentaires</h1>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(static, "argumentaires.json"), []byte("[]"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(static, "argumentaires.db"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(static, ".env"), []byte("SECRET=1"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(static, "css"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(static, "css", "site.css"), []byte("body{}"), 0644))

	_, _, ts := newTestServer(t, WithStaticDir(static))
	client := ts.Client()

	t.Run("Options Preflight", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/argumentaires", nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Content-Type", resp.Header.Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "GET, POST, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	})

	t.Run("Options Outside API", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, ts.URL+"/index.html", nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"), "CORS headers stay on /api/")
	})

	t.Run("Post Unknown Endpoint", func(t *testing.T) {
		resp := postRaw(t, client, ts.URL+"/api/other", `{}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, msgUnknownEndpoint, decodeJSON[errorResponse](t, resp).Error)

		resp = postRaw(t, client, ts.URL+"/index.html", `{}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("Static Files", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/")
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "Argumentaires")
		assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

		resp, err = client.Get(ts.URL + "/css/site.css")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Denied Files", func(t *testing.T) {
		for _, p := range []string{"/argumentaires.json", "/argumentaires.db", "/.env"} {
			resp, err := client.Get(ts.URL + p)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusNotFound, resp.StatusCode, p)
		}
	})

	t.Run("Request ID", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/argumentaires")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Len(t, resp.Header.Get(RequestIDHeader), 36)

		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/argumentaires", nil)
		require.NoError(t, err)
		req.Header.Set(RequestIDHeader, "abc-123")
		resp, err = client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
	})
}

func TestStatusEndpoint(t *testing.T) {
	dir := t.TempDir()
	store, err := fs.NewStore(fs.Config{Path: filepath.Join(dir, "argumentaires.json")})
	require.NoError(t, err)
	svc := core.NewService(store)

	ts := httptest.NewServer(New(svc, WithComponents(svc, store)).Handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/status")
	require.NoError(t, err)
	got := decodeJSON[map[string]map[string]any](t, resp)

	assert.Contains(t, got, "service")
	assert.Contains(t, got, "file-store")
	assert.Equal(t, store.Path, got["file-store"]["path"])
}

func TestConcurrentSubmissions(t *testing.T) {
	svc, _, ts := newTestServer(t)
	client := ts.Client()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body, _ := json.Marshal(map[string]any{
				"phrase":       "phrase " + string(rune('A'+i)),
				"argumentaire": "body",
			})
			resp, err := client.Post(ts.URL+"/api/argumentaires", "application/json", bytes.NewReader(body))
			if assert.NoError(t, err) {
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				resp.Body.Close()
			}
		}(i)
	}
	wg.Wait()

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	// The first upsert persists the seed fallback along with its own record.
	assert.Len(t, all, 17)
}

func TestServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(stubCatalogue{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/api/argumentaires"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
