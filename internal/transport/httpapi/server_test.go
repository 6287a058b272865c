package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"videorag/internal/domain"
)

type stubBackend struct {
	lastQuery string
	lastTopK  int
}

func (b *stubBackend) Ask(query string, topK int) []string {
	b.lastQuery = query
	b.lastTopK = topK
	if topK <= 0 {
		return []string{}
	}
	return []string{"The cat sat on the mat."}
}

func (b *stubBackend) Stats() domain.Stats {
	return domain.Stats{
		Snapshot: domain.Snapshot{ID: "snap-1", Dimension: 384, Model: "hashing-v1"},
		Units:    3,
	}
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAsk(t *testing.T) {
	backend := &stubBackend{}
	h := NewServer(backend, 3, nil).Handler()

	rec := post(t, h, `{"query": "Where did the cat sit?", "top_k": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Where did the cat sit?", resp.Query)
	assert.Equal(t, []string{"The cat sat on the mat."}, resp.Responses)
	assert.Equal(t, 1, backend.lastTopK)
}

func TestAskDefaultTopK(t *testing.T) {
	backend := &stubBackend{}
	h := NewServer(backend, 3, nil).Handler()

	rec := post(t, h, `{"query": "cats"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, backend.lastTopK)
}

func TestAskNonPositiveTopK(t *testing.T) {
	h := NewServer(&stubBackend{}, 3, nil).Handler()

	rec := post(t, h, `{"query": "cats", "top_k": 0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	// responses must encode as [] rather than null
	assert.JSONEq(t, `{"query": "cats", "responses": []}`, rec.Body.String())
}

func TestAskMalformed(t *testing.T) {
	h := NewServer(&stubBackend{}, 3, nil).Handler()

	for _, body := range []string{`{"query": `, `not json`, `{"query": 5}`} {
		rec := post(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestAskMalformedTopK(t *testing.T) {
	for _, topK := range []string{`"three"`, `"3"`, `2.5`, `true`, `[1]`, `1e2`, `99999999999999999999999`} {
		t.Run(topK, func(t *testing.T) {
			backend := &stubBackend{}
			h := NewServer(backend, 3, nil).Handler()

			rec := post(t, h, `{"query": "cats", "top_k": `+topK+`}`)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"query": "cats", "responses": []}`, rec.Body.String())
			assert.Equal(t, 0, backend.lastTopK)
		})
	}
}

func TestAskNullTopK(t *testing.T) {
	backend := &stubBackend{}
	h := NewServer(backend, 3, nil).Handler()

	rec := post(t, h, `{"query": "cats", "top_k": null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, backend.lastTopK)
}

func TestAskWrongMethod(t *testing.T) {
	h := NewServer(&stubBackend{}, 3, nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ask", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthz(t *testing.T) {
	h := NewServer(&stubBackend{}, 3, nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, HealthResponse{
		Status:    "ok",
		Snapshot:  "snap-1",
		Units:     3,
		Dimension: 384,
		Model:     "hashing-v1",
	}, resp)
}
