package controlplane

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/breakroom/internal/ledger"
	"github.com/fentz26/breakroom/internal/models"
	"github.com/fentz26/breakroom/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	metrics := NewMetrics()
	svc := newTestService(WithLedger(ledger.NewSQLite(st)), WithMetrics(metrics))
	return NewServer(svc, "127.0.0.1:0", WithStore(st), WithServerMetrics(metrics)), st
}

func postMessage(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPostMessage(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	w := postMessage(t, h, `{"agent_id":"u1","display_name":"Alice","text":"on break"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp MessageResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, models.OutcomeTransitioned, resp.Outcome)
	assert.Equal(t, "Alice is now on break.", resp.Notice)
	assert.True(t, resp.Changed)
	require.NotNil(t, resp.Snapshot)
	assert.Equal(t, 1, resp.Snapshot.Break.Count)
	assert.True(t, strings.HasPrefix(resp.Reply, "Alice is now on break.\n\n**__Proposed Break Queue__**"))
	assert.Contains(t, resp.Reply, "**__Break Queue (1/3)__**\n- Alice\n")
}

func TestPostMessage_Invalid(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	w := postMessage(t, h, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postMessage(t, h, `{"agent_id":"","text":"break"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "agent_id is required")
}

func TestPostMessage_MethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/messages", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestGetSnapshot(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	postMessage(t, h, `{"agent_id":"u1","display_name":"Alice","text":"offline"}`)

	tests := []struct {
		query       string
		status      int
		contentType string
		contains    string
	}{
		{"", http.StatusOK, "application/json", `"total_away":1`},
		{"?format=markdown", http.StatusOK, "text/plain", "**__Offline Agents (1/3)__**\n- Alice"},
		{"?format=text", http.StatusOK, "text/plain", "Alice"},
		{"?format=xml", http.StatusBadRequest, "application/json", "format"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/snapshot"+tt.query, nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), tt.contentType)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}

func TestListAbsences(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	postMessage(t, h, `{"agent_id":"u1","display_name":"Alice","text":"break"}`)
	postMessage(t, h, `{"agent_id":"u2","display_name":"Bob","text":"offline"}`)
	postMessage(t, h, `{"agent_id":"u1","display_name":"Alice","text":"back"}`)

	get := func(query string) (int, []models.Absence) {
		req := httptest.NewRequest(http.MethodGet, "/absences"+query, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		var absences []models.Absence
		if w.Code == http.StatusOK {
			require.NoError(t, json.NewDecoder(w.Body).Decode(&absences))
		}
		return w.Code, absences
	}

	code, all := get("")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, all, 2)

	code, open := get("?open=true")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, open, 1)
	assert.Equal(t, models.AgentID("u2"), open[0].AgentID)

	code, alice := get("?agent=u1")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, alice, 1)
	assert.NotNil(t, alice[0].EndedAt)

	code, _ = get("?open=maybe")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = get("?limit=-1")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListAbsences_NoStore(t *testing.T) {
	s := NewServer(newTestService(), "127.0.0.1:0")

	req := httptest.NewRequest(http.MethodGet, "/absences", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthEndpoint_OK(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var health HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&health))
	assert.True(t, health.OK)
	assert.Equal(t, "ok", health.DB)
	assert.NotEmpty(t, health.Version)
	assert.NotEmpty(t, health.Time)
}

func TestHealthEndpoint_DBDown(t *testing.T) {
	s, st := newTestServer(t)
	st.Close()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var health HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&health))
	assert.False(t, health.OK)
	assert.NotEqual(t, "ok", health.DB)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	postMessage(t, h, `{"agent_id":"u1","display_name":"Alice","text":"break"}`)
	postMessage(t, h, `{"agent_id":"u1","display_name":"Alice","text":"break"}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `breakroom_messages_total{intent="take_break"} 2`)
	assert.Contains(t, body, `breakroom_outcomes_total{outcome="already_in_state"} 1`)
	assert.Contains(t, body, `breakroom_agents{state="break"} 1`)
}

func TestServer_RealListener(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/messages", "application/json",
		bytes.NewBufferString(`{"agent_id":"u1","display_name":"Alice","text":"what is the status"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"outcome":"status"`)
	assert.Contains(t, string(body), "Total Away from chat: 0/5")
}
