package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rleiva87/candlesim/config"
	"github.com/rleiva87/candlesim/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()

	store, err := storage.Open(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("backtest:\n  min_confidence: 0.5\n"), 0666))
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	return NewServer(":0", store, cfg)
}

func writeCSV(t *testing.T, bars int) string {
	t.Helper()

	var buf bytes.Buffer
	price := 100.0
	for i := 0; i < bars; i++ {
		if i%7 == 0 {
			price += 0.5
		} else if i%11 == 0 {
			price -= 0.3
		}
		fmt.Fprintf(&buf, "%d,%.2f,%.2f,%.2f,%.2f,%.1f\n",
			int64(i+1)*60000, price, price+0.2, price-0.2, price, 10.0)
	}

	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0666))
	return path
}

func doRequest(s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListRunsEmpty(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/api/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.Count)
}

func TestRunBacktestAndFetch(t *testing.T) {
	s := newTestServer(t)
	csv := writeCSV(t, 200)

	body, _ := json.Marshal(map[string]string{
		"csv":    csv,
		"symbol": "BTCUSDT",
		"source": "sma_cross",
	})
	w := doRequest(s, http.MethodPost, "/api/backtest", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		ID     string `json:"id"`
		Symbol string `json:"symbol"`
		Bars   int    `json:"bars"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	assert.Equal(t, "BTCUSDT", resp.Symbol)
	assert.Equal(t, 200, resp.Bars)

	w = doRequest(s, http.MethodGet, "/api/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	w = doRequest(s, http.MethodGet, "/api/runs/"+resp.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRunBacktestBadRequest(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/backtest", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, _ := json.Marshal(map[string]string{"csv": "/does/not/exist.csv"})
	w = doRequest(s, http.MethodPost, "/api/backtest", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, _ = json.Marshal(map[string]string{"csv": writeCSV(t, 10), "source": "nope"})
	w = doRequest(s, http.MethodPost, "/api/backtest", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRunMissing(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/api/runs/unknown-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
