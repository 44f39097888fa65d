// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejzpr/moodlog-mcp/internal/database"
	"github.com/tejzpr/moodlog-mcp/internal/export"
	"github.com/tejzpr/moodlog-mcp/internal/journal"
	"github.com/tejzpr/moodlog-mcp/internal/kvstore"
	"github.com/tejzpr/moodlog-mcp/internal/metrics"
	"github.com/tejzpr/moodlog-mcp/internal/mood"
	gormlogger "gorm.io/gorm/logger"
)

func TestNewMCPServer_RegistersTools(t *testing.T) {
	j := journal.New(kvstore.NewMemoryStore(), journal.Options{})
	s := NewMCPServer(j, "", nil)
	registered := s.mcpServer.ListTools()
	for _, name := range []string{
		"mood_log", "mood_list", "mood_delete", "mood_stats", "mood_summary",
		"medications_list", "medications_save", "reminders_get", "reminders_save", "mood_export",
		"coping_strategies",
	} {
		assert.Contains(t, registered, name)
	}
	assert.Len(t, registered, 11)
}

func TestNewRouter(t *testing.T) {
	rec := metrics.New()
	j := journal.New(kvstore.NewMemoryStore(), journal.Options{Metrics: rec})
	s := NewMCPServer(j, "1.0.0", nil)
	e := mood.DefaultEntry(time.Now())
	e.Notes = "From the router"
	require.NoError(t, j.SaveEntry(context.Background(), &e))

	router := NewRouter(s.ToolContext(), rec, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "From the router")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	doc, err := export.ParseDocument(w.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, doc.Entries, 1)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "moodlog_entries_saved_total 1")
	assert.Contains(t, w.Body.String(), `moodlog_exports_total{format="html"} 1`)
}

func TestNewRouter_ExportFailure(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	kv.FailGet[kvstore.KeyEntries] = errors.New("io error")
	j := journal.New(kv, journal.Options{})
	router := NewRouter(NewMCPServer(j, "", nil).ToolContext(), nil, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewRouter_HealthPingsDatabase(t *testing.T) {
	db, err := database.Open(&database.Config{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "health.db"),
		LogLevel:   gormlogger.Silent,
	})
	require.NoError(t, err)
	router := NewRouter(nil, nil, func() error { return database.Ping(db) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	require.NoError(t, database.Close(db))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
}

func TestMCPServer_NotifyWithoutClients(t *testing.T) {
	j := journal.New(kvstore.NewMemoryStore(), journal.Options{})
	s := NewMCPServer(j, "1.0.0", nil)
	assert.NoError(t, s.Notify(context.Background(), "09:00", "Log your mood"))
}
