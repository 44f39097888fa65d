// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	r := New()

	r.Degraded("list_entries", "decode")
	r.Degraded("list_entries", "decode")
	r.Degraded("save_entry", "io")
	r.EntrySaved()
	r.Exported("json")
	r.ReminderFired()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.degraded.WithLabelValues("list_entries", "decode")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.degraded.WithLabelValues("save_entry", "io")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.entriesSaved))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.exports.WithLabelValues("json")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.remindersFired))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Degraded("op", "io")
		r.EntrySaved()
		r.Exported("html")
		r.ReminderFired()
	})
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.EntrySaved()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "moodlog_entries_saved_total 1"))
}
