package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCounters(t *testing.T) {
	r := New()
	r.File(OutcomeUploaded, 10)
	r.File(OutcomeUploaded, 5)
	r.File(OutcomeIgnored, 99)
	r.File(OutcomeFailed, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Counter(OutcomeUploaded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Counter(OutcomeIgnored)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Counter(OutcomeFailed)))
	assert.Equal(t, 15.0, testutil.ToFloat64(r.bytes))
}

func TestRun(t *testing.T) {
	r := New()
	end := time.Unix(1700000000, 0)
	r.Run("done", 2*time.Second, end)
	assert.Equal(t, 2.0, testutil.ToFloat64(r.duration))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(r.lastSuccess))

	r.Run("fatal", time.Second, end.Add(time.Hour))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(r.lastSuccess))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsByStatus.WithLabelValues("fatal")))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.File(OutcomeUploaded, 1)
	r.Run("done", time.Second, time.Now())
	assert.NoError(t, r.Push(context.Background(), "http://127.0.0.1:1", "job", "x"))
}

func TestPush(t *testing.T) {
	var body string
	var path string
	rt := chi.NewRouter()
	rt.Put("/metrics/*", func(w http.ResponseWriter, req *http.Request) {
		path = req.URL.Path
		b, _ := io.ReadAll(req.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(rt)
	defer srv.Close()

	r := New()
	r.File(OutcomeUploaded, 3)
	require.NoError(t, r.Push(context.Background(), srv.URL, "spupload", "site-a"))
	assert.Equal(t, "/metrics/job/spupload/instance/site-a", path)
	assert.NotEmpty(t, body)
}
