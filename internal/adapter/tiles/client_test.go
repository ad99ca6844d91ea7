package tiles

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/fire-match-viz/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headerContentType = "Content-Type"

func testClient(timeout time.Duration) (*Client, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return NewClient(timeout, m, slog.New(slog.NewTextHandler(io.Discard, nil))), m
}

func testSource(baseURL string) Source {
	return Source{Name: "test", URL: baseURL + "/{z}/{x}/{y}.png", MaxZoom: 18}
}

func TestClient_Probe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Berlin at z10 is tile 550/335.
		assert.Equal(t, "/10/550/335.png", r.URL.Path)
		w.Header().Set(headerContentType, "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	c, m := testClient(5 * time.Second)
	err := c.Probe(context.Background(), testSource(srv.URL), 52.52, 13.405, 10)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.TileProbes.WithLabelValues("success")), 0)
}

func TestClient_Probe_ClampsZoom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Regexp(t, `^/18/`, r.URL.Path)
		w.Header().Set(headerContentType, "image/png")
	}))
	defer srv.Close()

	c, _ := testClient(5 * time.Second)
	require.NoError(t, c.Probe(context.Background(), testSource(srv.URL), 0, 0, 25))
}

func TestClient_Probe_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized - Invalid Token"}`))
	}))
	defer srv.Close()

	c, m := testClient(5 * time.Second)
	err := c.Probe(context.Background(), testSource(srv.URL), 52.52, 13.405, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Invalid Token")
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.TileProbes.WithLabelValues("error")), 0)
}

func TestClient_Probe_NotAnImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, "text/html")
		_, _ = w.Write([]byte("<html>captive portal</html>"))
	}))
	defer srv.Close()

	c, _ := testClient(5 * time.Second)
	err := c.Probe(context.Background(), testSource(srv.URL), 0, 0, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text/html")
}

func TestClient_Probe_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := testClient(50 * time.Millisecond)
	err := c.Probe(context.Background(), testSource(srv.URL), 0, 0, 3)
	require.Error(t, err)
}
