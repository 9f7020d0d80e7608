package wdqs_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/placeproxy/internal/core/domain/place"
	"github.com/avatarctic/placeproxy/internal/infrastructure/wdqs"
)

const bindingsBody = `{"head":{"vars":["country"]},"results":{"bindings":[{"country":{"type":"uri","value":"http://www.wikidata.org/entity/Q55"}}]}}`

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newClient(endpoint string, attempts int) *wdqs.Client {
	return wdqs.NewClient(wdqs.Config{
		Endpoint:       endpoint,
		UserAgent:      "placeproxy-test",
		Timeout:        2 * time.Second,
		MaxAttempts:    attempts,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  5 * time.Millisecond,
	}, nil, quietLogger())
}

func TestExecute_PostsFormAndDecodesBindings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/sparql-results+json", r.Header.Get("Accept"))
		assert.Equal(t, "placeproxy-test", r.Header.Get("User-Agent"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "SELECT * WHERE {}", r.PostForm.Get("query"))
		w.Header().Set("Content-Type", "application/sparql-results+json")
		_, _ = w.Write([]byte(bindingsBody))
	}))
	defer srv.Close()

	res, err := newClient(srv.URL, 1).Execute(context.Background(), "SELECT * WHERE {}")
	require.NoError(t, err)
	require.Len(t, res.Rows(), 1)
	assert.Equal(t, "http://www.wikidata.org/entity/Q55", res.First().Value("country"))
}

func TestExecute_NonSuccessIsUpstreamErrorWithExcerpt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(strings.Repeat("x", 500)))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, 3).Execute(context.Background(), "q")
	var ue *place.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusTooManyRequests, ue.Status)
	assert.Equal(t, "Too Many Requests", ue.StatusText)
	assert.Len(t, ue.BodyExcerpt, 200)
	assert.Equal(t, int32(1), calls.Load(), "upstream errors are never retried")
}

func TestExecute_UndecodableBodyIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, 1).Execute(context.Background(), "q")
	var ue *place.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusOK, ue.Status)
}

func TestExecute_UnreachableEndpointIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(url, 1).Execute(context.Background(), "q")
	var te *place.TransportError
	require.True(t, errors.As(err, &te))
}

func TestExecute_TimeoutIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := wdqs.NewClient(wdqs.Config{Endpoint: srv.URL, Timeout: 50 * time.Millisecond}, nil, quietLogger())
	_, err := c.Execute(context.Background(), "q")
	var te *place.TransportError
	require.True(t, errors.As(err, &te))
}

func TestExecute_RetriesTransportFailuresWhenConfigured(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}
		_, _ = w.Write([]byte(bindingsBody))
	}))
	defer srv.Close()

	res, err := newClient(srv.URL, 3).Execute(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, res.Rows(), 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestExecute_SingleAttemptByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	}))
	defer srv.Close()

	c := wdqs.NewClient(wdqs.Config{Endpoint: srv.URL}, nil, quietLogger())
	_, err := c.Execute(context.Background(), "q")
	var te *place.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, int32(1), calls.Load())
}
