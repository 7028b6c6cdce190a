package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaClient_Complete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)
		w.Write([]byte(`{"response":"RULES_GROUP","done":true}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "llama3:8b", 0, nil)
	got, err := c.Complete(context.Background(), "classify this")
	require.NoError(t, err)
	assert.Equal(t, "RULES_GROUP", got)
}

func TestOllamaClient_Complete_HTTPErrorIsNotConnectivity(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "missing", 0, nil)
	_, err := c.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, IsConnectivity(err))
	assert.Contains(t, err.Error(), "404")
}

func TestOllamaClient_Complete_ConnectionRefused(t *testing.T) {
	t.Parallel()

	// Port from a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := NewOllamaClient(addr, "llama3:8b", time.Second, nil)
	_, err := c.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, IsConnectivity(err))
}

func TestOllamaClient_Complete_ServiceError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"out of memory"}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "llama3:8b", 0, nil)
	_, err := c.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, IsConnectivity(err))
	assert.Contains(t, err.Error(), "out of memory")
}

func TestOllamaClient_HealthCheck(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "llama3:8b", 0, nil)
	assert.True(t, c.HealthCheck(context.Background()))

	srv.Close()
	assert.False(t, c.HealthCheck(context.Background()))
}
