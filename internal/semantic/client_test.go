package semantic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockRouterRenamesGenericComponents(t *testing.T) {
	srv := httptest.NewServer(NewMockRouter(nil))
	defer srv.Close()

	client := NewHTTPClient(srv.URL+EndpointPath, nil)
	req := &Request{
		DOMOutline: []OutlineNode{
			{NodeID: "n1", Tag: "section", Classes: []string{"hero"}, Text: "Build faster with flowbridge today"},
		},
		Components: []ComponentRef{
			{ComponentID: "section-1", Name: "Section 1", RootNodeIDs: []string{"n1"}},
			{ComponentID: "hero", Name: "Hero", RootNodeIDs: []string{"n1"}},
		},
	}
	resp, meta, err := client.Patch(context.Background(), req, "")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "mock", meta.Mode)

	require.Len(t, resp.ComponentRenames, 1, "only the generic component is renamed")
	assert.Equal(t, "section-1", resp.ComponentRenames[0].ID)
	assert.Equal(t, "Build faster with flowbridge", resp.ComponentRenames[0].Name)
}

func TestClientNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, nil)
	_, _, err := client.Patch(context.Background(), &Request{}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestClientRejectsSchemaDeviation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true, "response": {"surprise": 1}, "meta": {"mode": "live"}}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, nil)
	_, meta, err := client.Patch(context.Background(), &Request{}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadResponse))
	require.NotNil(t, meta)
	assert.Equal(t, "live", meta.Mode)
}

func TestClientTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client := NewHTTPClient(srv.URL, nil)
	client.Timeout = 50 * time.Millisecond
	_, _, err := client.Patch(context.Background(), &Request{}, "")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClientCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	client := NewHTTPClient(srv.URL, nil)
	_, _, err := client.Patch(ctx, &Request{}, "")
	assert.ErrorIs(t, err, ErrCancelled)
}
