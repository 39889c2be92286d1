package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudscope/cloudscope/internal/domain/resources"
)

func TestStaticLookup(t *testing.T) {
	d := NewStatic([]resources.ResourceRef{
		{ID: "stream-A", Name: "orders-events", Type: resources.TypeKinesisStream, Region: "us-east-1"},
	})

	ref, err := d.Lookup(context.Background(), "stream-A")
	require.NoError(t, err)
	assert.Equal(t, "orders-events", ref.Name)

	_, err = d.Lookup(context.Background(), "ghost")
	assert.ErrorIs(t, err, resources.ErrNotFound)
}

func TestClientLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/resources/cache-B":
			_ = json.NewEncoder(w).Encode(resources.ResourceRef{
				ID: "cache-B", Name: "session-cache", Type: resources.TypeCacheCluster, Region: "us-east-1",
			})
		case "/resources/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)

	ref, err := c.Lookup(context.Background(), "cache-B")
	require.NoError(t, err)
	assert.Equal(t, resources.TypeCacheCluster, ref.Type)

	_, err = c.Lookup(context.Background(), "ghost")
	assert.ErrorIs(t, err, resources.ErrNotFound)

	_, err = c.Lookup(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, resources.ErrNotFound)
}
