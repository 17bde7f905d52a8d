package docref

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LTPPPP/did-trust-registry/did"
)

func TestResolveURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello doc"))
	}))
	defer srv.Close()

	r := NewResolver()
	content, err := r.Resolve(context.Background(), did.NewURLDocRef(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "hello doc", string(content))
}

func TestResolveCustomReturnsValueVerbatim(t *testing.T) {
	r := NewResolver()
	ref := did.NewCustomDocRef([]byte{1, 2, 3})
	content, err := r.Resolve(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, content)
}

func TestResolveURLPropagatesNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewResolver()
	_, err := r.Resolve(context.Background(), did.NewURLDocRef(srv.URL))
	assert.Error(t, err)
}

func TestGatewayURL(t *testing.T) {
	r := NewResolver()
	got := r.GatewayURL(did.NewCIDDocRef("bafy-example"))
	assert.Contains(t, got, "bafy-example")
}
