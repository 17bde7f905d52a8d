// Package docref dereferences an off-chain DID's doc_ref (spec.md §3.3)
// against whatever off-chain store it names: a URL fetched directly, or
// an IPFS CID fetched through a pooled go-ipfs-api shell. A Custom doc_ref
// has no store to dereference and is returned to the caller as-is.
package docref

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	shell "github.com/ipfs/go-ipfs-api"

	"github.com/LTPPPP/did-trust-registry/did"
)

// client wraps one pooled IPFS shell connection.
type client struct {
	shell   *shell.Shell
	timeout time.Duration
}

func newClient(apiURL string) *client {
	sh := shell.NewShell(apiURL)
	sh.SetTimeout(30 * time.Second)
	return &client{shell: sh, timeout: 30 * time.Second}
}

// Resolver dereferences DocRef values, pooling IPFS shell connections the
// way the teacher's IPFS service pools theirs.
type Resolver struct {
	nodeURL    string
	gatewayURL string

	httpClient *http.Client

	poolMu sync.Mutex
	pool   []*client
	size   int

	maxRetries int
}

// NewResolver builds a Resolver from IPFS_NODE_URL / IPFS_GATEWAY_URL /
// IPFS_CONN_POOL_SIZE, matching the env var names the ambient config
// package also reads defaults for.
func NewResolver() *Resolver {
	nodeURL := getEnv("IPFS_NODE_URL", "http://localhost:5001")
	gatewayURL := getEnv("IPFS_GATEWAY_URL", "http://localhost:8080")

	size := 5
	if v, err := strconv.Atoi(os.Getenv("IPFS_CONN_POOL_SIZE")); err == nil && v > 0 {
		size = v
	}

	pool := make([]*client, size)
	for i := range pool {
		pool[i] = newClient(nodeURL)
	}

	return &Resolver{
		nodeURL:    nodeURL,
		gatewayURL: gatewayURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		pool:       pool,
		size:       size,
		maxRetries: 3,
	}
}

func (r *Resolver) acquire() *client {
	r.poolMu.Lock()
	defer r.poolMu.Unlock()
	if len(r.pool) == 0 {
		return newClient(r.nodeURL)
	}
	c := r.pool[len(r.pool)-1]
	r.pool = r.pool[:len(r.pool)-1]
	return c
}

func (r *Resolver) release(c *client) {
	r.poolMu.Lock()
	defer r.poolMu.Unlock()
	if len(r.pool) < r.size {
		r.pool = append(r.pool, c)
	}
}

func withRetry(attempts int, op func() error) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt < attempts-1 {
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
		}
	}
	return fmt.Errorf("operation failed after %d attempts: %w", attempts, err)
}

// Resolve dereferences ref and returns its raw content. A Custom ref has
// no store to fetch from; its Value is returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, ref did.DocRef) ([]byte, error) {
	switch ref.Kind {
	case did.DocRefCustom:
		return ref.Value, nil
	case did.DocRefURL:
		return r.fetchURL(ctx, string(ref.Value))
	case did.DocRefCID:
		return r.fetchCID(string(ref.Value))
	default:
		return nil, fmt.Errorf("docref: unknown kind %d", ref.Kind)
	}
}

func (r *Resolver) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("docref: build request: %w", err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docref: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("docref: fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (r *Resolver) fetchCID(cid string) ([]byte, error) {
	c := r.acquire()
	defer r.release(c)

	var out []byte
	err := withRetry(r.maxRetries, func() error {
		reader, err := c.shell.Cat(cid)
		if err != nil {
			return err
		}
		defer reader.Close()
		out, err = io.ReadAll(reader)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("docref: fetch CID %s: %w", cid, err)
	}
	return out, nil
}

// Publish pins content on IPFS and returns a DocRef pointing at its CID.
func (r *Resolver) Publish(content []byte) (did.DocRef, error) {
	c := r.acquire()
	defer r.release(c)

	var cid string
	err := withRetry(r.maxRetries, func() error {
		var uploadErr error
		cid, uploadErr = c.shell.Add(bytes.NewReader(content))
		return uploadErr
	})
	if err != nil {
		return did.DocRef{}, fmt.Errorf("docref: publish to IPFS: %w", err)
	}
	return did.NewCIDDocRef(cid), nil
}

// GatewayURL renders a human-followable HTTP URL for ref's CID, or "" for
// non-CID refs.
func (r *Resolver) GatewayURL(ref did.DocRef) string {
	if ref.Kind != did.DocRefCID {
		return ""
	}
	gw := strings.TrimSuffix(r.gatewayURL, "/")
	if strings.HasSuffix(gw, "/ipfs") {
		return fmt.Sprintf("%s/%s", gw, string(ref.Value))
	}
	return fmt.Sprintf("%s/ipfs/%s", gw, string(ref.Value))
}

// Ping verifies connectivity to the configured IPFS node.
func (r *Resolver) Ping() (version, commit string, err error) {
	c := r.acquire()
	defer r.release(c)
	return c.shell.Version()
}

func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}
