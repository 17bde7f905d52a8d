package api

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LTPPPP/did-trust-registry/did"
	"github.com/LTPPPP/did-trust-registry/docref"
	"github.com/LTPPPP/did-trust-registry/offchainsig"
	"github.com/LTPPPP/did-trust-registry/runtime"
	"github.com/LTPPPP/did-trust-registry/trustregistry"
	"github.com/LTPPPP/did-trust-registry/types"
)

func newTestApp() (*fiber.App, *Deps) {
	didEvents := runtime.NewEventBus()
	registry := did.NewRegistry(runtime.DefaultVerifiers(), didEvents, func() uint64 { return 1 })
	deps := &Deps{
		DIDs:            registry,
		OffchainSigs:    offchainsig.NewStore(registry, runtime.NewEventBus()),
		TrustRegistries: trustregistry.NewStore(registry, runtime.NewEventBus()),
		DocRefs:         docref.NewResolver(),
	}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupRoutes(app, deps)
	return app, deps
}

func TestNewOnchainAndResolve(t *testing.T) {
	app, _ := newTestApp()

	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	pk, err := types.NewPublicKey(types.Ed25519, pub)
	require.NoError(t, err)

	var target types.Did
	for i := range target {
		target[i] = 0x42
	}

	body, err := json.Marshal(map[string]any{
		"did":  target,
		"keys": []types.UncheckedDidKey{types.NewUncheckedDidKey(pk, types.None)},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/did/onchain", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	getReq := httptest.NewRequest(http.MethodGet, "/v1/did/"+target.String(), nil)
	getResp, err := app.Test(getReq)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, getResp.StatusCode)
}

func TestResolveUnknownDidReturnsNotFound(t *testing.T) {
	app, _ := newTestApp()

	var unknown types.Did
	for i := range unknown {
		unknown[i] = 0x99
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/did/"+unknown.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestNewOnchainRejectsDuplicateDid(t *testing.T) {
	app, _ := newTestApp()

	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	pk, err := types.NewPublicKey(types.Ed25519, pub)
	require.NoError(t, err)

	var target types.Did
	for i := range target {
		target[i] = 0x7
	}

	body, err := json.Marshal(map[string]any{
		"did":  target,
		"keys": []types.UncheckedDidKey{types.NewUncheckedDidKey(pk, types.None)},
	})
	require.NoError(t, err)

	for i, wantStatus := range []int{fiber.StatusCreated, fiber.StatusConflict} {
		_ = i
		req := httptest.NewRequest(http.MethodPost, "/v1/did/onchain", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, wantStatus, resp.StatusCode)
	}
}

func TestGetTrustRegistryNotFound(t *testing.T) {
	app, _ := newTestApp()

	var reg trustregistry.RegId
	for i := range reg {
		reg[i] = 0x3
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/trust-registry/"+reg.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

// TestNewOnchainPromotesZeroVerRelsOverWire sends a literal ver_rels:0 key,
// the exact shape a hand-written client (not a Go struct marshaled one)
// would produce, and confirms UncheckedDidKey's UnmarshalJSON promotes it to
// AllForSigning before it ever reaches Validate(), rather than letting a
// key that can neither control nor authenticate the DID through silently.
func TestNewOnchainPromotesZeroVerRelsOverWire(t *testing.T) {
	app, _ := newTestApp()

	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	var target types.Did
	for i := range target {
		target[i] = 0x55
	}

	rawBody := fmt.Sprintf(
		`{"did":%q,"keys":[{"scheme":1,"bytes":%q,"ver_rels":0}]}`,
		target.String(), base64.StdEncoding.EncodeToString(pub),
	)

	req := httptest.NewRequest(http.MethodPost, "/v1/did/onchain", bytes.NewReader([]byte(rawBody)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	getReq := httptest.NewRequest(http.MethodGet, "/v1/did/"+target.String(), nil)
	getResp, err := app.Test(getReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, getResp.StatusCode)

	var got struct {
		Document did.W3CDIDDocument `json:"document"`
	}
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&got))

	assert.NotEmpty(t, got.Document.CapabilityInvocation, "ver_rels:0 key must be promoted so it can control the DID")
	assert.NotEmpty(t, got.Document.Authentication, "ver_rels:0 key must be promoted so it can authenticate the DID")
	assert.Contains(t, got.Document.Controller, "did:registry:"+target.String(), "a promoted controlling key must self-control the DID")
}
