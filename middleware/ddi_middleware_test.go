package middleware

import (
	"crypto/ed25519"
	"encoding/hex"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LTPPPP/did-trust-registry/did"
	"github.com/LTPPPP/did-trust-registry/runtime"
	"github.com/LTPPPP/did-trust-registry/types"
)

func newTestRegistryWithKey(t *testing.T) (*did.Registry, types.Did, ed25519.PrivateKey) {
	t.Helper()
	reg := did.NewRegistry(runtime.DefaultVerifiers(), runtime.NewEventBus(), func() uint64 { return 1 })

	var target types.Did
	for i := range target {
		target[i] = 7
	}

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	pk, err := types.NewPublicKey(types.Ed25519, pub)
	require.NoError(t, err)
	key := types.NewUncheckedDidKey(pk, types.Authentication)

	require.NoError(t, reg.NewOnchain(target, []types.UncheckedDidKey{key}, nil))
	return reg, target, priv
}

func TestDDIAuthMiddlewareAcceptsValidProof(t *testing.T) {
	reg, target, priv := newTestRegistryWithKey(t)

	app := fiber.New()
	app.Get("/whoami", DDIAuthMiddleware(reg), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("did").(string))
	})

	didHex := target.String()
	timestamp := time.Now().UTC().Format(time.RFC3339)
	sig := ed25519.Sign(priv, []byte(didHex+":"+timestamp))

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("X-DID", didHex)
	req.Header.Set("X-DID-Proof", hex.EncodeToString(sig))
	req.Header.Set("X-DID-Timestamp", timestamp)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestDDIAuthMiddlewareRejectsBadSignature(t *testing.T) {
	reg, target, _ := newTestRegistryWithKey(t)

	app := fiber.New()
	app.Get("/whoami", DDIAuthMiddleware(reg), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	didHex := target.String()
	timestamp := time.Now().UTC().Format(time.RFC3339)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("X-DID", didHex)
	req.Header.Set("X-DID-Proof", hex.EncodeToString(make([]byte, ed25519.SignatureSize)))
	req.Header.Set("X-DID-Timestamp", timestamp)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestDDIAuthMiddlewareRejectsStaleTimestamp(t *testing.T) {
	reg, target, priv := newTestRegistryWithKey(t)

	app := fiber.New()
	app.Get("/whoami", DDIAuthMiddleware(reg), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	didHex := target.String()
	timestamp := time.Now().UTC().Add(-1 * time.Hour).Format(time.RFC3339)
	sig := ed25519.Sign(priv, []byte(didHex+":"+timestamp))

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("X-DID", didHex)
	req.Header.Set("X-DID-Proof", hex.EncodeToString(sig))
	req.Header.Set("X-DID-Timestamp", timestamp)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestDDIPermissionMiddlewareRejectsMissingRelationship(t *testing.T) {
	reg, target, priv := newTestRegistryWithKey(t)

	app := fiber.New()
	app.Get("/assert-only", DDIProtect(reg, types.Assertion)[0], DDIProtect(reg, types.Assertion)[1], func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	didHex := target.String()
	timestamp := time.Now().UTC().Format(time.RFC3339)
	sig := ed25519.Sign(priv, []byte(didHex+":"+timestamp))

	req := httptest.NewRequest("GET", "/assert-only", nil)
	req.Header.Set("X-DID", didHex)
	req.Header.Set("X-DID-Proof", hex.EncodeToString(sig))
	req.Header.Set("X-DID-Timestamp", timestamp)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
