package middleware

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/LTPPPP/did-trust-registry/did"
	"github.com/LTPPPP/did-trust-registry/types"
)

// DDIAuthMiddleware verifies decentralized identity authentication for
// read endpoints that want to attribute a query to a caller DID. Writes
// never use this: they carry their own action.SignedAction envelope and
// are verified by action.Verify inside the handler, nonce and all. This
// middleware only checks proof of possession of a key already on file in
// the registry, for endpoints like "list my own delegated schemas".
func DDIAuthMiddleware(registry *did.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		didHeader := c.Get("X-DID")
		if didHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "X-DID header is required")
		}
		proofHeader := c.Get("X-DID-Proof")
		if proofHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "X-DID-Proof header is required")
		}
		timestampHeader := c.Get("X-DID-Timestamp")
		if timestampHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "X-DID-Timestamp header is required")
		}

		timestamp, err := time.Parse(time.RFC3339, timestampHeader)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid X-DID-Timestamp format, expected RFC3339")
		}
		now := time.Now().UTC()
		if timestamp.Before(now.Add(-15*time.Minute)) || timestamp.After(now.Add(15*time.Minute)) {
			return fiber.NewError(fiber.StatusUnauthorized, "X-DID-Timestamp out of acceptable range")
		}

		subject, err := types.DidFromHex(didHeader)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid X-DID: "+err.Error())
		}
		key, err := registry.Key(subject, 1)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "failed to resolve DID key: "+err.Error())
		}
		if !key.VerRels.Has(types.Authentication) {
			return fiber.NewError(fiber.StatusUnauthorized, "key 1 is not authorized for authentication")
		}

		sigBytes, err := hex.DecodeString(strings.TrimPrefix(proofHeader, "0x"))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "malformed X-DID-Proof: not valid hex")
		}
		sig, err := types.NewSigValue(key.PublicKey.Scheme, sigBytes)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "malformed X-DID-Proof: "+err.Error())
		}

		message := []byte(didHeader + ":" + timestampHeader)
		ok, err := sig.Verify(message, key.PublicKey, registry.Verifiers())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to verify DID proof: "+err.Error())
		}
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid DID proof")
		}

		c.Locals("did", didHeader)
		return c.Next()
	}
}

// DDIPermissionMiddleware checks that the authenticated DID carries one of
// the required verification relationships on its first key. It is a
// coarse, registry-local stand-in for the capability checks each
// trustregistry/offchainsig handler already performs on write.
func DDIPermissionMiddleware(registry *did.Registry, required ...types.VerRelType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subjectHeader, ok := c.Locals("did").(string)
		if !ok || subjectHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "DID authentication required")
		}
		subject, err := types.DidFromHex(subjectHeader)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid DID: "+err.Error())
		}
		key, err := registry.Key(subject, 1)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "failed to resolve DID key: "+err.Error())
		}
		for _, rel := range required {
			if !key.VerRels.Has(rel) {
				return fiber.NewError(fiber.StatusForbidden,
					"DID '"+subjectHeader+"' lacks a required verification relationship")
			}
		}
		return c.Next()
	}
}

// DDIProtect combines DDIAuthMiddleware and DDIPermissionMiddleware.
func DDIProtect(registry *did.Registry, required ...types.VerRelType) []fiber.Handler {
	return []fiber.Handler{
		DDIAuthMiddleware(registry),
		DDIPermissionMiddleware(registry, required...),
	}
}

