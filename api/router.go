package api

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes mounts every registry, off-chain signature, and trust
// registry route onto app. Route paths follow spec.md §6's HTTP surface.
// The off-chain DID writes and NewOnchain take plain JSON bodies; every
// other write is a DID-signed action.SignedAction envelope. Reads are free;
// ResolveDID and GetSchemaMetadata cache their responses through
// db.CacheJSON/db.GetCachedJSON.
func SetupRoutes(app *fiber.App, deps *Deps) {
	v1 := app.Group("/v1")

	didGroup := v1.Group("/did")
	didGroup.Post("/offchain", deps.NewOffchain)
	didGroup.Patch("/offchain/:did/doc-ref", deps.SetOffchainDidDocRef)
	didGroup.Delete("/offchain/:did", deps.RemoveOffchainDid)
	didGroup.Post("/onchain", deps.NewOnchain)
	didGroup.Post("/onchain/:did/keys", deps.AddKeys)
	didGroup.Delete("/onchain/:did/keys", deps.RemoveKeys)
	didGroup.Post("/onchain/:did/controllers", deps.AddControllers)
	didGroup.Delete("/onchain/:did/controllers", deps.RemoveControllers)
	didGroup.Post("/onchain/:did/services", deps.AddServiceEndpoint)
	didGroup.Delete("/onchain/:did/services/:id", deps.RemoveServiceEndpoint)
	didGroup.Delete("/onchain/:did", deps.RemoveOnchainDid)
	didGroup.Get("/:did", deps.ResolveDID)

	sigs := v1.Group("/offchain-signatures")
	sigs.Post("/:scheme/params", deps.AddParams)
	sigs.Delete("/:scheme/params/:id", deps.RemoveParams)
	sigs.Post("/:scheme/keys", deps.AddPublicKey)
	sigs.Delete("/:scheme/keys/:id", deps.RemovePublicKey)
	sigs.Get("/:scheme/params/:owner/:id", deps.GetParams)
	sigs.Get("/:scheme/keys/:did/:id", deps.GetPublicKeyWithParams)

	trust := v1.Group("/trust-registry")
	trust.Post("/:reg", deps.InitOrUpdateTrustRegistry)
	trust.Post("/:reg/schemas", deps.SetSchemasMetadata)
	trust.Post("/:reg/issuers/suspend", deps.SuspendIssuers)
	trust.Post("/:reg/issuers/unsuspend", deps.UnsuspendIssuers)
	trust.Post("/:reg/issuers/:issuer/delegated", deps.UpdateDelegatedIssuers)
	trust.Get("/:reg", deps.GetTrustRegistry)
	trust.Get("/:reg/schemas/:schema", deps.GetSchemaMetadata)
}
