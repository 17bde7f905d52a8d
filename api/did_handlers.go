package api

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/LTPPPP/did-trust-registry/action"
	"github.com/LTPPPP/did-trust-registry/db"
	"github.com/LTPPPP/did-trust-registry/did"
	"github.com/LTPPPP/did-trust-registry/types"
)

func parseDidParam(c *fiber.Ctx) (types.Did, error) {
	return types.DidFromHex(c.Params("did"))
}

type newOffchainRequest struct {
	Account string      `json:"account"`
	Did     types.Did   `json:"did"`
	DocRef  did.DocRef  `json:"doc_ref"`
}

// NewOffchain handles POST /v1/did/offchain.
func (d *Deps) NewOffchain(c *fiber.Ctx) error {
	var req newOffchainRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := d.DIDs.NewOffchain(req.Account, req.Did, req.DocRef); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"did": req.Did})
}

type setDocRefRequest struct {
	Account string     `json:"account"`
	DocRef  did.DocRef `json:"doc_ref"`
}

// SetOffchainDidDocRef handles PATCH /v1/did/offchain/:did/doc-ref.
func (d *Deps) SetOffchainDidDocRef(c *fiber.Ctx) error {
	target, err := parseDidParam(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	var req setDocRefRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := d.DIDs.SetOffchainDidDocRef(req.Account, target, req.DocRef); err != nil {
		return err
	}
	db.Invalidate(c.Context(), db.DIDDocKey(target.String()))
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveOffchainDid handles DELETE /v1/did/offchain/:did.
func (d *Deps) RemoveOffchainDid(c *fiber.Ctx) error {
	target, err := parseDidParam(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	var req struct {
		Account string `json:"account"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := d.DIDs.RemoveOffchainDid(req.Account, target); err != nil {
		return err
	}
	db.Invalidate(c.Context(), db.DIDDocKey(target.String()))
	return c.SendStatus(fiber.StatusNoContent)
}

type newOnchainRequest struct {
	Did         types.Did                 `json:"did"`
	Keys        []types.UncheckedDidKey   `json:"keys"`
	Controllers []types.Controller        `json:"controllers"`
}

// NewOnchain handles POST /v1/did/onchain.
func (d *Deps) NewOnchain(c *fiber.Ctx) error {
	var req newOnchainRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	controllers := map[types.Controller]struct{}{}
	for _, ctrl := range req.Controllers {
		controllers[ctrl] = struct{}{}
	}
	if err := d.DIDs.NewOnchain(req.Did, req.Keys, controllers); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"did": req.Did})
}

// AddKeys handles POST /v1/did/onchain/:did/keys.
func (d *Deps) AddKeys(c *fiber.Ctx) error {
	var sa action.SignedAction[did.AddKeys, types.Controller]
	if err := c.BodyParser(&sa); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := d.DIDs.AddKeys(sa); err != nil {
		return err
	}
	db.Invalidate(c.Context(), db.DIDDocKey(sa.Payload.Did.String()))
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveKeys handles DELETE /v1/did/onchain/:did/keys.
func (d *Deps) RemoveKeys(c *fiber.Ctx) error {
	var sa action.SignedAction[did.RemoveKeys, types.Controller]
	if err := c.BodyParser(&sa); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := d.DIDs.RemoveKeys(sa); err != nil {
		return err
	}
	db.Invalidate(c.Context(), db.DIDDocKey(sa.Payload.Did.String()))
	return c.SendStatus(fiber.StatusNoContent)
}

// AddControllers handles POST /v1/did/onchain/:did/controllers.
func (d *Deps) AddControllers(c *fiber.Ctx) error {
	var sa action.SignedAction[did.AddControllers, types.Controller]
	if err := c.BodyParser(&sa); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := d.DIDs.AddControllers(sa); err != nil {
		return err
	}
	db.Invalidate(c.Context(), db.DIDDocKey(sa.Payload.Did.String()))
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveControllers handles DELETE /v1/did/onchain/:did/controllers.
func (d *Deps) RemoveControllers(c *fiber.Ctx) error {
	var sa action.SignedAction[did.RemoveControllers, types.Controller]
	if err := c.BodyParser(&sa); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := d.DIDs.RemoveControllers(sa); err != nil {
		return err
	}
	db.Invalidate(c.Context(), db.DIDDocKey(sa.Payload.Did.String()))
	return c.SendStatus(fiber.StatusNoContent)
}

// AddServiceEndpoint handles POST /v1/did/onchain/:did/services.
func (d *Deps) AddServiceEndpoint(c *fiber.Ctx) error {
	var sa action.SignedAction[did.AddServiceEndpoint, types.Controller]
	if err := c.BodyParser(&sa); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := d.DIDs.AddServiceEndpoint(sa); err != nil {
		return err
	}
	db.Invalidate(c.Context(), db.DIDDocKey(sa.Payload.Did.String()))
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveServiceEndpoint handles DELETE /v1/did/onchain/:did/services/:id.
func (d *Deps) RemoveServiceEndpoint(c *fiber.Ctx) error {
	var sa action.SignedAction[did.RemoveServiceEndpoint, types.Controller]
	if err := c.BodyParser(&sa); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := d.DIDs.RemoveServiceEndpoint(sa); err != nil {
		return err
	}
	db.Invalidate(c.Context(), db.DIDDocKey(sa.Payload.Did.String()))
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveOnchainDid handles DELETE /v1/did/onchain/:did.
func (d *Deps) RemoveOnchainDid(c *fiber.Ctx) error {
	var sa action.SignedAction[did.DidRemoval, types.Controller]
	if err := c.BodyParser(&sa); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := d.DIDs.RemoveOnchainDid(sa); err != nil {
		return err
	}
	db.Invalidate(c.Context(), db.DIDDocKey(sa.Payload.Did.String()))
	return c.SendStatus(fiber.StatusNoContent)
}

// ResolveDID handles GET /v1/did/:did: a free, cached read that renders
// the on-chain DID as a W3C DID document, or dereferences an off-chain
// DID's doc_ref.
func (d *Deps) ResolveDID(c *fiber.Ctx) error {
	target, err := parseDidParam(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	cacheKey := db.DIDDocKey(target.String())
	var cached fiber.Map
	if ok, _ := db.GetCachedJSON(c.Context(), cacheKey, &cached); ok {
		return c.JSON(cached)
	}

	doc, err := d.DIDs.Document(target)
	if err == nil {
		body := fiber.Map{"document": doc}
		_ = db.CacheJSON(c.Context(), cacheKey, body, db.DefaultTTL())
		return c.JSON(body)
	}

	offchain, offErr := d.DIDs.OffChainDetails(target)
	if offErr != nil {
		return offErr
	}
	content, resolveErr := d.DocRefs.Resolve(context.Background(), offchain.DocRef)
	body := fiber.Map{
		"account":  offchain.Account,
		"doc_ref":  offchain.DocRef,
		"resolved": resolveErr == nil,
	}
	if resolveErr == nil {
		body["content"] = content
	}
	_ = db.CacheJSON(c.Context(), cacheKey, body, db.DefaultTTL())
	return c.JSON(body)
}
