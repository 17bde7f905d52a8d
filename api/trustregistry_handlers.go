package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/LTPPPP/did-trust-registry/action"
	"github.com/LTPPPP/did-trust-registry/db"
	"github.com/LTPPPP/did-trust-registry/trustregistry"
	"github.com/LTPPPP/did-trust-registry/types"
)

func parseRegIDParam(c *fiber.Ctx) (trustregistry.RegId, error) {
	did, err := types.DidFromHex(c.Params("reg"))
	if err != nil {
		return trustregistry.RegId{}, fiber.NewError(fiber.StatusBadRequest, "invalid reg id: "+err.Error())
	}
	return trustregistry.RegId(did), nil
}

// InitOrUpdateTrustRegistry handles POST /v1/trust-registry/:reg.
func (d *Deps) InitOrUpdateTrustRegistry(c *fiber.Ctx) error {
	reg, err := parseRegIDParam(c)
	if err != nil {
		return err
	}
	var sa action.SignedAction[trustregistry.InitOrUpdateTrustRegistry, types.Convener]
	if err := c.BodyParser(&sa); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	sa.Payload.RegId = reg
	if err := d.TrustRegistries.InitOrUpdateTrustRegistry(sa); err != nil {
		return err
	}
	db.Invalidate(c.Context(), regCacheKey(reg))
	return c.SendStatus(fiber.StatusNoContent)
}

// SetSchemasMetadata handles POST /v1/trust-registry/:reg/schemas.
func (d *Deps) SetSchemasMetadata(c *fiber.Ctx) error {
	reg, err := parseRegIDParam(c)
	if err != nil {
		return err
	}
	var sa action.SignedAction[trustregistry.SetSchemasMetadata, types.ConvenerOrIssuerOrVerifier]
	if err := c.BodyParser(&sa); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	sa.Payload.RegId = reg
	if err := d.TrustRegistries.SetSchemasMetadata(sa); err != nil {
		return err
	}
	for schema := range sa.Payload.SetWhole {
		db.Invalidate(c.Context(), db.SchemaMetadataKey(reg.String(), schema.String()))
	}
	for schema := range sa.Payload.ModifyTargets {
		db.Invalidate(c.Context(), db.SchemaMetadataKey(reg.String(), schema.String()))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SuspendIssuers handles POST /v1/trust-registry/:reg/issuers/suspend.
func (d *Deps) SuspendIssuers(c *fiber.Ctx) error {
	reg, err := parseRegIDParam(c)
	if err != nil {
		return err
	}
	var sa action.SignedAction[trustregistry.SuspendIssuers, types.Convener]
	if err := c.BodyParser(&sa); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	sa.Payload.RegId = reg
	if err := d.TrustRegistries.SuspendIssuers(sa); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnsuspendIssuers handles POST /v1/trust-registry/:reg/issuers/unsuspend.
func (d *Deps) UnsuspendIssuers(c *fiber.Ctx) error {
	reg, err := parseRegIDParam(c)
	if err != nil {
		return err
	}
	var sa action.SignedAction[trustregistry.UnsuspendIssuers, types.Convener]
	if err := c.BodyParser(&sa); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	sa.Payload.RegId = reg
	if err := d.TrustRegistries.UnsuspendIssuers(sa); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateDelegatedIssuers handles POST /v1/trust-registry/:reg/issuers/:issuer/delegated.
func (d *Deps) UpdateDelegatedIssuers(c *fiber.Ctx) error {
	reg, err := parseRegIDParam(c)
	if err != nil {
		return err
	}
	var sa action.SignedAction[trustregistry.UpdateDelegatedIssuers, types.Issuer]
	if err := c.BodyParser(&sa); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	sa.Payload.RegId = reg
	if err := d.TrustRegistries.UpdateDelegatedIssuers(sa); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetTrustRegistry handles GET /v1/trust-registry/:reg.
func (d *Deps) GetTrustRegistry(c *fiber.Ctx) error {
	reg, err := parseRegIDParam(c)
	if err != nil {
		return err
	}
	info, ok := d.TrustRegistries.Info(reg)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "EntityDoesntExist")
	}
	return c.JSON(info)
}

// GetSchemaMetadata handles GET /v1/trust-registry/:reg/schemas/:schema.
func (d *Deps) GetSchemaMetadata(c *fiber.Ctx) error {
	reg, err := parseRegIDParam(c)
	if err != nil {
		return err
	}
	schemaDid, err := types.DidFromHex(c.Params("schema"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	schema := trustregistry.SchemaId(schemaDid)

	cacheKey := db.SchemaMetadataKey(reg.String(), schema.String())
	var cached trustregistry.SchemaMetadata
	if ok, _ := db.GetCachedJSON(c.Context(), cacheKey, &cached); ok {
		return c.JSON(cached)
	}

	meta, ok := d.TrustRegistries.SchemaMetadataOf(reg, schema)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "EntityDoesntExist")
	}
	_ = db.CacheJSON(c.Context(), cacheKey, meta, db.DefaultTTL())
	return c.JSON(meta)
}

func regCacheKey(reg trustregistry.RegId) string {
	return "cache:trustreg:" + reg.String()
}
