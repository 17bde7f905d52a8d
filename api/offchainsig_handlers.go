package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/LTPPPP/did-trust-registry/action"
	"github.com/LTPPPP/did-trust-registry/offchainsig"
	"github.com/LTPPPP/did-trust-registry/types"
)

func parseSchemeParam(c *fiber.Ctx) (offchainsig.SchemeTag, error) {
	switch c.Params("scheme") {
	case "bbs":
		return offchainsig.BBS, nil
	case "bbs-plus":
		return offchainsig.BBSPlus, nil
	case "ps":
		return offchainsig.PS, nil
	default:
		return 0, fiber.NewError(fiber.StatusBadRequest, "unknown signature scheme, expected bbs, bbs-plus or ps")
	}
}

func parseIncIDParam(c *fiber.Ctx, name string) (types.IncId, error) {
	n, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return types.IncId(n), nil
}

// AddParams handles POST /v1/offchain-signatures/:scheme/params.
func (d *Deps) AddParams(c *fiber.Ctx) error {
	scheme, err := parseSchemeParam(c)
	if err != nil {
		return err
	}
	var sa action.SignedAction[offchainsig.AddOffchainSignatureParams, types.SignatureParamsOwner]
	if err := c.BodyParser(&sa); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	sa.Payload.Params.Scheme = scheme
	id, err := d.OffchainSigs.AddParams(sa)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// RemoveParams handles DELETE /v1/offchain-signatures/:scheme/params/:id.
func (d *Deps) RemoveParams(c *fiber.Ctx) error {
	var sa action.SignedAction[offchainsig.RemoveOffchainSignatureParams, types.SignatureParamsOwner]
	if err := c.BodyParser(&sa); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := d.OffchainSigs.RemoveParams(sa); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddPublicKey handles POST /v1/offchain-signatures/:scheme/keys.
func (d *Deps) AddPublicKey(c *fiber.Ctx) error {
	scheme, err := parseSchemeParam(c)
	if err != nil {
		return err
	}
	var sa action.SignedAction[offchainsig.AddOffchainSignaturePublicKey, types.Controller]
	if err := c.BodyParser(&sa); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	sa.Payload.Key.Scheme = scheme
	id, err := d.OffchainSigs.AddPublicKey(sa)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// RemovePublicKey handles DELETE /v1/offchain-signatures/:scheme/keys/:id.
func (d *Deps) RemovePublicKey(c *fiber.Ctx) error {
	var sa action.SignedAction[offchainsig.RemoveOffchainSignaturePublicKey, types.SignatureParamsOwner]
	if err := c.BodyParser(&sa); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := d.OffchainSigs.RemovePublicKey(sa); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetParams handles GET /v1/offchain-signatures/:scheme/params/:owner/:id.
func (d *Deps) GetParams(c *fiber.Ctx) error {
	owner, err := types.DidFromHex(c.Params("owner"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	id, err := parseIncIDParam(c, "id")
	if err != nil {
		return err
	}
	params, ok := d.OffchainSigs.GetParams(types.SignatureParamsOwner(owner), id)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "ParamsDontExist")
	}
	return c.JSON(params)
}

// GetPublicKeyWithParams handles GET /v1/offchain-signatures/:scheme/keys/:did/:id.
func (d *Deps) GetPublicKeyWithParams(c *fiber.Ctx) error {
	owner, err := parseDidParam(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	id, err := parseIncIDParam(c, "id")
	if err != nil {
		return err
	}
	resolved, ok := d.OffchainSigs.GetPublicKeyWithParams(owner, id)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "PublicKeyDoesntExist")
	}
	return c.JSON(resolved)
}
