package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/LTPPPP/did-trust-registry/middleware"
	"github.com/LTPPPP/did-trust-registry/regerr"
)

// errorResponse is spec.md §6.3's HTTP error shape: a stable machine
// code plus a human message.
type errorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

var notFoundErrors = []error{
	regerr.ErrDidDoesNotExist,
	regerr.ErrNoControllerForDid,
	regerr.ErrNoKeyForDid,
	regerr.ErrServiceEndpointDoesNotExist,
	regerr.ErrParamsDontExist,
	regerr.ErrPublicKeyDoesntExist,
	regerr.ErrNoSuchIssuer,
	regerr.ErrNoSuchVerifier,
	regerr.ErrEntityDoesntExist,
	regerr.ErrUpdateDoesntExist,
}

var conflictErrors = []error{
	regerr.ErrDidAlreadyExists,
	regerr.ErrServiceEndpointAlreadyExists,
	regerr.ErrEntityAlreadyExists,
	regerr.ErrUpdateAlreadyExists,
}

var authErrors = []error{
	regerr.ErrInvalidSignature,
	regerr.ErrIncorrectNonce,
	regerr.ErrOnlyControllerCanUpdate,
	regerr.ErrDidNotOwnedByAccount,
	regerr.ErrNotOwner,
	regerr.ErrNotTheConvener,
	regerr.ErrSenderCantApplyThisUpdate,
	regerr.ErrInsufficientVerificationRelationship,
	regerr.ErrUpdateInvalidActor,
	regerr.ErrKeyAgreementCantBeUsedForSigning,
	regerr.ErrSigningKeyCantBeUsedForKeyAgreement,
}

var payloadTooLargeErrors = []error{
	regerr.ErrParamsTooBig,
	regerr.ErrPublicKeyTooBig,
	regerr.ErrLabelTooBig,
	regerr.ErrTooManyEntities,
	regerr.ErrIssuersSizeExceeded,
	regerr.ErrVerifiersSizeExceeded,
	regerr.ErrVerificationPricesSizeExceeded,
	regerr.ErrPriceCurrencySymbolSizeExceeded,
	regerr.ErrDelegatedIssuersSizeExceeded,
	regerr.ErrUpdateCapacityOverflow,
}

// statusFor maps an error to its HTTP status, its stable machine-readable
// code (the sentinel's own text), and the message id that localize passes
// to middleware.TranslateErrorMessage for the human-facing message.
func statusFor(err error) (int, string, string) {
	for _, sentinel := range notFoundErrors {
		if errors.Is(err, sentinel) {
			return fiber.StatusNotFound, sentinel.Error(), "error.not_found"
		}
	}
	for _, sentinel := range conflictErrors {
		if errors.Is(err, sentinel) {
			return fiber.StatusConflict, sentinel.Error(), "error.conflict"
		}
	}
	for _, sentinel := range authErrors {
		if errors.Is(err, sentinel) {
			return fiber.StatusForbidden, sentinel.Error(), "error.forbidden"
		}
	}
	for _, sentinel := range payloadTooLargeErrors {
		if errors.Is(err, sentinel) {
			return fiber.StatusRequestEntityTooLarge, sentinel.Error(), "error.payload_too_large"
		}
	}
	return fiber.StatusBadRequest, err.Error(), "error.bad_request"
}

// localize resolves the request's locale via middleware.TranslateErrorMessage
// and falls back to the untranslated detail when no locale bundle was
// mounted (e.g. in package-level tests) or the message id is unknown.
func localize(c *fiber.Ctx, messageID, detail string) string {
	msg := middleware.TranslateErrorMessage(c, messageID, nil)
	if msg == messageID {
		return detail
	}
	return msg
}

// ErrorHandler is the Fiber app-level error handler: it maps a handler's
// returned error to an HTTP status and spec.md §6.3's {error_code,
// message} body, localizing the message per the caller's Accept-Language
// header. Any error not recognized as one of the regerr sentinels falls
// back to 400, except fiber.Error which keeps its own status code (used
// by middleware that raises its own errors).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(errorResponse{ErrorCode: "RequestError", Message: fe.Message})
	}

	status, code, messageID := statusFor(err)
	return c.Status(status).JSON(errorResponse{ErrorCode: code, Message: localize(c, messageID, err.Error())})
}
