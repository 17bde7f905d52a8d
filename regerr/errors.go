// Package regerr collects the user-visible error kinds named in spec.md §6.3,
// grouped by source, as sentinel errors. Handlers across did, offchainsig,
// trustregistry, action and update wrap these with errors.Is-compatible
// %w verbs so the HTTP layer can map them to stable error codes without any
// package depending on another's internal error types.
package regerr

import "errors"

// DID errors.
var (
	ErrDidAlreadyExists                    = errors.New("DidAlreadyExists")
	ErrDidDoesNotExist                     = errors.New("DidDoesNotExist")
	ErrNotAnOnChainDid                     = errors.New("NotAnOnChainDid")
	ErrNotAnOffChainDid                    = errors.New("NotAnOffChainDid")
	ErrCannotGetDetailForOnChainDid        = errors.New("CannotGetDetailForOnChainDid")
	ErrCannotGetDetailForOffChainDid       = errors.New("CannotGetDetailForOffChainDid")
	ErrDidNotOwnedByAccount                = errors.New("DidNotOwnedByAccount")
	ErrNoControllerProvided                = errors.New("NoControllerProvided")
	ErrNoControllerForDid                  = errors.New("NoControllerForDid")
	ErrNoKeyProvided                       = errors.New("NoKeyProvided")
	ErrNoKeyForDid                         = errors.New("NoKeyForDid")
	ErrInsufficientVerificationRelationship = errors.New("InsufficientVerificationRelationship")
	ErrOnlyControllerCanUpdate             = errors.New("OnlyControllerCanUpdate")
	ErrInvalidSignature                    = errors.New("InvalidSignature")
	ErrKeyAgreementCantBeUsedForSigning     = errors.New("KeyAgreementCantBeUsedForSigning")
	ErrSigningKeyCantBeUsedForKeyAgreement  = errors.New("SigningKeyCantBeUsedForKeyAgreement")
	ErrIncorrectNonce                      = errors.New("IncorrectNonce")
	ErrInvalidServiceEndpoint              = errors.New("InvalidServiceEndpoint")
	ErrServiceEndpointAlreadyExists        = errors.New("ServiceEndpointAlreadyExists")
	ErrServiceEndpointDoesNotExist         = errors.New("ServiceEndpointDoesNotExist")
)

// Off-chain signature store errors.
var (
	ErrParamsTooBig       = errors.New("ParamsTooBig")
	ErrPublicKeyTooBig    = errors.New("PublicKeyTooBig")
	ErrParamsDontExist    = errors.New("ParamsDontExist")
	ErrPublicKeyDoesntExist = errors.New("PublicKeyDoesntExist")
	ErrNotOwner           = errors.New("NotOwner")
	ErrLabelTooBig        = errors.New("LabelTooBig")
)

// Trust Registry errors.
var (
	ErrNotTheConvener               = errors.New("NotTheConvener")
	ErrNoSuchIssuer                 = errors.New("NoSuchIssuer")
	ErrNoSuchVerifier                = errors.New("NoSuchVerifier")
	ErrSenderCantApplyThisUpdate    = errors.New("SenderCantApplyThisUpdate")
	ErrEntityAlreadyExists          = errors.New("EntityAlreadyExists")
	ErrEntityDoesntExist            = errors.New("EntityDoesntExist")
	ErrTooManyEntities              = errors.New("TooManyEntities")
	ErrIssuersSizeExceeded          = errors.New("IssuersSizeExceeded")
	ErrVerifiersSizeExceeded        = errors.New("VerifiersSizeExceeded")
	ErrVerificationPricesSizeExceeded = errors.New("VerificationPricesSizeExceeded")
	ErrPriceCurrencySymbolSizeExceeded = errors.New("PriceCurrencySymbolSizeExceeded")
	ErrDelegatedIssuersSizeExceeded = errors.New("DelegatedIssuersSizeExceeded")
)

// Update-algebra errors (spec.md §4.1 UpdateError), carried as the same
// sentinel family so a failed ensure_valid can be surfaced uniformly.
var (
	ErrUpdateDoesntExist      = errors.New("DoesntExist")
	ErrUpdateAlreadyExists    = errors.New("AlreadyExists")
	ErrUpdateInvalidActor     = errors.New("InvalidActor")
	ErrUpdateOverflow         = errors.New("Overflow")
	ErrUpdateUnderflow        = errors.New("Underflow")
	ErrUpdateCapacityOverflow = errors.New("CapacityOverflow")
	ErrUpdateValidationFailed = errors.New("ValidationFailed")
)
