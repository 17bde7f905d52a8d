package trustregistry

import (
	"github.com/LTPPPP/did-trust-registry/regerr"
	"github.com/LTPPPP/did-trust-registry/types"
	"github.com/LTPPPP/did-trust-registry/update"
)

// actorRole is the resolved authority of a set_schemas_metadata signer,
// per spec.md §4.5.2 step 1: a DID may hold more than one role, authority
// is the union, so all three fields can be populated at once.
type actorRole struct {
	signer     types.Did
	isConvener bool
	issuer     types.Issuer
	isIssuer   bool
	verifier   types.Verifier
	isVerifier bool
}

type schemaOpTag uint8

const (
	schemaOpAdd schemaOpTag = iota
	schemaOpRemove
	schemaOpSet
	schemaOpModify
)

// IssuersEdit describes a Modify of a schema's issuers map, per spec.md
// §4.5.3's capability table.
type IssuersEdit struct {
	// Add/Remove whole issuer rows: Convener only.
	Add    map[types.Issuer]Prices
	Remove map[types.Issuer]struct{}
	// SetPrices replaces one issuer's price row wholesale: Convener (any
	// row) or the issuer itself (its own row only).
	SetPrices map[types.Issuer]Prices
}

// VerifiersEdit describes a Modify of a schema's verifiers set.
type VerifiersEdit struct {
	// Add/wholesale Set: Convener only.
	Add map[types.Verifier]struct{}
	Set map[types.Verifier]struct{}
	// Remove: Convener (any verifier) or a verifier removing itself.
	Remove map[types.Verifier]struct{}
}

// SchemaUpdate implements update.Update[SchemaMetadata], dispatching
// spec.md §4.5.3's capability predicate against the actor baked into it
// by the handler before ensure_valid/apply run.
type SchemaUpdate struct {
	tag     schemaOpTag
	whole   SchemaMetadata
	issuers IssuersEdit
	verifs  VerifiersEdit
	actor   actorRole
}

func NewAddSchema(actor actorRole, whole SchemaMetadata) SchemaUpdate {
	return SchemaUpdate{tag: schemaOpAdd, whole: whole, actor: actor}
}

func NewRemoveSchema(actor actorRole) SchemaUpdate {
	return SchemaUpdate{tag: schemaOpRemove, actor: actor}
}

func NewSetSchema(actor actorRole, whole SchemaMetadata) SchemaUpdate {
	return SchemaUpdate{tag: schemaOpSet, whole: whole, actor: actor}
}

func NewModifySchema(actor actorRole, issuers IssuersEdit, verifs VerifiersEdit) SchemaUpdate {
	return SchemaUpdate{tag: schemaOpModify, issuers: issuers, verifs: verifs, actor: actor}
}

func validateCapacity(m SchemaMetadata) error {
	if len(m.Issuers) > MaxIssuersPerSchema {
		return regerr.ErrIssuersSizeExceeded
	}
	if len(m.Verifiers) > MaxVerifiersPerSchema {
		return regerr.ErrVerifiersSizeExceeded
	}
	for _, prices := range m.Issuers {
		if len(prices) > MaxPricesPerIssuer {
			return regerr.ErrVerificationPricesSizeExceeded
		}
		for symbol := range prices {
			if len(symbol) > MaxSymbolLen {
				return regerr.ErrPriceCurrencySymbolSizeExceeded
			}
		}
	}
	return nil
}

func (s SchemaUpdate) EnsureValid(cur SchemaMetadata, exists bool) error {
	switch s.tag {
	case schemaOpAdd:
		if exists {
			return regerr.ErrEntityAlreadyExists
		}
		if !s.actor.isConvener {
			return regerr.ErrSenderCantApplyThisUpdate
		}
		return validateCapacity(s.whole)
	case schemaOpRemove:
		if !exists {
			return regerr.ErrEntityDoesntExist
		}
		if !s.actor.isConvener {
			return regerr.ErrSenderCantApplyThisUpdate
		}
		return nil
	case schemaOpSet:
		if !s.actor.isConvener {
			return regerr.ErrSenderCantApplyThisUpdate
		}
		return validateCapacity(s.whole)
	case schemaOpModify:
		if !exists {
			return regerr.ErrEntityDoesntExist
		}
		if err := s.ensureIssuersEditValid(cur); err != nil {
			return err
		}
		if err := s.ensureVerifiersEditValid(); err != nil {
			return err
		}
		return validateCapacity(s.apply(cur))
	default:
		return nil
	}
}

func (s SchemaUpdate) ensureIssuersEditValid(cur SchemaMetadata) error {
	if len(s.issuers.Add) > 0 || len(s.issuers.Remove) > 0 {
		if !s.actor.isConvener {
			return regerr.ErrSenderCantApplyThisUpdate
		}
	}
	for issuer := range s.issuers.Remove {
		if _, ok := cur.Issuers[issuer]; !ok {
			return regerr.ErrNoSuchIssuer
		}
	}
	for issuer := range s.issuers.SetPrices {
		if s.actor.isConvener {
			continue
		}
		if s.actor.isIssuer && issuer == s.actor.issuer {
			continue
		}
		return regerr.ErrSenderCantApplyThisUpdate
	}
	return nil
}

func (s SchemaUpdate) ensureVerifiersEditValid() error {
	if len(s.verifs.Add) > 0 || s.verifs.Set != nil {
		if !s.actor.isConvener {
			return regerr.ErrSenderCantApplyThisUpdate
		}
	}
	for verifier := range s.verifs.Remove {
		if s.actor.isConvener {
			continue
		}
		if s.actor.isVerifier && verifier == s.actor.verifier {
			continue
		}
		return regerr.ErrSenderCantApplyThisUpdate
	}
	return nil
}

func (s SchemaUpdate) apply(cur SchemaMetadata) SchemaMetadata {
	next := cur.clone()
	if next.Issuers == nil {
		next.Issuers = map[types.Issuer]Prices{}
	}
	if next.Verifiers == nil {
		next.Verifiers = map[types.Verifier]struct{}{}
	}
	for issuer := range s.issuers.Remove {
		delete(next.Issuers, issuer)
	}
	for issuer, prices := range s.issuers.Add {
		next.Issuers[issuer] = prices.clone()
	}
	for issuer, prices := range s.issuers.SetPrices {
		next.Issuers[issuer] = prices.clone()
	}
	if s.verifs.Set != nil {
		next.Verifiers = make(map[types.Verifier]struct{}, len(s.verifs.Set))
		for v := range s.verifs.Set {
			next.Verifiers[v] = struct{}{}
		}
	}
	for v := range s.verifs.Remove {
		delete(next.Verifiers, v)
	}
	for v := range s.verifs.Add {
		next.Verifiers[v] = struct{}{}
	}
	return next
}

func (s SchemaUpdate) Apply(cur SchemaMetadata, exists bool) (SchemaMetadata, bool) {
	switch s.tag {
	case schemaOpAdd, schemaOpSet:
		return s.whole.clone(), true
	case schemaOpRemove:
		return SchemaMetadata{}, false
	case schemaOpModify:
		return s.apply(cur), true
	default:
		return cur, exists
	}
}

func (s SchemaUpdate) Kind(exists bool) update.UpdateKind {
	switch s.tag {
	case schemaOpAdd:
		return update.KindAdd
	case schemaOpRemove:
		return update.KindRemove
	case schemaOpSet:
		if exists {
			return update.KindReplace
		}
		return update.KindAdd
	case schemaOpModify:
		return update.KindReplace
	default:
		return update.KindNone
	}
}
