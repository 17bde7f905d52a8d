package trustregistry

import (
	"github.com/LTPPPP/did-trust-registry/action"
	"github.com/LTPPPP/did-trust-registry/types"
)

func encodePrices(e *action.Encoder, p Prices) {
	e.CompactLen(len(p))
	for symbol, price := range p {
		e.String(symbol).U64(uint64(price))
	}
}

func encodeSchemaMetadata(e *action.Encoder, m SchemaMetadata) {
	e.CompactLen(len(m.Issuers))
	for issuer, prices := range m.Issuers {
		e.Raw(issuer[:])
		encodePrices(e, prices)
	}
	e.CompactLen(len(m.Verifiers))
	for v := range m.Verifiers {
		e.Raw(v[:])
	}
}

// InitOrUpdateTrustRegistry is init_or_update_trust_registry's payload.
type InitOrUpdateTrustRegistry struct {
	RegId        RegId
	Name         string
	GovFramework []byte
	Nonce        uint64
}

func (p InitOrUpdateTrustRegistry) ActionNonce() uint64 { return p.Nonce }
func (p InitOrUpdateTrustRegistry) Encode() []byte {
	return action.NewEncoder().
		Raw(p.RegId[:]).
		String(p.Name).
		ByteSeq(p.GovFramework).
		U64(p.Nonce).
		Bytes()
}

// SetSchemasMetadata is set_schemas_metadata's payload. Exactly one of
// SetWhole / ModifyTargets is populated, mirroring the SetOrModify sum
// type spec.md names at the top of the operation's signature.
type SetSchemasMetadata struct {
	RegId         RegId
	IsSet         bool
	SetWhole      map[SchemaId]SchemaMetadata
	ModifyTargets map[SchemaId]SchemaUpdate
	Nonce         uint64
}

func (p SetSchemasMetadata) ActionNonce() uint64 { return p.Nonce }
func (p SetSchemasMetadata) Encode() []byte {
	e := action.NewEncoder().Raw(p.RegId[:]).Bool(p.IsSet)
	if p.IsSet {
		e.CompactLen(len(p.SetWhole))
		for id, meta := range p.SetWhole {
			e.Raw(id[:])
			encodeSchemaMetadata(e, meta)
		}
	} else {
		e.CompactLen(len(p.ModifyTargets))
		for id := range p.ModifyTargets {
			e.Raw(id[:])
		}
	}
	return e.U64(p.Nonce).Bytes()
}

// SuspendIssuers is suspend_issuers's payload.
type SuspendIssuers struct {
	RegId   RegId
	Issuers []types.Issuer
	Nonce   uint64
}

func (p SuspendIssuers) ActionNonce() uint64 { return p.Nonce }
func (p SuspendIssuers) Encode() []byte {
	e := action.NewEncoder().Raw(p.RegId[:])
	action.Seq(e, p.Issuers, func(e *action.Encoder, i types.Issuer) { e.Raw(i[:]) })
	return e.U64(p.Nonce).Bytes()
}

// UnsuspendIssuers is unsuspend_issuers's payload.
type UnsuspendIssuers struct {
	RegId   RegId
	Issuers []types.Issuer
	Nonce   uint64
}

func (p UnsuspendIssuers) ActionNonce() uint64 { return p.Nonce }
func (p UnsuspendIssuers) Encode() []byte {
	e := action.NewEncoder().Raw(p.RegId[:])
	action.Seq(e, p.Issuers, func(e *action.Encoder, i types.Issuer) { e.Raw(i[:]) })
	return e.U64(p.Nonce).Bytes()
}

// UpdateDelegatedIssuers is update_delegated_issuers's payload. It carries
// only the wholesale Set form of SetOrModify<DelegatedIssuers>: Delegate
// replaces the issuer's whole delegated set; there is no Modify variant.
type UpdateDelegatedIssuers struct {
	RegId    RegId
	Delegate map[types.Issuer]struct{}
	Nonce    uint64
}

func (p UpdateDelegatedIssuers) ActionNonce() uint64 { return p.Nonce }
func (p UpdateDelegatedIssuers) Encode() []byte {
	e := action.NewEncoder().Raw(p.RegId[:])
	e.CompactLen(len(p.Delegate))
	for d := range p.Delegate {
		e.Raw(d[:])
	}
	return e.U64(p.Nonce).Bytes()
}
