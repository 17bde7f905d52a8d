package offchainsig

import (
	"github.com/LTPPPP/did-trust-registry/action"
	"github.com/LTPPPP/did-trust-registry/types"
)

func encodeParamsRef(e *action.Encoder, ref *ParamsRef) {
	if ref == nil {
		e.Bool(false)
		return
	}
	e.Bool(true).Raw(ref.Owner[:]).U32(uint32(ref.ID))
}

// AddOffchainSignatureParams is add_params's payload.
type AddOffchainSignatureParams struct {
	Params SchemeParams
	Nonce  uint64
}

func (p AddOffchainSignatureParams) ActionNonce() uint64 { return p.Nonce }
func (p AddOffchainSignatureParams) Encode() []byte {
	return action.NewEncoder().
		Byte(byte(p.Params.Scheme)).
		ByteSeq(p.Params.Label).
		ByteSeq(p.Params.Bytes).
		Byte(byte(p.Params.Curve)).
		U64(p.Nonce).
		Bytes()
}

// RemoveOffchainSignatureParams is remove_params's payload.
type RemoveOffchainSignatureParams struct {
	Ref   ParamsRef
	Nonce uint64
}

func (p RemoveOffchainSignatureParams) ActionNonce() uint64 { return p.Nonce }
func (p RemoveOffchainSignatureParams) Encode() []byte {
	return action.NewEncoder().Raw(p.Ref.Owner[:]).U32(uint32(p.Ref.ID)).U64(p.Nonce).Bytes()
}

// AddOffchainSignaturePublicKey is add_public_key's payload.
type AddOffchainSignaturePublicKey struct {
	Key   SchemePublicKey
	Did   types.Did
	Nonce uint64
}

func (p AddOffchainSignaturePublicKey) ActionNonce() uint64 { return p.Nonce }
func (p AddOffchainSignaturePublicKey) Encode() []byte {
	e := action.NewEncoder().Byte(byte(p.Key.Scheme)).ByteSeq(p.Key.Bytes)
	encodeParamsRef(e, p.Key.ParamsRef)
	return e.Byte(byte(p.Key.Curve)).Raw(p.Did[:]).U64(p.Nonce).Bytes()
}

// RemoveOffchainSignaturePublicKey is remove_public_key's payload.
type RemoveOffchainSignaturePublicKey struct {
	Ref   PubKeyRef
	Did   types.Did
	Nonce uint64
}

// PubKeyRef addresses a stored public key by its owning DID and id. The
// "owner" the spec calls out for remove_public_key's NotOwner check is
// this ref's Did field, distinct from ParamsRef's SignatureParamsOwner.
type PubKeyRef struct {
	Did types.Did
	ID  types.IncId
}

func (p RemoveOffchainSignaturePublicKey) ActionNonce() uint64 { return p.Nonce }
func (p RemoveOffchainSignaturePublicKey) Encode() []byte {
	return action.NewEncoder().Raw(p.Ref.Did[:]).U32(uint32(p.Ref.ID)).Raw(p.Did[:]).U64(p.Nonce).Bytes()
}
