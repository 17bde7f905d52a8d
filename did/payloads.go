package did

import (
	"github.com/LTPPPP/did-trust-registry/action"
	"github.com/LTPPPP/did-trust-registry/types"
)

func encodeKey(e *action.Encoder, k types.UncheckedDidKey) {
	e.Byte(byte(k.PublicKey.Scheme)).ByteSeq(k.PublicKey.Bytes).Byte(byte(k.VerRels))
}

// AddKeys is the add_keys(AddKeys{did, keys, nonce}, sig) payload of
// spec.md §4.3.
type AddKeys struct {
	Did   types.Did
	Keys  []types.UncheckedDidKey
	Nonce uint64
}

func (p AddKeys) ActionNonce() uint64 { return p.Nonce }
func (p AddKeys) Encode() []byte {
	e := action.NewEncoder().Raw(p.Did[:])
	action.Seq(e, p.Keys, encodeKey)
	return e.U64(p.Nonce).Bytes()
}

// RemoveKeys is the remove_keys(RemoveKeys{did, keys, nonce}, sig) payload.
type RemoveKeys struct {
	Did   types.Did
	Keys  []types.IncId
	Nonce uint64
}

func (p RemoveKeys) ActionNonce() uint64 { return p.Nonce }
func (p RemoveKeys) Encode() []byte {
	e := action.NewEncoder().Raw(p.Did[:])
	action.Seq(e, p.Keys, func(e *action.Encoder, id types.IncId) { e.U32(uint32(id)) })
	return e.U64(p.Nonce).Bytes()
}

// AddControllers is the add_controllers payload.
type AddControllers struct {
	Did         types.Did
	Controllers []types.Controller
	Nonce       uint64
}

func (p AddControllers) ActionNonce() uint64 { return p.Nonce }
func (p AddControllers) Encode() []byte {
	e := action.NewEncoder().Raw(p.Did[:])
	action.Seq(e, p.Controllers, func(e *action.Encoder, c types.Controller) { e.Raw(c[:]) })
	return e.U64(p.Nonce).Bytes()
}

// RemoveControllers is the remove_controllers payload.
type RemoveControllers struct {
	Did         types.Did
	Controllers []types.Controller
	Nonce       uint64
}

func (p RemoveControllers) ActionNonce() uint64 { return p.Nonce }
func (p RemoveControllers) Encode() []byte {
	e := action.NewEncoder().Raw(p.Did[:])
	action.Seq(e, p.Controllers, func(e *action.Encoder, c types.Controller) { e.Raw(c[:]) })
	return e.U64(p.Nonce).Bytes()
}

// AddServiceEndpoint is the add_service_endpoint payload.
type AddServiceEndpoint struct {
	Did      types.Did
	ID       string
	Endpoint ServiceEndpoint
	Nonce    uint64
}

func (p AddServiceEndpoint) ActionNonce() uint64 { return p.Nonce }
func (p AddServiceEndpoint) Encode() []byte {
	e := action.NewEncoder().Raw(p.Did[:]).String(p.ID).U32(uint32(p.Endpoint.Types))
	action.Seq(e, p.Endpoint.Origins, func(e *action.Encoder, o string) { e.String(o) })
	return e.U64(p.Nonce).Bytes()
}

// RemoveServiceEndpoint is the remove_service_endpoint payload.
type RemoveServiceEndpoint struct {
	Did   types.Did
	ID    string
	Nonce uint64
}

func (p RemoveServiceEndpoint) ActionNonce() uint64 { return p.Nonce }
func (p RemoveServiceEndpoint) Encode() []byte {
	return action.NewEncoder().Raw(p.Did[:]).String(p.ID).U64(p.Nonce).Bytes()
}

// DidRemoval is the remove_onchain_did payload.
type DidRemoval struct {
	Did   types.Did
	Nonce uint64
}

func (p DidRemoval) ActionNonce() uint64 { return p.Nonce }
func (p DidRemoval) Encode() []byte {
	return action.NewEncoder().Raw(p.Did[:]).U64(p.Nonce).Bytes()
}
