package did

import (
	"github.com/LTPPPP/did-trust-registry/regerr"
	"github.com/LTPPPP/did-trust-registry/types"
)

// NewOffchain implements spec.md §4.3's new_offchain(account, did, doc_ref).
// No nonce is involved: authority for an off-chain DID is plain account
// ownership, not a DID signature.
func (r *Registry) NewOffchain(account string, did types.Did, docRef DocRef) error {
	if r.exists(did) {
		return regerr.ErrDidAlreadyExists
	}
	if len(docRef.Value) > MaxDocRefLen {
		return regerr.ErrInvalidServiceEndpoint
	}
	r.offchain.Insert(did, OffChainDidDetails{Account: account, DocRef: docRef})
	r.emit("OffChainDidAdded", did)
	return nil
}

// SetOffchainDidDocRef implements set_offchain_did_doc_ref(account, did,
// new_ref).
func (r *Registry) SetOffchainDidDocRef(account string, did types.Did, newRef DocRef) error {
	if r.onchain.Contains(did) {
		return regerr.ErrCannotGetDetailForOnChainDid
	}
	details, ok := r.offchain.Get(did)
	if !ok {
		return regerr.ErrDidDoesNotExist
	}
	if details.Account != account {
		return regerr.ErrDidNotOwnedByAccount
	}
	details.DocRef = newRef
	r.offchain.Insert(did, details)
	r.emit("OffChainDidUpdated", did)
	return nil
}

// RemoveOffchainDid implements remove_offchain_did(account, did).
func (r *Registry) RemoveOffchainDid(account string, did types.Did) error {
	if r.onchain.Contains(did) {
		return regerr.ErrCannotGetDetailForOnChainDid
	}
	details, ok := r.offchain.Get(did)
	if !ok {
		return regerr.ErrDidDoesNotExist
	}
	if details.Account != account {
		return regerr.ErrDidNotOwnedByAccount
	}
	r.offchain.Remove(did)
	r.emit("OffChainDidRemoved", did)
	return nil
}
