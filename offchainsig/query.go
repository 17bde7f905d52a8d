package offchainsig

import "github.com/LTPPPP/did-trust-registry/types"

// ResolvedPublicKey pairs a stored SchemePublicKey with its referenced
// SchemeParams, when present.
type ResolvedPublicKey struct {
	Key    SchemePublicKey
	Params *SchemeParams
}

// GetPublicKeyWithParams implements the get_public_key_with_params read
// named in spec.md §4.4: joining a public key to its params_ref must
// tolerate a dangling reference (params removed after the key was
// inserted), returning Params == nil rather than failing the whole read.
func (s *Store) GetPublicKeyWithParams(did types.Did, id types.IncId) (ResolvedPublicKey, bool) {
	key, ok := s.pubKeys.Get(pubKeyKey{Did: did, ID: id})
	if !ok {
		return ResolvedPublicKey{}, false
	}
	resolved := ResolvedPublicKey{Key: key}
	if key.ParamsRef != nil {
		if p, ok := s.params.Get(paramsKey{Owner: key.ParamsRef.Owner, ID: key.ParamsRef.ID}); ok {
			resolved.Params = &p
		}
	}
	return resolved, true
}

// GetParams is a plain params lookup, used by the HTTP read endpoints.
func (s *Store) GetParams(owner types.SignatureParamsOwner, id types.IncId) (SchemeParams, bool) {
	return s.params.Get(paramsKey{Owner: owner, ID: id})
}

// ParamsCounter returns owner's current (monotone) params counter value.
func (s *Store) ParamsCounter(owner types.SignatureParamsOwner) types.IncId {
	v, _ := s.paramsCounter.Get(owner)
	return v
}
