package offchainsig

import (
	"github.com/LTPPPP/did-trust-registry/action"
	"github.com/LTPPPP/did-trust-registry/did"
	"github.com/LTPPPP/did-trust-registry/regerr"
	"github.com/LTPPPP/did-trust-registry/runtime"
	"github.com/LTPPPP/did-trust-registry/types"
)

// Store holds the parameter and public-key maps of spec.md §3.5, plus a
// reference to the did.Registry it shares a nonce/key-id space with.
type Store struct {
	dids *did.Registry

	paramsCounter *runtime.StorageMap[types.SignatureParamsOwner, types.IncId]
	params        *runtime.StorageMap[paramsKey, SchemeParams]
	pubKeys       *runtime.StorageMap[pubKeyKey, SchemePublicKey]

	events *runtime.EventBus
}

// NewStore constructs an empty store bound to dids.
func NewStore(dids *did.Registry, events *runtime.EventBus) *Store {
	return &Store{
		dids:          dids,
		paramsCounter: runtime.NewStorageMap[types.SignatureParamsOwner, types.IncId](),
		params:        runtime.NewStorageMap[paramsKey, SchemeParams](),
		pubKeys:       runtime.NewStorageMap[pubKeyKey, SchemePublicKey](),
		events:        events,
	}
}

func (s *Store) emit(topic string, payload any) {
	if s.events == nil {
		return
	}
	s.events.Emit([]byte(topic), payload)
}

// AddParams implements add_params(AddOffchainSignatureParams{params,
// nonce}, sig): assigns the next IncId under the signer's owner key.
func (s *Store) AddParams(sa action.SignedAction[AddOffchainSignatureParams, types.SignatureParamsOwner]) (types.IncId, error) {
	params := sa.Payload.Params
	if len(params.Label) > MaxLabelLen {
		return 0, regerr.ErrLabelTooBig
	}
	if len(params.Bytes) > MaxParamsLen {
		return 0, regerr.ErrParamsTooBig
	}

	if _, err := action.Verify(s.dids, sa, action.CapControl, s.dids.Verifiers()); err != nil {
		return 0, err
	}

	owner := action.AsDid(sa.Signature.Did)
	ownerRole := types.SignatureParamsOwner(owner)
	next, _ := s.paramsCounter.Get(ownerRole)
	next.Inc()
	s.paramsCounter.Insert(ownerRole, next)
	s.params.Insert(paramsKey{Owner: ownerRole, ID: next}, params)

	if err := action.Commit(s.dids, sa); err != nil {
		return 0, err
	}
	s.emit("ParamsAdded", ParamsRef{Owner: ownerRole, ID: next})
	return next, nil
}

// RemoveParams implements remove_params(RemoveOffchainSignatureParams{ref,
// nonce}, sig). The params counter never decreases.
func (s *Store) RemoveParams(sa action.SignedAction[RemoveOffchainSignatureParams, types.SignatureParamsOwner]) error {
	ref := sa.Payload.Ref
	if _, ok := s.params.Get(paramsKey{Owner: ref.Owner, ID: ref.ID}); !ok {
		return regerr.ErrParamsDontExist
	}

	if _, err := action.Verify(s.dids, sa, action.CapControl, s.dids.Verifiers()); err != nil {
		return err
	}
	signer := action.AsDid(sa.Signature.Did)
	if types.Did(ref.Owner) != signer {
		return regerr.ErrNotOwner
	}

	s.params.Remove(paramsKey{Owner: ref.Owner, ID: ref.ID})

	if err := action.Commit(s.dids, sa); err != nil {
		return err
	}
	s.emit("ParamsRemoved", ref)
	return nil
}

// AddPublicKey implements add_public_key(AddOffchainSignaturePublicKey{key,
// did, nonce}, sig). The key id is minted from did's shared last_key_id
// counter.
func (s *Store) AddPublicKey(sa action.SignedAction[AddOffchainSignaturePublicKey, types.Controller]) (types.IncId, error) {
	key := sa.Payload.Key
	if len(key.Bytes) > MaxPubKeyLen {
		return 0, regerr.ErrPublicKeyTooBig
	}
	if key.ParamsRef != nil {
		if _, ok := s.params.Get(paramsKey{Owner: key.ParamsRef.Owner, ID: key.ParamsRef.ID}); !ok {
			return 0, regerr.ErrParamsDontExist
		}
	}

	if _, err := action.Verify(s.dids, sa, action.CapControl, s.dids.Verifiers()); err != nil {
		return 0, err
	}
	signer := action.AsDid(sa.Signature.Did)
	target := sa.Payload.Did
	if err := action.CheckController(s.dids.Controllers(target), signer); err != nil {
		return 0, err
	}

	id, err := s.dids.NextKeyID(target)
	if err != nil {
		return 0, err
	}
	s.pubKeys.Insert(pubKeyKey{Did: target, ID: id}, key)

	if err := action.Commit(s.dids, sa); err != nil {
		return 0, err
	}
	s.emit("PublicKeyAdded", pubKeyKey{Did: target, ID: id})
	return id, nil
}

// RemovePublicKey implements remove_public_key(...).
func (s *Store) RemovePublicKey(sa action.SignedAction[RemoveOffchainSignaturePublicKey, types.SignatureParamsOwner]) error {
	ref := sa.Payload.Ref
	if _, ok := s.pubKeys.Get(pubKeyKey{Did: ref.Did, ID: ref.ID}); !ok {
		return regerr.ErrPublicKeyDoesntExist
	}

	if _, err := action.Verify(s.dids, sa, action.CapControl, s.dids.Verifiers()); err != nil {
		return err
	}
	signer := action.AsDid(sa.Signature.Did)
	if ref.Did != signer {
		return regerr.ErrNotOwner
	}

	s.pubKeys.Remove(pubKeyKey{Did: ref.Did, ID: ref.ID})

	if err := action.Commit(s.dids, sa); err != nil {
		return err
	}
	s.emit("PublicKeyRemoved", ref)
	return nil
}
