package did

import (
	"github.com/LTPPPP/did-trust-registry/regerr"
	"github.com/LTPPPP/did-trust-registry/runtime"
	"github.com/LTPPPP/did-trust-registry/types"
)

// Registry holds every storage map spec.md §3.3 names for the DID module
// and implements action.SignerResolver against it. One Registry is
// process-wide for a running node (spec.md §9's "global state" note);
// tests construct a fresh one per test.
type Registry struct {
	offchain    *runtime.StorageMap[types.Did, OffChainDidDetails]
	onchain     *runtime.StorageMap[types.Did, onchainEntry]
	keys        *runtime.StorageMap[didKeyKey, types.DidKey]
	controllers *runtime.StorageMap[didControllerKey, struct{}]
	endpoints   *runtime.StorageMap[didEndpointKey, ServiceEndpoint]

	events    *runtime.EventBus
	verifiers types.Verifiers

	clock func() uint64
}

// NewRegistry constructs an empty registry. clock supplies the "current
// block number" spec.md §6.1 names as the envelope contract's
// current_block_number(); it seeds a newly created on-chain DID's initial
// nonce (spec.md §4.3).
func NewRegistry(verifiers types.Verifiers, events *runtime.EventBus, clock func() uint64) *Registry {
	return &Registry{
		offchain:    runtime.NewStorageMap[types.Did, OffChainDidDetails](),
		onchain:     runtime.NewStorageMap[types.Did, onchainEntry](),
		keys:        runtime.NewStorageMap[didKeyKey, types.DidKey](),
		controllers: runtime.NewStorageMap[didControllerKey, struct{}](),
		endpoints:   runtime.NewStorageMap[didEndpointKey, ServiceEndpoint](),
		events:      events,
		verifiers:   verifiers,
		clock:       clock,
	}
}

// Verifiers exposes the injected signature verifiers for use by handlers
// that call action.Verify directly.
func (r *Registry) Verifiers() types.Verifiers { return r.verifiers }

// exists reports whether did is present, on-chain or off-chain.
func (r *Registry) exists(did types.Did) bool {
	if r.onchain.Contains(did) {
		return true
	}
	return r.offchain.Contains(did)
}

// OnChainNonce implements action.SignerResolver.
func (r *Registry) OnChainNonce(did types.Did) (uint64, error) {
	e, ok := r.onchain.Get(did)
	if !ok {
		if r.offchain.Contains(did) {
			return 0, regerr.ErrCannotGetDetailForOnChainDid
		}
		return 0, regerr.ErrNoKeyForDid
	}
	return e.Nonce, nil
}

// Key implements action.SignerResolver.
func (r *Registry) Key(did types.Did, id types.IncId) (types.DidKey, error) {
	k, ok := r.keys.Get(didKeyKey{Did: did, ID: id})
	if !ok {
		return types.DidKey{}, regerr.ErrNoKeyForDid
	}
	return k, nil
}

// AdvanceNonce implements action.SignerResolver.
func (r *Registry) AdvanceNonce(did types.Did, newNonce uint64) error {
	return r.onchain.TryMutateExists(did, func(cur onchainEntry, ok bool) (onchainEntry, bool, error) {
		if !ok {
			return onchainEntry{}, false, regerr.ErrDidDoesNotExist
		}
		cur.Nonce = newNonce
		return cur, true, nil
	})
}

// isController reports whether c controls did.
func (r *Registry) isController(did types.Did, c types.Controller) bool {
	return r.controllers.Contains(didControllerKey{Did: did, Controller: c})
}

// controllerCount counts did's registered controllers by scanning the
// controller map; the in-memory store keeps this O(n) in total
// controllers rather than maintaining a per-DID count separately from
// OnChainCore.ActiveControllers, which remains the authoritative counter
// persisted alongside the DID.
func (r *Registry) controllerCount(did types.Did) int {
	n := 0
	r.controllers.IterPrefix(func(k didControllerKey) bool { return k.Did == did }, func(k didControllerKey, _ struct{}) {
		n++
	})
	return n
}

// keysOf returns every (id, key) pair stored for did.
func (r *Registry) keysOf(did types.Did) map[types.IncId]types.DidKey {
	out := map[types.IncId]types.DidKey{}
	r.keys.IterPrefix(func(k didKeyKey) bool { return k.Did == did }, func(k didKeyKey, v types.DidKey) {
		out[k.ID] = v
	})
	return out
}

// NextKeyID allocates the next IncId from did's shared last_key_id
// counter (spec.md §3.5/§9: the id space is shared between DidKeys and
// offchainsig's PublicKeys) and persists the advance, without inserting
// any key itself. offchainsig.AddPublicKey calls this to obtain the id it
// stores its new key under.
func (r *Registry) NextKeyID(did types.Did) (types.IncId, error) {
	var next types.IncId
	err := r.onchain.TryMutateExists(did, func(cur onchainEntry, ok bool) (onchainEntry, bool, error) {
		if !ok {
			return onchainEntry{}, false, regerr.ErrDidDoesNotExist
		}
		cur.Core.LastKeyID++
		next = cur.Core.LastKeyID
		return cur, true, nil
	})
	return next, err
}

// OnChainDetails returns a copy of did's core record and nonce, used by
// read-only queries and tests asserting the invariants of spec.md §8.
func (r *Registry) OnChainDetails(did types.Did) (OnChainCore, uint64, error) {
	e, ok := r.onchain.Get(did)
	if !ok {
		return OnChainCore{}, 0, regerr.ErrDidDoesNotExist
	}
	return e.Core, e.Nonce, nil
}

// OffChainDetails returns a copy of did's off-chain record.
func (r *Registry) OffChainDetails(did types.Did) (OffChainDidDetails, error) {
	d, ok := r.offchain.Get(did)
	if !ok {
		return OffChainDidDetails{}, regerr.ErrDidDoesNotExist
	}
	return d, nil
}

// Controllers returns did's current controller set.
func (r *Registry) Controllers(did types.Did) map[types.Controller]struct{} {
	out := map[types.Controller]struct{}{}
	r.controllers.IterPrefix(func(k didControllerKey) bool { return k.Did == did }, func(k didControllerKey, _ struct{}) {
		out[k.Controller] = struct{}{}
	})
	return out
}

// ServiceEndpoints returns did's current service endpoints by id.
func (r *Registry) ServiceEndpoints(did types.Did) map[string]ServiceEndpoint {
	out := map[string]ServiceEndpoint{}
	r.endpoints.IterPrefix(func(k didEndpointKey) bool { return k.Did == did }, func(k didEndpointKey, v ServiceEndpoint) {
		out[k.ID] = v
	})
	return out
}

func (r *Registry) emit(topic string, payload any) {
	if r.events == nil {
		return
	}
	r.events.Emit([]byte(topic), payload)
}
