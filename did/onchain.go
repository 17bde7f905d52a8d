package did

import (
	"errors"

	"github.com/LTPPPP/did-trust-registry/action"
	"github.com/LTPPPP/did-trust-registry/regerr"
	"github.com/LTPPPP/did-trust-registry/types"
)

// NewOnchain implements spec.md §4.3's new_onchain(did, keys, controllers).
// It takes no account and makes no check of who the caller is; it is not
// DID-signed either: an on-chain DID has no nonce to check until after it
// exists.
func (r *Registry) NewOnchain(did types.Did, keys []types.UncheckedDidKey, controllers map[types.Controller]struct{}) error {
	if r.exists(did) {
		return regerr.ErrDidAlreadyExists
	}
	if len(keys) == 0 && len(controllers) == 0 {
		return regerr.ErrNoControllerProvided
	}

	validated := make([]types.DidKey, len(keys))
	selfControlled := false
	for i, uk := range keys {
		dk, err := uk.Validate()
		if err != nil {
			return err
		}
		validated[i] = dk
		if dk.CanControl() {
			selfControlled = true
		}
	}

	finalControllers := map[types.Controller]struct{}{}
	for c := range controllers {
		finalControllers[c] = struct{}{}
	}
	if selfControlled {
		finalControllers[types.Controller(did)] = struct{}{}
	}

	activeControllerKeys := uint32(0)
	for i, dk := range validated {
		id := types.IncId(i + 1)
		r.keys.Insert(didKeyKey{Did: did, ID: id}, dk)
		if dk.CanControl() {
			activeControllerKeys++
		}
	}
	for c := range finalControllers {
		r.controllers.Insert(didControllerKey{Did: did, Controller: c}, struct{}{})
	}

	r.onchain.Insert(did, onchainEntry{
		Nonce: r.clock(),
		Core: OnChainCore{
			LastKeyID:            types.IncId(len(validated)),
			ActiveControllerKeys: activeControllerKeys,
			ActiveControllers:    uint32(len(finalControllers)),
		},
	})
	r.emit("OnChainDidAdded", did)
	return nil
}

// AddKeys implements add_keys(AddKeys{did, keys, nonce}, sig).
func (r *Registry) AddKeys(sa action.SignedAction[AddKeys, types.Controller]) error {
	if _, err := action.Verify(r, sa, action.CapControl, r.verifiers); err != nil {
		return err
	}
	signer := action.AsDid(sa.Signature.Did)
	target := sa.Payload.Did

	core, _, err := r.OnChainDetails(target)
	if err != nil {
		return err
	}
	if err := action.CheckController(r.Controllers(target), signer); err != nil {
		return err
	}

	validated := make([]types.DidKey, len(sa.Payload.Keys))
	for i, uk := range sa.Payload.Keys {
		dk, verr := uk.Validate()
		if verr != nil {
			return verr
		}
		validated[i] = dk
	}

	startID := core.LastKeyID
	newlySelfControlled := false
	if !r.isController(target, types.Controller(target)) {
		for _, dk := range validated {
			if dk.CanControl() {
				newlySelfControlled = true
				break
			}
		}
	}

	for i, dk := range validated {
		id := startID + types.IncId(i+1)
		r.keys.Insert(didKeyKey{Did: target, ID: id}, dk)
		if dk.CanControl() {
			core.ActiveControllerKeys++
		}
	}
	core.LastKeyID = startID + types.IncId(len(validated))
	if newlySelfControlled {
		r.controllers.Insert(didControllerKey{Did: target, Controller: types.Controller(target)}, struct{}{})
		core.ActiveControllers++
	}
	r.putCore(target, core)

	if err := action.Commit(r, sa); err != nil {
		return err
	}
	r.emit("KeysAdded", target)
	return nil
}

// RemoveKeys implements remove_keys(RemoveKeys{did, keys, nonce}, sig).
func (r *Registry) RemoveKeys(sa action.SignedAction[RemoveKeys, types.Controller]) error {
	if _, err := action.Verify(r, sa, action.CapControl, r.verifiers); err != nil {
		return err
	}
	signer := action.AsDid(sa.Signature.Did)
	target := sa.Payload.Did

	core, _, err := r.OnChainDetails(target)
	if err != nil {
		return err
	}
	if err := action.CheckController(r.Controllers(target), signer); err != nil {
		return err
	}

	removed := make([]types.DidKey, 0, len(sa.Payload.Keys))
	for _, id := range sa.Payload.Keys {
		dk, ok := r.keys.Get(didKeyKey{Did: target, ID: id})
		if !ok {
			return regerr.ErrNoKeyForDid
		}
		removed = append(removed, dk)
	}

	// Self-controlled DIDs with zero remaining control keys keep their
	// self-controller slot; see spec.md §9's open-question note. No
	// cleanup of DidControllers happens here, only remove_controllers
	// can drop it.
	for i, id := range sa.Payload.Keys {
		r.keys.Remove(didKeyKey{Did: target, ID: id})
		if removed[i].CanControl() {
			core.ActiveControllerKeys--
		}
	}
	r.putCore(target, core)

	if err := action.Commit(r, sa); err != nil {
		return err
	}
	r.emit("KeysRemoved", target)
	return nil
}

// AddControllers implements add_controllers(AddControllers{did,
// controllers, nonce}, sig).
func (r *Registry) AddControllers(sa action.SignedAction[AddControllers, types.Controller]) error {
	if len(sa.Payload.Controllers) == 0 {
		return regerr.ErrNoControllerProvided
	}
	if _, err := action.Verify(r, sa, action.CapControl, r.verifiers); err != nil {
		return err
	}
	signer := action.AsDid(sa.Signature.Did)
	target := sa.Payload.Did

	core, _, err := r.OnChainDetails(target)
	if err != nil {
		return err
	}
	if err := action.CheckController(r.Controllers(target), signer); err != nil {
		return err
	}

	added := 0
	for _, c := range sa.Payload.Controllers {
		key := didControllerKey{Did: target, Controller: c}
		if r.controllers.Contains(key) {
			continue
		}
		r.controllers.Insert(key, struct{}{})
		added++
	}
	core.ActiveControllers += uint32(added)
	r.putCore(target, core)

	if err := action.Commit(r, sa); err != nil {
		return err
	}
	r.emit("ControllersAdded", target)
	return nil
}

// RemoveControllers implements remove_controllers(RemoveControllers{did,
// controllers, nonce}, sig). A DID may remove its own self-control.
func (r *Registry) RemoveControllers(sa action.SignedAction[RemoveControllers, types.Controller]) error {
	if _, err := action.Verify(r, sa, action.CapControl, r.verifiers); err != nil {
		return err
	}
	signer := action.AsDid(sa.Signature.Did)
	target := sa.Payload.Did

	core, _, err := r.OnChainDetails(target)
	if err != nil {
		return err
	}
	if err := action.CheckController(r.Controllers(target), signer); err != nil {
		return err
	}

	for _, c := range sa.Payload.Controllers {
		if !r.isController(target, c) {
			return regerr.ErrNoControllerForDid
		}
	}
	for _, c := range sa.Payload.Controllers {
		r.controllers.Remove(didControllerKey{Did: target, Controller: c})
	}
	core.ActiveControllers -= uint32(len(sa.Payload.Controllers))
	r.putCore(target, core)

	if err := action.Commit(r, sa); err != nil {
		return err
	}
	r.emit("ControllersRemoved", target)
	return nil
}

// AddServiceEndpoint implements add_service_endpoint(...).
func (r *Registry) AddServiceEndpoint(sa action.SignedAction[AddServiceEndpoint, types.Controller]) error {
	ep := sa.Payload.Endpoint
	if sa.Payload.ID == "" || len(sa.Payload.ID) > MaxServiceEndpointIDLen {
		return regerr.ErrInvalidServiceEndpoint
	}
	if ep.Types == ServiceEndpointNone {
		return regerr.ErrInvalidServiceEndpoint
	}
	if len(ep.Origins) == 0 || len(ep.Origins) > MaxServiceEndpointOrigins {
		return regerr.ErrInvalidServiceEndpoint
	}
	for _, o := range ep.Origins {
		if o == "" || len(o) > MaxOriginLen {
			return regerr.ErrInvalidServiceEndpoint
		}
	}

	if _, err := action.Verify(r, sa, action.CapAuthOrControl, r.verifiers); err != nil {
		return err
	}
	signer := action.AsDid(sa.Signature.Did)
	target := sa.Payload.Did
	if err := action.CheckController(r.Controllers(target), signer); err != nil {
		return err
	}

	key := didEndpointKey{Did: target, ID: sa.Payload.ID}
	if r.endpoints.Contains(key) {
		return regerr.ErrServiceEndpointAlreadyExists
	}
	r.endpoints.Insert(key, ep)

	if err := action.Commit(r, sa); err != nil {
		return err
	}
	r.emit("ServiceEndpointAdded", target)
	return nil
}

// RemoveServiceEndpoint implements remove_service_endpoint(...).
func (r *Registry) RemoveServiceEndpoint(sa action.SignedAction[RemoveServiceEndpoint, types.Controller]) error {
	if _, err := action.Verify(r, sa, action.CapAuthOrControl, r.verifiers); err != nil {
		return err
	}
	signer := action.AsDid(sa.Signature.Did)
	target := sa.Payload.Did
	if err := action.CheckController(r.Controllers(target), signer); err != nil {
		return err
	}

	key := didEndpointKey{Did: target, ID: sa.Payload.ID}
	if !r.endpoints.Contains(key) {
		return regerr.ErrServiceEndpointDoesNotExist
	}
	r.endpoints.Remove(key)

	if err := action.Commit(r, sa); err != nil {
		return err
	}
	r.emit("ServiceEndpointRemoved", target)
	return nil
}

// RemoveOnchainDid implements remove_onchain_did(DidRemoval{did, nonce},
// sig). Authority: any controller with a control key; if the signer is
// the DID itself and holds no control key, the action fails NoKeyForDid:
// either action.Verify finds no such key, or the key lacks the control
// capability while the DID has no active control key at all.
func (r *Registry) RemoveOnchainDid(sa action.SignedAction[DidRemoval, types.Controller]) error {
	if _, err := action.Verify(r, sa, action.CapControl, r.verifiers); err != nil {
		if errors.Is(err, regerr.ErrInsufficientVerificationRelationship) && action.AsDid(sa.Signature.Did) == sa.Payload.Did {
			if core, _, cerr := r.OnChainDetails(sa.Payload.Did); cerr == nil && core.ActiveControllerKeys == 0 {
				return regerr.ErrNoKeyForDid
			}
		}
		return err
	}
	signer := action.AsDid(sa.Signature.Did)
	target := sa.Payload.Did

	if !r.onchain.Contains(target) {
		return regerr.ErrDidDoesNotExist
	}
	if err := action.CheckController(r.Controllers(target), signer); err != nil {
		return err
	}

	if err := action.Commit(r, sa); err != nil {
		return err
	}

	for id := range r.keysOf(target) {
		r.keys.Remove(didKeyKey{Did: target, ID: id})
	}
	for c := range r.Controllers(target) {
		r.controllers.Remove(didControllerKey{Did: target, Controller: c})
	}
	for id := range r.ServiceEndpoints(target) {
		r.endpoints.Remove(didEndpointKey{Did: target, ID: id})
	}
	r.onchain.Remove(target)

	r.emit("OnChainDidRemoved", target)
	return nil
}

func (r *Registry) putCore(did types.Did, core OnChainCore) {
	_ = r.onchain.TryMutateExists(did, func(cur onchainEntry, ok bool) (onchainEntry, bool, error) {
		cur.Core = core
		return cur, true, nil
	})
}
