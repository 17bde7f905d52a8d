package did

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LTPPPP/did-trust-registry/action"
	"github.com/LTPPPP/did-trust-registry/regerr"
	"github.com/LTPPPP/did-trust-registry/runtime"
	"github.com/LTPPPP/did-trust-registry/types"
)

func newTestRegistry(block uint64) *Registry {
	return NewRegistry(runtime.DefaultVerifiers(), runtime.NewEventBus(), func() uint64 { return block })
}

func didFromByte(b byte) types.Did {
	var d types.Did
	for i := range d {
		d[i] = b
	}
	return d
}

// TestS1OffchainLifecycle mirrors spec.md §8 scenario S1.
func TestS1OffchainLifecycle(t *testing.T) {
	r := newTestRegistry(1)
	did := didFromByte(5)

	require.NoError(t, r.NewOffchain("account-1", did, NewCustomDocRef([]byte{129, 60})))
	require.ErrorIs(t, r.NewOffchain("account-1", did, NewCustomDocRef(nil)), regerr.ErrDidAlreadyExists)

	err := r.SetOffchainDidDocRef("account-2", did, NewCIDDocRef("cid-235-99"))
	require.ErrorIs(t, err, regerr.ErrDidNotOwnedByAccount)

	require.NoError(t, r.SetOffchainDidDocRef("account-1", did, NewCIDDocRef("cid-235-99")))

	require.NoError(t, r.RemoveOffchainDid("account-1", did))
	_, err = r.OffChainDetails(did)
	require.ErrorIs(t, err, regerr.ErrDidDoesNotExist)
}

// TestS2OnchainKeyless mirrors spec.md §8 scenario S2.
func TestS2OnchainKeyless(t *testing.T) {
	r := newTestRegistry(20)
	did := didFromByte(5)
	controller := types.Controller(didFromByte(7))

	require.NoError(t, r.NewOnchain(did, nil, map[types.Controller]struct{}{controller: {}}))

	core, nonce, err := r.OnChainDetails(did)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), core.ActiveControllers)
	assert.Equal(t, uint32(0), core.ActiveControllerKeys)
	assert.Equal(t, uint64(20), nonce)
	assert.NotContains(t, r.Controllers(did), types.Controller(did))
}

// TestS3OnchainSelfControlled mirrors spec.md §8 scenario S3.
func TestS3OnchainSelfControlled(t *testing.T) {
	r := newTestRegistry(5)
	did := didFromByte(5)
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	pk, err := types.NewPublicKey(types.Ed25519, pub)
	require.NoError(t, err)

	require.NoError(t, r.NewOnchain(did, []types.UncheckedDidKey{
		types.NewUncheckedDidKey(pk, types.None),
	}, nil))

	core, _, err := r.OnChainDetails(did)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), core.ActiveControllerKeys)
	assert.Equal(t, uint32(1), core.ActiveControllers)
	assert.Contains(t, r.Controllers(did), types.Controller(did))

	key, err := r.Key(did, 1)
	require.NoError(t, err)
	assert.Equal(t, types.AllForSigning, key.VerRels)
}

// TestS4KeyAgreementExclusion mirrors spec.md §8 scenario S4.
func TestS4KeyAgreementExclusion(t *testing.T) {
	r := newTestRegistry(1)
	did := didFromByte(5)

	edPub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	x25519Pk, err := types.NewPublicKey(types.X25519, edPub)
	require.NoError(t, err)
	err = r.NewOnchain(did, []types.UncheckedDidKey{
		types.NewUncheckedDidKey(x25519Pk, types.Authentication),
	}, nil)
	require.ErrorIs(t, err, regerr.ErrKeyAgreementCantBeUsedForSigning)

	srPub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	srPk, err := types.NewPublicKey(types.Sr25519, srPub)
	require.NoError(t, err)
	err = r.NewOnchain(did, []types.UncheckedDidKey{
		types.NewUncheckedDidKey(srPk, types.KeyAgreement),
	}, nil)
	require.ErrorIs(t, err, regerr.ErrSigningKeyCantBeUsedForKeyAgreement)
}

// TestS5ControllerAuthority mirrors spec.md §8 scenario S5: did2 is
// controlled only by did1; an action signed by did2's own key is
// rejected, one signed by did1's control key succeeds and only advances
// did1's nonce.
func TestS5ControllerAuthority(t *testing.T) {
	r := newTestRegistry(1)
	did1 := didFromByte(1)
	did2 := didFromByte(2)

	pub1, priv1, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	pk1, err := types.NewPublicKey(types.Ed25519, pub1)
	require.NoError(t, err)
	require.NoError(t, r.NewOnchain(did1, []types.UncheckedDidKey{types.NewUncheckedDidKey(pk1, types.None)}, nil))

	pub2, priv2, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	pk2, err := types.NewPublicKey(types.Ed25519, pub2)
	require.NoError(t, err)
	require.NoError(t, r.NewOnchain(did2, []types.UncheckedDidKey{types.NewUncheckedDidKey(pk2, types.None)},
		map[types.Controller]struct{}{types.Controller(did1): {}}))

	// did2's own key is a control key, so NewOnchain also made did2 its own
	// controller; did1 removes that so did2 is controlled only by did1.
	_, n1Setup, err := r.OnChainDetails(did1)
	require.NoError(t, err)
	dropSelf := RemoveControllers{Did: did2, Controllers: []types.Controller{types.Controller(did2)}, Nonce: n1Setup + 1}
	dropSig, err := types.NewSigValue(types.Ed25519, ed25519.Sign(priv1, dropSelf.Encode()))
	require.NoError(t, err)
	require.NoError(t, r.RemoveControllers(action.SignedAction[RemoveControllers, types.Controller]{
		Payload:   dropSelf,
		Signature: action.DidSignature[types.Controller]{Did: types.Controller(did1), KeyID: 1, Sig: dropSig},
	}))

	_, n1, err := r.OnChainDetails(did1)
	require.NoError(t, err)
	_, n2, err := r.OnChainDetails(did2)
	require.NoError(t, err)

	newPub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	newKeyPk, err := types.NewPublicKey(types.Ed25519, newPub)
	require.NoError(t, err)

	buildAddKeys := func(signerPriv ed25519.PrivateKey, nonce uint64, signerDid types.Did) action.SignedAction[AddKeys, types.Controller] {
		payload := AddKeys{Did: did2, Keys: []types.UncheckedDidKey{types.NewUncheckedDidKey(newKeyPk, types.None)}, Nonce: nonce}
		sig := ed25519.Sign(signerPriv, payload.Encode())
		sigVal, err := types.NewSigValue(types.Ed25519, sig)
		require.NoError(t, err)
		return action.SignedAction[AddKeys, types.Controller]{
			Payload: payload,
			Signature: action.DidSignature[types.Controller]{
				Did: types.Controller(signerDid), KeyID: 1, Sig: sigVal,
			},
		}
	}

	// Signed by did2's own key: did2 does not control itself here.
	sa := buildAddKeys(priv2, n2+1, did2)
	err = r.AddKeys(sa)
	require.ErrorIs(t, err, regerr.ErrOnlyControllerCanUpdate)

	// Signed by did1's control key with did1's next nonce.
	sa = buildAddKeys(priv1, n1+1, did1)
	require.NoError(t, r.AddKeys(sa))

	_, n1After, err := r.OnChainDetails(did1)
	require.NoError(t, err)
	_, n2After, err := r.OnChainDetails(did2)
	require.NoError(t, err)
	assert.Equal(t, n1+1, n1After)
	assert.Equal(t, n2, n2After)
}

func TestRemoveKeysRetainsSelfControlAtZero(t *testing.T) {
	r := newTestRegistry(1)
	did := didFromByte(9)
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	pk, err := types.NewPublicKey(types.Ed25519, pub)
	require.NoError(t, err)
	require.NoError(t, r.NewOnchain(did, []types.UncheckedDidKey{types.NewUncheckedDidKey(pk, types.None)}, nil))

	_, nonce, err := r.OnChainDetails(did)
	require.NoError(t, err)
	payload := RemoveKeys{Did: did, Keys: []types.IncId{1}, Nonce: nonce + 1}
	sig := ed25519.Sign(priv, payload.Encode())
	sigVal, err := types.NewSigValue(types.Ed25519, sig)
	require.NoError(t, err)
	sa := action.SignedAction[RemoveKeys, types.Controller]{
		Payload:   payload,
		Signature: action.DidSignature[types.Controller]{Did: types.Controller(did), KeyID: 1, Sig: sigVal},
	}
	require.NoError(t, r.RemoveKeys(sa))

	core, _, err := r.OnChainDetails(did)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), core.ActiveControllerKeys)
	assert.Contains(t, r.Controllers(did), types.Controller(did))
}
