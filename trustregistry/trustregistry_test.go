package trustregistry

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LTPPPP/did-trust-registry/action"
	"github.com/LTPPPP/did-trust-registry/did"
	"github.com/LTPPPP/did-trust-registry/regerr"
	"github.com/LTPPPP/did-trust-registry/runtime"
	"github.com/LTPPPP/did-trust-registry/types"
)

type fixtureActor struct {
	did  types.Did
	priv ed25519.PrivateKey
}

func didFromByte(b byte) types.Did {
	var d types.Did
	for i := range d {
		d[i] = b
	}
	return d
}

func newActor(t *testing.T, reg *did.Registry, b byte) fixtureActor {
	t.Helper()
	d := didFromByte(b)
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	pk, err := types.NewPublicKey(types.Ed25519, pub)
	require.NoError(t, err)
	require.NoError(t, reg.NewOnchain(d, []types.UncheckedDidKey{types.NewUncheckedDidKey(pk, types.None)}, nil))
	return fixtureActor{did: d, priv: priv}
}

func (a fixtureActor) nonce(t *testing.T, reg *did.Registry) uint64 {
	t.Helper()
	_, n, err := reg.OnChainDetails(a.did)
	require.NoError(t, err)
	return n
}

func signInit(t *testing.T, a fixtureActor, nonce uint64, p InitOrUpdateTrustRegistry) action.SignedAction[InitOrUpdateTrustRegistry, types.Convener] {
	t.Helper()
	p.Nonce = nonce
	sig := ed25519.Sign(a.priv, p.Encode())
	sigVal, err := types.NewSigValue(types.Ed25519, sig)
	require.NoError(t, err)
	return action.SignedAction[InitOrUpdateTrustRegistry, types.Convener]{
		Payload:   p,
		Signature: action.DidSignature[types.Convener]{Did: types.Convener(a.did), KeyID: 1, Sig: sigVal},
	}
}

func signSetSchemas(t *testing.T, a fixtureActor, nonce uint64, p SetSchemasMetadata) action.SignedAction[SetSchemasMetadata, types.ConvenerOrIssuerOrVerifier] {
	t.Helper()
	p.Nonce = nonce
	sig := ed25519.Sign(a.priv, p.Encode())
	sigVal, err := types.NewSigValue(types.Ed25519, sig)
	require.NoError(t, err)
	return action.SignedAction[SetSchemasMetadata, types.ConvenerOrIssuerOrVerifier]{
		Payload:   p,
		Signature: action.DidSignature[types.ConvenerOrIssuerOrVerifier]{Did: types.ConvenerOrIssuerOrVerifier(a.did), KeyID: 1, Sig: sigVal},
	}
}

func newFixture(t *testing.T) (*did.Registry, *Store) {
	t.Helper()
	reg := did.NewRegistry(runtime.DefaultVerifiers(), runtime.NewEventBus(), func() uint64 { return 1 })
	return reg, NewStore(reg, runtime.NewEventBus())
}

func TestInitOrUpdateTrustRegistryLifecycle(t *testing.T) {
	reg, store := newFixture(t)
	convener := newActor(t, reg, 1)
	other := newActor(t, reg, 2)

	var regId RegId
	regId[0] = 0x42

	sa := signInit(t, convener, convener.nonce(t, reg)+1, InitOrUpdateTrustRegistry{
		RegId: regId, Name: "registry-one", GovFramework: []byte("framework-v1"),
	})
	require.NoError(t, store.InitOrUpdateTrustRegistry(sa))

	info, ok := store.Info(regId)
	require.True(t, ok)
	assert.Equal(t, "registry-one", info.Name)
	assert.Equal(t, types.Convener(convener.did), info.Convener)

	// Non-convener update fails NotTheConvener.
	sa2 := signInit(t, other, other.nonce(t, reg)+1, InitOrUpdateTrustRegistry{
		RegId: regId, Name: "hijacked", GovFramework: nil,
	})
	err := store.InitOrUpdateTrustRegistry(sa2)
	require.ErrorIs(t, err, regerr.ErrNotTheConvener)

	// Convener update succeeds.
	sa3 := signInit(t, convener, convener.nonce(t, reg)+1, InitOrUpdateTrustRegistry{
		RegId: regId, Name: "registry-one-renamed", GovFramework: []byte("framework-v2"),
	})
	require.NoError(t, store.InitOrUpdateTrustRegistry(sa3))
	info, _ = store.Info(regId)
	assert.Equal(t, "registry-one-renamed", info.Name)
}

// TestS8SchemaMetadataAuthority mirrors spec.md §8 scenario S8: convener
// may add/remove whole schemas, an issuer may only edit its own prices
// row, a verifier may only remove itself, and any other combination
// fails SenderCantApplyThisUpdate.
func TestS8SchemaMetadataAuthority(t *testing.T) {
	reg, store := newFixture(t)
	convener := newActor(t, reg, 1)
	issuer := newActor(t, reg, 2)
	verifier := newActor(t, reg, 3)
	otherIssuer := newActor(t, reg, 4)

	var regId RegId
	regId[0] = 0x7

	require.NoError(t, store.InitOrUpdateTrustRegistry(signInit(t, convener, convener.nonce(t, reg)+1, InitOrUpdateTrustRegistry{
		RegId: regId, Name: "reg", GovFramework: nil,
	})))

	var schemaID SchemaId
	schemaID[0] = 0x1

	whole := SchemaMetadata{
		Issuers:   map[types.Issuer]Prices{types.Issuer(issuer.did): {"usd": 100}},
		Verifiers: map[types.Verifier]struct{}{types.Verifier(verifier.did): {}},
	}
	addWhole := SetSchemasMetadata{
		RegId: regId,
		ModifyTargets: map[SchemaId]SchemaUpdate{
			schemaID: NewAddSchema(actorRole{}, whole),
		},
	}
	require.NoError(t, store.SetSchemasMetadata(signSetSchemas(t, convener, convener.nonce(t, reg)+1, addWhole)))

	meta, ok := store.SchemaMetadataOf(regId, schemaID)
	require.True(t, ok)
	assert.Contains(t, meta.Issuers, types.Issuer(issuer.did))
	assert.Contains(t, meta.Verifiers, types.Verifier(verifier.did))
	assert.Contains(t, store.IssuerRegistries(types.Issuer(issuer.did)), regId)
	assert.Contains(t, store.VerifierRegistries(types.Verifier(verifier.did)), regId)

	// Issuer edits its own price row: allowed.
	editOwnPrices := SetSchemasMetadata{
		RegId: regId,
		ModifyTargets: map[SchemaId]SchemaUpdate{
			schemaID: NewModifySchema(actorRole{}, IssuersEdit{
				SetPrices: map[types.Issuer]Prices{types.Issuer(issuer.did): {"usd": 150}},
			}, VerifiersEdit{}),
		},
	}
	require.NoError(t, store.SetSchemasMetadata(signSetSchemas(t, issuer, issuer.nonce(t, reg)+1, editOwnPrices)))
	meta, _ = store.SchemaMetadataOf(regId, schemaID)
	assert.Equal(t, VerificationPrice(150), meta.Issuers[types.Issuer(issuer.did)]["usd"])

	// Issuer cannot edit another issuer's row.
	editOtherPrices := SetSchemasMetadata{
		RegId: regId,
		ModifyTargets: map[SchemaId]SchemaUpdate{
			schemaID: NewModifySchema(actorRole{}, IssuersEdit{
				SetPrices: map[types.Issuer]Prices{types.Issuer(otherIssuer.did): {"usd": 1}},
			}, VerifiersEdit{}),
		},
	}
	err := store.SetSchemasMetadata(signSetSchemas(t, issuer, issuer.nonce(t, reg)+1, editOtherPrices))
	require.ErrorIs(t, err, regerr.ErrSenderCantApplyThisUpdate)

	// Issuer cannot add a whole new schema.
	addBySomeIssuer := SetSchemasMetadata{
		RegId: regId,
		ModifyTargets: map[SchemaId]SchemaUpdate{
			{0x9}: NewAddSchema(actorRole{}, SchemaMetadata{}),
		},
	}
	err = store.SetSchemasMetadata(signSetSchemas(t, issuer, issuer.nonce(t, reg)+1, addBySomeIssuer))
	require.ErrorIs(t, err, regerr.ErrSenderCantApplyThisUpdate)

	// Verifier removes itself: allowed.
	removeSelf := SetSchemasMetadata{
		RegId: regId,
		ModifyTargets: map[SchemaId]SchemaUpdate{
			schemaID: NewModifySchema(actorRole{}, IssuersEdit{}, VerifiersEdit{
				Remove: map[types.Verifier]struct{}{types.Verifier(verifier.did): {}},
			}),
		},
	}
	require.NoError(t, store.SetSchemasMetadata(signSetSchemas(t, verifier, verifier.nonce(t, reg)+1, removeSelf)))
	meta, _ = store.SchemaMetadataOf(regId, schemaID)
	assert.NotContains(t, meta.Verifiers, types.Verifier(verifier.did))
	assert.NotContains(t, store.VerifierRegistries(types.Verifier(verifier.did)), regId)

	// Verifier cannot remove a different verifier.
	addVerifierBack := SetSchemasMetadata{
		RegId: regId,
		ModifyTargets: map[SchemaId]SchemaUpdate{
			schemaID: NewModifySchema(actorRole{}, IssuersEdit{}, VerifiersEdit{
				Add: map[types.Verifier]struct{}{types.Verifier(verifier.did): {}, types.Verifier(otherIssuer.did): {}},
			}),
		},
	}
	require.NoError(t, store.SetSchemasMetadata(signSetSchemas(t, convener, convener.nonce(t, reg)+1, addVerifierBack)))

	removeOther := SetSchemasMetadata{
		RegId: regId,
		ModifyTargets: map[SchemaId]SchemaUpdate{
			schemaID: NewModifySchema(actorRole{}, IssuersEdit{}, VerifiersEdit{
				Remove: map[types.Verifier]struct{}{types.Verifier(otherIssuer.did): {}},
			}),
		},
	}
	err = store.SetSchemasMetadata(signSetSchemas(t, verifier, verifier.nonce(t, reg)+1, removeOther))
	require.ErrorIs(t, err, regerr.ErrSenderCantApplyThisUpdate)

	// Convener removes the whole schema.
	removeWhole := SetSchemasMetadata{
		RegId: regId,
		ModifyTargets: map[SchemaId]SchemaUpdate{
			schemaID: NewRemoveSchema(actorRole{}),
		},
	}
	require.NoError(t, store.SetSchemasMetadata(signSetSchemas(t, convener, convener.nonce(t, reg)+1, removeWhole)))
	_, ok = store.SchemaMetadataOf(regId, schemaID)
	assert.False(t, ok)
}

func TestSuspendUnsuspendIssuers(t *testing.T) {
	reg, store := newFixture(t)
	convener := newActor(t, reg, 1)
	issuer := newActor(t, reg, 2)

	var regId RegId
	regId[0] = 0x3
	require.NoError(t, store.InitOrUpdateTrustRegistry(signInit(t, convener, convener.nonce(t, reg)+1, InitOrUpdateTrustRegistry{
		RegId: regId, Name: "reg",
	})))

	var schemaID SchemaId
	schemaID[0] = 0x1
	addWhole := SetSchemasMetadata{
		RegId: regId,
		ModifyTargets: map[SchemaId]SchemaUpdate{
			schemaID: NewAddSchema(actorRole{}, SchemaMetadata{
				Issuers: map[types.Issuer]Prices{types.Issuer(issuer.did): {"usd": 1}},
			}),
		},
	}
	require.NoError(t, store.SetSchemasMetadata(signSetSchemas(t, convener, convener.nonce(t, reg)+1, addWhole)))

	suspendSig := func(nonce uint64, issuers []types.Issuer) action.SignedAction[SuspendIssuers, types.Convener] {
		p := SuspendIssuers{RegId: regId, Issuers: issuers, Nonce: nonce}
		sig := ed25519.Sign(convener.priv, p.Encode())
		sigVal, err := types.NewSigValue(types.Ed25519, sig)
		require.NoError(t, err)
		return action.SignedAction[SuspendIssuers, types.Convener]{
			Payload:   p,
			Signature: action.DidSignature[types.Convener]{Did: types.Convener(convener.did), KeyID: 1, Sig: sigVal},
		}
	}
	require.NoError(t, store.SuspendIssuers(suspendSig(convener.nonce(t, reg)+1, []types.Issuer{types.Issuer(issuer.did)})))
	assert.True(t, store.IsIssuerSuspended(regId, types.Issuer(issuer.did)))

	// Idempotent.
	require.NoError(t, store.SuspendIssuers(suspendSig(convener.nonce(t, reg)+1, []types.Issuer{types.Issuer(issuer.did)})))
	assert.True(t, store.IsIssuerSuspended(regId, types.Issuer(issuer.did)))

	unsuspendP := UnsuspendIssuers{RegId: regId, Issuers: []types.Issuer{types.Issuer(issuer.did)}, Nonce: convener.nonce(t, reg) + 1}
	sig := ed25519.Sign(convener.priv, unsuspendP.Encode())
	sigVal, err := types.NewSigValue(types.Ed25519, sig)
	require.NoError(t, err)
	unsuspendSA := action.SignedAction[UnsuspendIssuers, types.Convener]{
		Payload:   unsuspendP,
		Signature: action.DidSignature[types.Convener]{Did: types.Convener(convener.did), KeyID: 1, Sig: sigVal},
	}
	require.NoError(t, store.UnsuspendIssuers(unsuspendSA))
	assert.False(t, store.IsIssuerSuspended(regId, types.Issuer(issuer.did)))
}
