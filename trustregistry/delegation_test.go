package trustregistry

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LTPPPP/did-trust-registry/action"
	"github.com/LTPPPP/did-trust-registry/types"
)

func signUpdateDelegated(t *testing.T, a fixtureActor, nonce uint64, delegate map[types.Issuer]struct{}, regId RegId) action.SignedAction[UpdateDelegatedIssuers, types.Issuer] {
	t.Helper()
	p := UpdateDelegatedIssuers{RegId: regId, Delegate: delegate, Nonce: nonce}
	sig := ed25519.Sign(a.priv, p.Encode())
	sigVal, err := types.NewSigValue(types.Ed25519, sig)
	require.NoError(t, err)
	return action.SignedAction[UpdateDelegatedIssuers, types.Issuer]{
		Payload:   p,
		Signature: action.DidSignature[types.Issuer]{Did: types.Issuer(a.did), KeyID: 1, Sig: sigVal},
	}
}

// TestS7TrustRegistryDelegationAccounting mirrors spec.md §8 scenario S7.
func TestS7TrustRegistryDelegationAccounting(t *testing.T) {
	reg, store := newFixture(t)
	convener := newActor(t, reg, 1)
	i1 := newActor(t, reg, 2)
	i2 := newActor(t, reg, 3)
	delegate := newActor(t, reg, 4)

	var regId RegId
	regId[0] = 0x5
	require.NoError(t, store.InitOrUpdateTrustRegistry(signInit(t, convener, convener.nonce(t, reg)+1, InitOrUpdateTrustRegistry{
		RegId: regId, Name: "reg",
	})))

	var s1, s2, s3, shared SchemaId
	s1[0], s2[0], s3[0], shared[0] = 0x1, 0x2, 0x3, 0x4

	addSchemas := SetSchemasMetadata{
		RegId: regId,
		ModifyTargets: map[SchemaId]SchemaUpdate{
			s1:     NewAddSchema(actorRole{}, SchemaMetadata{Issuers: map[types.Issuer]Prices{types.Issuer(i1.did): {}}}),
			s2:     NewAddSchema(actorRole{}, SchemaMetadata{Issuers: map[types.Issuer]Prices{types.Issuer(i1.did): {}}}),
			s3:     NewAddSchema(actorRole{}, SchemaMetadata{Issuers: map[types.Issuer]Prices{types.Issuer(i2.did): {}}}),
			shared: NewAddSchema(actorRole{}, SchemaMetadata{Issuers: map[types.Issuer]Prices{types.Issuer(i1.did): {}, types.Issuer(i2.did): {}}}),
		},
	}
	require.NoError(t, store.SetSchemasMetadata(signSetSchemas(t, convener, convener.nonce(t, reg)+1, addSchemas)))

	d := types.Issuer(delegate.did)

	require.NoError(t, store.UpdateDelegatedIssuers(signUpdateDelegated(t, i1, i1.nonce(t, reg)+1, map[types.Issuer]struct{}{d: {}}, regId)))
	assert.Equal(t, uint32(1), store.DelegatedIssuerSchemaCount(regId, d, s1))
	assert.Equal(t, uint32(1), store.DelegatedIssuerSchemaCount(regId, d, s2))
	assert.Equal(t, uint32(1), store.DelegatedIssuerSchemaCount(regId, d, shared))
	assert.Equal(t, uint32(0), store.DelegatedIssuerSchemaCount(regId, d, s3))

	require.NoError(t, store.UpdateDelegatedIssuers(signUpdateDelegated(t, i2, i2.nonce(t, reg)+1, map[types.Issuer]struct{}{d: {}}, regId)))
	assert.Equal(t, uint32(1), store.DelegatedIssuerSchemaCount(regId, d, s1))
	assert.Equal(t, uint32(1), store.DelegatedIssuerSchemaCount(regId, d, s2))
	assert.Equal(t, uint32(1), store.DelegatedIssuerSchemaCount(regId, d, s3))
	assert.Equal(t, uint32(2), store.DelegatedIssuerSchemaCount(regId, d, shared))

	require.NoError(t, store.UpdateDelegatedIssuers(signUpdateDelegated(t, i1, i1.nonce(t, reg)+1, map[types.Issuer]struct{}{}, regId)))
	assert.Equal(t, uint32(0), store.DelegatedIssuerSchemaCount(regId, d, s1))
	assert.Equal(t, uint32(0), store.DelegatedIssuerSchemaCount(regId, d, s2))
	assert.Equal(t, uint32(1), store.DelegatedIssuerSchemaCount(regId, d, s3))
	assert.Equal(t, uint32(1), store.DelegatedIssuerSchemaCount(regId, d, shared))
}
