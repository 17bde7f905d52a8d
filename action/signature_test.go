package action

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LTPPPP/did-trust-registry/regerr"
	"github.com/LTPPPP/did-trust-registry/runtime"
	"github.com/LTPPPP/did-trust-registry/types"
)

type testPayload struct {
	nonce uint64
	body  string
}

func (p testPayload) ActionNonce() uint64 { return p.nonce }
func (p testPayload) Encode() []byte {
	return NewEncoder().U64(p.nonce).String(p.body).Bytes()
}

type fakeResolver struct {
	nonce     uint64
	key       types.DidKey
	advancedTo uint64
	advanceErr error
	nonceErr  error
	keyErr    error
}

func (f *fakeResolver) OnChainNonce(did types.Did) (uint64, error) {
	if f.nonceErr != nil {
		return 0, f.nonceErr
	}
	return f.nonce, nil
}

func (f *fakeResolver) Key(did types.Did, keyID types.IncId) (types.DidKey, error) {
	if f.keyErr != nil {
		return types.DidKey{}, f.keyErr
	}
	return f.key, nil
}

func (f *fakeResolver) AdvanceNonce(did types.Did, newNonce uint64) error {
	if f.advanceErr != nil {
		return f.advanceErr
	}
	f.advancedTo = newNonce
	return nil
}

func signedActionFixture(t *testing.T, nonce uint64) (SignedAction[testPayload, types.Controller], ed25519.PublicKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	payload := testPayload{nonce: nonce, body: "hello"}
	sig := ed25519.Sign(priv, payload.Encode())
	sigVal, err := types.NewSigValue(types.Ed25519, sig)
	require.NoError(t, err)

	var did types.Did
	copy(did[:], []byte("did-fixture-aaaaaaaaaaaaaaaaaaaa"))

	sa := SignedAction[testPayload, types.Controller]{
		Payload: payload,
		Signature: DidSignature[types.Controller]{
			Did:   types.Controller(did),
			KeyID: 1,
			Sig:   sigVal,
		},
	}
	return sa, pub
}

func TestVerifySucceedsAndAdvancesNonce(t *testing.T) {
	sa, pub := signedActionFixture(t, 6)
	pk, err := types.NewPublicKey(types.Ed25519, pub)
	require.NoError(t, err)
	key, err := types.NewUncheckedDidKey(pk, types.AllForSigning).Validate()
	require.NoError(t, err)

	resolver := &fakeResolver{nonce: 5, key: key}
	_, err = Verify(resolver, sa, CapControl, runtime.DefaultVerifiers())
	require.NoError(t, err)
	require.NoError(t, Commit(resolver, sa))
	assert.Equal(t, uint64(6), resolver.advancedTo)
}

func TestVerifyRejectsWrongNonce(t *testing.T) {
	sa, pub := signedActionFixture(t, 9)
	pk, err := types.NewPublicKey(types.Ed25519, pub)
	require.NoError(t, err)
	key, err := types.NewUncheckedDidKey(pk, types.AllForSigning).Validate()
	require.NoError(t, err)

	resolver := &fakeResolver{nonce: 5, key: key}
	_, err = Verify(resolver, sa, CapControl, runtime.DefaultVerifiers())
	require.ErrorIs(t, err, regerr.ErrIncorrectNonce)
	assert.Equal(t, uint64(0), resolver.advancedTo)
}

func TestVerifyRejectsInsufficientCapability(t *testing.T) {
	sa, pub := signedActionFixture(t, 6)
	pk, err := types.NewPublicKey(types.Ed25519, pub)
	require.NoError(t, err)

	// A key restricted to Authentication only cannot satisfy CapControl.
	key, err := types.NewUncheckedDidKey(pk, types.Authentication).Validate()
	require.NoError(t, err)
	resolver := &fakeResolver{nonce: 5, key: key}
	_, err = Verify(resolver, sa, CapControl, runtime.DefaultVerifiers())
	require.ErrorIs(t, err, regerr.ErrInsufficientVerificationRelationship)
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	sa, _ := signedActionFixture(t, 6)
	otherPub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	pk, err := types.NewPublicKey(types.Ed25519, otherPub)
	require.NoError(t, err)
	key, err := types.NewUncheckedDidKey(pk, types.AllForSigning).Validate()
	require.NoError(t, err)

	resolver := &fakeResolver{nonce: 5, key: key}
	_, err = Verify(resolver, sa, CapControl, runtime.DefaultVerifiers())
	require.ErrorIs(t, err, regerr.ErrInvalidSignature)
}

func TestCheckController(t *testing.T) {
	var a, b types.Did
	copy(a[:], []byte("did-controller-a----------------"))
	copy(b[:], []byte("did-controller-b----------------"))

	controllers := map[types.Controller]struct{}{
		types.Controller(a): {},
	}
	require.NoError(t, CheckController(controllers, a))
	require.ErrorIs(t, CheckController(controllers, b), regerr.ErrOnlyControllerCanUpdate)
}
