package did

import (
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/multiformats/go-multibase"

	"github.com/LTPPPP/did-trust-registry/regerr"
	"github.com/LTPPPP/did-trust-registry/types"
)

// W3CDIDDocument is the public, read-only JSON view of a DID, shaped after
// the W3C DID Core data model. It is derived on demand from Registry
// storage; nothing in the registry persists it directly.
type W3CDIDDocument struct {
	Context            []string                 `json:"@context"`
	ID                 string                   `json:"id"`
	Controller         []string                 `json:"controller,omitempty"`
	VerificationMethod []W3CVerificationMethod  `json:"verificationMethod,omitempty"`
	Authentication     []string                 `json:"authentication,omitempty"`
	AssertionMethod    []string                 `json:"assertionMethod,omitempty"`
	CapabilityInvocation []string               `json:"capabilityInvocation,omitempty"`
	KeyAgreement       []string                 `json:"keyAgreement,omitempty"`
	Service            []W3CService             `json:"service,omitempty"`
}

// W3CVerificationMethod describes one DidKey in document form.
type W3CVerificationMethod struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Controller         string `json:"controller"`
	PublicKeyMultibase string `json:"publicKeyMultibase"`
}

// W3CService describes one ServiceEndpoint in document form.
type W3CService struct {
	ID              string   `json:"id"`
	Type            []string `json:"type"`
	ServiceEndpoint []string `json:"serviceEndpoint"`
}

func schemeKeyType(s types.PublicKeyScheme) string {
	switch s {
	case types.Sr25519:
		return "Sr25519VerificationKey2020"
	case types.Ed25519:
		return "Ed25519VerificationKey2020"
	case types.Secp256k1:
		return "EcdsaSecp256k1VerificationKey2019"
	case types.X25519:
		return "X25519KeyAgreementKey2020"
	default:
		return "UnknownVerificationKey"
	}
}

func multibaseKey(pk types.PublicKey) string {
	enc, err := multibase.Encode(multibase.Base58BTC, pk.Bytes)
	if err != nil {
		return "z" + base58.Encode(pk.Bytes)
	}
	return enc
}

func serviceTypeStrings(t ServiceEndpointType) []string {
	var out []string
	if t&ServiceEndpointLinkedDomains != 0 {
		out = append(out, "LinkedDomains")
	}
	if t&ServiceEndpointCredentialRegistry != 0 {
		out = append(out, "CredentialRegistry")
	}
	if t&ServiceEndpointDIDCommMessaging != 0 {
		out = append(out, "DIDCommMessaging")
	}
	return out
}

// Document renders did's current on-chain state as a W3C DID document. It
// fails NotAnOnChainDid for an off-chain or absent DID; off-chain DIDs are
// resolved by dereferencing their doc_ref instead (see the docref
// package).
func (r *Registry) Document(did types.Did) (W3CDIDDocument, error) {
	if !r.onchain.Contains(did) {
		return W3CDIDDocument{}, regerr.ErrNotAnOnChainDid
	}
	idStr := "did:registry:" + did.String()

	doc := W3CDIDDocument{
		Context: []string{"https://www.w3.org/ns/did/v1"},
		ID:      idStr,
	}
	for c := range r.Controllers(did) {
		doc.Controller = append(doc.Controller, "did:registry:"+types.Did(c).String())
	}

	keys := r.keysOf(did)
	for id, k := range keys {
		vmID := fmt.Sprintf("%s#key-%d", idStr, id)
		doc.VerificationMethod = append(doc.VerificationMethod, W3CVerificationMethod{
			ID:                 vmID,
			Type:               schemeKeyType(k.PublicKey.Scheme),
			Controller:         idStr,
			PublicKeyMultibase: multibaseKey(k.PublicKey),
		})
		if k.VerRels.Has(types.Authentication) {
			doc.Authentication = append(doc.Authentication, vmID)
		}
		if k.VerRels.Has(types.Assertion) {
			doc.AssertionMethod = append(doc.AssertionMethod, vmID)
		}
		if k.VerRels.Has(types.CapabilityInvocation) {
			doc.CapabilityInvocation = append(doc.CapabilityInvocation, vmID)
		}
		if k.VerRels.Has(types.KeyAgreement) {
			doc.KeyAgreement = append(doc.KeyAgreement, vmID)
		}
	}

	for id, ep := range r.ServiceEndpoints(did) {
		doc.Service = append(doc.Service, W3CService{
			ID:              fmt.Sprintf("%s#%s", idStr, id),
			Type:            serviceTypeStrings(ep.Types),
			ServiceEndpoint: ep.Origins,
		})
	}

	return doc, nil
}

