// Package did implements the on-chain/off-chain DID lifecycle of
// spec.md §4.3: registration, key and controller management, service
// endpoints, and removal, plus the shared last_key_id space that
// offchainsig also allocates from.
package did

import "github.com/LTPPPP/did-trust-registry/types"

// DocRefKind tags an off-chain DID's document reference.
type DocRefKind uint8

const (
	DocRefURL DocRefKind = iota
	DocRefCID
	DocRefCustom
)

// MaxDocRefLen bounds a DocRef's Value length in bytes, whatever its kind
// (spec.md §3.3: "bounded byte blob").
const MaxDocRefLen = 512

// DocRef is the off-chain DID's pointer to its document, stored wherever
// the caller chooses to host it (IPFS, HTTP, or an opaque blob resolved
// out of band).
type DocRef struct {
	Kind  DocRefKind
	Value []byte
}

// NewURLDocRef builds a URL-kind reference.
func NewURLDocRef(url string) DocRef { return DocRef{Kind: DocRefURL, Value: []byte(url)} }

// NewCIDDocRef builds a CID-kind reference (an IPFS content identifier).
func NewCIDDocRef(cid string) DocRef { return DocRef{Kind: DocRefCID, Value: []byte(cid)} }

// NewCustomDocRef builds an opaque Custom-kind reference.
func NewCustomDocRef(b []byte) DocRef {
	cp := make([]byte, len(b))
	copy(cp, b)
	return DocRef{Kind: DocRefCustom, Value: cp}
}

// OffChainDidDetails is the record stored for an off-chain DID: spec.md
// §3.3's { account_id, doc_ref }, owned by exactly one account.
type OffChainDidDetails struct {
	Account string
	DocRef  DocRef
}

// OnChainCore is spec.md §3.3's OnChainDidDetails, the "core" fields an
// on-chain DID carries alongside its nonce.
type OnChainCore struct {
	LastKeyID           types.IncId
	ActiveControllerKeys uint32
	ActiveControllers    uint32
}

// onchainEntry is OnChainCore wrapped with its nonce, spec.md §3.3's
// WithNonce{nonce, data}.
type onchainEntry struct {
	Nonce uint64
	Core  OnChainCore
}

// ServiceEndpointType is a non-zero bitset naming the protocols a service
// endpoint speaks (spec.md §3.4). The concrete bit meanings are a registry
// convention, not load-bearing for this implementation; three named
// conveniences are provided.
type ServiceEndpointType uint32

const (
	ServiceEndpointNone ServiceEndpointType = 0
	ServiceEndpointLinkedDomains ServiceEndpointType = 1 << 0
	ServiceEndpointCredentialRegistry ServiceEndpointType = 1 << 1
	ServiceEndpointDIDCommMessaging ServiceEndpointType = 1 << 2
)

// MaxServiceEndpointIDLen and MaxServiceEndpointOrigins bound the service
// endpoint id and origin-set sizes per spec.md §3.4.
const (
	MaxServiceEndpointIDLen  = 256
	MaxServiceEndpointOrigins = 128
	MaxOriginLen              = 512
)

// ServiceEndpoint is spec.md §3.4's record: a non-zero type bitset plus a
// non-empty set of non-empty, bounded origins.
type ServiceEndpoint struct {
	Types   ServiceEndpointType
	Origins []string
}

type didKeyKey struct {
	Did types.Did
	ID  types.IncId
}

type didControllerKey struct {
	Did        types.Did
	Controller types.Controller
}

type didEndpointKey struct {
	Did types.Did
	ID  string
}
