// Package offchainsig implements the off-chain signature scheme store of
// spec.md §4.4: one parameterized implementation shared by the BBS, BBS+,
// and PS signature schemes, storing signature parameters and public keys
// against the same shared last_key_id counter did.Registry allocates from.
package offchainsig

import "github.com/LTPPPP/did-trust-registry/types"

// SchemeTag identifies which of the three parallel signature schemes a
// stored SchemeParams or SchemePublicKey belongs to.
type SchemeTag uint8

const (
	BBS SchemeTag = iota
	BBSPlus
	PS
)

func (s SchemeTag) String() string {
	switch s {
	case BBS:
		return "BBS"
	case BBSPlus:
		return "BBS+"
	case PS:
		return "PS"
	default:
		return "Unknown"
	}
}

// CurveType names the pairing-friendly curve signature parameters are
// defined over. BLS12-381 is the only curve in production use by the BBS
// family this store is modeled on; the second group variant is named for
// completeness since BBS+/PS params can be expressed in either group.
type CurveType uint8

const (
	Bls12381G1 CurveType = iota
	Bls12381G2
)

// Capacity bounds named in spec.md §3.5 / §6.3.
const (
	MaxLabelLen  = 128
	MaxParamsLen = 4096
	MaxPubKeyLen = 4096
)

// ParamsRef addresses one SchemeParams slot by owner and id.
type ParamsRef struct {
	Owner types.SignatureParamsOwner
	ID    types.IncId
}

// SchemeParams is spec.md §3.5's SchemeParams: a label, the scheme's raw
// parameter bytes, and the curve they are defined over.
type SchemeParams struct {
	Scheme SchemeTag
	Label  []byte
	Bytes  []byte
	Curve  CurveType
}

// SchemePublicKey is spec.md §3.5's SchemePublicKey: raw key bytes plus an
// optional reference to the SchemeParams it was derived against.
type SchemePublicKey struct {
	Scheme    SchemeTag
	Bytes     []byte
	ParamsRef *ParamsRef
	Curve     CurveType
}

type paramsKey struct {
	Owner types.SignatureParamsOwner
	ID    types.IncId
}

type pubKeyKey struct {
	Did types.Did
	ID  types.IncId
}
