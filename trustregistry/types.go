// Package trustregistry implements the Trust Registry state machine of
// spec.md §4.5: schema metadata whose issuers/verifiers sets are mutated
// by three distinct authority classes (Convener, Issuer, Verifier), plus
// suspension and issuer-delegation reference counting.
package trustregistry

import (
	"encoding/hex"
	"fmt"

	"github.com/LTPPPP/did-trust-registry/types"
)

// RegId names a trust registry.
type RegId [32]byte

// String renders the id as a hex string for logging, URLs and cache keys.
func (r RegId) String() string { return hex.EncodeToString(r[:]) }

// MarshalJSON renders the id as a hex string.
func (r RegId) MarshalJSON() ([]byte, error) { return []byte(fmt.Sprintf("%q", r.String())), nil }

// UnmarshalJSON parses a hex-encoded id.
func (r *RegId) UnmarshalJSON(data []byte) error {
	d, err := types.DidFromHex(string(trimQuotes(data)))
	if err != nil {
		return err
	}
	*r = RegId(d)
	return nil
}

// SchemaId names a credential schema within a registry.
type SchemaId [32]byte

// String renders the id as a hex string for logging, URLs and cache keys.
func (s SchemaId) String() string { return hex.EncodeToString(s[:]) }

// MarshalJSON renders the id as a hex string.
func (s SchemaId) MarshalJSON() ([]byte, error) { return []byte(fmt.Sprintf("%q", s.String())), nil }

// UnmarshalJSON parses a hex-encoded id.
func (s *SchemaId) UnmarshalJSON(data []byte) error {
	d, err := types.DidFromHex(string(trimQuotes(data)))
	if err != nil {
		return err
	}
	*s = SchemaId(d)
	return nil
}

func trimQuotes(data []byte) []byte {
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		return data[1 : len(data)-1]
	}
	return data
}

// Capacity bounds named in spec.md §3.6 / §4.5.2 / §4.5.5.
const (
	MaxNameLen          = 256
	MaxGovFrameworkLen  = 4096
	MaxSchemasPerReg    = 512
	MaxIssuersPerSchema = 512
	MaxVerifiersPerSchema = 512
	MaxPricesPerIssuer  = 64
	MaxSymbolLen        = 16
	MaxDelegatedIssuers = 256
)

// VerificationPrice is the price an issuer charges for verification in a
// given currency symbol.
type VerificationPrice uint64

// Prices is a bounded map symbol -> price, one issuer's published rate
// card (spec.md's IssuersWith inner map).
type Prices map[string]VerificationPrice

func (p Prices) clone() Prices {
	if p == nil {
		return nil
	}
	out := make(Prices, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// SchemaMetadata is spec.md §3.6's TrustRegistrySchemasMetadata entry.
type SchemaMetadata struct {
	Issuers   map[types.Issuer]Prices
	Verifiers map[types.Verifier]struct{}
}

func (m SchemaMetadata) clone() SchemaMetadata {
	issuers := make(map[types.Issuer]Prices, len(m.Issuers))
	for i, p := range m.Issuers {
		issuers[i] = p.clone()
	}
	verifiers := make(map[types.Verifier]struct{}, len(m.Verifiers))
	for v := range m.Verifiers {
		verifiers[v] = struct{}{}
	}
	return SchemaMetadata{Issuers: issuers, Verifiers: verifiers}
}

// TrustRegistryInfo is spec.md §3.6's TrustRegistryInfo entry.
type TrustRegistryInfo struct {
	Convener     types.Convener
	Name         string
	GovFramework []byte
}

// IssuerConfiguration is spec.md §3.6's TrustRegistryIssuerConfigurations
// entry: suspension flag plus the set of issuers this issuer delegates to.
type IssuerConfiguration struct {
	Suspended bool
	Delegated map[types.Issuer]struct{}
}

type storedSchemaKey struct {
	Reg    RegId
	Schema SchemaId
}

type issuerSchemaKey struct {
	Reg    RegId
	Issuer types.Issuer
	Schema SchemaId
}

type verifierSchemaKey struct {
	Reg      RegId
	Verifier types.Verifier
	Schema   SchemaId
}

type issuerRegKey struct {
	Issuer types.Issuer
	Reg    RegId
}

type verifierRegKey struct {
	Verifier types.Verifier
	Reg      RegId
}

type issuerConfigKey struct {
	Reg    RegId
	Issuer types.Issuer
}

type delegatedSchemaKey struct {
	Reg      RegId
	Delegate types.Issuer
	Schema   SchemaId
}
