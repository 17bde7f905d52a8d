package trustregistry

import "github.com/LTPPPP/did-trust-registry/types"

// Info returns reg's TrustRegistryInfo, if it exists.
func (s *Store) Info(reg RegId) (TrustRegistryInfo, bool) {
	return s.info.Get(reg)
}

// SchemaMetadataOf returns one schema's stored metadata.
func (s *Store) SchemaMetadataOf(reg RegId, schema SchemaId) (SchemaMetadata, bool) {
	return s.schemasMeta.Get(storedSchemaKey{Reg: reg, Schema: schema})
}

// IssuerConfigurationOf returns an issuer's suspension/delegation record
// within reg.
func (s *Store) IssuerConfigurationOf(reg RegId, issuer types.Issuer) (IssuerConfiguration, bool) {
	return s.issuerConfig.Get(issuerConfigKey{Reg: reg, Issuer: issuer})
}

// IsIssuerSuspended reports whether issuer is currently suspended in reg.
func (s *Store) IsIssuerSuspended(reg RegId, issuer types.Issuer) bool {
	cfg, ok := s.issuerConfig.Get(issuerConfigKey{Reg: reg, Issuer: issuer})
	return ok && cfg.Suspended
}

// DelegatedIssuerSchemaCount returns the reference count spec.md §3.6's
// TrustRegistryDelegatedIssuerSchemas stores for (reg, delegate, schema).
func (s *Store) DelegatedIssuerSchemaCount(reg RegId, delegate types.Issuer, schema SchemaId) uint32 {
	n, _ := s.delegatedSchemas.Get(delegatedSchemaKey{Reg: reg, Delegate: delegate, Schema: schema})
	return n
}

// IssuerRegistries returns the reverse index IssuersTrustRegistries[issuer].
func (s *Store) IssuerRegistries(issuer types.Issuer) []RegId {
	var out []RegId
	s.issuerRegs.IterPrefix(
		func(k issuerRegKey) bool { return k.Issuer == issuer },
		func(k issuerRegKey, _ struct{}) { out = append(out, k.Reg) },
	)
	return out
}

// VerifierRegistries returns the reverse index VerifiersTrustRegistries[verifier].
func (s *Store) VerifierRegistries(verifier types.Verifier) []RegId {
	var out []RegId
	s.verifierRegs.IterPrefix(
		func(k verifierRegKey) bool { return k.Verifier == verifier },
		func(k verifierRegKey, _ struct{}) { out = append(out, k.Reg) },
	)
	return out
}
