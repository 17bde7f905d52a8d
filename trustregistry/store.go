package trustregistry

import (
	"github.com/LTPPPP/did-trust-registry/action"
	"github.com/LTPPPP/did-trust-registry/did"
	"github.com/LTPPPP/did-trust-registry/regerr"
	"github.com/LTPPPP/did-trust-registry/runtime"
	"github.com/LTPPPP/did-trust-registry/types"
	"github.com/LTPPPP/did-trust-registry/update"
)

// Store holds the Trust Registry state machine of spec.md §3.6, reusing
// did.Registry as its action.SignerResolver the same way offchainsig does.
type Store struct {
	dids *did.Registry

	info              *runtime.StorageMap[RegId, TrustRegistryInfo]
	convenerRegs      *runtime.StorageMap[issuerRegKey, struct{}] // reused shape: (role, reg)
	storedSchemas     *runtime.StorageMap[storedSchemaKey, struct{}]
	schemasMeta       *runtime.StorageMap[storedSchemaKey, SchemaMetadata]
	issuerSchemas     *runtime.StorageMap[issuerSchemaKey, struct{}]
	verifierSchemas   *runtime.StorageMap[verifierSchemaKey, struct{}]
	issuerRegs        *runtime.StorageMap[issuerRegKey, struct{}]
	verifierRegs      *runtime.StorageMap[verifierRegKey, struct{}]
	issuerConfig      *runtime.StorageMap[issuerConfigKey, IssuerConfiguration]
	delegatedSchemas  *runtime.StorageMap[delegatedSchemaKey, uint32]

	events *runtime.EventBus
}

// NewStore constructs an empty Trust Registry store bound to dids.
func NewStore(dids *did.Registry, events *runtime.EventBus) *Store {
	return &Store{
		dids:             dids,
		info:             runtime.NewStorageMap[RegId, TrustRegistryInfo](),
		convenerRegs:     runtime.NewStorageMap[issuerRegKey, struct{}](),
		storedSchemas:    runtime.NewStorageMap[storedSchemaKey, struct{}](),
		schemasMeta:      runtime.NewStorageMap[storedSchemaKey, SchemaMetadata](),
		issuerSchemas:    runtime.NewStorageMap[issuerSchemaKey, struct{}](),
		verifierSchemas:  runtime.NewStorageMap[verifierSchemaKey, struct{}](),
		issuerRegs:       runtime.NewStorageMap[issuerRegKey, struct{}](),
		verifierRegs:     runtime.NewStorageMap[verifierRegKey, struct{}](),
		issuerConfig:     runtime.NewStorageMap[issuerConfigKey, IssuerConfiguration](),
		delegatedSchemas: runtime.NewStorageMap[delegatedSchemaKey, uint32](),
		events:           events,
	}
}

func (s *Store) emit(topic string, payload any) {
	if s.events == nil {
		return
	}
	s.events.Emit([]byte(topic), payload)
}

// InitOrUpdateTrustRegistry implements spec.md §4.5.1.
func (s *Store) InitOrUpdateTrustRegistry(sa action.SignedAction[InitOrUpdateTrustRegistry, types.Convener]) error {
	if len(sa.Payload.Name) > MaxNameLen || len(sa.Payload.GovFramework) > MaxGovFrameworkLen {
		return regerr.ErrTooManyEntities
	}

	if _, err := action.Verify(s.dids, sa, action.CapControl, s.dids.Verifiers()); err != nil {
		return err
	}
	signer := action.AsDid(sa.Signature.Did)
	reg := sa.Payload.RegId

	cur, exists := s.info.Get(reg)
	if !exists {
		s.info.Insert(reg, TrustRegistryInfo{
			Convener:     types.Convener(signer),
			Name:         sa.Payload.Name,
			GovFramework: sa.Payload.GovFramework,
		})
		s.convenerRegs.Insert(issuerRegKey{Issuer: types.Issuer(signer), Reg: reg}, struct{}{})
	} else {
		if types.Did(cur.Convener) != signer {
			return regerr.ErrNotTheConvener
		}
		cur.Name = sa.Payload.Name
		cur.GovFramework = sa.Payload.GovFramework
		s.info.Insert(reg, cur)
	}

	if err := action.Commit(s.dids, sa); err != nil {
		return err
	}
	s.emit("TrustRegistryInitOrUpdated", reg)
	return nil
}

func (s *Store) resolveRole(reg RegId, signer types.Did) (actorRole, error) {
	info, ok := s.info.Get(reg)
	if !ok {
		return actorRole{}, regerr.ErrEntityDoesntExist
	}
	role := actorRole{signer: signer}
	if types.Did(info.Convener) == signer {
		role.isConvener = true
	}
	issuer := types.Issuer(signer)
	if s.issuerRegs.Contains(issuerRegKey{Issuer: issuer, Reg: reg}) {
		role.isIssuer = true
		role.issuer = issuer
	}
	verifier := types.Verifier(signer)
	if s.verifierRegs.Contains(verifierRegKey{Verifier: verifier, Reg: reg}) {
		role.isVerifier = true
		role.verifier = verifier
	}
	return role, nil
}

// schemaContainer materializes every stored schema of reg into a plain
// map so MultiTargetUpdate can run against it, per spec.md §4.1.
func (s *Store) schemaContainer(reg RegId) map[SchemaId]SchemaMetadata {
	out := map[SchemaId]SchemaMetadata{}
	s.storedSchemas.IterPrefix(
		func(k storedSchemaKey) bool { return k.Reg == reg },
		func(k storedSchemaKey, _ struct{}) {
			if m, ok := s.schemasMeta.Get(storedSchemaKey{Reg: reg, Schema: k.Schema}); ok {
				out[k.Schema] = m
			}
		},
	)
	return out
}

// SetSchemasMetadata implements spec.md §4.5.2. The before/after map diffing
// decides what changed; runtime.Txn is what makes applying it safe, rolling
// back the metadata map and all five derived indices together if
// action.Commit rejects the nonce after reconcileIndices has already
// written them.
func (s *Store) SetSchemasMetadata(sa action.SignedAction[SetSchemasMetadata, types.ConvenerOrIssuerOrVerifier]) error {
	reg := sa.Payload.RegId

	if _, err := action.Verify(s.dids, sa, action.CapControl, s.dids.Verifiers()); err != nil {
		return err
	}
	signer := action.AsDid(sa.Signature.Did)
	role, err := s.resolveRole(reg, signer)
	if err != nil {
		return err
	}
	if !role.isConvener && !role.isIssuer && !role.isVerifier {
		return regerr.ErrSenderCantApplyThisUpdate
	}

	before := s.schemaContainer(reg)
	after := map[SchemaId]SchemaMetadata{}
	for k, v := range before {
		after[k] = v.clone()
	}

	if sa.Payload.IsSet {
		if !role.isConvener {
			return regerr.ErrSenderCantApplyThisUpdate
		}
		if len(sa.Payload.SetWhole) > MaxSchemasPerReg {
			return regerr.ErrTooManyEntities
		}
		for _, m := range sa.Payload.SetWhole {
			if err := validateCapacity(m); err != nil {
				return err
			}
		}
		after = map[SchemaId]SchemaMetadata{}
		for id, m := range sa.Payload.SetWhole {
			after[id] = m.clone()
		}
	} else {
		subs := map[SchemaId]SchemaUpdate{}
		for id, u := range sa.Payload.ModifyTargets {
			u.actor = role
			subs[id] = u
		}
		mt := update.NewMultiTargetUpdate[SchemaId, SchemaMetadata, SchemaUpdate](subs)
		if err := mt.EnsureValid(after); err != nil {
			return err
		}
		mt.Apply(after)
		if len(after) > MaxSchemasPerReg {
			return regerr.ErrTooManyEntities
		}
	}

	txn := runtime.NewTxn(s.storedSchemas, s.schemasMeta, s.issuerSchemas, s.issuerRegs, s.verifierSchemas, s.verifierRegs)
	err = txn.Run(func() error {
		s.reconcileIndices(reg, before, after)
		return action.Commit(s.dids, sa)
	})
	if err != nil {
		return err
	}
	s.emit("SchemasMetadataSet", reg)
	return nil
}

// reconcileIndices writes after back to storage and recomputes every
// derived index named in spec.md §3.6/§4.5.2 from the before/after diff.
func (s *Store) reconcileIndices(reg RegId, before, after map[SchemaId]SchemaMetadata) {
	for id := range before {
		if _, ok := after[id]; !ok {
			s.removeSchema(reg, id, before[id])
		}
	}
	for id, meta := range after {
		prev, existed := before[id]
		if !existed {
			s.insertSchema(reg, id, meta)
			continue
		}
		s.diffSchema(reg, id, prev, meta)
	}
}

func (s *Store) insertSchema(reg RegId, id SchemaId, meta SchemaMetadata) {
	s.storedSchemas.Insert(storedSchemaKey{Reg: reg, Schema: id}, struct{}{})
	s.schemasMeta.Insert(storedSchemaKey{Reg: reg, Schema: id}, meta)
	for issuer := range meta.Issuers {
		s.issuerSchemas.Insert(issuerSchemaKey{Reg: reg, Issuer: issuer, Schema: id}, struct{}{})
		s.issuerRegs.Insert(issuerRegKey{Issuer: issuer, Reg: reg}, struct{}{})
	}
	for verifier := range meta.Verifiers {
		s.verifierSchemas.Insert(verifierSchemaKey{Reg: reg, Verifier: verifier, Schema: id}, struct{}{})
		s.verifierRegs.Insert(verifierRegKey{Verifier: verifier, Reg: reg}, struct{}{})
	}
}

func (s *Store) removeSchema(reg RegId, id SchemaId, meta SchemaMetadata) {
	s.storedSchemas.Remove(storedSchemaKey{Reg: reg, Schema: id})
	s.schemasMeta.Remove(storedSchemaKey{Reg: reg, Schema: id})
	for issuer := range meta.Issuers {
		s.issuerSchemas.Remove(issuerSchemaKey{Reg: reg, Issuer: issuer, Schema: id})
		s.dropIssuerRegIfOrphaned(reg, issuer)
	}
	for verifier := range meta.Verifiers {
		s.verifierSchemas.Remove(verifierSchemaKey{Reg: reg, Verifier: verifier, Schema: id})
		s.dropVerifierRegIfOrphaned(reg, verifier)
	}
}

func (s *Store) diffSchema(reg RegId, id SchemaId, before, after SchemaMetadata) {
	s.schemasMeta.Insert(storedSchemaKey{Reg: reg, Schema: id}, after)
	for issuer := range after.Issuers {
		if _, ok := before.Issuers[issuer]; !ok {
			s.issuerSchemas.Insert(issuerSchemaKey{Reg: reg, Issuer: issuer, Schema: id}, struct{}{})
			s.issuerRegs.Insert(issuerRegKey{Issuer: issuer, Reg: reg}, struct{}{})
		}
	}
	for issuer := range before.Issuers {
		if _, ok := after.Issuers[issuer]; !ok {
			s.issuerSchemas.Remove(issuerSchemaKey{Reg: reg, Issuer: issuer, Schema: id})
			s.dropIssuerRegIfOrphaned(reg, issuer)
		}
	}
	for verifier := range after.Verifiers {
		if _, ok := before.Verifiers[verifier]; !ok {
			s.verifierSchemas.Insert(verifierSchemaKey{Reg: reg, Verifier: verifier, Schema: id}, struct{}{})
			s.verifierRegs.Insert(verifierRegKey{Verifier: verifier, Reg: reg}, struct{}{})
		}
	}
	for verifier := range before.Verifiers {
		if _, ok := after.Verifiers[verifier]; !ok {
			s.verifierSchemas.Remove(verifierSchemaKey{Reg: reg, Verifier: verifier, Schema: id})
			s.dropVerifierRegIfOrphaned(reg, verifier)
		}
	}
}

func (s *Store) dropIssuerRegIfOrphaned(reg RegId, issuer types.Issuer) {
	found := false
	s.issuerSchemas.IterPrefix(
		func(k issuerSchemaKey) bool { return k.Reg == reg && k.Issuer == issuer },
		func(k issuerSchemaKey, _ struct{}) { found = true },
	)
	if !found {
		s.issuerRegs.Remove(issuerRegKey{Issuer: issuer, Reg: reg})
	}
}

func (s *Store) dropVerifierRegIfOrphaned(reg RegId, verifier types.Verifier) {
	found := false
	s.verifierSchemas.IterPrefix(
		func(k verifierSchemaKey) bool { return k.Reg == reg && k.Verifier == verifier },
		func(k verifierSchemaKey, _ struct{}) { found = true },
	)
	if !found {
		s.verifierRegs.Remove(verifierRegKey{Verifier: verifier, Reg: reg})
	}
}

// SuspendIssuers implements spec.md §4.5.4.
func (s *Store) SuspendIssuers(sa action.SignedAction[SuspendIssuers, types.Convener]) error {
	return s.setSuspension(sa, true)
}

// UnsuspendIssuers implements spec.md §4.5.4's symmetric unsuspend_issuers.
func (s *Store) UnsuspendIssuers(sa action.SignedAction[UnsuspendIssuers, types.Convener]) error {
	reg := sa.Payload.RegId
	issuers := sa.Payload.Issuers

	if _, err := action.Verify(s.dids, sa, action.CapControl, s.dids.Verifiers()); err != nil {
		return err
	}
	if err := s.requireConvener(reg, action.AsDid(sa.Signature.Did)); err != nil {
		return err
	}
	for _, issuer := range issuers {
		if !s.hasAnySchema(reg, issuer) {
			return regerr.ErrNoSuchIssuer
		}
	}
	for _, issuer := range issuers {
		key := issuerConfigKey{Reg: reg, Issuer: issuer}
		cfg, _ := s.issuerConfig.Get(key)
		cfg.Suspended = false
		s.issuerConfig.Insert(key, cfg)
	}

	if err := action.Commit(s.dids, sa); err != nil {
		return err
	}
	s.emit("IssuersUnsuspended", reg)
	return nil
}

func (s *Store) setSuspension(sa action.SignedAction[SuspendIssuers, types.Convener], suspended bool) error {
	reg := sa.Payload.RegId
	issuers := sa.Payload.Issuers

	if _, err := action.Verify(s.dids, sa, action.CapControl, s.dids.Verifiers()); err != nil {
		return err
	}
	if err := s.requireConvener(reg, action.AsDid(sa.Signature.Did)); err != nil {
		return err
	}
	for _, issuer := range issuers {
		if !s.hasAnySchema(reg, issuer) {
			return regerr.ErrNoSuchIssuer
		}
	}
	for _, issuer := range issuers {
		key := issuerConfigKey{Reg: reg, Issuer: issuer}
		cfg, _ := s.issuerConfig.Get(key)
		cfg.Suspended = suspended
		s.issuerConfig.Insert(key, cfg)
	}

	if err := action.Commit(s.dids, sa); err != nil {
		return err
	}
	s.emit("IssuersSuspended", reg)
	return nil
}

func (s *Store) requireConvener(reg RegId, signer types.Did) error {
	info, ok := s.info.Get(reg)
	if !ok {
		return regerr.ErrEntityDoesntExist
	}
	if types.Did(info.Convener) != signer {
		return regerr.ErrNotTheConvener
	}
	return nil
}

func (s *Store) hasAnySchema(reg RegId, issuer types.Issuer) bool {
	return s.issuerRegs.Contains(issuerRegKey{Issuer: issuer, Reg: reg})
}

// UpdateDelegatedIssuers implements spec.md §4.5.5.
func (s *Store) UpdateDelegatedIssuers(sa action.SignedAction[UpdateDelegatedIssuers, types.Issuer]) error {
	reg := sa.Payload.RegId

	if _, err := action.Verify(s.dids, sa, action.CapControl, s.dids.Verifiers()); err != nil {
		return err
	}
	signer := action.AsDid(sa.Signature.Did)
	issuer := types.Issuer(signer)
	if !s.hasAnySchema(reg, issuer) {
		return regerr.ErrNoSuchIssuer
	}
	if len(sa.Payload.Delegate) > MaxDelegatedIssuers {
		return regerr.ErrDelegatedIssuersSizeExceeded
	}

	cfgKey := issuerConfigKey{Reg: reg, Issuer: issuer}
	cfg, _ := s.issuerConfig.Get(cfgKey)
	before := cfg.Delegated
	after := sa.Payload.Delegate

	var ownSchemas []SchemaId
	s.issuerSchemas.IterPrefix(
		func(k issuerSchemaKey) bool { return k.Reg == reg && k.Issuer == issuer },
		func(k issuerSchemaKey, _ struct{}) { ownSchemas = append(ownSchemas, k.Schema) },
	)

	for d := range after {
		if _, ok := before[d]; ok {
			continue
		}
		for _, schema := range ownSchemas {
			key := delegatedSchemaKey{Reg: reg, Delegate: d, Schema: schema}
			count, _ := s.delegatedSchemas.Get(key)
			s.delegatedSchemas.Insert(key, count+1)
		}
	}
	for d := range before {
		if _, ok := after[d]; ok {
			continue
		}
		for _, schema := range ownSchemas {
			key := delegatedSchemaKey{Reg: reg, Delegate: d, Schema: schema}
			count, ok := s.delegatedSchemas.Get(key)
			if !ok {
				continue
			}
			if count <= 1 {
				s.delegatedSchemas.Remove(key)
			} else {
				s.delegatedSchemas.Insert(key, count-1)
			}
		}
	}

	cfg.Delegated = map[types.Issuer]struct{}{}
	for d := range after {
		cfg.Delegated[d] = struct{}{}
	}
	s.issuerConfig.Insert(cfgKey, cfg)

	if err := action.Commit(s.dids, sa); err != nil {
		return err
	}
	s.emit("DelegatedIssuersUpdated", reg)
	return nil
}
