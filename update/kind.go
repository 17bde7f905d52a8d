// Package update implements the batch update algebra of spec.md §4.1: a
// small family of generic sum types that validate against an entity before
// applying to it, and compose (update of update of update) the way
// did/offchainsig/trustregistry need for key sets, controller sets, schema
// maps and delegation counters.
//
// The original encodes this via an interlocking set of Rust traits
// (ApplyUpdate, ValidateUpdate, GetUpdateKind, TranslateUpdate, CanUpdate,
// CombineUpdates). Per spec.md §9's design note, this port closes the
// algebra on one generic interface, Update[V], instead of re-deriving a
// trait per pair: anything that can validate and apply against a V
// implements it, and the sum types below are themselves Update[V]
// implementations so they nest.
//
// Actor/authorization checks are deliberately left out of Update[V] itself.
// The concrete actor types differ per module (did.Controller,
// trustregistry's Convener/Issuer/Verifier union) and, per §4.5.3, the
// capability predicate is itself domain logic, not part of the generic
// container algebra. Callers that need actor-aware validation supply an
// Update[V] implementation that carries the actor itself (as
// trustregistry.SchemaUpdate does in a field), keeping this package
// actor-agnostic.
package update

// UpdateKind classifies the observable effect of applying an update,
// letting higher-level code (capability predicates, event naming) decide
// policy without re-deriving it from the update's internal shape.
type UpdateKind uint8

const (
	KindNone UpdateKind = iota
	KindAdd
	KindRemove
	KindReplace
)

func (k UpdateKind) String() string {
	switch k {
	case KindAdd:
		return "Add"
	case KindRemove:
		return "Remove"
	case KindReplace:
		return "Replace"
	default:
		return "None"
	}
}

// Update is the validate/apply/classify contract every sum type below
// implements against an entity of type V. exists tracks whether the
// "keyed container" or Option<V> slot was occupied before the update; Go
// has no Option<T>, so it stands in for that everywhere in this package.
//
// Validation is total: per spec.md §4.1, a successful EnsureValid must be
// followed by an infallible Apply. Implementations must therefore
// re-derive every precondition Apply relies on inside EnsureValid.
type Update[V any] interface {
	EnsureValid(cur V, exists bool) error
	Apply(cur V, exists bool) (next V, some bool)
	Kind(exists bool) UpdateKind
}

// Combiner lets two updates of the same shape merge into one before
// validation, used by IncOrDec's abelian-group combine law.
type Combiner[T any] interface {
	Combine(other T) (T, error)
}
