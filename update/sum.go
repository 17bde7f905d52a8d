package update

import "github.com/LTPPPP/did-trust-registry/regerr"

// SetOrModify is valid on a plain V (not an Option): Set replaces
// unconditionally, Modify delegates to a sub-update. It implements
// Update[V] itself so it can be nested inside a MultiTargetUpdate or
// another SetOrModify.
type SetOrModify[V any, U Update[V]] struct {
	isSet  bool
	setVal V
	modify U
}

// NewSet builds the Set(V) variant.
func NewSet[V any, U Update[V]](v V) SetOrModify[V, U] {
	return SetOrModify[V, U]{isSet: true, setVal: v}
}

// NewModify builds the Modify(U) variant.
func NewModify[V any, U Update[V]](u U) SetOrModify[V, U] {
	return SetOrModify[V, U]{modify: u}
}

func (s SetOrModify[V, U]) EnsureValid(cur V, exists bool) error {
	if s.isSet {
		return nil
	}
	return s.modify.EnsureValid(cur, exists)
}

func (s SetOrModify[V, U]) Apply(cur V, exists bool) (V, bool) {
	if s.isSet {
		return s.setVal, true
	}
	return s.modify.Apply(cur, exists)
}

func (s SetOrModify[V, U]) Kind(exists bool) UpdateKind {
	if s.isSet {
		return KindReplace
	}
	return s.modify.Kind(exists)
}

// sumTag discriminates the variants shared by SetOrAddOrRemoveOrModify and
// AddOrRemoveOrModify below.
type sumTag uint8

const (
	tagNone sumTag = iota
	tagSet
	tagAdd
	tagRemove
	tagModify
)

// SetOrAddOrRemoveOrModify is valid on Option<V>: Set replaces-or-inserts,
// Add inserts and fails AlreadyExists if occupied, Remove fails DoesntExist
// if empty, Modify delegates to a sub-update over the occupied value.
type SetOrAddOrRemoveOrModify[V any, U Update[V]] struct {
	tag    sumTag
	value  V
	modify U
}

func NewSAORMSet[V any, U Update[V]](v V) SetOrAddOrRemoveOrModify[V, U] {
	return SetOrAddOrRemoveOrModify[V, U]{tag: tagSet, value: v}
}

func NewSAORMAdd[V any, U Update[V]](v V) SetOrAddOrRemoveOrModify[V, U] {
	return SetOrAddOrRemoveOrModify[V, U]{tag: tagAdd, value: v}
}

func NewSAORMRemove[V any, U Update[V]]() SetOrAddOrRemoveOrModify[V, U] {
	return SetOrAddOrRemoveOrModify[V, U]{tag: tagRemove}
}

func NewSAORMModify[V any, U Update[V]](u U) SetOrAddOrRemoveOrModify[V, U] {
	return SetOrAddOrRemoveOrModify[V, U]{tag: tagModify, modify: u}
}

func (s SetOrAddOrRemoveOrModify[V, U]) EnsureValid(cur V, exists bool) error {
	switch s.tag {
	case tagSet:
		return nil
	case tagAdd:
		if exists {
			return regerr.ErrUpdateAlreadyExists
		}
		return nil
	case tagRemove:
		if !exists {
			return regerr.ErrUpdateDoesntExist
		}
		return nil
	case tagModify:
		return s.modify.EnsureValid(cur, exists)
	default:
		return nil
	}
}

func (s SetOrAddOrRemoveOrModify[V, U]) Apply(cur V, exists bool) (V, bool) {
	switch s.tag {
	case tagSet, tagAdd:
		return s.value, true
	case tagRemove:
		var zero V
		return zero, false
	case tagModify:
		return s.modify.Apply(cur, exists)
	default:
		return cur, exists
	}
}

func (s SetOrAddOrRemoveOrModify[V, U]) Kind(exists bool) UpdateKind {
	switch s.tag {
	case tagSet:
		if exists {
			return KindReplace
		}
		return KindAdd
	case tagAdd:
		return KindAdd
	case tagRemove:
		return KindRemove
	case tagModify:
		return s.modify.Kind(exists)
	default:
		return KindNone
	}
}

// AddOrRemoveOrModify is SetOrAddOrRemoveOrModify minus the Set variant,
// matching spec.md §4.1's table exactly (used where whole-value replacement
// is never legal, only insert/remove/modify).
type AddOrRemoveOrModify[V any, U Update[V]] struct {
	tag    sumTag
	value  V
	modify U
}

func NewARMAdd[V any, U Update[V]](v V) AddOrRemoveOrModify[V, U] {
	return AddOrRemoveOrModify[V, U]{tag: tagAdd, value: v}
}

func NewARMRemove[V any, U Update[V]]() AddOrRemoveOrModify[V, U] {
	return AddOrRemoveOrModify[V, U]{tag: tagRemove}
}

func NewARMModify[V any, U Update[V]](u U) AddOrRemoveOrModify[V, U] {
	return AddOrRemoveOrModify[V, U]{tag: tagModify, modify: u}
}

func (a AddOrRemoveOrModify[V, U]) EnsureValid(cur V, exists bool) error {
	switch a.tag {
	case tagAdd:
		if exists {
			return regerr.ErrUpdateAlreadyExists
		}
		return nil
	case tagRemove:
		if !exists {
			return regerr.ErrUpdateDoesntExist
		}
		return nil
	case tagModify:
		return a.modify.EnsureValid(cur, exists)
	default:
		return nil
	}
}

func (a AddOrRemoveOrModify[V, U]) Apply(cur V, exists bool) (V, bool) {
	switch a.tag {
	case tagAdd:
		return a.value, true
	case tagRemove:
		var zero V
		return zero, false
	case tagModify:
		return a.modify.Apply(cur, exists)
	default:
		return cur, exists
	}
}

func (a AddOrRemoveOrModify[V, U]) Kind(exists bool) UpdateKind {
	switch a.tag {
	case tagAdd:
		return KindAdd
	case tagRemove:
		return KindRemove
	case tagModify:
		return a.modify.Kind(exists)
	default:
		return KindNone
	}
}

// OnlyExistent applies U to the inner V of an Option<V>, failing
// DoesntExist if the slot is empty. Used where a sub-update only makes
// sense against an already-present value (e.g. editing an existing
// schema's issuer prices).
type OnlyExistent[V any, U Update[V]] struct {
	modify U
}

func NewOnlyExistent[V any, U Update[V]](u U) OnlyExistent[V, U] {
	return OnlyExistent[V, U]{modify: u}
}

func (o OnlyExistent[V, U]) EnsureValid(cur V, exists bool) error {
	if !exists {
		return regerr.ErrUpdateDoesntExist
	}
	return o.modify.EnsureValid(cur, exists)
}

func (o OnlyExistent[V, U]) Apply(cur V, exists bool) (V, bool) {
	return o.modify.Apply(cur, exists)
}

func (o OnlyExistent[V, U]) Kind(exists bool) UpdateKind {
	return o.modify.Kind(exists)
}
