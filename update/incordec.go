package update

import (
	"math"

	"github.com/LTPPPP/did-trust-registry/regerr"
)

type incTag uint8

const (
	incNone incTag = iota
	incInc
	incDec
)

// IncOrDec is an update on an Option<NonZero<u32>> counter: Inc adds
// (inserting if absent), Dec subtracts and removes the entry once it
// reaches zero, None is a no-op (spec.md §4.5.5). No code outside this
// package uses it; trustregistry keeps its delegated-issuer schema counters
// with plain uint32 arithmetic.
type IncOrDec struct {
	tag incTag
	n   uint32
}

// Inc builds the Inc(n) variant.
func Inc(n uint32) IncOrDec { return IncOrDec{tag: incInc, n: n} }

// Dec builds the Dec(n) variant.
func Dec(n uint32) IncOrDec { return IncOrDec{tag: incDec, n: n} }

// NoneIncOrDec is the no-op variant.
func NoneIncOrDec() IncOrDec { return IncOrDec{tag: incNone} }

func (u IncOrDec) EnsureValid(cur uint32, exists bool) error {
	switch u.tag {
	case incInc:
		if cur > math.MaxUint32-u.n {
			return regerr.ErrUpdateOverflow
		}
		return nil
	case incDec:
		if u.n > cur {
			return regerr.ErrUpdateUnderflow
		}
		return nil
	default:
		return nil
	}
}

func (u IncOrDec) Apply(cur uint32, exists bool) (uint32, bool) {
	switch u.tag {
	case incInc:
		return cur + u.n, true
	case incDec:
		next := cur - u.n
		return next, next != 0
	default:
		return cur, exists
	}
}

func (u IncOrDec) Kind(exists bool) UpdateKind {
	switch u.tag {
	case incInc:
		if exists {
			return KindReplace
		}
		return KindAdd
	case incDec:
		return KindRemove
	default:
		return KindNone
	}
}

// Combine implements the abelian-group law of spec.md §4.1: Inc(a)+Inc(b) =
// Inc(a+b); Inc(a)+Dec(b) collapses to Inc(a-b), Dec(b-a), or None
// depending on sign; None is the identity element.
func (u IncOrDec) Combine(other IncOrDec) (IncOrDec, error) {
	signed := func(x IncOrDec) int64 {
		switch x.tag {
		case incInc:
			return int64(x.n)
		case incDec:
			return -int64(x.n)
		default:
			return 0
		}
	}
	sum := signed(u) + signed(other)
	switch {
	case sum > math.MaxUint32:
		return IncOrDec{}, regerr.ErrUpdateOverflow
	case sum < -math.MaxUint32:
		return IncOrDec{}, regerr.ErrUpdateUnderflow
	case sum > 0:
		return Inc(uint32(sum)), nil
	case sum < 0:
		return Dec(uint32(-sum)), nil
	default:
		return NoneIncOrDec(), nil
	}
}
