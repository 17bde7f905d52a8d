// Package action implements the nonce and signed-action kernel of
// spec.md §4.2: the SignedAction envelope, the deterministic encoding its
// signature is computed over, and the five-step verification algorithm.
// It depends only on types and regerr; did, offchainsig and trustregistry
// depend on it, never the reverse, which is what lets those three packages
// share one verification kernel without an import cycle.
package action

import "encoding/binary"

// Encoder accumulates the canonical byte encoding spec.md §6.2 describes:
// fixed-width integers little-endian, sequences as compact_len ++
// elements, sums as a one-byte variant tag ++ payload, fixed arrays raw.
// Every payload type across did/offchainsig/trustregistry builds its
// Encode() using one of these.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Bytes returns the accumulated encoding.
func (e *Encoder) Bytes() []byte { return e.buf }

// Raw appends b verbatim, for fixed-size arrays (DIDs, public key bytes).
func (e *Encoder) Raw(b []byte) *Encoder {
	e.buf = append(e.buf, b...)
	return e
}

// Byte appends a single byte, used for variant tags and bools.
func (e *Encoder) Byte(b byte) *Encoder {
	e.buf = append(e.buf, b)
	return e
}

// Bool appends a single-byte boolean.
func (e *Encoder) Bool(v bool) *Encoder {
	if v {
		return e.Byte(1)
	}
	return e.Byte(0)
}

// U32 appends a little-endian uint32.
func (e *Encoder) U32(v uint32) *Encoder {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return e.Raw(tmp[:])
}

// U64 appends a little-endian uint64.
func (e *Encoder) U64(v uint64) *Encoder {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return e.Raw(tmp[:])
}

// CompactLen appends a LEB128 variable-length encoding of n, the
// compact_len prefix every sequence carries ahead of its elements.
func (e *Encoder) CompactLen(n int) *Encoder {
	u := uint64(n)
	for u >= 0x80 {
		e.buf = append(e.buf, byte(u)|0x80)
		u >>= 7
	}
	e.buf = append(e.buf, byte(u))
	return e
}

// ByteSeq appends a byte sequence as compact_len ++ elements.
func (e *Encoder) ByteSeq(b []byte) *Encoder {
	e.CompactLen(len(b))
	return e.Raw(b)
}

// String appends a UTF-8 string as compact_len ++ bytes.
func (e *Encoder) String(s string) *Encoder {
	return e.ByteSeq([]byte(s))
}

// Seq appends a sequence of arbitrary elements as compact_len ++ elements,
// delegating each element's encoding to enc.
func Seq[T any](e *Encoder, items []T, enc func(*Encoder, T)) *Encoder {
	e.CompactLen(len(items))
	for _, it := range items {
		enc(e, it)
	}
	return e
}
