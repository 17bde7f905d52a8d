package runtime

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// TopicHash implements the "scheme-agnostic hash function over encoded
// action bytes" named in spec.md §6.1 and §6.2, used only to compute event
// topics (it is not part of the signature scheme). blake2b-256 is used
// because it is already present in the teacher's dependency tree
// (golang.org/x/crypto) and is the conventional choice for this role across
// the retrieved blockchain repos.
func TopicHash(encoded []byte) [32]byte {
	return blake2b.Sum256(encoded)
}

// TopicHashHex is the hex-string form used in event log rows and API views.
func TopicHashHex(encoded []byte) string {
	h := TopicHash(encoded)
	return hex.EncodeToString(h[:])
}
