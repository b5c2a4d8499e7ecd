// Package hasher is the registry of digests available for sealed-chunk
// manifests.
package hasher

import (
	"hash"

	sha256 "github.com/minio/sha256-simd"
	"github.com/twmb/murmur3"
	"golang.org/x/crypto/blake2b"
)

// Initializer returns a fresh hash state. A nil initializer (the "none"
// entry) disables chunk digesting altogether.
type Initializer func() hash.Hash

var AvailableHashers = map[string]Initializer{
	"none":     nil,
	"sha2-256": sha256.New,
	"blake2b-256": func() hash.Hash {
		h, _ := blake2b.New256(nil) // nil key never errors
		return h
	},
	"murmur3-128": func() hash.Hash {
		return murmur3.New128()
	},
}
