package cache

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Hash128 is the 128-bit key_hash / content_fp value spec.md §3.2 stores
// in KeyEntry and FingerprintEntry.
type Hash128 [16]byte

func (h Hash128) isZero() bool {
	for _, b := range h {
		if b != 0 {
			return false
		}
	}
	return true
}

func (h Hash128) isTombstone() bool {
	for _, b := range h {
		if b != 0xFF {
			return false
		}
	}
	return true
}

var tombstoneHash = Hash128{
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
}

// Two fixed seed prefixes combined with xxhash.Sum64 stand in for a
// seeded 64-bit digest, since cespare/xxhash/v2's Sum64 takes no seed
// parameter: hashing seed||data twice with distinct seeds gives two
// independent 64-bit digests that together form the 128-bit fingerprint
// spec.md §3.2/§4.6 requires ("xxhash128 by default").
var (
	fingerprintSeedLo = [8]byte{0x87, 0xca, 0xeb, 0x85, 0x71, 0x79, 0x37, 0x9e}
	fingerprintSeedHi = [8]byte{0x4f, 0xeb, 0xd4, 0x27, 0x3d, 0xae, 0xb2, 0xc2}
)

// Fingerprint128 computes the 128-bit hash used as both KeyTable's
// key_hash and FingerprintTable's content_fp.
func Fingerprint128(data []byte) Hash128 {
	buf := make([]byte, 8+len(data))
	copy(buf, fingerprintSeedLo[:])
	copy(buf[8:], data)
	lo := xxhash.Sum64(buf)

	copy(buf, fingerprintSeedHi[:])
	copy(buf[8:], data)
	hi := xxhash.Sum64(buf)

	var out Hash128
	binary.LittleEndian.PutUint64(out[0:8], lo)
	binary.LittleEndian.PutUint64(out[8:16], hi)
	return out
}

// probeStart derives a table slot from a fingerprint's low 64 bits, per
// §4.6's "slot = hash_bits % table_slots".
func probeStart(h Hash128, slots uint64) uint64 {
	if slots == 0 {
		return 0
	}
	return binary.LittleEndian.Uint64(h[0:8]) % slots
}
