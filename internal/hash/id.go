package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// fingerprintSaltA and fingerprintSaltB domain-separate the two xxHash64
// passes Fingerprint128 concatenates. Arbitrary but fixed ASCII tags.
var (
	fingerprintSaltA = []byte("ark8:fp128:a")
	fingerprintSaltB = []byte("ark8:fp128:b")
)

// Fingerprint128 derives a 16-byte fingerprint from data by hashing it
// twice with xxHash64 under distinct domain-separation salts and
// concatenating the two digests. This stands in for a single 128-bit
// hash where no such algorithm is available in the dependency set.
func Fingerprint128(data []byte) [16]byte {
	var out [16]byte

	d1 := xxhash.New()
	d1.Write(fingerprintSaltA)
	d1.Write(data)
	binary.BigEndian.PutUint64(out[0:8], d1.Sum64())

	d2 := xxhash.New()
	d2.Write(fingerprintSaltB)
	d2.Write(data)
	binary.BigEndian.PutUint64(out[8:16], d2.Sum64())

	return out
}
