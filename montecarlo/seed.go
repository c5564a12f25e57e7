package montecarlo

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// TrialSeed hashes the run seed and keys (trial index, and optionally more)
// into an independent seed.
func TrialSeed(runSeed uint64, keys ...uint64) uint64 {
	var buf [8]byte
	d := xxhash.New()
	binary.LittleEndian.PutUint64(buf[:], runSeed)
	d.Write(buf[:])
	for _, k := range keys {
		binary.LittleEndian.PutUint64(buf[:], k)
		d.Write(buf[:])
	}
	return d.Sum64()
}

// NewRand returns a generator seeded by seed. The second PCG word is derived
// so that nearby seeds do not share a stream.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
