package engine

import "math/rand"

// defaultSeed is used when a config leaves Seed at zero.
const defaultSeed int64 = 1

// deriveSeed mixes a base seed and a run index into an independent seed
// with a SplitMix64 finalizer, so neighbouring runs get uncorrelated streams.
func deriveSeed(base int64, run uint64) int64 {
	if base == 0 {
		base = defaultSeed
	}
	x := uint64(base) ^ (run + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// runRNG returns the private generator of run i.
func runRNG(base int64, run int) (*rand.Rand, int64) {
	seed := deriveSeed(base, uint64(run))
	return rand.New(rand.NewSource(seed)), seed
}
