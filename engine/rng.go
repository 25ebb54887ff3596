package engine

// ---------------------------------------------------------------------------
// xorshift64 streams
// ---------------------------------------------------------------------------

// nextRand advances the xorshift64 stream stored at s.
func nextRand(s *uint64) uint64 {
	x := *s
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	*s = x
	return x
}

// randN returns a number in [0, n) drawn from the stream at s.
func randN(s *uint64, n uint64) uint64 {
	return nextRand(s) % n
}

// deriveStream mixes seed with salt (splitmix64 finalizer) so each engine
// subsystem gets an independent, reproducible stream from one game seed.
func deriveStream(seed, salt uint64) uint64 {
	z := seed + salt*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z ^= z >> 31
	if z == 0 {
		z = 1 // xorshift can't start at 0
	}
	return z
}

const (
	saltBag     = 1
	saltGarbage = 2
	saltItems   = 3
)
