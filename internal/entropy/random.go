// Package entropy provides the random source behind every stochastic game
// rule. Production draws from crypto/rand; tests inject a seeded source so
// decay rolls, life events and quiz rewards become deterministic.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
	mathrand "math/rand"
	"sync"
)

// Source supplies the two draws the game rules need.
type Source interface {
	// Float returns a uniform float64 in [0, 1).
	Float() float64
	// IntN returns a uniform int in [0, n). Panics if n <= 0.
	IntN(n int) int
}

// Between returns a uniform int in [lo, hi] inclusive.
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo+1)
}

// Chance reports true with probability p.
func Chance(src Source, p float64) bool {
	return src.Float() < p
}

// CryptoSource draws from crypto/rand. Safe for concurrent use.
type CryptoSource struct{}

// NewCrypto returns the production randomness source.
func NewCrypto() *CryptoSource {
	return &CryptoSource{}
}

func (*CryptoSource) Float() float64 {
	return cryptoRandFloat()
}

func (c *CryptoSource) IntN(n int) int {
	if n <= 0 {
		panic("entropy: IntN with non-positive n")
	}
	// rand.Int rejection-samples, so the draw carries no modulo bias.
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// Degraded randomness beats a crash here.
		return int(cryptoRandFloat() * float64(n))
	}
	return int(v.Int64())
}

// cryptoRandFloat generates a random float64 using crypto/rand.
func cryptoRandFloat() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// This should never happen but return 0.5 as a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// SeededSource wraps math/rand behind a mutex so tests can share one source
// across goroutines without data races.
type SeededSource struct {
	mu  sync.Mutex
	rng *mathrand.Rand
}

// NewSeeded returns a deterministic source for the given seed.
func NewSeeded(seed int64) *SeededSource {
	return &SeededSource{rng: mathrand.New(mathrand.NewSource(seed))}
}

func (s *SeededSource) Float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *SeededSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
