package simulator

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Source is the entropy source used for shuffling.
// IntN must return a uniformly distributed value in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// Sampler shuffles expanded decks and draws hands from them.
// A Sampler is not safe for concurrent use; Simulator serializes access to its sampler.
type Sampler struct {
	rng Source
}

// NewSampler creates a sampler over the given source.
// A nil source is replaced by a PCG generator seeded from crypto/rand.
func NewSampler(src Source) *Sampler {
	if src == nil {
		seed, err := NewSeed()
		if err != nil {
			// crypto/rand only fails when the OS entropy source is unavailable
			panic(err)
		}
		src = newPCG(seed)
	}
	return &Sampler{rng: src}
}

// NewSeededSampler creates a sampler whose permutations are reproducible for a given seed.
func NewSeededSampler(seed uint64) *Sampler {
	return &Sampler{rng: newPCG(seed)}
}

// NewSeededSource returns a PCG source for the given seed.
func NewSeededSource(seed uint64) Source {
	return newPCG(seed)
}

func newPCG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Shuffle returns a uniformly random permutation of instances.
// The input slice is left untouched.
func (s *Sampler) Shuffle(instances []Instance) []Instance {
	shuffled := make([]Instance, len(instances))
	copy(shuffled, instances)

	// Fisher-Yates: swap each position with a uniformly chosen index at or below it.
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}

// Draw shuffles instances and returns the first n of the permutation.
func (s *Sampler) Draw(instances []Instance, n int) ([]Instance, error) {
	if n < 1 {
		return nil, &InvalidDrawCountError{DrawCount: n}
	}
	if n > len(instances) {
		return nil, &InsufficientCardsError{Requested: n, Available: len(instances)}
	}

	return s.Shuffle(instances)[:n], nil
}
