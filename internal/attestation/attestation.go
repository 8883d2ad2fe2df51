// Package attestation produces the opaque proof hashes recorded when a milestone is verified.
package attestation

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HashLength is the number of random bytes behind a proof hash (64 hex characters)
const HashLength = 32

// Generator produces a proof hash for a verified milestone
type Generator interface {
	Generate() (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface
type GeneratorFunc func() (string, error)

// Generate calls f()
func (f GeneratorFunc) Generate() (string, error) {
	return f()
}

// RandomGenerator creates 0x-prefixed hashes from a random source
type RandomGenerator struct {
	source io.Reader
}

// NewRandomGenerator creates a generator backed by crypto/rand
func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{source: rand.Reader}
}

// NewRandomGeneratorFrom creates a generator reading from the given source
func NewRandomGeneratorFrom(source io.Reader) *RandomGenerator {
	return &RandomGenerator{source: source}
}

// Generate returns "0x" followed by 64 lowercase hex characters
func (g *RandomGenerator) Generate() (string, error) {
	buf := make([]byte, HashLength)
	if _, err := io.ReadFull(g.source, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hexutil.Encode(buf), nil
}

// Static always returns the same hash
func Static(hash string) Generator {
	return GeneratorFunc(func() (string, error) {
		return hash, nil
	})
}
