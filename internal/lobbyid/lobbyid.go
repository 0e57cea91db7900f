// Package lobbyid generates the short, human-typeable identifiers used
// for live lobbies. The alphabet drops look-alike characters (0/o, 1/l/i)
// so ids survive being read aloud or typed from another screen.
package lobbyid

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const alphabet = "23456789abcdefghjkmnpqrstvwxyz"

// Length is the number of characters in a generated id
const Length = 6

// RandSource allows deterministic randomness to be injected in tests
type RandSource interface {
	IntN(n int) int
}

// Generator produces lobby ids with configurable randomness
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a generator; a nil RandSource uses crypto/rand
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a new id using the package default generator
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new id
func (g *Generator) Generate() string {
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		b.WriteByte(alphabet[g.index()])
	}
	return b.String()
}

func (g *Generator) index() int {
	if g.randSource != nil {
		return g.randSource.IntN(len(alphabet))
	}
	var buf [1]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			panic("failed to generate random bytes: " + err.Error())
		}
		// Reject values that would bias the low end of the alphabet.
		limit := 256 - 256%len(alphabet)
		if int(buf[0]) < limit {
			return int(buf[0]) % len(alphabet)
		}
	}
}

// Validate checks that an inbound id has the generated shape
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("lobby id must be exactly %d characters, got %d", Length, len(id))
	}
	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
