package dispatch

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Token identifies one callback registration.
type Token string

// TokenGenerator produces unique registration tokens.
// Implemented by UUIDv7Generator (production) and SequenceGenerator (tests).
type TokenGenerator interface {
	Generate() Token
}

// UUIDv7Generator generates time-sortable UUIDv7 tokens.
//
// Tokens are unique across dispatchers and processes, which keeps log
// lines from different runs unambiguous.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 token.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() Token {
	return Token(uuid.Must(uuid.NewV7()).String())
}

// SequenceGenerator produces tokens of the form "<prefix>1", "<prefix>2", ...
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	last   int
}

// NewSequenceGenerator creates a generator whose first token is prefix+"1".
// An empty prefix defaults to "ID_".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "ID_"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next token in the sequence.
func (g *SequenceGenerator) Generate() Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last++
	return Token(fmt.Sprintf("%s%d", g.prefix, g.last))
}
