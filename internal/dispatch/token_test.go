package dispatch

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todoflux/internal/ir"
)

func TestSequenceGenerator_Defaults(t *testing.T) {
	gen := NewSequenceGenerator("")

	assert.Equal(t, Token("ID_1"), gen.Generate())
	assert.Equal(t, Token("ID_2"), gen.Generate())
	assert.Equal(t, Token("ID_3"), gen.Generate())
}

func TestSequenceGenerator_Prefix(t *testing.T) {
	gen := NewSequenceGenerator("store-")

	assert.Equal(t, Token("store-1"), gen.Generate())
}

func TestSequenceGenerator_ThreadSafe(t *testing.T) {
	gen := NewSequenceGenerator("")
	const workers = 20
	const perWorker = 50

	var mu sync.Mutex
	seen := make(map[Token]bool)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				tok := gen.Generate()
				mu.Lock()
				seen[tok] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}

	tok := gen.Generate()
	parsed, err := uuid.Parse(string(tok))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, tok, gen.Generate())
}

func TestDispatcher_DefaultTokensAreUUIDs(t *testing.T) {
	d := New()
	tok := d.Register(func(_ ir.Action) {})

	_, err := uuid.Parse(string(tok))
	assert.NoError(t, err)
}
