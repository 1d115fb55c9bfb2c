package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/todoflux/internal/listener"
)

type registrySubscriber struct {
	*listener.Registry
}

func (s registrySubscriber) AddListener(event string, fn listener.Func) listener.ID {
	return s.Add(event, fn)
}

func (s registrySubscriber) RemoveListener(event string, id listener.ID) bool {
	return s.Remove(event, id)
}

func TestChangeCounter(t *testing.T) {
	src := registrySubscriber{listener.NewRegistry()}
	c := NewChangeCounter(src)

	src.Fire("change")
	src.Fire("other")
	src.Fire("change")
	assert.Equal(t, 2, c.Count())

	c.Stop()
	src.Fire("change")
	assert.Equal(t, 2, c.Count())
}
