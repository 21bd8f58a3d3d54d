package lru

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBound(t *testing.T) {
	c := New(2)
	c.Set("a", 1)
	c.Set("b", 2)
	evicted := c.Set("c", 3)

	assert.Equal(t, "a", evicted)
	assert.False(t, c.Has("a"))
	assert.True(t, c.Has("b"))
	assert.True(t, c.Has("c"))
	assert.LessOrEqual(t, c.Len(), 2)
}

func TestPromoteOnGet(t *testing.T) {
	c := New(2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // promote a, so b is now least-recently-used
	evicted := c.Set("c", 3)
	assert.Equal(t, "b", evicted)
}

func TestBoundUnderSequence(t *testing.T) {
	c := New(3)
	for i := 0; i < 50; i++ {
		c.Set(fmt.Sprintf("pkg-%d", i), i)
		assert.LessOrEqual(t, c.Len(), 3)
	}
}
