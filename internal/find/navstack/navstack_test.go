package navstack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushPopOrder(t *testing.T) {
	s := New(10)
	s.Push(3, true)
	s.Push(0, false)
	s.Push(7, true)

	i, ok := s.Pop()
	assert.True(t, ok)
	assert.Equal(t, 7, i)

	_, ok = s.Pop()
	assert.False(t, ok, "absent index round-trips as absent")
	assert.Equal(t, 1, s.Len())

	i, ok = s.Pop()
	assert.True(t, ok)
	assert.Equal(t, 3, i)

	_, ok = s.Pop()
	assert.False(t, ok)
}

func TestDepthDropsOldest(t *testing.T) {
	s := New(2)
	s.Push(1, true)
	s.Push(2, true)
	s.Push(3, true)

	assert.Equal(t, 2, s.Len())
	i, _ := s.Pop()
	assert.Equal(t, 3, i)
	i, _ = s.Pop()
	assert.Equal(t, 2, i)
}

func TestClear(t *testing.T) {
	s := New(0)
	s.Push(1, true)
	s.Clear()
	assert.Equal(t, 0, s.Len())
	_, ok := s.Pop()
	assert.False(t, ok)
}
