package fieldmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intLess(a, b int) bool { return a < b }

func TestSetAndGet(t *testing.T) {
	m := New[int, string](intLess)
	m.Set(3, "three")
	m.Set(1, "one")
	m.Set(2, "two")

	v, ok := m.Get(2)
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	_, ok = m.Get(99)
	assert.False(t, ok)
}

func TestEachYieldsSortedOrder(t *testing.T) {
	m := New[int, string](intLess)
	m.Set(3, "three")
	m.Set(1, "one")
	m.Set(2, "two")

	var keys []int
	m.Each(func(k int, v string) { keys = append(keys, k) })
	assert.Equal(t, []int{1, 2, 3}, keys)
}

func TestTiesPreserveInsertionOrder(t *testing.T) {
	alwaysEqual := func(a, b string) bool { return false }
	m := New[string, int](alwaysEqual)
	m.Set("c", 3)
	m.Set("a", 1)
	m.Set("b", 2)

	assert.Equal(t, []string{"c", "a", "b"}, m.Keys())
}

func TestSetReplacesWithoutMovingPosition(t *testing.T) {
	m := New[int, string](intLess)
	m.Set(1, "one")
	m.Set(2, "two")
	m.Set(1, "ONE")

	assert.Equal(t, []int{1, 2}, m.Keys())
	v, _ := m.Get(1)
	assert.Equal(t, "ONE", v)
}

func TestDelete(t *testing.T) {
	m := New[int, string](intLess)
	m.Set(1, "one")
	m.Set(2, "two")

	assert.True(t, m.Delete(1))
	assert.False(t, m.Has(1))
	assert.Equal(t, 1, m.Len())

	assert.False(t, m.Delete(99))
}
