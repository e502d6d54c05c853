package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, float32(0), Coalesce[float32](0, 0))
	assert.Equal(t, "", Coalesce[string]())
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []int{-1, 0, 3}, SortedKeys(map[int]string{3: "c", -1: "a", 0: "b"}))
	assert.Empty(t, SortedKeys(map[string]int{}))
}
