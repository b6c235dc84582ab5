package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubsetShape(t *testing.T) {
	assert.Equal(t, 37, Count)

	seen := make(map[int]bool)
	prev := -1
	for _, idx := range SubsetIndex {
		assert.Less(t, prev, idx, "subset must be strictly increasing")
		assert.Less(t, idx, RawWidth)
		assert.False(t, seen[idx])
		seen[idx] = true
		prev = idx
	}
	for _, excluded := range []int{3, 19, 42} {
		assert.False(t, seen[excluded], "column %d (%s) must not be modelled", excluded, Names[excluded])
	}
}

func TestSubsetNames(t *testing.T) {
	names := SubsetNames()
	assert.Len(t, names, Count)
	assert.Equal(t, "bl_nuc", names[0])
	assert.Equal(t, "carb_ff_diam", names[3])
	assert.Equal(t, "conv_plume_scav", names[24])
	assert.Equal(t, "bc_ri", names[25])
	assert.Equal(t, "a_ent_1_rp", names[36])
}

func TestSelect(t *testing.T) {
	raw := make([]float64, RawWidth)
	for i := range raw {
		raw[i] = float64(i)
	}
	dst := make([]float64, Count)
	Select(dst, raw)
	for i, idx := range SubsetIndex {
		assert.Equal(t, float64(idx), dst[i])
	}
}
