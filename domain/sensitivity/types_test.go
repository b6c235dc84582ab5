package sensitivity

import (
	"math"
	"testing"

	"gpgam/domain/core"
	"gpgam/domain/params"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, Increasing, DirectionOf(1e-30))
	assert.Equal(t, Decreasing, DirectionOf(-2))
	assert.Equal(t, Flat, DirectionOf(0))
	assert.Equal(t, Flat, DirectionOf(math.Copysign(0, -1)))
}

func TestRecordValidate(t *testing.T) {
	rec := NewRecord(params.Count)
	require.NoError(t, rec.Validate())

	short := NewRecord(params.Count - 1)
	err := short.Validate()
	require.Error(t, err)
	assert.True(t, core.IsShapeError(err))

	rec.Importance[3] = math.NaN()
	assert.Error(t, rec.Validate())

	rec.Importance[3] = -1
	assert.Error(t, rec.Validate())
}

func TestRecordNamed(t *testing.T) {
	rec := NewRecord(params.Count)
	rec.Importance[0] = 2.5
	rec.Sign[0] = Increasing

	named := rec.Named()
	require.Len(t, named, params.Count)
	assert.Equal(t, "bl_nuc", named[0].Name)
	assert.Equal(t, 2.5, named[0].Importance)
	assert.Equal(t, Increasing, named[0].Sign)
}
