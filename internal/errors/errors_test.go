package errors

import (
	"fmt"
	"testing"

	"gpgam/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestGetCodeClassifiesDomainErrors(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{core.NewNotFoundError(core.ErrSampleNotFound, "x.dat"), CodeNotFound},
		{core.NewShapeError("x.dat", "need 55 columns"), CodeShape},
		{fmt.Errorf("cleaning: %w", core.ErrEmptyDataset), CodeEmptyDataset},
		{core.NewFitError("not positive definite"), CodeFit},
		{fmt.Errorf("boom"), CodeInternalError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, GetCode(tt.err), tt.err.Error())
	}
}

func TestWrapKeepsCode(t *testing.T) {
	inner := ConfigInvalid("GAM_SPLINES must be >= 4")
	wrapped := Wrap(inner, "failed to load configuration")

	assert.Equal(t, CodeConfigInvalid, GetCode(wrapped))
	assert.True(t, IsAppError(wrapped))
	assert.Contains(t, wrapped.Error(), "GAM_SPLINES")

	domain := Wrapf(core.ErrEmptyDataset, "run %s", "jan")
	assert.Equal(t, CodeEmptyDataset, GetCode(domain))
	assert.ErrorIs(t, domain, core.ErrEmptyDataset)

	assert.Nil(t, Wrap(nil, "nothing"))
}
