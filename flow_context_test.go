package tlshake

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlowContextKeepsFirstError(t *testing.T) {
	fc := NewFlowContext()
	assert.False(t, fc.Failed())
	assert.NoError(t, fc.Err())

	first := errors.New("first")  //nolint:goerr113
	second := errors.New("later") //nolint:goerr113
	fc.Fail(first)
	fc.Fail(second)

	assert.True(t, fc.Failed())
	assert.Equal(t, first, fc.Err())
}
