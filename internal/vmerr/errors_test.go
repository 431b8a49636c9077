package vmerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderFromRecoveredSentinel(t *testing.T) {
	b := NewBuilder()
	b.AddFrame("r", 12)
	b.AddFrame("main", 4)

	err := b.FromRecovered(ErrCallStackOverflow)
	require.True(t, errors.Is(err, ErrCallStackOverflow))

	var cse *CallStackError
	require.True(t, errors.As(err, &cse))
	require.Len(t, cse.Frames, 2)
	require.Equal(t, "r", cse.Frames[0].FunctionName)
	require.Contains(t, err.Error(), "at r+0xc")
}

func TestBuilderFromRecoveredForeignPanic(t *testing.T) {
	b := NewBuilder()
	err := b.FromRecovered("some go runtime panic string")
	require.True(t, errors.Is(err, ErrInvariantViolation))
}
