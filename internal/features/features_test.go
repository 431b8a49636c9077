package features

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnableHave(t *testing.T) {
	list = nil

	require.False(t, Have(WeakInlineCaches))
	Enable(WeakInlineCaches, "bogus")
	require.True(t, Have(WeakInlineCaches))
	require.False(t, Have("bogus"))
	require.Equal(t, []string{WeakInlineCaches}, List())

	// idempotent
	Enable(WeakInlineCaches)
	require.Equal(t, []string{WeakInlineCaches}, List())

	Disable(WeakInlineCaches)
	require.False(t, Have(WeakInlineCaches))
}

func TestEnableFromEnvironment(t *testing.T) {
	list = nil
	t.Setenv(EnvVarName, WeakInlineCaches+","+ModRoundToNearest)
	EnableFromEnvironment()
	require.True(t, Have(WeakInlineCaches))
	require.True(t, Have(ModRoundToNearest))
}
