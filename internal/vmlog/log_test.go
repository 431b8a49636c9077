package vmlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamHandlerFormatsContext(t *testing.T) {
	var buf bytes.Buffer
	l := New("component", "gcscope")
	l.SetHandler(StreamHandler(&buf))

	l.Warn("handle-scope baseline violated", "depth", 3)

	out := buf.String()
	require.True(t, strings.Contains(out, "warn"))
	require.True(t, strings.Contains(out, "component=gcscope"))
	require.True(t, strings.Contains(out, "depth=3"))
}

func TestDiscardHandlerDropsEverything(t *testing.T) {
	l := New()
	l.Error("should vanish")
}

func TestChildLoggerInheritsHandler(t *testing.T) {
	var buf bytes.Buffer
	parent := New("a", 1)
	parent.SetHandler(StreamHandler(&buf))
	child := parent.New("b", 2)

	child.Info("hello")
	out := buf.String()
	require.True(t, strings.Contains(out, "a=1"))
	require.True(t, strings.Contains(out, "b=2"))
}
