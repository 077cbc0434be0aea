package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	original := version
	SetVersion(v)
	t.Cleanup(func() {
		version = original
		resetFlags()
	})
}

func TestVersionCmd(t *testing.T) {
	withVersion(t, "1.4.0")

	out, err := runCommand(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "storyfeed version 1.4.0")
	assert.Contains(t, out, runtime.Version())
}

func TestVersionCmd_Dev(t *testing.T) {
	withVersion(t, "dev")

	out, err := runCommand(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "storyfeed version dev")
}

func TestVersionCmd_Short(t *testing.T) {
	withVersion(t, "1.4.0")

	out, err := runCommand(t, "version", "--short")

	require.NoError(t, err)
	assert.Equal(t, "1.4.0\n", out)
}
