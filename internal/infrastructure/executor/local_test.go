package executor

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestRunCapturesOutput(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	e := NewLocalExecutor("/bin/sh")

	res, err := e.Run(context.Background(), "pwd; echo oops >&2", dir, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(res.Stdout), filepath.Base(dir)))
	assert.Equal(t, "oops\n", res.Stderr)
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	skipOnWindows(t)
	e := NewLocalExecutor("/bin/sh")

	res, err := e.Run(context.Background(), "exit 3", "", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Succeeded())
}

func TestRunTimeout(t *testing.T) {
	skipOnWindows(t)
	e := NewLocalExecutor("/bin/sh")

	_, err := e.Run(context.Background(), "sleep 5", "", 50*time.Millisecond)
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestRunMissingShell(t *testing.T) {
	e := NewLocalExecutor("/definitely/not/a/shell")
	_, err := e.Run(context.Background(), "true", "", time.Second)
	assert.ErrorIs(t, err, domain.ErrCollaborator)
}
