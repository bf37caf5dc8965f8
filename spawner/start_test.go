package spawner_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/monopole/memoexec/spawner"
)

const timeOut = 2 * time.Second

func awaitResult(t *testing.T, h Handle) Result {
	t.Helper()
	select {
	case res := <-h.Done():
		return res
	case <-time.After(timeOut):
		t.Fatal("no terminal event")
		return Result{}
	}
}

func TestStartCleanExit(t *testing.T) {
	h, err := Start(&Params{}, "true")
	require.NoError(t, err)
	res := awaitResult(t, h)
	assert.NoError(t, res.Err)
	assert.Equal(t, 0, res.Code)
}

func TestStartNonZeroExit(t *testing.T) {
	h, err := Start(&Params{}, "exit 77")
	require.NoError(t, err)
	res := awaitResult(t, h)
	assert.NoError(t, res.Err)
	assert.Equal(t, 77, res.Code)
}

func TestStartBadParams(t *testing.T) {
	_, err := Start(&Params{Shell: "/no/such/shell"}, "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
}

func TestStartWorkingDir(t *testing.T) {
	h, err := Start(&Params{WorkingDir: "/tmp"}, `test "$(pwd)" = /tmp`)
	require.NoError(t, err)
	res := awaitResult(t, h)
	assert.Equal(t, 0, res.Code)
}

func TestStartExtraEnv(t *testing.T) {
	h, err := Start(
		&Params{ExtraEnv: []string{"SPAWNER_PROBE=42"}},
		`test "$SPAWNER_PROBE" = 42`)
	require.NoError(t, err)
	res := awaitResult(t, h)
	assert.Equal(t, 0, res.Code)
}

func TestKillOutstandingProcess(t *testing.T) {
	h, err := Start(&Params{}, "sleep 60")
	require.NoError(t, err)
	h.Kill()
	res := awaitResult(t, h)
	// Killed by signal, so no clean exit code.
	assert.Equal(t, -1, res.Code)
}

func TestKillIdempotent(t *testing.T) {
	h, err := Start(&Params{}, "true")
	require.NoError(t, err)
	res := awaitResult(t, h)
	assert.Equal(t, 0, res.Code)
	// Killing an exited process must be a harmless no-op.
	h.Kill()
	h.Kill()
}
