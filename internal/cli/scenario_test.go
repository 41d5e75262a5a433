package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: smoke
description: the leader opens planning
users:
  - name: ada
flow:
  - user: ada
    tick: 1
    op: start_game
    expect: committed
assertions:
  - type: phase
    phase: PLANNING
`

const failingScenario = `
name: wrong-phase
description: expects a phase the flow never reaches
users:
  - name: ada
flow:
  - user: ada
    tick: 1
    op: start_game
    expect: committed
assertions:
  - type: phase
    phase: SPRINT
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestScenarioPass(t *testing.T) {
	out, err := execute(t, "scenario", writeScenario(t, passingScenario))
	require.NoError(t, err)
	assert.Contains(t, out, "PASS smoke")
}

func TestScenarioFailureSetsExitCode(t *testing.T) {
	out, err := execute(t, "scenario", writeScenario(t, failingScenario))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL wrong-phase")
}

func TestScenarioUnreadableFile(t *testing.T) {
	_, err := execute(t, "scenario", filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
