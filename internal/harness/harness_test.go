package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name))
	require.NoError(t, err)
	return s
}

func TestScenarioGoldenTraces(t *testing.T) {
	entries, err := os.ReadDir(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		entry := entry
		t.Run(entry.Name(), func(t *testing.T) {
			s := loadTestScenario(t, entry.Name())
			require.NoError(t, RunWithGolden(t, s))
		})
	}
}

func TestRunChecksStepExpectations(t *testing.T) {
	s := loadTestScenario(t, "token_cap.yml")
	// The scenario expects the final spend to be rejected; flipping the
	// expectation must fail the run.
	s.Flow[len(s.Flow)-1].Expect = ExpectCommitted

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected committed, got rejected")
}

func TestRunChecksAssertions(t *testing.T) {
	s := loadTestScenario(t, "sprint_cycle.yml")
	s.Assertions = []Assertion{{Type: AssertSprintCount, Value: 7}}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sprint_count")
}

func TestRunTraceRecordsInvalidations(t *testing.T) {
	s := loadTestScenario(t, "cascade.yml")
	result, err := Run(s)
	require.NoError(t, err)

	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, ExpectCommitted, last.Outcome)
	assert.Equal(t, []int64{3, 4}, last.Invalidated)
	assert.Equal(t, "SPRINT", result.Final.Phase)
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: bad
description: typo in a field name
users:
  - name: ada
flows:
  - user: ada
`), 0o644))

	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestLoadScenarioValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing users", "name: x\ndescription: d\nflow:\n  - {user: a, op: o, expect: committed}\nassertions:\n  - {type: phase, phase: WAITING}\n"},
		{"unknown flow user", "name: x\ndescription: d\nusers:\n  - {name: ada}\nflow:\n  - {user: ghost, op: o, expect: committed}\nassertions:\n  - {type: phase, phase: WAITING}\n"},
		{"bad expect", "name: x\ndescription: d\nusers:\n  - {name: ada}\nflow:\n  - {user: ada, op: o, expect: maybe}\nassertions:\n  - {type: phase, phase: WAITING}\n"},
		{"rejected step with invalidates", "name: x\ndescription: d\nusers:\n  - {name: ada}\nflow:\n  - {user: ada, op: o, expect: rejected, invalidates: 1}\nassertions:\n  - {type: phase, phase: WAITING}\n"},
		{"bad assertion type", "name: x\ndescription: d\nusers:\n  - {name: ada}\nflow:\n  - {user: ada, op: o, expect: committed}\nassertions:\n  - {type: vibe}\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "s.yml")
			require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0o644))
			_, err := LoadScenario(path)
			assert.Error(t, err)
		})
	}
}
