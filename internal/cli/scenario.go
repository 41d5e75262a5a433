package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"sprintline/internal/harness"
)

// ScenarioOptions holds flags for the scenario command.
type ScenarioOptions struct {
	*RootOptions
}

// ScenarioResult holds one scenario's outcome.
type ScenarioResult struct {
	Name   string `json:"name"`
	File   string `json:"file"`
	Passed bool   `json:"passed"`
	Error  string `json:"error,omitempty"`
	Steps  int    `json:"steps"`
}

// ScenarioRunResult holds the outcome of one invocation.
type ScenarioRunResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Total     int              `json:"total"`
	Failed    int              `json:"failed"`
}

// NewScenarioCommand creates the scenario command.
func NewScenarioCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScenarioOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scenario <file>...",
		Short: "Run conformance scenarios against the engine",
		Long: `Run one or more YAML scenarios against the resolution engine and
report each step outcome and final-state assertion.

Exit codes:
  0 - all scenarios passed
  1 - a scenario failed (wrong outcome or assertion)
  2 - command error (unreadable or invalid scenario file)

Examples:
  sprintline scenario internal/harness/testdata/scenarios/token_cap.yml
  sprintline scenario scenarios/*.yml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, cmd, args)
		},
	}
	return cmd
}

func runScenarios(opts *ScenarioOptions, cmd *cobra.Command, paths []string) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	result := ScenarioRunResult{Total: len(paths)}
	for _, path := range paths {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("load %s", path), err)
		}

		out.VerboseLog("running %s (%s)", scenario.Name, path)
		sr := ScenarioResult{Name: scenario.Name, File: filepath.Clean(path), Passed: true}
		run, err := harness.Run(scenario)
		if err != nil {
			sr.Passed = false
			sr.Error = err.Error()
			result.Failed++
		}
		if run != nil {
			sr.Steps = len(run.Trace)
		}
		result.Scenarios = append(result.Scenarios, sr)
	}

	if opts.Format == "json" {
		if err := out.Success(result); err != nil {
			return err
		}
	} else {
		for _, sr := range result.Scenarios {
			if sr.Passed {
				fmt.Fprintf(cmd.OutOrStdout(), "PASS %s (%d steps)\n", sr.Name, sr.Steps)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %s\n", sr.Name, sr.Error)
			}
		}
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}
