package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/Calindra/solana-twitter/internal/ir"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// MarshalCanonical renders the snapshot as canonical JSON plus a trailing
// newline.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	data, err := ir.MarshalCanonical(map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList(s.Trace),
	})
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// traceList converts trace events to canonical-encodable data.
func traceList(trace []TraceEvent) []any {
	out := make([]any, len(trace))
	for i, event := range trace {
		m := map[string]any{
			"seq":         event.Seq,
			"signer":      event.Signer,
			"instruction": event.Instruction,
		}
		if len(event.Args) > 0 {
			m["args"] = event.Args
		}
		if event.Outcome != "" {
			m["outcome"] = event.Outcome
		}
		if event.ErrorCode != 0 {
			m["error_code"] = event.ErrorCode
		}
		if event.Rejected != "" {
			m["rejected"] = event.Rejected
		}
		if len(event.Result) > 0 {
			m["result"] = event.Result
		}
		out[i] = m
	}
	return out
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
	}
	traceJSON, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
