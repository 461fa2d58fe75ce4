package suite

import (
	"github.com/sctester/scenario/action"
	"golang.org/x/xerrors"
)

// ErrCorrelation is returned when the results cannot be paired with the
// actions of a suite.
var ErrCorrelation = xerrors.New("results do not match the suite")

// Outcome pairs an action of a suite with its result.
type Outcome struct {
	Index  int
	Action action.Action
	Result ActionResult
}

// Succeeded returns true if the engine reported a success for the action.
func (o Outcome) Succeeded() bool {
	return o.Result.Succeeded()
}

// Report is the correlation of a suite with its results.
type Report struct {
	outcomes []Outcome
	passed   int
	failed   int
}

// Correlate pairs the results with the actions of the suite by position. The
// kind is the only identifier that holds across the versions of the engine, so
// it must match at every position, and there must be exactly one result per
// action.
func Correlate(s TestSuite, results Results) (Report, error) {
	if len(results) != s.Len() {
		return Report{}, xerrors.Errorf("got %d result(s) for %d action(s): %w",
			len(results), s.Len(), ErrCorrelation)
	}

	report := Report{
		outcomes: make([]Outcome, len(results)),
	}

	for i, act := range s.actions {
		res := results[i]

		if res.GetKind() != act.GetKind() {
			return Report{}, xerrors.Errorf("result #%d is of kind '%s' but action is '%s': %w",
				i, res.GetKind(), act.GetKind(), ErrCorrelation)
		}

		report.outcomes[i] = Outcome{
			Index:  i,
			Action: act,
			Result: res,
		}

		if res.Succeeded() {
			report.passed++
		} else {
			report.failed++
		}
	}

	return report, nil
}

// GetOutcomes returns the outcomes in the order of the suite.
func (r Report) GetOutcomes() []Outcome {
	outcomes := make([]Outcome, len(r.outcomes))
	copy(outcomes, r.outcomes)

	return outcomes
}

// Passed returns the number of actions reported as successful.
func (r Report) Passed() int {
	return r.passed
}

// Failed returns the number of actions reported as failed.
func (r Report) Failed() int {
	return r.failed
}

// Succeeded returns true when every action succeeded.
func (r Report) Succeeded() bool {
	return r.failed == 0
}
