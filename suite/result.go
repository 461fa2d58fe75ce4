package suite

import (
	"github.com/sctester/scenario/action"
	"github.com/sctester/scenario/serde"
	"golang.org/x/xerrors"
)

// Status is the outcome of an action reported by the engine.
type Status string

const (
	// Success means the action has been applied as expected.
	Success Status = "success"
	// Failure means the action failed or its assertion did not hold.
	Failure Status = "failure"
)

// ParseStatus returns the status of the string, or an error if it is neither
// success nor failure.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case Success, Failure:
		return Status(s), nil
	default:
		return "", xerrors.Errorf("invalid status '%s'", s)
	}
}

// ActionResult is the outcome reported by the engine for one action. The
// engine has reported the originating action either whole or as its payload,
// so it is kept as opaque data; the kind is what identifies it.
type ActionResult struct {
	status Status
	kind   action.Kind
	action action.Data
	result map[string]interface{}
}

// ResultOption is the type of options to create a result.
type ResultOption func(*ActionResult)

// WithAction is an option to set the action reported by the engine.
func WithAction(data action.Data) ResultOption {
	return func(r *ActionResult) {
		r.action = data
	}
}

// WithResult is an option to set the outcome data reported by the engine.
func WithResult(result map[string]interface{}) ResultOption {
	return func(r *ActionResult) {
		r.result = result
	}
}

// NewActionResult creates a result. It fails if the status or the kind is not
// known.
func NewActionResult(status Status, kind action.Kind, opts ...ResultOption) (ActionResult, error) {
	_, err := ParseStatus(string(status))
	if err != nil {
		return ActionResult{}, err
	}

	if !kind.Valid() {
		return ActionResult{}, xerrors.Errorf("invalid kind '%s': %w", kind, action.ErrUnknownKind)
	}

	r := ActionResult{
		status: status,
		kind:   kind,
	}

	for _, opt := range opts {
		opt(&r)
	}

	return r, nil
}

// GetStatus returns the status of the result.
func (r ActionResult) GetStatus() Status {
	return r.status
}

// GetKind returns the kind of the action that produced the result.
func (r ActionResult) GetKind() action.Kind {
	return r.kind
}

// GetAction returns the action as reported by the engine, if any.
func (r ActionResult) GetAction() action.Data {
	return r.action
}

// GetResult returns the outcome data reported by the engine.
func (r ActionResult) GetResult() map[string]interface{} {
	return r.result
}

// Succeeded returns true if the status is success.
func (r ActionResult) Succeeded() bool {
	return r.status == Success
}

// Results is the ordered list of results of a suite.
//
// - implements serde.Message
type Results []ActionResult

// Serialize implements serde.Message. It returns the serialized data of the
// results.
func (r Results) Serialize(ctx serde.Context) ([]byte, error) {
	format := suiteFormats.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, r)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode: %w", err)
	}

	return data, nil
}

// ResultsFactory is the factory to deserialize the results of a suite.
//
// - implements serde.Factory
type ResultsFactory struct{}

// NewResultsFactory returns a new results factory.
func NewResultsFactory() ResultsFactory {
	return ResultsFactory{}
}

// Deserialize implements serde.Factory. It populates the results from the data
// if appropriate, otherwise it returns an error.
func (f ResultsFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	return f.ResultsOf(ctx, data)
}

// ResultsOf returns the results of the data if appropriate, otherwise it
// returns an error.
func (f ResultsFactory) ResultsOf(ctx serde.Context, data []byte) (Results, error) {
	format := suiteFormats.Get(ctx.GetFormat())

	msg, err := format.Decode(ctx, data)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode: %w", err)
	}

	results, ok := msg.(Results)
	if !ok {
		return nil, xerrors.Errorf("invalid results of type '%T'", msg)
	}

	return results, nil
}
