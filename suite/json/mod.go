// Package json implements the JSON format of the test suites and of the
// results reported by the execution engine.
package json

import (
	"bytes"
	"encoding/json"

	"github.com/sctester/scenario"
	"github.com/sctester/scenario/action"
	"github.com/sctester/scenario/serde"
	"github.com/sctester/scenario/suite"
	"github.com/tidwall/gjson"
	"golang.org/x/xerrors"
)

func init() {
	suite.RegisterSuiteFormat(serde.FormatJSON, suiteFormat{})
}

// TestSuiteJSON is the JSON message of a test suite.
type TestSuiteJSON struct {
	Protocol string            `json:"protocol,omitempty"`
	Actions  []json.RawMessage `json:"actions"`
}

// ActionResultJSON is the JSON message of the result of an action. Older
// engines only embed the action, in which case the kind is read from it.
type ActionResultJSON struct {
	Status string                 `json:"status"`
	Kind   string                 `json:"kind,omitempty"`
	Action json.RawMessage        `json:"action,omitempty"`
	Result map[string]interface{} `json:"result,omitempty"`
}

// suiteFormat is the JSON format engine of the suites and the results. A suite
// is encoded as an object and the results as an array.
//
// - implements serde.FormatEngine
type suiteFormat struct{}

// Encode implements serde.FormatEngine. It returns the JSON data of the suite
// or the results if appropriate, otherwise it returns an error.
func (f suiteFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	var m interface{}
	var err error

	switch in := msg.(type) {
	case suite.TestSuite:
		m, err = encodeSuite(ctx, in)
	case suite.Results:
		m = encodeResults(in)
	default:
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	if err != nil {
		return nil, err
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return data, nil
}

// Decode implements serde.FormatEngine. It returns the suite of a JSON object
// or the results of a JSON array.
func (f suiteFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	if !gjson.ValidBytes(data) {
		return nil, xerrors.Errorf("invalid JSON: %w", action.ErrShapeMismatch)
	}

	doc := gjson.ParseBytes(data)

	switch {
	case doc.IsObject():
		return decodeSuite(ctx, doc, data)
	case doc.IsArray():
		return decodeResults(ctx, data)
	default:
		return nil, xerrors.Errorf("expected an object or an array: %w", action.ErrShapeMismatch)
	}
}

func encodeSuite(ctx serde.Context, s suite.TestSuite) (TestSuiteJSON, error) {
	actions := s.GetActions()

	m := TestSuiteJSON{
		Protocol: s.GetProtocol(),
		Actions:  make([]json.RawMessage, len(actions)),
	}

	for i, act := range actions {
		raw, err := act.Serialize(ctx)
		if err != nil {
			return m, xerrors.Errorf("failed to serialize action #%d: %w", i, err)
		}

		m.Actions[i] = raw
	}

	return m, nil
}

func encodeResults(results suite.Results) []ActionResultJSON {
	m := make([]ActionResultJSON, len(results))

	for i, res := range results {
		m[i] = ActionResultJSON{
			Status: string(res.GetStatus()),
			Kind:   string(res.GetKind()),
			Action: json.RawMessage(res.GetAction()),
			Result: res.GetResult(),
		}
	}

	return m
}

func decodeSuite(ctx serde.Context, doc gjson.Result, data []byte) (suite.TestSuite, error) {
	if !doc.Get("actions").IsArray() {
		return suite.TestSuite{}, xerrors.Errorf("suite misses the 'actions' array: %w",
			action.ErrShapeMismatch)
	}

	protocol := doc.Get("protocol")
	if protocol.Exists() && protocol.Type != gjson.String {
		return suite.TestSuite{}, xerrors.Errorf("suite protocol must be a string: %w",
			action.ErrShapeMismatch)
	}

	m := TestSuiteJSON{}
	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return suite.TestSuite{}, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	fac := ctx.GetFactory(suite.ActionKey{})

	factory, ok := fac.(suite.ActionFactory)
	if !ok {
		return suite.TestSuite{}, xerrors.Errorf("invalid action factory '%T'", fac)
	}

	actions := make([]action.Action, len(m.Actions))

	for i, raw := range m.Actions {
		act, err := factory.ActionOf(ctx, raw)
		if err != nil {
			return suite.TestSuite{}, xerrors.Errorf("action #%d: %w", i, err)
		}

		actions[i] = act
	}

	s := suite.NewTestSuite(suite.WithProtocol(m.Protocol), suite.WithActions(actions...))

	scenario.Logger.Debug().
		Str("protocol", m.Protocol).
		Int("actions", s.Len()).
		Msg("suite decoded")

	return s, nil
}

func decodeResults(ctx serde.Context, data []byte) (suite.Results, error) {
	var m []ActionResultJSON

	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	results := make(suite.Results, len(m))

	for i, item := range m {
		res, err := decodeResult(item)
		if err != nil {
			return nil, xerrors.Errorf("result #%d: %w", i, err)
		}

		results[i] = res
	}

	return results, nil
}

func decodeResult(m ActionResultJSON) (suite.ActionResult, error) {
	status, err := suite.ParseStatus(m.Status)
	if err != nil {
		return suite.ActionResult{}, err
	}

	var opts []suite.ResultOption

	if len(m.Action) > 0 && !bytes.Equal(m.Action, []byte("null")) {
		data, err := action.ParseData(m.Action)
		if err != nil {
			return suite.ActionResult{}, xerrors.Errorf("invalid action: %w", err)
		}

		opts = append(opts, suite.WithAction(data))
	}

	if m.Result != nil {
		opts = append(opts, suite.WithResult(m.Result))
	}

	kind := m.Kind
	if kind == "" {
		kind = gjson.GetBytes(m.Action, "kind").String()
	}

	if kind == "" {
		return suite.ActionResult{}, xerrors.Errorf("result misses its kind: %w",
			action.ErrShapeMismatch)
	}

	k, err := action.ParseKind(kind)
	if err != nil {
		return suite.ActionResult{}, err
	}

	return suite.NewActionResult(status, k, opts...)
}
