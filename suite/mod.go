// Package suite defines the test suite, the unit submitted to the execution
// engine, and the results the engine reports for it.
//
// A suite is an ordered list of actions with an optional protocol pin. Every
// action observes the state changes of the actions before it, so the order is
// preserved from the construction to the wire.
package suite

import (
	"crypto/sha256"
	"io"

	"github.com/gowebpki/jcs"
	"github.com/sctester/scenario/action"
	"github.com/sctester/scenario/serde"
	"github.com/sctester/scenario/serde/registry"
	"golang.org/x/xerrors"
)

var suiteFormats = registry.NewSimpleRegistry("suite")

// RegisterSuiteFormat registers the engine for the provided format.
func RegisterSuiteFormat(f serde.Format, e serde.FormatEngine) {
	suiteFormats.Register(f, e)
}

// ActionKey is the key of the action factory in the serde context.
type ActionKey struct{}

// ActionFactory is the interface of the factory used to decode the actions of
// a suite.
type ActionFactory interface {
	serde.Factory

	ActionOf(ctx serde.Context, data []byte) (action.Action, error)
}

// TestSuite is an ordered sequence of actions with an optional protocol.
//
// - implements serde.Message
type TestSuite struct {
	protocol string
	actions  []action.Action
}

// Option is the type of options to create a test suite.
type Option func(*TestSuite)

// WithProtocol is an option to pin the protocol the suite runs against.
func WithProtocol(protocol string) Option {
	return func(s *TestSuite) {
		s.protocol = protocol
	}
}

// WithActions is an option to append actions to the suite, in order.
func WithActions(actions ...action.Action) Option {
	return func(s *TestSuite) {
		s.actions = append(s.actions, actions...)
	}
}

// NewTestSuite creates a new test suite from the options.
func NewTestSuite(opts ...Option) TestSuite {
	s := TestSuite{
		actions: []action.Action{},
	}

	for _, opt := range opts {
		opt(&s)
	}

	return s
}

// GetProtocol returns the protocol of the suite, or an empty string when the
// engine is free to choose.
func (s TestSuite) GetProtocol() string {
	return s.protocol
}

// GetActions returns a copy of the actions in order.
func (s TestSuite) GetActions() []action.Action {
	actions := make([]action.Action, len(s.actions))
	copy(actions, s.actions)

	return actions
}

// Len returns the number of actions.
func (s TestSuite) Len() int {
	return len(s.actions)
}

// Append returns a new suite with the actions appended. The receiver is left
// unchanged.
func (s TestSuite) Append(actions ...action.Action) TestSuite {
	next := TestSuite{
		protocol: s.protocol,
		actions:  make([]action.Action, 0, len(s.actions)+len(actions)),
	}

	next.actions = append(next.actions, s.actions...)
	next.actions = append(next.actions, actions...)

	return next
}

// Serialize implements serde.Message. It returns the serialized data of the
// suite.
func (s TestSuite) Serialize(ctx serde.Context) ([]byte, error) {
	format := suiteFormats.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, s)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode: %w", err)
	}

	return data, nil
}

// Fingerprint writes the canonical JSON form (RFC 8785) of the suite. Two
// suites with the same content have the same fingerprint regardless of the key
// order of their structured data. Numbers are written as doubles, which is
// exact because a built action never holds a level beyond action.MaxLevel.
func (s TestSuite) Fingerprint(ctx serde.Context, w io.Writer) error {
	if ctx.GetFormat() != serde.FormatJSON {
		return xerrors.Errorf("fingerprint needs the JSON format but got '%s'", ctx.GetFormat())
	}

	data, err := s.Serialize(ctx)
	if err != nil {
		return xerrors.Errorf("failed to serialize: %w", err)
	}

	canonical, err := jcs.Transform(data)
	if err != nil {
		return xerrors.Errorf("failed to canonicalize: %v", err)
	}

	_, err = w.Write(canonical)
	if err != nil {
		return xerrors.Errorf("couldn't write: %v", err)
	}

	return nil
}

// Digest returns the SHA-256 of the fingerprint of the suite.
func Digest(ctx serde.Context, s TestSuite) ([]byte, error) {
	h := sha256.New()

	err := s.Fingerprint(ctx, h)
	if err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}

// Factory is the factory to deserialize test suites.
//
// - implements serde.Factory
type Factory struct {
	actionFac ActionFactory
}

// NewFactory returns a suite factory that decodes the actions with the default
// action factory.
func NewFactory() Factory {
	return Factory{
		actionFac: action.NewFactory(),
	}
}

// NewFactoryWithActions returns a suite factory that decodes the actions with
// the given factory.
func NewFactoryWithActions(f ActionFactory) Factory {
	return Factory{
		actionFac: f,
	}
}

// Deserialize implements serde.Factory. It populates the suite from the data
// if appropriate, otherwise it returns an error.
func (f Factory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	return f.SuiteOf(ctx, data)
}

// SuiteOf returns the test suite of the data if appropriate, otherwise it
// returns an error.
func (f Factory) SuiteOf(ctx serde.Context, data []byte) (TestSuite, error) {
	format := suiteFormats.Get(ctx.GetFormat())

	ctx = serde.WithFactory(ctx, ActionKey{}, f.actionFac)

	msg, err := format.Decode(ctx, data)
	if err != nil {
		return TestSuite{}, xerrors.Errorf("failed to decode: %w", err)
	}

	s, ok := msg.(TestSuite)
	if !ok {
		return TestSuite{}, xerrors.Errorf("invalid suite of type '%T'", msg)
	}

	return s, nil
}
