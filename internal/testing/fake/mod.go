// Package fake provides the fake implementations shared by the tests of the
// module.
package fake

import (
	"encoding/json"

	"github.com/sctester/scenario/serde"
	"golang.org/x/xerrors"
)

const fakeErrorMessage = "fake error"

// GetError returns the fake error.
func GetError() error {
	return xerrors.New(fakeErrorMessage)
}

// Err returns the error message followed by the fake error message.
func Err(msg string) string {
	return msg + ": " + fakeErrorMessage
}

// Message is a fake implementation of a serde message.
//
// - implements serde.Message
type Message struct {
	Digest []byte
}

// Serialize implements serde.Message. It returns the JSON of an empty object.
func (m Message) Serialize(serde.Context) ([]byte, error) {
	return []byte("{}"), nil
}

// MessageFactory is a fake implementation of a serde factory.
//
// - implements serde.Factory
type MessageFactory struct {
	err error
}

// NewBadMessageFactory returns a factory that always fails.
func NewBadMessageFactory() MessageFactory {
	return MessageFactory{err: GetError()}
}

// Deserialize implements serde.Factory. It returns a fake message or the
// error of the factory.
func (f MessageFactory) Deserialize(serde.Context, []byte) (serde.Message, error) {
	return Message{}, f.err
}

// Format is a fake format engine.
//
// - implements serde.FormatEngine
type Format struct {
	Msg  serde.Message
	Call *Call
	err  error
}

// NewBadFormat returns a format engine that fails every request.
func NewBadFormat() Format {
	return Format{err: GetError()}
}

// Encode implements serde.FormatEngine. It records the call and returns fake
// data or the error.
func (f Format) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	if f.Call != nil {
		f.Call.Add(ctx, msg)
	}

	if f.err != nil {
		return nil, f.err
	}

	return []byte("fake format"), nil
}

// Decode implements serde.FormatEngine. It records the call and returns the
// message or the error.
func (f Format) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	if f.Call != nil {
		f.Call.Add(ctx, data)
	}

	if f.err != nil {
		return nil, f.err
	}

	return f.Msg, nil
}

// Call is a tool to keep track of the calls of a fake.
type Call struct {
	calls [][]interface{}
}

// Get returns the nth argument of the ith call.
func (c *Call) Get(i, n int) interface{} {
	return c.calls[i][n]
}

// Len returns the number of calls.
func (c *Call) Len() int {
	return len(c.calls)
}

// Add records a call with its arguments.
func (c *Call) Add(args ...interface{}) {
	c.calls = append(c.calls, args)
}

// ContextEngine is a fake JSON context engine.
//
// - implements serde.ContextEngine
type ContextEngine struct {
	Format serde.Format
	err    error
}

// NewContext returns a JSON context without any factory.
func NewContext() serde.Context {
	return serde.NewContext(ContextEngine{Format: serde.FormatJSON})
}

// NewContextWithFormat returns a context with a specific format.
func NewContextWithFormat(f serde.Format) serde.Context {
	return serde.NewContext(ContextEngine{Format: f})
}

// NewBadContext returns a context that fails to marshal and unmarshal.
func NewBadContext() serde.Context {
	return serde.NewContext(ContextEngine{Format: serde.FormatJSON, err: GetError()})
}

// GetFormat implements serde.ContextEngine.
func (ctx ContextEngine) GetFormat() serde.Format {
	return ctx.Format
}

// Marshal implements serde.ContextEngine.
func (ctx ContextEngine) Marshal(m interface{}) ([]byte, error) {
	if ctx.err != nil {
		return nil, ctx.err
	}

	return json.Marshal(m)
}

// Unmarshal implements serde.ContextEngine.
func (ctx ContextEngine) Unmarshal(data []byte, m interface{}) error {
	if ctx.err != nil {
		return ctx.err
	}

	return json.Unmarshal(data, m)
}
