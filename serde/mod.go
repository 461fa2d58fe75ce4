// Package serde defines the primitives to serialize and deserialize (serde)
// the messages exchanged with a scenario execution engine.
//
// A message package owns a registry of format engines, one per format. The
// engines live in sub-packages named after the format and register themselves
// when imported, so that the data model never depends on an encoding.
package serde

// Format is the identifier of a serialization format.
type Format string

const (
	// FormatJSON is the identifier of the JSON format.
	FormatJSON Format = "JSON"
)

// Message is the interface a data model implements to be serialized.
type Message interface {
	// Serialize returns the bytes of the message according to the format of
	// the context.
	Serialize(ctx Context) ([]byte, error)
}

// Factory is the interface a data model factory implements to instantiate a
// message from its serialized form.
type Factory interface {
	// Deserialize returns the message of the data according to the format of
	// the context.
	Deserialize(ctx Context, data []byte) (Message, error)
}

// FormatEngine is the interface of the engine that encodes and decodes the
// messages of a package for a specific format.
type FormatEngine interface {
	// Encode returns the bytes of the message for the format.
	Encode(ctx Context, message Message) ([]byte, error)

	// Decode returns the message of the data for the format.
	Decode(ctx Context, data []byte) (Message, error)
}
