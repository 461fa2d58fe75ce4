// Package registry defines the format registry mechanism used by the message
// packages to look up the engine of a format.
//
// The default implementation never returns nil: an unknown format resolves to
// an engine that fails every request with a meaningful error.
package registry

import (
	"sort"

	"github.com/sctester/scenario"
	"github.com/sctester/scenario/serde"
	"golang.org/x/xerrors"
)

// Registry is an interface to register and get format engines for a specific
// format.
type Registry interface {
	// Register takes a format and its engine and it registers them so that the
	// engine can be looked up later.
	Register(serde.Format, serde.FormatEngine)

	// Get returns the engine associated with the format.
	Get(serde.Format) serde.FormatEngine
}

// SimpleRegistry is the default implementation of the Registry interface.
//
// - implements registry.Registry
type SimpleRegistry struct {
	name  string
	store map[serde.Format]serde.FormatEngine
}

// NewSimpleRegistry returns a new empty registry. The name is only used to
// identify the registry in the logs.
func NewSimpleRegistry(name string) *SimpleRegistry {
	return &SimpleRegistry{
		name:  name,
		store: make(map[serde.Format]serde.FormatEngine),
	}
}

// Register implements registry.Registry. It registers the engine for the given
// format, and replaces any previous one.
func (r *SimpleRegistry) Register(format serde.Format, engine serde.FormatEngine) {
	r.store[format] = engine

	scenario.Logger.Trace().
		Str("registry", r.name).
		Str("format", string(format)).
		Msg("format registered")
}

// Get implements registry.Registry. It returns the engine associated with the
// format if it exists, otherwise it returns an empty format.
func (r *SimpleRegistry) Get(format serde.Format) serde.FormatEngine {
	engine := r.store[format]
	if engine == nil {
		return emptyFormat{registry: r.name, format: format}
	}

	return engine
}

// Formats returns the sorted list of the registered formats.
func (r *SimpleRegistry) Formats() []serde.Format {
	formats := make([]serde.Format, 0, len(r.store))
	for format := range r.store {
		formats = append(formats, format)
	}

	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })

	return formats
}

// emptyFormat is returned for an unknown format so that serialization fails
// with an explicit error instead of a nil dereference.
//
// - implements serde.FormatEngine
type emptyFormat struct {
	registry string
	format   serde.Format
}

// Encode implements serde.FormatEngine. It always returns an error.
func (f emptyFormat) Encode(serde.Context, serde.Message) ([]byte, error) {
	return nil, xerrors.Errorf("format '%s' is not implemented for %s", f.format, f.registry)
}

// Decode implements serde.FormatEngine. It always returns an error.
func (f emptyFormat) Decode(serde.Context, []byte) (serde.Message, error) {
	return nil, xerrors.Errorf("format '%s' is not implemented for %s", f.format, f.registry)
}
