package json

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sctester/scenario/action"
	"golang.org/x/xerrors"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaURL = "https://schemas.sctester.dev/action/%s.json"

// schemaSet holds the compiled JSON Schema of the payload of each kind.
type schemaSet map[action.Kind]*jsonschema.Schema

// loadSchemas compiles the embedded schemas. It fails if a kind of the
// taxonomy has no schema.
func loadSchemas() (schemaSet, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	set := make(schemaSet)

	for _, kind := range action.Kinds() {
		raw, err := schemaFS.ReadFile(fmt.Sprintf("schemas/%s.json", kind))
		if err != nil {
			return nil, xerrors.Errorf("failed to read schema of '%s': %v", kind, err)
		}

		url := fmt.Sprintf(schemaURL, kind)

		err = compiler.AddResource(url, bytes.NewReader(raw))
		if err != nil {
			return nil, xerrors.Errorf("failed to load schema of '%s': %v", kind, err)
		}

		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, xerrors.Errorf("failed to compile schema of '%s': %v", kind, err)
		}

		set[kind] = schema
	}

	return set, nil
}

// check validates the payload against the schema of the kind. The error wraps
// action.ErrShapeMismatch and lists every location that failed.
func (s schemaSet) check(kind action.Kind, payload []byte) error {
	schema := s[kind]
	if schema == nil {
		return xerrors.Errorf("no schema for kind '%s': %w", kind, action.ErrUnknownKind)
	}

	var doc interface{}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	err := dec.Decode(&doc)
	if err != nil {
		return xerrors.Errorf("payload of kind '%s' is not valid JSON: %w",
			kind, action.ErrShapeMismatch)
	}

	err = schema.Validate(doc)
	if err != nil {
		return xerrors.Errorf("payload of kind '%s' is invalid [%s]: %w",
			kind, describe(err), action.ErrShapeMismatch)
	}

	return nil
}

// describe returns the leaf causes of a validation error, one per location.
func describe(err error) string {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}

	var leaves []string
	collectLeaves(verr, &leaves)

	return strings.Join(leaves, "; ")
}

func collectLeaves(verr *jsonschema.ValidationError, leaves *[]string) {
	if len(verr.Causes) == 0 {
		location := verr.InstanceLocation
		if location == "" {
			location = "/"
		}

		*leaves = append(*leaves, fmt.Sprintf("%s: %s", location, verr.Message))
		return
	}

	for _, cause := range verr.Causes {
		collectLeaves(cause, leaves)
	}
}
