// Package loader reads test suites from files.
//
// A suite file holds the request body of the execution engine, either in JSON
// or in YAML. YAML documents are converted to JSON before being decoded, so
// both go through the same shape checks.
package loader

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/sctester/scenario"
	"github.com/sctester/scenario/action"
	"github.com/sctester/scenario/serde"
	"github.com/sctester/scenario/suite"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// Loader decodes the suite files using a serde context.
type Loader struct {
	ctx     serde.Context
	factory suite.Factory
}

// NewLoader returns a loader that decodes the suites with the context. The
// context must use the JSON format.
func NewLoader(ctx serde.Context) Loader {
	return Loader{
		ctx:     ctx,
		factory: suite.NewFactory(),
	}
}

// Load reads the file and returns its suite. The format is chosen from the
// extension of the file.
func (l Loader) Load(path string) (suite.TestSuite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return suite.TestSuite{}, xerrors.Errorf("failed to read file: %v", err)
	}

	s, err := l.Decode(filepath.Ext(path), data)
	if err != nil {
		return suite.TestSuite{}, xerrors.Errorf("file '%s': %w", path, err)
	}

	scenario.Logger.Info().
		Str("path", path).
		Int("actions", s.Len()).
		Msg("suite loaded")

	return s, nil
}

// Decode returns the suite of the data according to the extension, which is
// one of .json, .yaml or .yml.
func (l Loader) Decode(ext string, data []byte) (suite.TestSuite, error) {
	switch strings.ToLower(ext) {
	case ".json":
	case ".yaml", ".yml":
		var err error

		data, err = yamlToJSON(data)
		if err != nil {
			return suite.TestSuite{}, xerrors.Errorf("invalid YAML: %w", err)
		}
	default:
		return suite.TestSuite{}, xerrors.Errorf("unsupported extension '%s'", ext)
	}

	s, err := l.factory.SuiteOf(l.ctx, data)
	if err != nil {
		return suite.TestSuite{}, xerrors.Errorf("failed to decode suite: %w", err)
	}

	return s, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	value, err := convert(doc)
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(value)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return out, nil
}

// convert turns the maps of a YAML document into maps with string keys.
func convert(v interface{}) (interface{}, error) {
	switch in := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(in))

		for key, value := range in {
			k, ok := key.(string)
			if !ok {
				return nil, xerrors.Errorf("key '%v' is not a string: %w",
					key, action.ErrShapeMismatch)
			}

			item, err := convert(value)
			if err != nil {
				return nil, err
			}

			out[k] = item
		}

		return out, nil
	case []interface{}:
		out := make([]interface{}, len(in))

		for i, value := range in {
			item, err := convert(value)
			if err != nil {
				return nil, err
			}

			out[i] = item
		}

		return out, nil
	case float64:
		// YAML floats like .inf have no JSON representation.
		if math.IsNaN(in) || math.IsInf(in, 0) {
			return nil, xerrors.Errorf("number '%v' has no JSON form: %w",
				in, action.ErrShapeMismatch)
		}

		return in, nil
	default:
		return v, nil
	}
}
