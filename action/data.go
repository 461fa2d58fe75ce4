package action

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
	"golang.org/x/xerrors"
)

// Data is an opaque structured value, like the code, the storage or the
// parameter of a contract. It holds a compact JSON document that is either an
// object or an array of objects. The SDK never interprets the content.
type Data []byte

// ParseData returns the structured data of the JSON document. It returns an
// error wrapping ErrShapeMismatch if the document is not an object or an array
// of objects.
func ParseData(raw []byte) (Data, error) {
	err := checkData(raw)
	if err != nil {
		return nil, err
	}

	buffer := new(bytes.Buffer)

	err = json.Compact(buffer, raw)
	if err != nil {
		return nil, xerrors.Errorf("failed to compact: %v", err)
	}

	return Data(buffer.Bytes()), nil
}

// checkData verifies that the document is an object or an array of objects.
func checkData(raw []byte) error {
	if !gjson.ValidBytes(raw) {
		return xerrors.Errorf("structured data is not valid JSON: %w", ErrShapeMismatch)
	}

	doc := gjson.ParseBytes(raw)

	switch {
	case doc.IsObject():
		return nil
	case doc.IsArray():
		index := 0
		var err error

		doc.ForEach(func(_, value gjson.Result) bool {
			if !value.IsObject() {
				err = xerrors.Errorf("structured data item #%d is not an object: %w",
					index, ErrShapeMismatch)
				return false
			}

			index++
			return true
		})

		return err
	default:
		return xerrors.Errorf("structured data must be an object or an array of objects: %w",
			ErrShapeMismatch)
	}
}

// NewData returns the structured data of a Go value by marshaling it in JSON.
func NewData(v interface{}) (Data, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return ParseData(raw)
}

// MustParseData is the same as ParseData but it panics on error. It is meant
// for literals in scenarios and tests.
func MustParseData(raw string) Data {
	data, err := ParseData([]byte(raw))
	if err != nil {
		panic(err)
	}

	return data
}

// IsZero returns true when no data is set.
func (d Data) IsZero() bool {
	return len(d) == 0
}

// Bytes returns a copy of the JSON document.
func (d Data) Bytes() []byte {
	if d == nil {
		return nil
	}

	res := make([]byte, len(d))
	copy(res, d)

	return res
}

// String implements fmt.Stringer. It returns the JSON document.
func (d Data) String() string {
	return string(d)
}
