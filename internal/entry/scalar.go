package entry

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Scalar holds a source value that may be a number or a string, or be absent.
// The value is kept in stringified form; numbers are formatted without
// trailing zeros so 4 and 4.0 both read "4".
type Scalar struct {
	text    string
	numeric bool
	present bool
}

// Num returns a numeric Scalar.
func Num(f float64) Scalar {
	return Scalar{text: formatNumber(f), numeric: true, present: true}
}

// Str returns a string Scalar.
func Str(s string) Scalar {
	return Scalar{text: s, present: true}
}

// String returns the stringified value, or "" when absent.
func (s Scalar) String() string { return s.text }

// Present reports whether the source record carried the field.
func (s Scalar) Present() bool { return s.present }

// IsNumber reports whether the source value was numeric.
func (s Scalar) IsNumber() bool { return s.numeric }

// Or returns the stringified value, or fallback when absent or blank.
func (s Scalar) Or(fallback string) string {
	if !s.present || s.text == "" {
		return fallback
	}
	return s.text
}

// formatNumber prints the shortest plain decimal that round-trips. Exponent
// form is never used: 1e21 prints all 22 digits and 1e-7 prints 0.0000001.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = Scalar{}
	case data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Str(str)
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*s = Str(string(data))
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("scalar: unsupported value %s", data)
		}
		*s = Num(f)
	}
	return nil
}

// MarshalJSON writes numbers as numbers, strings as strings and absent values as null.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if !s.present {
		return []byte("null"), nil
	}
	if s.numeric {
		return []byte(s.text), nil
	}
	return json.Marshal(s.text)
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML datasets.
func (s *Scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("scalar: line %d: expected a scalar value", node.Line)
	}
	switch node.Tag {
	case "!!null":
		*s = Scalar{}
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			// 0x1F, 0o17 and friends: keep the literal.
			*s = Str(node.Value)
			return nil
		}
		*s = Num(f)
	default:
		*s = Str(node.Value)
	}
	return nil
}
