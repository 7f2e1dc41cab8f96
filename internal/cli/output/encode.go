package output

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"gopkg.in/yaml.v3"
)

// PrintJSON writes data as indented JSON.
func PrintJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// PrintJSONLines writes one compact JSON document per line until seq ends
// or yields an error. It returns the number of lines written.
func PrintJSONLines[T any](w io.Writer, seq iter.Seq2[T, error]) (int, error) {
	encoder := json.NewEncoder(w)
	n := 0
	for v, err := range seq {
		if err != nil {
			return n, err
		}
		if err := encoder.Encode(v); err != nil {
			return n, fmt.Errorf("encode line %d: %w", n+1, err)
		}
		n++
	}
	return n, nil
}

// PrintYAML writes data as YAML with two-space indentation.
func PrintYAML(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}
