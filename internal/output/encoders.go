package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rgehrsitz/fincalc/internal/calculator"
	"gopkg.in/yaml.v3"
)

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

func (jf *JSONFormatter) Name() string { return "json" }

func (jf *JSONFormatter) Format(result *calculator.Result) ([]byte, error) {
	return marshalJSON(result, jf.Pretty)
}

// marshalJSON encodes results and comparison sets alike
func marshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// YAMLFormatter formats results as YAML
type YAMLFormatter struct{}

func (yf *YAMLFormatter) Name() string { return "yaml" }

func (yf *YAMLFormatter) Format(result *calculator.Result) ([]byte, error) {
	return marshalYAML(result)
}

func marshalYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CSVFormatter writes the summary as metric,value rows followed by every
// table, each introduced by its title
type CSVFormatter struct{}

func (cf *CSVFormatter) Name() string { return "csv" }

func (cf *CSVFormatter) Format(result *calculator.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("result cannot be nil")
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write([]string{"metric", "value"}); err != nil {
		return nil, err
	}
	for _, m := range result.Summary {
		if err := w.Write([]string{m.Name, m.Value.String()}); err != nil {
			return nil, err
		}
	}
	for _, k := range result.NoteKeys() {
		if err := w.Write([]string{k, result.Notes[k]}); err != nil {
			return nil, err
		}
	}

	for _, t := range result.Tables {
		header, rows := columnValues(t)
		if err := w.Write([]string{}); err != nil {
			return nil, err
		}
		if err := w.Write([]string{"# " + t.Title}); err != nil {
			return nil, err
		}
		if err := w.Write(header); err != nil {
			return nil, err
		}
		if err := w.WriteAll(rows); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
