package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmespath/go-jmespath"
	"github.com/studiowebux/restdeck/internal/types"
)

// Decode parses a JSON response body, applies the records expression and
// returns the selected array as records.
// An empty expression (or "@") selects the document root.
// Numbers are kept as json.Number so ids survive without float rounding.
func Decode(body []byte, expression string) ([]types.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var data interface{}
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	selected, err := Select(data, expression)
	if err != nil {
		return nil, err
	}

	items, ok := selected.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a JSON array of records, got %s", describe(selected))
	}

	records := make([]types.Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("record %d: expected an object, got %s", i, describe(item))
		}
		records = append(records, types.Record(obj))
	}

	return records, nil
}

// Select applies a JMESPath expression to already-decoded JSON data
func Select(data interface{}, expression string) (interface{}, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" || expression == "@" {
		return data, nil
	}

	// Compile the JMESPath expression
	jp, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}

	result, err := jp.Search(data)
	if err != nil {
		return nil, fmt.Errorf("JMESPath search failed: %w", err)
	}

	return result, nil
}

// Validate reports whether expression compiles
func Validate(expression string) error {
	expression = strings.TrimSpace(expression)
	if expression == "" || expression == "@" {
		return nil
	}
	if _, err := jmespath.Compile(expression); err != nil {
		return fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}
	return nil
}

func describe(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
