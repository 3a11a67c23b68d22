package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/titanous/json5"
)

// FromJSON5 converts a JSON5 document (comments, trailing commas, unquoted
// keys, single quoted strings, ...) into plain JSON. Number literals that are
// already valid JSON are kept as written, others are rewritten in decimal.
// Key order and formatting of the result are not preserved.
func FromJSON5(data []byte) ([]byte, error) {
	dec := json5.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to parse JSON5: %w", err)
	}
	v, err := toJSON(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func toJSON(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, item := range t {
			conv, err := toJSON(item)
			if err != nil {
				return nil, err
			}
			t[k] = conv
		}
		return t, nil
	case []interface{}:
		for i, item := range t {
			conv, err := toJSON(item)
			if err != nil {
				return nil, err
			}
			t[i] = conv
		}
		return t, nil
	case json5.Number:
		return jsonNumber(t)
	case float64:
		// Infinity and NaN literals
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("number %v cannot be represented in JSON", t)
		}
	}
	return v, nil
}

func jsonNumber(n json5.Number) (json.Number, error) {
	s := string(n)
	if json.Valid([]byte(s)) {
		return json.Number(s), nil
	}
	lower := strings.ToLower(strings.TrimLeft(s, "+-"))
	if strings.HasPrefix(lower, "0x") {
		i, err := n.Int64()
		if err != nil {
			return "", fmt.Errorf("number %s out of range: %w", s, err)
		}
		return json.Number(strconv.FormatInt(i, 10)), nil
	}
	f, err := n.Float64()
	if err != nil {
		return "", fmt.Errorf("invalid number %s: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("number %s cannot be represented in JSON", s)
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
}
