// Package schema validates documents against a JSON Schema before they are
// canonicalized.
package schema

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alapierre/sortjson/pkg/logging"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

var logger = logging.Component("pkg/schema")

type Validator struct {
	location string
	schema   *jsonschema.Schema
}

// Compile loads the schema at path. $ref to sibling files is resolved
// relative to it.
func Compile(path string) (*Validator, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return CompileBytes(abs, data)
}

// CompileBytes compiles an in-memory schema registered under location.
func CompileBytes(location string, data []byte) (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", location, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(location, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema %s: %w", location, err)
	}
	sch, err := c.Compile(location)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", location, err)
	}
	logger.Debugf("Compiled schema %s", location)
	return &Validator{location: location, schema: sch}, nil
}

// Validate checks a raw JSON document. Numbers are decoded as json.Number so
// large or precise literals are validated as written.
func (v *Validator) Validate(doc []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}
	if err := v.schema.Validate(inst); err != nil {
		return fmt.Errorf("document does not match schema %s: %w", v.location, err)
	}
	return nil
}
