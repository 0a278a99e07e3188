package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator checks update payloads against the JSON schema of a resource.
// Schemas are compiled on first use.
type Validator struct {
	schemas map[string]map[string]any

	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

func NewValidator() *Validator {
	return &Validator{
		schemas:  make(map[string]map[string]any),
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Register sets the schema of resource name.
func (v *Validator) Register(name string, schema map[string]any) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.schemas[name] = schema
	delete(v.compiled, name)
}

// Validate checks fields against the schema of resource name. The payload is
// normalized through JSON first so typed Go values validate like decoded
// request bodies.
func (v *Validator) Validate(name string, fields map[string]any) error {
	schema, err := v.schemaFor(name)
	if err != nil {
		return err
	}

	payload := map[string]any{}
	if fields != nil {
		data, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("%s: %w: %w", name, ErrInvalidPayload, err)
		}
		if err = json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("%s: %w: %w", name, ErrInvalidPayload, err)
		}
	}

	if err = schema.Validate(payload); err != nil {
		return fmt.Errorf("%s: %w: %w", name, ErrInvalidPayload, err)
	}

	return nil
}

func (v *Validator) schemaFor(name string) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[name]
	raw, known := v.schemas[name]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}

	if !known {
		return nil, fmt.Errorf("%w: no schema for '%s'", ErrUnknownResource, name)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("cannot marshal schema %s: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	url := name + ".json"
	if err = compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("cannot load schema %s: %w", name, err)
	}

	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("cannot compile schema %s: %w", name, err)
	}

	v.mu.Lock()
	v.compiled[name] = compiled
	v.mu.Unlock()

	return compiled, nil
}

// updateSchema builds an object schema accepting a non-empty subset of
// properties and nothing else.
func updateSchema(properties map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"minProperties":        1,
		"additionalProperties": false,
		"properties":           properties,
	}
}

var (
	_text    = map[string]any{"type": "string"}
	_url     = map[string]any{"type": "string", "maxLength": 2048}
	_number  = map[string]any{"type": "number", "minimum": 0}
	_integer = map[string]any{"type": "integer", "minimum": 0}
	_boolean = map[string]any{"type": "boolean"}
	_texts   = map[string]any{"type": "array", "items": _url}
)
