package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	reflectschema "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// argSchema is the input schema of one tool: the document advertised to
// clients and its compiled form used to validate every call.
type argSchema struct {
	document map[string]any
	compiled *jsonschema.Schema
}

var argReflector = &reflectschema.Reflector{
	DoNotReference: true,
	ExpandedStruct: true,
	Anonymous:      true,
}

// reflectArgs derives the schema of In from its json and jsonschema tags.
// Fields without omitempty are required.
func reflectArgs[In any](tool string) (*argSchema, error) {
	var zero In
	reflected := argReflector.Reflect(&zero)
	data, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("marshal %s schema: %w", tool, err)
	}

	compiled, err := jsonschema.CompileString(tool+".json", string(data))
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", tool, err)
	}

	var document map[string]any
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("decode %s schema: %w", tool, err)
	}
	delete(document, "$schema")
	if _, ok := document["properties"]; !ok {
		document["properties"] = map[string]any{}
	}
	return &argSchema{document: document, compiled: compiled}, nil
}

// decode validates raw against the schema and unmarshals it over the
// defaults. Missing or null arguments are treated as an empty object.
func (s *argSchema) decode(raw json.RawMessage, into any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}

	var doc any
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return err
	}
	if err := s.compiled.Validate(doc); err != nil {
		return errors.New(describeValidation(err))
	}
	return json.Unmarshal(trimmed, into)
}

// describeValidation flattens a validation error tree into its leaf messages.
func describeValidation(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	var msgs []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msgs = append(msgs, loc+": "+e.Message)
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return strings.Join(msgs, "; ")
}
