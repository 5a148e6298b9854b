// Package validator checks JSON payloads against the report schemas.
package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"albayan/internal/domain"
)

// Validator holds the compiled report schemas. It is safe for concurrent use.
type Validator struct {
	writerData   *jsonschema.Schema
	issueRequest *jsonschema.Schema
}

// New compiles the report schemas.
func New() (*Validator, error) {
	writer, err := compile("writer_data.json", writerDataSchema)
	if err != nil {
		return nil, err
	}
	issue, err := compile("issue_request.json", issueRequestSchema)
	if err != nil {
		return nil, err
	}
	return &Validator{writerData: writer, issueRequest: issue}, nil
}

func compile(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

// ValidateIssueRequest checks the body of a report request.
func (v *Validator) ValidateIssueRequest(data []byte) error {
	return validate(v.issueRequest, data)
}

// ValidateReportData checks a report_data payload.
func (v *Validator) ValidateReportData(data []byte) error {
	return validate(v.writerData, data)
}

func validate(schema *jsonschema.Schema, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return &domain.ValidationError{Details: []string{"invalid JSON: " + err.Error()}}
	}

	err := schema.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("validating payload: %w", err)
	}
	return &domain.ValidationError{Details: leafMessages(verr)}
}

// leafMessages flattens a validation error tree into "location: message"
// lines, one per failing leaf.
func leafMessages(root *jsonschema.ValidationError) []string {
	var out []string
	var visit func(e *jsonschema.ValidationError)
	visit = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			out = append(out, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			visit(c)
		}
	}
	visit(root)
	sort.Strings(out)
	return out
}
