// Package llm holds the provider-neutral contract between the formulation
// service and the model that proposes diets.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty response from ai")

// Type is a JSON schema value type.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Schema describes the JSON document the model must return.
type Schema struct {
	Type        Type
	Description string
	Properties  map[string]*Schema
	// Order fixes property order where the provider honors it.
	Order    []string
	Required []string
	Items    *Schema
	Nullable bool
}

// JSONSchema renders s as a plain JSON schema document.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": string(s.Type)}
	if s.Nullable {
		out["type"] = []string{string(s.Type), "null"}
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.JSONSchema()
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	return out
}

// Request is a single structured generation call.
type Request struct {
	Prompt      string
	Schema      *Schema
	Temperature float32
}

// Client generates a JSON document answering a prompt.
type Client interface {
	GenerateJSON(ctx context.Context, req Request) (string, error)
}
