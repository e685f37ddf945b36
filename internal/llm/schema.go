package llm

import (
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"
)

// SchemaType is the structural type of a schema node.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeBoolean SchemaType = "boolean"
)

// Schema is a structural contract for a model's JSON output. It uses the subset
// of JSON Schema that schema-constrained completion endpoints accept.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	Enum        []string
	Nullable    bool
	MinItems    int
	MaxItems    int
}

// Clone returns a deep copy of s.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	c := *s
	if s.Properties != nil {
		c.Properties = make(map[string]*Schema, len(s.Properties))
		for k, v := range s.Properties {
			c.Properties[k] = v.Clone()
		}
	}
	c.Required = append([]string(nil), s.Required...)
	c.Enum = append([]string(nil), s.Enum...)
	c.Items = s.Items.Clone()
	return &c
}

// propertyOrder returns property names sorted so that conversions are deterministic.
func (s *Schema) propertyOrder() []string {
	names := make([]string, 0, len(s.Properties))
	for k := range s.Properties {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// GenAI converts the schema into the Gemini response schema representation.
func (s *Schema) GenAI() *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Description: s.Description,
		Required:    append([]string(nil), s.Required...),
		Enum:        append([]string(nil), s.Enum...),
	}
	switch s.Type {
	case TypeObject:
		out.Type = genai.TypeObject
	case TypeArray:
		out.Type = genai.TypeArray
	case TypeBoolean:
		out.Type = genai.TypeBoolean
	default:
		out.Type = genai.TypeString
	}
	if len(s.Enum) > 0 {
		out.Format = "enum"
	}
	if s.Nullable {
		out.Nullable = genai.Ptr(true)
	}
	if s.MinItems > 0 {
		out.MinItems = genai.Ptr(int64(s.MinItems))
	}
	if s.MaxItems > 0 {
		out.MaxItems = genai.Ptr(int64(s.MaxItems))
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for _, name := range s.propertyOrder() {
			out.Properties[name] = s.Properties[name].GenAI()
		}
		out.PropertyOrdering = s.propertyOrder()
	}
	if s.Items != nil {
		out.Items = s.Items.GenAI()
	}
	return out
}

// JSONSchema converts the schema into a plain JSON Schema document, as accepted
// by Ollama's "format" request field.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{}
	if s.Nullable {
		out["type"] = []string{string(s.Type), "null"}
	} else {
		out["type"] = string(s.Type)
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		enum := make([]any, 0, len(s.Enum)+1)
		for _, e := range s.Enum {
			enum = append(enum, e)
		}
		if s.Nullable {
			enum = append(enum, nil)
		}
		out["enum"] = enum
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for _, name := range s.propertyOrder() {
			props[name] = s.Properties[name].JSONSchema()
		}
		out["properties"] = props
		out["additionalProperties"] = false
	}
	if len(s.Required) > 0 {
		out["required"] = append([]string(nil), s.Required...)
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	if s.MinItems > 0 {
		out["minItems"] = s.MinItems
	}
	if s.MaxItems > 0 {
		out["maxItems"] = s.MaxItems
	}
	return out
}

// Validate checks a decoded JSON value (as produced by encoding/json into any)
// against the schema. Unknown object properties are rejected.
func (s *Schema) Validate(v any) error {
	return s.validate(v, "$")
}

func (s *Schema) validate(v any, path string) error {
	if v == nil {
		if s.Nullable {
			return nil
		}
		return fmt.Errorf("%s: null is not allowed", path)
	}

	switch s.Type {
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object, got %s", path, jsonKind(v))
		}
		for _, name := range s.Required {
			if _, ok := obj[name]; !ok {
				return fmt.Errorf("%s: missing required field %q", path, name)
			}
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			prop, ok := s.Properties[k]
			if !ok {
				return fmt.Errorf("%s: unexpected field %q", path, k)
			}
			if err := prop.validate(obj[k], path+"."+k); err != nil {
				return err
			}
		}
	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array, got %s", path, jsonKind(v))
		}
		if s.MinItems > 0 && len(arr) < s.MinItems {
			return fmt.Errorf("%s: expected at least %d items, got %d", path, s.MinItems, len(arr))
		}
		if s.MaxItems > 0 && len(arr) > s.MaxItems {
			return fmt.Errorf("%s: expected at most %d items, got %d", path, s.MaxItems, len(arr))
		}
		if s.Items != nil {
			for i, item := range arr {
				if err := s.Items.validate(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
					return err
				}
			}
		}
	case TypeString:
		str, ok := v.(string)
		if !ok {
			return fmt.Errorf("%s: expected string, got %s", path, jsonKind(v))
		}
		if len(s.Enum) > 0 && !contains(s.Enum, str) {
			return fmt.Errorf("%s: %q is not one of [%s]", path, str, strings.Join(s.Enum, ", "))
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%s: expected boolean, got %s", path, jsonKind(v))
		}
	default:
		return fmt.Errorf("%s: unsupported schema type %q", path, s.Type)
	}
	return nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return "number"
	}
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
