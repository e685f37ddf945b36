package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// SchemaValidator validates a decoded struct after schema checks pass.
// Returns nil if valid, or a descriptive error if invalid.
type SchemaValidator[T any] func(T) error

// DecodeStrict decodes the complete response text into T. The text must be a
// single JSON value conforming to schema; leading or trailing prose is rejected.
// Blank text fails with ErrEmptyResponse, anything else with *UnparsableError.
func DecodeStrict[T any](raw string, schema *Schema, validator SchemaValidator[T]) (T, error) {
	var zero T

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return zero, ErrEmptyResponse
	}

	result, err := decodeConforming[T]([]byte(trimmed), schema)
	if err != nil {
		return zero, &UnparsableError{Raw: raw, Cause: err}
	}

	if validator != nil {
		if err := validator(result); err != nil {
			return zero, &UnparsableError{Raw: raw, Cause: fmt.Errorf("validation failed: %w", err)}
		}
	}

	return result, nil
}

// RecoverArray decodes the first [ ... ] block embedded in raw that conforms
// to the array schema. Blocks that are not JSON, or do not match the schema,
// are skipped, so bracketed prose before the payload does not hide it. It is
// the only lenient decode path and exists for responses that wrap the payload
// in prose.
func RecoverArray[T any](raw string, schema *Schema) ([]T, error) {
	if schema == nil || schema.Type != TypeArray {
		return nil, fmt.Errorf("array recovery requires an array schema")
	}

	var firstErr error
	for _, block := range arrayBlocks(raw) {
		items, err := decodeConforming[[]T]([]byte(block), schema)
		if err == nil {
			return items, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		return nil, errors.New("no JSON array found in response")
	}
	return nil, firstErr
}

func decodeConforming[T any](data []byte, schema *Schema) (T, error) {
	var zero T

	var generic any
	if err := decodeSingle(data, &generic); err != nil {
		return zero, err
	}
	if schema != nil {
		if err := schema.Validate(generic); err != nil {
			return zero, fmt.Errorf("schema mismatch: %w", err)
		}
	}

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return zero, err
	}
	return result, nil
}

// decodeSingle decodes exactly one JSON value and rejects trailing data.
func decodeSingle(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// ExtractArray returns the first balanced [ ... ] block in the text that is
// well-formed JSON, or "".
func ExtractArray(s string) string {
	for _, block := range arrayBlocks(s) {
		if json.Valid([]byte(block)) {
			return block
		}
	}
	return ""
}

// arrayBlocks returns the balanced [ ... ] block opening at each '[' in s,
// in order of position. Unbalanced openings are skipped.
func arrayBlocks(s string) []string {
	var blocks []string
	for i := 0; i < len(s); i++ {
		if s[i] != '[' {
			continue
		}
		if block := balancedFrom(s, i, '[', ']'); block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// balancedFrom returns the balanced open ... close block starting at s[start],
// ignoring delimiters inside JSON string literals, or "" if it never closes.
func balancedFrom(s string, start int, open, close byte) string {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		if c == '\\' && inString {
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		switch c {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}
