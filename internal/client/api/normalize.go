package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The backend is inconsistent about list and detail shapes: some endpoints
// return a bare array, others wrap it in an object keyed by the resource name
// ({"vehiculos": [...]}, {"parqueadero": {...}}). Everything is normalized
// here so callers above the client see one canonical shape.

// unwrapList accepts either a bare JSON array or an object wrapping the array
// under key, and returns the raw array.
func unwrapList(raw json.RawMessage, key string) (json.RawMessage, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return raw, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	inner, ok := obj[key]
	if !ok {
		return nil, fmt.Errorf("response has neither a bare array nor a %q field", key)
	}
	return inner, nil
}

// unwrapObject accepts either a bare object or an object wrapping the payload
// under key, and returns the raw payload.
func unwrapObject(raw json.RawMessage, key string) json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return raw
	}
	inner, ok := obj[key]
	if !ok {
		return raw
	}
	trimmed := bytes.TrimLeft(inner, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	return inner
}

// decodeList normalizes and decodes a list response wrapped under key.
func decodeList[T any](raw json.RawMessage, key string) ([]T, error) {
	inner, err := unwrapList(raw, key)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(inner, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// decodeObject normalizes and decodes a detail response possibly wrapped
// under key.
func decodeObject[T any](raw json.RawMessage, key string) (*T, error) {
	var item T
	if err := json.Unmarshal(unwrapObject(raw, key), &item); err != nil {
		return nil, err
	}
	return &item, nil
}
