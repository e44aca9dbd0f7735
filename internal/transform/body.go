// Package transform rewrites request and response bodies between the external
// wire shape and the backend's shape. Bodies are dynamic JSON objects: only
// the fields the proxy cares about are touched, everything else passes
// through unchanged.
package transform

import (
	"openai2local/internal/core"
	"openai2local/internal/util"
)

// Body is a parsed JSON object body. Normalizers clone before mutating, so a
// Body handed to them can be reused for retry or audit without aliasing.
type Body map[string]any

// ParseBody parses raw JSON into a Body. Non-object JSON is an error.
func ParseBody(data []byte) (Body, error) {
	var body Body
	if err := util.UnmarshalJSON(data, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// Clone returns a shallow copy of the body. Top-level field writes on the
// copy never touch the original; nested values are shared and never mutated
// by the normalizers.
func (b Body) Clone() Body {
	cloned := make(Body, len(b))
	for k, v := range b {
		cloned[k] = v
	}
	return cloned
}

// Model returns the model field when present as a string.
func (b Body) Model() (string, bool) {
	model, ok := b[core.FieldModel].(string)
	return model, ok
}

// Stream reports whether the body requests a streaming response.
func (b Body) Stream() bool {
	stream, _ := b[core.FieldStream].(bool)
	return stream
}

// Marshal serializes the body back to JSON.
func (b Body) Marshal() ([]byte, error) {
	return util.MarshalJSON(b)
}
