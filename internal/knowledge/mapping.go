package knowledge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const emptyDocument = "{}"

// ErrInvalidJSON is returned by Parse when the document is not valid JSON.
var ErrInvalidJSON = errors.New("knowledge: document is not valid JSON")

// Mapping is the opaque knowledge document consulted by the chatbot.
// It is kept as compact JSON so key order and number formatting are
// reproduced exactly when the document is embedded in the prompt.
// The zero value is the empty mapping.
type Mapping struct {
	raw []byte
}

// Empty returns the empty mapping, rendered as {}.
func Empty() Mapping {
	return Mapping{}
}

// Parse validates data as a JSON document and returns it as a Mapping.
func Parse(data []byte) (Mapping, error) {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return Mapping{}, ErrInvalidJSON
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return Mapping{}, fmt.Errorf("knowledge: compact document: %w", err)
	}
	return Mapping{raw: buf.Bytes()}, nil
}

// IsEmpty reports whether the mapping carries no data.
func (m Mapping) IsEmpty() bool {
	return len(m.raw) == 0 || string(m.raw) == emptyDocument
}

// Len returns the number of top-level keys, or 0 when the document is not
// a JSON object.
func (m Mapping) Len() int {
	if len(m.raw) == 0 {
		return 0
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(m.raw, &top); err != nil {
		return 0
	}
	return len(top)
}

// Pretty renders the document with a two-space indent.
func (m Mapping) Pretty() string {
	if len(m.raw) == 0 {
		return emptyDocument
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, m.raw, "", "  "); err != nil {
		// raw was validated by Parse.
		return string(m.raw)
	}
	return buf.String()
}
