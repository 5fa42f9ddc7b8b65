package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// eventTypeField is the single payload field the engine knows about.
const eventTypeField = "event_type"

/* Payload is an opaque parsed view of an ingested event body.
 * The engine assumes no schema beyond the optional event_type field;
 * everything else passes through untouched.
 */
type Payload struct {
	raw   []byte
	value any
}

// Parse parses a JSON body into a Payload.
// Numbers keep their original literal form so canonicalization never
// reformats them.
func Parse(data []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return Payload{}, fmt.Errorf("unmarshaling payload: %w", err)
	}
	// Trailing content after the first value is not valid JSON.
	if dec.More() {
		return Payload{}, fmt.Errorf("unmarshaling payload: unexpected trailing data")
	}

	return Payload{raw: data, value: value}, nil
}

/* Canonical returns the deterministic byte encoding of the payload:
 * object keys sorted lexicographically, compact separators, no HTML
 * escaping. Two parties encoding the same value - regardless of the
 * original key order or whitespace - produce identical bytes, which
 * makes this the exact input for signature computation.
 */
func (p Payload) Canonical() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p.value); err != nil {
		return nil, fmt.Errorf("encoding canonical payload: %w", err)
	}
	// Encode appends a newline that is not part of the canonical form.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// EventType extracts the optional top-level event_type field.
// The second return value reports whether the field was present as a string.
func (p Payload) EventType() (string, bool) {
	obj, ok := p.value.(map[string]any)
	if !ok {
		return "", false
	}
	et, ok := obj[eventTypeField].(string)
	if !ok {
		return "", false
	}
	return et, true
}

// Raw returns the original bytes as received.
func (p Payload) Raw() []byte {
	return p.raw
}
