// Package terms defines the translatable term record shared by the POEditor
// client, the local store and the reconciler, and a codec for flat JSON
// translation objects that keeps key order.
//
// A flat translation object looks like:
//
//	{
//	  "hello": "Bonjour",
//	  "apple": { "one": "pomme", "other": "pommes" }
//	}
//
// Values are kept as raw JSON so plural objects survive a round trip.
package terms

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Term is a single translatable key plus its metadata. Term is the identity
// key and is unique within one language's list.
type Term struct {
	Term       string          `json:"term"`
	Definition json.RawMessage `json:"definition,omitempty"`
	Context    string          `json:"context,omitempty"`
	TermPlural string          `json:"term_plural,omitempty"`
	Reference  string          `json:"reference,omitempty"`
	Comment    string          `json:"comment,omitempty"`
}

// New returns a term whose definition is the JSON string s.
func New(key, s string) Term {
	return Term{Term: key, Definition: String(s)}
}

// String encodes s as a raw JSON string value. HTML characters are kept
// as they are.
func String(s string) json.RawMessage {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return bytes.TrimRight(b.Bytes(), "\n")
}

// Text returns the definition as a plain string. Object definitions
// (plural forms) are returned in their JSON form.
func (t Term) Text() string {
	if len(t.Definition) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(t.Definition, &s); err == nil {
		return s
	}
	return string(t.Definition)
}

// Value returns the definition to be stored in a flat object. A term
// without a definition is stored as an empty string.
func (t Term) Value() json.RawMessage {
	if len(bytes.TrimSpace(t.Definition)) == 0 {
		return String("")
	}
	return t.Definition
}

// ParseObject parses a flat JSON object into terms, preserving key order.
// Duplicate keys keep the last value at the position of the first one,
// matching what a JSON object decoder would expose.
func ParseObject(data []byte) ([]Term, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	t, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected {, got %v", t)
	}

	var out []Term
	index := make(map[string]int)

	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %T", kt)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("parsing value for key %q: %w", key, err)
		}

		if i, seen := index[key]; seen {
			out[i].Definition = value
			continue
		}
		index[key] = len(out)
		out = append(out, Term{Term: key, Definition: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	return out, nil
}
