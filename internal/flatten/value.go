// Package flatten converts ordered sequences of arbitrarily-shaped JSON
// records into a union-of-keys tabular form and a point-feature list.
//
// The engine is pure: it knows nothing about HTTP, files, or the UI, which
// keeps the column-union and row-expansion rules independently testable.
package flatten

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Kind discriminates the JSON value union.
type Kind int

const (
	// KindScalar is a string, number, bool, or null.
	KindScalar Kind = iota

	// KindSequence is a JSON array.
	KindSequence

	// KindMapping is a JSON object with member order preserved.
	KindMapping
)

// Value is one JSON value as a tagged union. Mappings keep their members
// in document order; the standard map[string]any decoding would randomize
// key order and with it the first-seen column order of the whole run.
type Value struct {
	Kind Kind

	// Scalar holds string, json.Number, bool, or nil when Kind is KindScalar.
	Scalar any

	// Seq holds the elements when Kind is KindSequence.
	Seq []Value

	// Members holds the ordered members when Kind is KindMapping.
	Members []Member
}

// Member is one ordered key/value member of a mapping.
type Member struct {
	Key   string
	Value Value
}

// Get returns the member value for a key, or a zero Value and false.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// ParseRecords decodes a JSON array of objects (one persisted page) into
// a record sequence with member order preserved.
func ParseRecords(data []byte) ([]Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}

	switch root.Kind {
	case KindSequence:
		return root.Seq, nil
	case KindMapping:
		// A single bare object counts as a one-record page.
		return []Value{root}, nil
	default:
		return nil, fmt.Errorf("parse records: expected array or object")
	}
}

// decodeValue reads one complete JSON value from the decoder.
func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeFrom(dec, tok)
}

func decodeFrom(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			v := Value{Kind: KindMapping}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key is not a string")
				}
				member, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				v.Members = append(v.Members, Member{Key: key, Value: member})
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Value{}, err
			}
			return v, nil
		case '[':
			v := Value{Kind: KindSequence}
			for dec.More() {
				elem, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				v.Seq = append(v.Seq, elem)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Value{}, err
			}
			return v, nil
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		return Value{Kind: KindScalar, Scalar: tok}, nil
	}
}

// scalarString renders a scalar for tabular output. Null renders empty,
// numbers keep their source formatting via json.Number.
func scalarString(s any) string {
	switch v := s.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// encodeJSON renders a value as compact JSON, preserving member order.
// Composite values that do not flatten into their own columns render this
// way into a single cell.
func encodeJSON(v Value) string {
	var buf bytes.Buffer
	writeJSON(&buf, v)
	return buf.String()
}

func writeJSON(w io.Writer, v Value) {
	switch v.Kind {
	case KindScalar:
		data, err := json.Marshal(v.Scalar)
		if err != nil {
			data, _ = json.Marshal(fmt.Sprintf("%v", v.Scalar))
		}
		w.Write(data)
	case KindSequence:
		io.WriteString(w, "[")
		for i, elem := range v.Seq {
			if i > 0 {
				io.WriteString(w, ",")
			}
			writeJSON(w, elem)
		}
		io.WriteString(w, "]")
	case KindMapping:
		io.WriteString(w, "{")
		for i, m := range v.Members {
			if i > 0 {
				io.WriteString(w, ",")
			}
			key, _ := json.Marshal(m.Key)
			w.Write(key)
			io.WriteString(w, ":")
			writeJSON(w, m.Value)
		}
		io.WriteString(w, "}")
	}
}
