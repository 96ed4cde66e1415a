package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var emptyObject = []byte("{}")

// Payload is the schema-less body of a submission: a JSON object whose
// fields are defined by the external form. The bytes are kept as received
// (compacted), so numbers and their formatting survive storage untouched.
//
// The zero value is an empty object.
type Payload struct {
	raw []byte
}

// NewPayload builds a Payload from a decoded JSON object.
func NewPayload(m map[string]any) (Payload, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return Payload{}, err
	}
	return ParsePayload(b)
}

// ParsePayload checks that b is a JSON object and keeps it compacted. Empty
// input and "null" give an empty payload; any other non-object JSON is an
// error.
func ParsePayload(b []byte) (Payload, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return Payload{}, nil
	}
	if err := protojson.Unmarshal(b, &structpb.Struct{}); err != nil {
		return Payload{}, err
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return Payload{}, err
	}
	return Payload{raw: buf.Bytes()}, nil
}

// Bytes returns the JSON object. Never empty.
func (p Payload) Bytes() []byte {
	if len(p.raw) == 0 {
		return emptyObject
	}
	return p.raw
}

// AsMap decodes the payload into plain Go values. Numbers become float64,
// so this view is lossy for integers above 2^53.
func (p Payload) AsMap() map[string]any {
	m := map[string]any{}
	_ = json.Unmarshal(p.Bytes(), &m)
	return m
}

// Equal reports whether both payloads hold the same JSON object. Key order
// is ignored; numbers compare by their literal text.
func (p Payload) Equal(o Payload) bool {
	a, errA := decodeExact(p.Bytes())
	b, errB := decodeExact(o.Bytes())
	return errA == nil && errB == nil && reflect.DeepEqual(a, b)
}

func decodeExact(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	err := dec.Decode(&v)
	return v, err
}

func (p Payload) MarshalJSON() ([]byte, error) {
	return p.Bytes(), nil
}

func (p *Payload) UnmarshalJSON(b []byte) error {
	parsed, err := ParsePayload(b)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value stores the payload in a jsonb column.
func (p Payload) Value() (driver.Value, error) {
	return string(p.Bytes()), nil
}

// Scan reads a jsonb column.
func (p *Payload) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = Payload{}
		return nil
	case []byte:
		return p.UnmarshalJSON(v)
	case string:
		return p.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("payload: unsupported column type %T", src)
	}
}
