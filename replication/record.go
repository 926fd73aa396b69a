package replication

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-msgpack/v2/codec"
	"github.com/nikfortgames/beamroom/components"
)

// ErrMalformedSnapshot is returned for a record with the wrong field count or
// field types. Such a record is dropped whole, never applied partially.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// RecordSize is the encoded size of every record: a two-element msgpack array
// header, a bool and a float32.
const RecordSize = 1 + 1 + 5

const recordFields = 2

var mh codec.MsgpackHandle

// EncodeState writes s as the wire record [isActive, health]. The field order
// is the contract between sender and receiver.
func EncodeState(s components.EntityStateData) ([]byte, error) {
	out := make([]byte, 0, RecordSize)
	enc := codec.NewEncoderBytes(&out, &mh)
	if err := enc.Encode([]interface{}{s.IsActive, s.Health}); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return out, nil
}

// DecodeState parses a wire record.
func DecodeState(record []byte) (components.EntityStateData, error) {
	var s components.EntityStateData
	if len(record) != RecordSize {
		return s, fmt.Errorf("%w: %d bytes, want %d", ErrMalformedSnapshot, len(record), RecordSize)
	}

	var fields []interface{}
	dec := codec.NewDecoderBytes(record, &mh)
	if err := dec.Decode(&fields); err != nil {
		return s, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if len(fields) != recordFields {
		return s, fmt.Errorf("%w: %d fields, want %d", ErrMalformedSnapshot, len(fields), recordFields)
	}

	active, ok := fields[0].(bool)
	if !ok {
		return s, fmt.Errorf("%w: isActive is %T", ErrMalformedSnapshot, fields[0])
	}

	var health float32
	switch v := fields[1].(type) {
	case float32:
		health = v
	case float64:
		health = float32(v)
	default:
		return s, fmt.Errorf("%w: health is %T", ErrMalformedSnapshot, fields[1])
	}

	s.IsActive = active
	s.Health = health
	return s, nil
}
