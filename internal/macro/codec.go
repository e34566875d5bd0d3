package macro

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/keyloop/internal/input/key"
	"github.com/dshills/keyloop/internal/input/mouse"
)

// Document field names.
const (
	fieldType   = "type"
	fieldTS     = "ts"
	fieldKey    = "key"
	fieldX      = "x"
	fieldY      = "y"
	fieldButton = "btn"
)

// Encode serializes seq as a JSON array of event records.
//
// Timestamps are written as whole microseconds relative to the first event,
// so the first record always has "ts": 0. Key records carry "key" as the
// named identifier or the integer virtual-key code, pointer records carry
// "x" and "y", and button records add "btn". Encoding the same sequence
// twice yields identical bytes.
func Encode(seq Sequence) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	var base time.Duration
	if !seq.IsEmpty() {
		base = seq.events[0].Timestamp
	}
	for i, e := range seq.events {
		rec, err := encodeEvent(e, base)
		if err != nil {
			return nil, fmt.Errorf("encode event %d: %w", i, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(rec)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func encodeEvent(e Event, base time.Duration) ([]byte, error) {
	rec := []byte("{}")
	var err error
	set := func(path string, value any) {
		if err == nil {
			rec, err = sjson.SetBytes(rec, path, value)
		}
	}

	set(fieldType, int(e.Kind))
	set(fieldTS, microseconds(e.Timestamp-base))

	switch {
	case e.Kind.IsKey():
		if n, ok := e.Key.Named(); ok {
			set(fieldKey, n.String())
		} else if vk, ok := e.Key.Code(); ok {
			set(fieldKey, vk)
		} else {
			return nil, fmt.Errorf("%s without a key", e.Kind)
		}
	case e.Kind.IsPointer():
		set(fieldX, e.X)
		set(fieldY, e.Y)
		if e.Kind.HasButton() {
			if !e.Button.Valid() {
				return nil, fmt.Errorf("%s without a button", e.Kind)
			}
			set(fieldButton, e.Button.String())
		}
	default:
		return nil, &UnknownEventTypeError{Kind: e.Kind, Index: -1}
	}

	if err != nil {
		return nil, err
	}
	return rec, nil
}

// microseconds rounds d to the nearest whole microsecond.
func microseconds(d time.Duration) int64 {
	return int64(d.Round(time.Microsecond) / time.Microsecond)
}

// Decode parses a JSON array of event records into a Sequence.
//
// Decoding is all or nothing: on any problem a *FormatError is returned and
// no partial sequence is produced. A record is rejected when its type is not
// one of the six kinds, when a field its kind requires is missing or has the
// wrong JSON type, when a named key or button is unknown, or when its
// timestamp is lower than the previous record's.
func Decode(data []byte) (Sequence, error) {
	if !gjson.ValidBytes(data) {
		return Sequence{}, &FormatError{Index: -1, Reason: "invalid JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return Sequence{}, &FormatError{Index: -1, Reason: "top level is not an array"}
	}

	records := root.Array()
	events := make([]Event, 0, len(records))
	for i, rec := range records {
		e, err := decodeEvent(i, rec)
		if err != nil {
			return Sequence{}, err
		}
		if i > 0 && e.Timestamp < events[i-1].Timestamp {
			return Sequence{}, &FormatError{Index: i, Field: fieldTS, Err: ErrUnordered}
		}
		events = append(events, e)
	}
	return Sequence{events: events}, nil
}

func decodeEvent(i int, rec gjson.Result) (Event, error) {
	if !rec.IsObject() {
		return Event{}, &FormatError{Index: i, Reason: "record is not an object"}
	}

	typ, err := intField(i, rec, fieldType)
	if err != nil {
		return Event{}, err
	}
	if typ < 0 || typ >= kindCount {
		return Event{}, &FormatError{
			Index:  i,
			Field:  fieldType,
			Reason: fmt.Sprintf("unknown event type %d", typ),
			Err:    ErrUnknownEventType,
		}
	}

	ts, err := intField(i, rec, fieldTS)
	if err != nil {
		return Event{}, err
	}
	if ts < 0 {
		return Event{}, &FormatError{Index: i, Field: fieldTS, Reason: "negative timestamp"}
	}

	e := Event{Kind: Kind(typ), Timestamp: time.Duration(ts) * time.Microsecond}

	switch {
	case e.Kind.IsKey():
		k, err := keyField(i, rec)
		if err != nil {
			return Event{}, err
		}
		e.Key = k
	case e.Kind.IsPointer():
		x, err := intField(i, rec, fieldX)
		if err != nil {
			return Event{}, err
		}
		y, err := intField(i, rec, fieldY)
		if err != nil {
			return Event{}, err
		}
		e.X, e.Y = int(x), int(y)
		if e.Kind.HasButton() {
			b, err := buttonField(i, rec)
			if err != nil {
				return Event{}, err
			}
			e.Button = b
		}
	}
	return e, nil
}

// intField reads a required integer field. Fractional and exponent forms
// are rejected.
func intField(i int, rec gjson.Result, name string) (int64, error) {
	v := rec.Get(name)
	if !v.Exists() {
		return 0, &FormatError{Index: i, Field: name, Reason: "missing"}
	}
	if v.Type != gjson.Number {
		return 0, &FormatError{Index: i, Field: name, Reason: "not a number"}
	}
	n, err := strconv.ParseInt(v.Raw, 10, 64)
	if err != nil {
		return 0, &FormatError{Index: i, Field: name, Reason: "not an integer"}
	}
	return n, nil
}

func keyField(i int, rec gjson.Result) (key.Key, error) {
	v := rec.Get(fieldKey)
	switch v.Type {
	case gjson.String:
		n, ok := key.NamedFromString(v.Str)
		if !ok {
			return key.Key{}, &FormatError{Index: i, Field: fieldKey, Reason: fmt.Sprintf("unknown key name %q", v.Str)}
		}
		return key.Of(n), nil
	case gjson.Number:
		vk, err := intField(i, rec, fieldKey)
		if err != nil {
			return key.Key{}, err
		}
		return key.Code(int(vk)), nil
	default:
		if !v.Exists() {
			return key.Key{}, &FormatError{Index: i, Field: fieldKey, Reason: "missing"}
		}
		return key.Key{}, &FormatError{Index: i, Field: fieldKey, Reason: "neither a name nor a code"}
	}
}

func buttonField(i int, rec gjson.Result) (mouse.Button, error) {
	v := rec.Get(fieldButton)
	if !v.Exists() {
		return mouse.ButtonNone, &FormatError{Index: i, Field: fieldButton, Reason: "missing"}
	}
	if v.Type != gjson.String {
		return mouse.ButtonNone, &FormatError{Index: i, Field: fieldButton, Reason: "not a string"}
	}
	b, ok := mouse.ButtonFromString(v.Str)
	if !ok {
		return mouse.ButtonNone, &FormatError{Index: i, Field: fieldButton, Reason: fmt.Sprintf("unknown button %q", v.Str)}
	}
	return b, nil
}
