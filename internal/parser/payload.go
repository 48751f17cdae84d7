package parser

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoPayload reports that an entry carries no embedded JSON at all. It is
// the normal case for plain-text log entries and not a processing failure.
var ErrNoPayload = errors.New("no JSON payload in entry")

// DecodeFirstValue locates the first JSON-opening character in text and
// decodes exactly one JSON value starting there. Trailing non-JSON text after
// the value is tolerated; the decode stops at the value's natural end.
func DecodeFirstValue(text string) (interface{}, error) {
	idx := strings.IndexAny(text, "{[")
	if idx < 0 {
		return nil, ErrNoPayload
	}

	dec := json.NewDecoder(strings.NewReader(text[idx:]))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

// Unwrap strips the envelope conventions the Arena client wraps messages in.
// An object without an "id" field is already the effective message. With an
// "id" and a "payload", the payload is the message. With an "id" and a
// "request", the request field holds a nested JSON document; a failed nested
// decode falls back to the outer object.
func Unwrap(obj map[string]interface{}) interface{} {
	if _, ok := obj["id"]; !ok {
		return obj
	}
	if payload, ok := obj["payload"]; ok {
		return payload
	}
	if request, ok := obj["request"].(string); ok {
		dec := json.NewDecoder(strings.NewReader(request))
		dec.UseNumber()
		var nested interface{}
		if err := dec.Decode(&nested); err == nil {
			return nested
		}
	}
	return obj
}

// ExtractMessage runs the full extraction pipeline on an entry's joined text:
// locate and decode the embedded payload, then unwrap its envelope. Only
// object-shaped effective messages are returned; arrays and scalars yield
// (nil, false). Decode failures are reported through err so the caller can
// log them at low severity.
func ExtractMessage(text string) (map[string]interface{}, bool, error) {
	value, err := DecodeFirstValue(text)
	if err != nil {
		if errors.Is(err, ErrNoPayload) {
			return nil, false, nil
		}
		return nil, false, err
	}

	obj, ok := value.(map[string]interface{})
	if !ok {
		return nil, false, nil
	}

	effective, ok := Unwrap(obj).(map[string]interface{})
	if !ok {
		return nil, false, nil
	}
	return effective, true, nil
}
