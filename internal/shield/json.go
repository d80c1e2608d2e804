package shield

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/eco2-team/backend/domains/data-shield/internal/constants"
)

var (
	// ErrMalformedInput is returned when the text is not a single JSON object.
	ErrMalformedInput = errors.New("malformed input")

	// ErrTypeMismatch is returned when a sensitive key holds an object or array.
	ErrTypeMismatch = errors.New("type mismatch")
)

// member is one top-level key/value pair, kept in input order.
type member struct {
	key   string
	value json.RawMessage
}

// MaskFlatJSON masks the top-level sensitive keys of a JSON object and returns
// the result as compact JSON. Key order is preserved and non-sensitive values
// are copied through unchanged.
//
// String values are masked as-is. Numbers and booleans are masked on their JSON
// text and come back as strings. null stays null. Nested values are never
// inspected, but a sensitive key holding an object or array is an
// ErrTypeMismatch.
func (s *Shield) MaskFlatJSON(text string) (string, error) {
	members, err := parseObject(text)
	if err != nil {
		return "", err
	}

	for i, m := range members {
		if !s.IsSensitive(m.key) {
			continue
		}
		masked, err := s.maskRaw(m.key, m.value)
		if err != nil {
			return "", err
		}
		members[i].value = masked
	}

	return encodeObject(members)
}

// parseObject decodes a single top-level object into its members.
// A repeated key keeps its first position and its last value.
func parseObject(text string) ([]member, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf(constants.ErrJSONSyntax, ErrMalformedInput, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf(constants.ErrJSONSyntax, ErrMalformedInput, constants.ErrJSONNotObject)
	}

	var members []member
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf(constants.ErrJSONSyntax, ErrMalformedInput, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf(constants.ErrJSONSyntax, ErrMalformedInput, tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf(constants.ErrJSONSyntax, ErrMalformedInput, err)
		}

		if i, seen := index[key]; seen {
			members[i].value = raw
			continue
		}
		index[key] = len(members)
		members = append(members, member{key: key, value: raw})
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf(constants.ErrJSONSyntax, ErrMalformedInput, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf(constants.ErrJSONSyntax, ErrMalformedInput, constants.ErrJSONTrailingData)
	}

	return members, nil
}

func (s *Shield) maskRaw(key string, raw json.RawMessage) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf(constants.ErrJSONSyntax, ErrMalformedInput, "empty value")
	}

	switch raw[0] {
	case '"':
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, fmt.Errorf(constants.ErrJSONSyntax, ErrMalformedInput, err)
		}
		return encodeString(s.MaskValue(str))
	case '{':
		return nil, fmt.Errorf(constants.ErrJSONFieldNotValue, ErrTypeMismatch, key, "an object")
	case '[':
		return nil, fmt.Errorf(constants.ErrJSONFieldNotValue, ErrTypeMismatch, key, "an array")
	case 'n':
		return raw, nil
	default:
		// number, true or false
		return encodeString(s.MaskValue(string(raw)))
	}
}

// encodeString renders str as a JSON string without HTML escaping.
func encodeString(str string) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(str); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func encodeObject(members []member) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeString(m.key)
		if err != nil {
			return "", err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := json.Compact(&buf, m.value); err != nil {
			return "", fmt.Errorf(constants.ErrJSONSyntax, ErrMalformedInput, err)
		}
	}
	buf.WriteByte('}')
	return buf.String(), nil
}
