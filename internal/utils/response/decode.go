package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aanand-mishra/school-admin/internal/types"
)

// ErrNoRecord is returned by DecodeOne when the body holds no record.
var ErrNoRecord = errors.New("response holds no record")

// envelope is the object form some backend routes wrap payloads in.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// DecodeList parses a collection body. Precedence:
//
//  1. a bare array          [ {...}, {...} ]
//  2. an envelope's data    { "data": [ {...} ] }
//
// An object without data (or with data: null) is an empty collection.
// The result is never nil.
func DecodeList(body []byte) ([]types.Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("decode collection: empty body")
	}

	switch trimmed[0] {
	case '[':
		return decodeArray(trimmed)
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decode collection: %w", err)
		}
		if isNull(env.Data) {
			return []types.Record{}, nil
		}
		data := bytes.TrimSpace(env.Data)
		if data[0] != '[' {
			return nil, errors.New("decode collection: data is not an array")
		}
		return decodeArray(data)
	default:
		return nil, fmt.Errorf("decode collection: unexpected body %.20q", trimmed)
	}
}

// DecodeOne parses a single-record body. Precedence:
//
//  1. a bare array          [ {...} ]            first element
//  2. an envelope's data    { "data": ... }      first element, or the object
//  3. the raw object        { "_id": ... }
//
// ErrNoRecord is returned for an empty array, null, or an empty object.
func DecodeOne(body []byte) (types.Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return types.Record{}, errors.New("decode record: empty body")
	}

	switch trimmed[0] {
	case '[', 'n':
		return firstOrObject(trimmed)
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return types.Record{}, fmt.Errorf("decode record: %w", err)
		}
		if !isNull(env.Data) {
			return firstOrObject(bytes.TrimSpace(env.Data))
		}
		return firstOrObject(trimmed)
	default:
		return types.Record{}, fmt.Errorf("decode record: unexpected body %.20q", trimmed)
	}
}

// ErrorMessage extracts "error" or "message" from an error body.
// It returns "" when the body is not such an object.
func ErrorMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

func decodeArray(b []byte) ([]types.Record, error) {
	records := make([]types.Record, 0)
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return records, nil
}

// firstOrObject decodes b as an array (taking the first element) or as a
// single object. b must not be an envelope.
func firstOrObject(b []byte) (types.Record, error) {
	if isNull(b) {
		return types.Record{}, ErrNoRecord
	}

	var r types.Record
	switch b[0] {
	case '[':
		var list []types.Record
		if err := json.Unmarshal(b, &list); err != nil {
			return types.Record{}, fmt.Errorf("decode record: %w", err)
		}
		if len(list) == 0 {
			return types.Record{}, ErrNoRecord
		}
		r = list[0]
	case '{':
		if err := json.Unmarshal(b, &r); err != nil {
			return types.Record{}, fmt.Errorf("decode record: %w", err)
		}
	default:
		return types.Record{}, fmt.Errorf("decode record: unexpected value %.20q", b)
	}

	if r == (types.Record{}) {
		return types.Record{}, ErrNoRecord
	}
	return r, nil
}

func isNull(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}
