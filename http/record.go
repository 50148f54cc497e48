package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"stockpredictor/ml"
)

// decodeRecord reads exactly one JSON object of feature values. A value is a
// JSON number or a string strconv.ParseFloat accepts, so "Inf" and "NaN" can
// be sent. null is rejected, as is anything after the object.
func decodeRecord(r io.Reader) (ml.Record, error) {
	dec := json.NewDecoder(r)
	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("record must be a JSON object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after record")
	}

	record := make(ml.Record, len(raw))
	for name, value := range raw {
		v, err := parseRecordValue(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		record[name] = v
	}
	return record, nil
}

func parseRecordValue(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(raw, []byte("null")):
		return 0, errors.New("value is null")
	case len(raw) > 0 && raw[0] == '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", text)
		}
		return value, nil
	default:
		var value float64
		if err := json.Unmarshal(raw, &value); err != nil {
			return 0, fmt.Errorf("%s is not a number", raw)
		}
		return value, nil
	}
}
