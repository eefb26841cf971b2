package utils

import (
	"bytes"
	"encoding/json"
	"fmt"

	errs "bugout/internal/errors"
)

// DecodeJSON unmarshals data into dst, tagging failures as malformed payloads
// so that consumers can skip them.
func DecodeJSON(data []byte, dst interface{}) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: empty body", errs.ErrMalformedPayload)
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON: %w", errs.ErrMalformedPayload, err)
	}
	return nil
}

func EncodeJSON(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrMalformedPayload, err)
	}
	return data, nil
}
