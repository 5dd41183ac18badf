package connect

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// JSONCodec marshals plain Go messages as JSON. It replaces Connect's
// protobuf-only "json" codec so handlers can use ordinary structs.
type JSONCodec struct{}

func (JSONCodec) Name() string {
	return "json"
}

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal message")
	}
	return data, nil
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	// Connect sends an empty body for empty messages.
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return errors.Wrap(err, "failed to unmarshal message")
	}
	return nil
}
