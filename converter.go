package bdispatch

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// MessageConverter turns handler results into response bytes and request bodies into values.
type MessageConverter interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, target any) error
	ContentType() string
}

// JSONConverter is the default converter, backed by encoding/json.
type JSONConverter struct{}

func (JSONConverter) Serialize(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "serialize %T", v)
	}

	return data, nil
}

func (JSONConverter) Deserialize(data []byte, target any) error {
	if err := json.Unmarshal(data, target); err != nil {
		return errors.Wrapf(err, "deserialize into %T", target)
	}

	return nil
}

func (JSONConverter) ContentType() string { return "application/json; charset=utf-8" }

var _ MessageConverter = JSONConverter{}
