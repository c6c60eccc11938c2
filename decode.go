package jsonmend

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Unmarshal repairs data and decodes the recovered value into v, matching
// fields by their json tags. The outcome is returned either way; the error is
// the outcome's error when the payload was unrepairable.
func Unmarshal(data []byte, v any, opts ...Option) (Outcome, error) {
	out := Repair(string(data), opts...)
	if !out.OK() {
		return out, out.Err
	}
	if err := DecodeValue(out.Value, v); err != nil {
		return out, err
	}
	return out, nil
}

// DecodeValue decodes a repaired value into the struct, map or slice v
// points to.
func DecodeValue(value any, v any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  v,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(value); err != nil {
		return fmt.Errorf("failed to decode repaired value: %w", err)
	}
	return nil
}
