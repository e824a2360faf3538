package configfile

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-configfile/internal/hydrate"
)

// DecodeOption configures Decode.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	errorUnused bool
	transforms  []func(map[string]any) (map[string]any, error)
}

// DecodeErrorUnused makes Decode fail when the config holds keys that no
// field reads.
func DecodeErrorUnused() DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.errorUnused = true
	}
}

// DecodeTransform rewrites the nested payload before it is bound.
func DecodeTransform(fn func(map[string]any) (map[string]any, error)) DecodeOption {
	return func(cfg *decodeConfig) {
		if fn != nil {
			cfg.transforms = append(cfg.transforms, fn)
		}
	}
}

// Decode binds cfg onto a new T. Fields are matched by their `config` tag,
// or case-insensitively by field name; nested structs read the namespace
// named by their field. Scalars take the last value of a key and slices take
// all of them. Fields tagged `config:"name,required"` must be present.
//
// A missing required key fails with ErrKeyNotFound, a value that cannot be
// converted with ErrMalformedValue. When T (or *T) implements
// Validate() error it runs last.
func Decode[T any](cfg *Config, opts ...DecodeOption) (T, error) {
	var zero T
	if cfg == nil {
		cfg = New()
	}
	dc := decodeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&dc)
		}
	}

	decoderOpts := []hydrate.DecoderOption[T]{
		hydrate.WithMissingError[T](func(key string) error {
			return missingKey("decode", key)
		}),
		hydrate.WithPostHook[T](func(_ hydrate.Context, value *T) error {
			return validate(value)
		}),
	}
	if dc.errorUnused {
		decoderOpts = append(decoderOpts, hydrate.WithErrorUnused[T]())
	}
	for _, transform := range dc.transforms {
		transform := transform
		decoderOpts = append(decoderOpts, hydrate.WithPreHook[T](func(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
			return transform(payload)
		}))
	}

	value, err := hydrate.NewDecoder[T](decoderOpts...).Decode(hydrate.Context{Name: cfg.name, Source: cfg.source}, cfg)
	if err != nil {
		if errors.Is(err, hydrate.ErrDecode) {
			return zero, fmt.Errorf("%w: %w", ErrMalformedValue, err)
		}
		return zero, err
	}
	return value, nil
}

func validate(value any) error {
	if v, ok := value.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}
