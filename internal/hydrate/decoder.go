// Package hydrate binds flat dotted-key values onto typed structs.
package hydrate

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// TagName is the struct tag read by the decoder.
const TagName = "config"

// ErrDecode marks failures converting payload values into the target type.
var ErrDecode = errors.New("hydrate: decode failed")

// Source is the read side of a config.
type Source interface {
	Keys() []string
	GetList(key string) []string
}

// Context identifies the config being decoded in errors and hooks.
type Context struct {
	Name   string
	Source string
}

func (c Context) label() string {
	if c.Name != "" {
		return c.Name
	}
	if c.Source != "" {
		return c.Source
	}
	return "<config>"
}

// PreHook lets callers mutate or normalise the payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the hydrated struct after decoding.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces the default mapstructure decoding when provided.
type CustomDecoder[T any] func(Context, map[string]any) (T, error)

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts config payloads into strongly typed structs.
type Decoder[T any] struct {
	preHooks     []PreHook
	postHooks    []PostHook[T]
	configureDec []func(*mapstructure.DecoderConfig)
	custom       CustomDecoder[T]
	missing      func(key string) error
	defaults     *T
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithErrorUnused fails decoding when the payload holds keys no field reads.
func WithErrorUnused[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(cfg *mapstructure.DecoderConfig) {
			cfg.ErrorUnused = true
		})
	}
}

// WithDecoderConfig allows callers to adjust the mapstructure config directly.
func WithDecoderConfig[T any](configure func(*mapstructure.DecoderConfig)) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if configure != nil {
			d.configureDec = append(d.configureDec, configure)
		}
	}
}

// WithCustomDecoder replaces the default decoding path.
func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.custom = decoder
	}
}

// WithDefaults seeds the result with value; decoded keys overwrite it.
func WithDefaults[T any](value T) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.defaults = &value
	}
}

// WithMissingError builds the error reported for an absent required key.
func WithMissingError[T any](fn func(key string) error) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.missing = fn
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode builds a payload from src and converts it into T. Fields tagged
// `config:"name,required"` must be present.
func (d *Decoder[T]) Decode(ctx Context, src Source) (T, error) {
	var zero T
	if src == nil {
		return zero, fmt.Errorf("hydrate: source is nil for %s", ctx.label())
	}

	current := Payload(src)
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for %s failed: %w", ctx.label(), err)
		}
		if next != nil {
			current = next
		}
	}

	var result T
	if d.defaults != nil {
		result = *d.defaults
	}
	if d.custom != nil {
		var err error
		result, err = d.custom(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: custom decoder for %s failed: %w", ctx.label(), err)
		}
	} else if err := d.decode(ctx, current, &result); err != nil {
		return zero, err
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for %s failed: %w", ctx.label(), err)
		}
	}
	return result, nil
}

func (d *Decoder[T]) decode(ctx Context, payload map[string]any, result *T) error {
	cfg := &mapstructure.DecoderConfig{
		TagName:          TagName,
		WeaklyTypedInput: true,
		Result:           result,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			lastValueHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
			strictScalarHook,
		),
	}
	for _, configure := range d.configureDec {
		configure(cfg)
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return fmt.Errorf("hydrate: configure decoder for %s: %w", ctx.label(), err)
	}
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, ctx.label(), err)
	}

	for _, key := range requiredKeys(reflect.TypeOf(result).Elem(), "", map[reflect.Type]bool{}) {
		if present(payload, key) {
			continue
		}
		if d.missing != nil {
			return d.missing(key)
		}
		return fmt.Errorf("hydrate: required key %q missing in %s", key, ctx.label())
	}
	return nil
}

// Payload nests dotted keys into maps: "server.port" becomes
// {"server": {"port": ...}}. Single values are strings, repeated keys are
// []string. When a key is both a value and a namespace the namespace wins.
func Payload(src Source) map[string]any {
	root := map[string]any{}
	for _, key := range src.Keys() {
		values := src.GetList(key)
		if len(values) == 0 {
			continue
		}
		var leaf any = values[0]
		if len(values) > 1 {
			leaf = append([]string(nil), values...)
		}

		parts := strings.Split(key, ".")
		node := root
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[part] = child
			}
			node = child
		}
		last := parts[len(parts)-1]
		if _, isNamespace := node[last].(map[string]any); isNamespace {
			continue
		}
		node[last] = leaf
	}
	return root
}

// lastValueHook lets scalar fields read repeated keys, taking the last value
// the same way scalar getters do.
func lastValueHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	values, ok := data.([]string)
	if !ok || len(values) == 0 {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Slice, reflect.Array, reflect.Interface:
		return data, nil
	}
	return values[len(values)-1], nil
}

// strictScalarHook parses text into numeric and boolean fields with the
// same rules as the typed getters: base-10 integers only, no empty values.
// It runs before mapstructure's weak conversion so "010" stays 10 and ""
// fails instead of becoming zero.
func strictScalarHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	raw, ok := data.(string)
	if !ok || to == durationType || reflect.PointerTo(to).Implements(textUnmarshalerType) {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(raw, 10, to.Bits())
		if err != nil {
			return nil, fmt.Errorf("%q is not a base-10 integer: %w", raw, err)
		}
		return v, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(raw, 10, to.Bits())
		if err != nil {
			return nil, fmt.Errorf("%q is not a base-10 unsigned integer: %w", raw, err)
		}
		return v, nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(raw, to.Bits())
		if err != nil {
			return nil, fmt.Errorf("%q is not a number: %w", raw, err)
		}
		return v, nil
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean: %w", raw, err)
		}
		return v, nil
	}
	return data, nil
}

var (
	durationType        = reflect.TypeOf(time.Duration(0))
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// present walks the dotted key through payload, matching segments
// case-insensitively like mapstructure does.
func present(payload map[string]any, key string) bool {
	node := payload
	parts := strings.Split(key, ".")
	for i, part := range parts {
		value, ok := lookupFold(node, part)
		if !ok {
			return false
		}
		if i == len(parts)-1 {
			return true
		}
		node, ok = value.(map[string]any)
		if !ok {
			return false
		}
	}
	return false
}

func lookupFold(node map[string]any, name string) (any, bool) {
	if value, ok := node[name]; ok {
		return value, true
	}
	for key, value := range node {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}
	return nil, false
}

// requiredKeys mirrors mapstructure's field naming: tag name or field name,
// joined with dots for nested structs.
func requiredKeys(t reflect.Type, prefix string, seen map[reflect.Type]bool) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || seen[t] {
		return nil
	}
	seen[t] = true
	defer delete(seen, t)

	var keys []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get(TagName)
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if strings.Contains(opts, "squash") {
			keys = append(keys, requiredKeys(field.Type, prefix, seen)...)
			continue
		}
		if name == "" {
			name = field.Name
		}
		if prefix != "" {
			name = prefix + "." + name
		}
		for _, opt := range strings.Split(opts, ",") {
			if opt == "required" {
				keys = append(keys, name)
			}
		}
		keys = append(keys, requiredKeys(field.Type, name, seen)...)
	}
	return keys
}
