package configfile

import (
	"fmt"
	"strconv"
)

// Names of the config helpers. Each takes the config binding (or a *Config)
// and a key, and coerces the value with the same rules as the getters:
//
//	haskey(config, "server.port")
//	getint(config, "server.port") > 1024
//	getfloat(config, "ratio")
//	getbool(config, "feature.enabled")
//
// A missing key fails with ErrKeyNotFound, a bad value with
// ErrMalformedNumber or ErrMalformedValue.
const (
	FuncHasKey   = "haskey"
	FuncGetInt   = "getint"
	FuncGetFloat = "getfloat"
	FuncGetBool  = "getbool"
)

// ConfigFunctions returns a registry holding the config helpers.
func ConfigFunctions() *FunctionRegistry {
	registry := NewFunctionRegistry()
	registry.funcs[FuncHasKey] = hasKeyFunction
	registry.funcs[FuncGetInt] = getIntFunction
	registry.funcs[FuncGetFloat] = getFloatFunction
	registry.funcs[FuncGetBool] = getBoolFunction
	return registry
}

// withConfigFunctions returns a copy of registry extended by the config
// helpers. Functions already registered under a helper name are kept.
func withConfigFunctions(registry *FunctionRegistry) *FunctionRegistry {
	return registry.Clone().merge(ConfigFunctions())
}

func hasKeyFunction(args ...any) (any, error) {
	_, _, found, err := helperLookup(FuncHasKey, args)
	if err != nil {
		return nil, err
	}
	return found, nil
}

func getIntFunction(args ...any) (any, error) {
	key, raw, err := helperValue(FuncGetInt, args)
	if err != nil {
		return nil, err
	}
	v, err := parseInteger(FuncGetInt, key, raw, strconv.IntSize)
	if err != nil {
		return nil, err
	}
	return int(v), nil
}

func getFloatFunction(args ...any) (any, error) {
	key, raw, err := helperValue(FuncGetFloat, args)
	if err != nil {
		return nil, err
	}
	return parseFloat(FuncGetFloat, key, raw)
}

func getBoolFunction(args ...any) (any, error) {
	key, raw, err := helperValue(FuncGetBool, args)
	if err != nil {
		return nil, err
	}
	return parseBool(FuncGetBool, key, raw)
}

func helperValue(op string, args []any) (string, string, error) {
	key, raw, found, err := helperLookup(op, args)
	if err != nil {
		return "", "", err
	}
	if !found {
		return "", "", missingKey(op, key)
	}
	return key, raw, nil
}

// helperLookup reads args as (source, key) and resolves the raw value.
func helperLookup(op string, args []any) (key, raw string, found bool, err error) {
	if len(args) != 2 {
		return "", "", false, fmt.Errorf("configfile: %s expects (config, key), got %d arguments", op, len(args))
	}
	key, ok := args[1].(string)
	if !ok {
		return "", "", false, fmt.Errorf("configfile: %s key must be a string, got %T", op, args[1])
	}

	switch source := args[0].(type) {
	case *Config:
		raw, found = source.lastValue(key)
	case map[string]any:
		var value any
		if value, found = source[key]; found {
			raw = fmt.Sprint(value)
		}
	case map[string]string:
		raw, found = source[key]
	case nil:
	default:
		return "", "", false, fmt.Errorf("configfile: %s cannot read keys from %T", op, args[0])
	}
	return key, raw, found, nil
}
