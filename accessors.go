package configfile

import (
	"strconv"
	"time"
)

// GetString returns the raw value stored under key. When a key holds several
// values the last one is returned.
func (c *Config) GetString(key string) (string, bool) {
	return c.lastValue(key)
}

// GetStringOr returns the value of key or fallback when it is absent.
func (c *Config) GetStringOr(key, fallback string) string {
	if value, ok := c.lastValue(key); ok {
		return value
	}
	return fallback
}

// GetList returns a copy of every value stored under key, or nil.
func (c *Config) GetList(key string) []string {
	if c == nil {
		return nil
	}
	pos, ok := c.index[key]
	if !ok {
		return nil
	}
	return append([]string(nil), c.entries[pos].Values...)
}

// GetInt parses the value of key as a base-10 integer. Values with a decimal
// point or exponent are rejected with ErrMalformedNumber.
func (c *Config) GetInt(key string) (int, error) {
	raw, ok := c.lastValue(key)
	if !ok {
		return 0, missingKey("GetInt", key)
	}
	v, err := parseInteger("GetInt", key, raw, strconv.IntSize)
	return int(v), err
}

// GetInt64 parses the value of key as a 64-bit base-10 integer.
func (c *Config) GetInt64(key string) (int64, error) {
	raw, ok := c.lastValue(key)
	if !ok {
		return 0, missingKey("GetInt64", key)
	}
	return parseInteger("GetInt64", key, raw, 64)
}

// GetFloat parses the value of key as a double using decimal or exponential
// notation.
func (c *Config) GetFloat(key string) (float64, error) {
	raw, ok := c.lastValue(key)
	if !ok {
		return 0, missingKey("GetFloat", key)
	}
	return parseFloat("GetFloat", key, raw)
}

// GetBool parses the value of key with strconv.ParseBool.
func (c *Config) GetBool(key string) (bool, error) {
	raw, ok := c.lastValue(key)
	if !ok {
		return false, missingKey("GetBool", key)
	}
	return parseBool("GetBool", key, raw)
}

// GetDuration parses the value of key with time.ParseDuration.
func (c *Config) GetDuration(key string) (time.Duration, error) {
	raw, ok := c.lastValue(key)
	if !ok {
		return 0, missingKey("GetDuration", key)
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, malformed("GetDuration", key, raw, ErrMalformedValue, err)
	}
	return v, nil
}

// GetIntOr returns the integer value of key, or fallback when the key is
// absent or malformed. Malformed values are logged.
func (c *Config) GetIntOr(key string, fallback int) int {
	v, err := c.GetInt(key)
	if err != nil {
		c.logMalformed(key, err)
		return fallback
	}
	return v
}

// GetFloatOr returns the float value of key, or fallback.
func (c *Config) GetFloatOr(key string, fallback float64) float64 {
	v, err := c.GetFloat(key)
	if err != nil {
		c.logMalformed(key, err)
		return fallback
	}
	return v
}

// GetBoolOr returns the boolean value of key, or fallback.
func (c *Config) GetBoolOr(key string, fallback bool) bool {
	v, err := c.GetBool(key)
	if err != nil {
		c.logMalformed(key, err)
		return fallback
	}
	return v
}

// GetDurationOr returns the duration value of key, or fallback.
func (c *Config) GetDurationOr(key string, fallback time.Duration) time.Duration {
	v, err := c.GetDuration(key)
	if err != nil {
		c.logMalformed(key, err)
		return fallback
	}
	return v
}

func (c *Config) logMalformed(key string, err error) {
	if !c.Has(key) {
		return
	}
	c.log(Event{Kind: EventMalformedValue, Path: c.Source(), Key: key, Err: err})
}

// parseInteger, parseFloat and parseBool hold the coercion rules shared by
// the getters and the expression helpers.
func parseInteger(op, key, raw string, bits int) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, bits)
	if err != nil {
		return 0, malformed(op, key, raw, ErrMalformedNumber, err)
	}
	return v, nil
}

func parseFloat(op, key, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, malformed(op, key, raw, ErrMalformedNumber, err)
	}
	return v, nil
}

func parseBool(op, key, raw string) (bool, error) {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, malformed(op, key, raw, ErrMalformedValue, err)
	}
	return v, nil
}
