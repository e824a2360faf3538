package configfile

import (
	"strings"

	"github.com/goliatone/go-configfile/layering"
	"github.com/goliatone/go-configfile/pkg/activity"
)

const commentMarker = "#"

// Name returns the config label. Sub-configs carry their qualified prefix.
func (c *Config) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// Source returns the path the config was loaded from, if any.
func (c *Config) Source() string {
	if c == nil {
		return ""
	}
	return c.source
}

// Len returns the number of distinct keys.
func (c *Config) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Keys returns every key in canonical order.
func (c *Config) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, len(c.entries))
	for i, entry := range c.entries {
		keys[i] = entry.Key
	}
	return keys
}

// Has reports whether key holds at least one value.
func (c *Config) Has(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[key]
	return ok
}

// Entries returns a deep copy of the stored entries in canonical order.
func (c *Config) Entries() []layering.Entry {
	if c == nil {
		return nil
	}
	return layering.Clone(c.entries)
}

// Set replaces every value of key with value. Key and value are trimmed the
// same way the parser trims them; keys that could not be written back out
// (empty, containing '=' or a line break, or starting with '#') are ignored.
// Like every mutator, Set is a no-op on a nil Config.
func (c *Config) Set(key, value string) {
	c.SetList(key, []string{value})
}

// Add appends value to the values of key.
func (c *Config) Add(key, value string) {
	if c == nil {
		return
	}
	key, ok := normalizeKey(key)
	if !ok {
		return
	}
	old := c.GetList(key)
	c.appendValue(key, strings.TrimSpace(value))
	c.emit(activity.BuildConfigUpdatedEvent(c.eventInput(key, old, c.GetList(key))))
}

// SetList replaces every value of key. An empty list removes the key.
func (c *Config) SetList(key string, values []string) {
	if c == nil {
		return
	}
	key, ok := normalizeKey(key)
	if !ok {
		return
	}
	if len(values) == 0 {
		c.Remove(key)
		return
	}
	old := c.GetList(key)
	trimmed := make([]string, len(values))
	for i, value := range values {
		trimmed[i] = strings.TrimSpace(value)
	}
	c.putValues(key, trimmed)
	c.emit(activity.BuildConfigUpdatedEvent(c.eventInput(key, old, trimmed)))
}

// Remove deletes key and reports whether it was present.
func (c *Config) Remove(key string) bool {
	if c == nil {
		return false
	}
	pos, ok := c.index[key]
	if !ok {
		return false
	}
	old := append([]string(nil), c.entries[pos].Values...)
	c.entries = append(c.entries[:pos], c.entries[pos+1:]...)
	delete(c.index, key)
	for i := pos; i < len(c.entries); i++ {
		c.index[c.entries[i].Key] = i
	}
	c.emit(activity.BuildConfigDeletedEvent(c.eventInput(key, old, nil)))
	return true
}

// Clone returns an independent copy carrying the same name and options.
func (c *Config) Clone() *Config {
	if c == nil {
		return New()
	}
	return c.derive(c.name, c.entries)
}

func (c *Config) derive(name string, entries []layering.Entry) *Config {
	o := c.opts
	o.name = name
	out := newConfig(o)
	out.source = c.source
	out.replaceEntries(entries)
	return out
}

func (c *Config) replaceEntries(entries []layering.Entry) {
	c.entries = layering.Clone(entries)
	if c.entries == nil {
		c.entries = []layering.Entry{}
	}
	c.index = make(map[string]int, len(c.entries))
	for i, entry := range c.entries {
		c.index[entry.Key] = i
	}
}

func (c *Config) putValues(key string, values []string) {
	if pos, ok := c.index[key]; ok {
		c.entries[pos].Values = values
		return
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, layering.Entry{Key: key, Values: values})
}

func (c *Config) appendValue(key, value string) {
	if pos, ok := c.index[key]; ok {
		c.entries[pos].Values = append(c.entries[pos].Values, value)
		return
	}
	c.putValues(key, []string{value})
}

func (c *Config) lastValue(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	pos, ok := c.index[key]
	if !ok {
		return "", false
	}
	return c.entries[pos].Last()
}

func normalizeKey(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, commentMarker) {
		return "", false
	}
	if strings.ContainsAny(key, "=\r\n") {
		return "", false
	}
	return key, true
}

func qualify(parent, prefix string) string {
	switch {
	case parent == "":
		return prefix
	case prefix == "":
		return parent
	default:
		return parent + layering.Separator + prefix
	}
}
