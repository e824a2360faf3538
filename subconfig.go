package configfile

import (
	"strings"

	"github.com/goliatone/go-configfile/layering"
)

// SubConfig extracts every key under prefix with the "prefix." portion
// stripped. An unknown prefix yields an empty Config, and an empty prefix a
// full copy.
func (c *Config) SubConfig(prefix string) *Config {
	prefix = normalizePrefix(prefix)
	if c == nil {
		return New(WithName(prefix))
	}
	return c.derive(qualify(c.name, prefix), layering.Filter(c.entries, prefix))
}

// InheritedSubConfig works like SubConfig and additionally copies every
// parent key that has no namespace. When a key exists both ways the
// namespaced value wins.
func (c *Config) InheritedSubConfig(prefix string) *Config {
	prefix = normalizePrefix(prefix)
	if c == nil {
		return New(WithName(prefix))
	}
	namespaced := layering.Filter(c.entries, prefix)
	merged := layering.MergeLayers(namespaced, layering.Globals(c.entries))
	return c.derive(qualify(c.name, prefix), merged)
}

// Prefixes lists the distinct top-level namespaces in order of appearance.
func (c *Config) Prefixes() []string {
	if c == nil {
		return nil
	}
	return layering.Prefixes(c.entries)
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), layering.Separator)
}
