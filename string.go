package configfile

import (
	"fmt"
	"strings"
)

// String renders the config for diagnostics. The output is deterministic for
// a given state and never empty.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("configfile.Config")
	if c == nil {
		b.WriteString("(nil)")
		return b.String()
	}
	fmt.Fprintf(&b, "{name=%q", c.name)
	if c.source != "" {
		fmt.Fprintf(&b, " source=%q", c.source)
	}
	fmt.Fprintf(&b, " keys=%d}", len(c.entries))
	for _, entry := range c.entries {
		for _, value := range entry.Values {
			fmt.Fprintf(&b, "\n  %s=%q", entry.Key, value)
		}
	}
	return b.String()
}
