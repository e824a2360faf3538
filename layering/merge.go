package layering

import "strings"

// Separator joins namespace segments inside a key.
const Separator = "."

// Entry is a fully-qualified key together with its ordered raw values.
type Entry struct {
	Key    string
	Values []string
}

// Last returns the final value stored for the entry.
func (e Entry) Last() (string, bool) {
	if len(e.Values) == 0 {
		return "", false
	}
	return e.Values[len(e.Values)-1], true
}

func (e Entry) clone() Entry {
	return Entry{Key: e.Key, Values: append([]string(nil), e.Values...)}
}

// Clone returns a deep copy of entries.
func Clone(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i := range entries {
		out[i] = entries[i].clone()
	}
	return out
}

// Find returns the entry stored under key.
func Find(entries []Entry, key string) (Entry, bool) {
	for _, entry := range entries {
		if entry.Key == key {
			return entry.clone(), true
		}
	}
	return Entry{}, false
}

// Filter returns the entries that live under prefix with the "prefix."
// portion stripped. An empty prefix addresses the whole set.
func Filter(entries []Entry, prefix string) []Entry {
	if prefix == "" {
		return Clone(entries)
	}
	marker := prefix + Separator
	out := make([]Entry, 0)
	for _, entry := range entries {
		rest, ok := strings.CutPrefix(entry.Key, marker)
		if !ok || rest == "" {
			continue
		}
		out = append(out, Entry{Key: rest, Values: append([]string(nil), entry.Values...)})
	}
	return out
}

// Globals returns the entries whose keys carry no namespace.
func Globals(entries []Entry) []Entry {
	out := make([]Entry, 0)
	for _, entry := range entries {
		if strings.Contains(entry.Key, Separator) {
			continue
		}
		out = append(out, entry.clone())
	}
	return out
}

// Prefixes lists the distinct first segments of namespaced keys in order of
// first appearance.
func Prefixes(entries []Entry) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, entry := range entries {
		head, _, ok := strings.Cut(entry.Key, Separator)
		if !ok || head == "" {
			continue
		}
		if _, dup := seen[head]; dup {
			continue
		}
		seen[head] = struct{}{}
		out = append(out, head)
	}
	return out
}

// MergeLayers composes layers ordered from strongest to weakest. A key keeps
// the position where the weakest layer introduced it while its values come
// from the strongest layer that defines it.
func MergeLayers(layers ...[]Entry) []Entry {
	if len(layers) == 0 {
		return nil
	}

	merged := Clone(layers[len(layers)-1])
	if merged == nil {
		merged = []Entry{}
	}
	index := make(map[string]int, len(merged))
	for i, entry := range merged {
		index[entry.Key] = i
	}

	for i := len(layers) - 2; i >= 0; i-- {
		for _, entry := range layers[i] {
			if pos, ok := index[entry.Key]; ok {
				merged[pos] = entry.clone()
				continue
			}
			index[entry.Key] = len(merged)
			merged = append(merged, entry.clone())
		}
	}
	return merged
}
