package configfile

import (
	"errors"
	"io"
	"time"

	"github.com/goliatone/go-configfile/layering"
	"github.com/goliatone/go-configfile/pkg/activity"
	"gopkg.in/yaml.v3"
)

// LoadYAML reads a YAML document at path into a Config. Errors follow Load:
// an unopenable file matches ErrNotFound.
func LoadYAML(path string, opts ...Option) (*Config, error) {
	o := applyOptions(opts)
	start := time.Now()

	file, err := openConfig(path)
	if err != nil {
		o.logger.LogEvent(Event{Kind: EventLoad, Config: o.name, Path: path, Duration: time.Since(start), Err: err})
		return nil, err
	}
	defer file.Close()

	cfg, err := parseYAML(file, path, o)
	if err != nil {
		o.logger.LogEvent(Event{Kind: EventLoad, Config: o.name, Path: path, Duration: time.Since(start), Err: err})
		return nil, err
	}
	cfg.log(Event{Kind: EventLoad, Path: path, Keys: cfg.Len(), Duration: time.Since(start)})
	cfg.emit(activity.BuildConfigLoadedEvent(activity.ConfigEventInput{
		Config: cfg.name,
		Source: path,
		Keys:   cfg.Keys(),
	}))
	return cfg, nil
}

// ParseYAML flattens a YAML mapping into dotted keys: nested mappings become
// namespaces and sequences of scalars become repeated values. Null scalars
// are stored as empty values; sequences holding mappings are rejected.
func ParseYAML(r io.Reader, opts ...Option) (*Config, error) {
	return parseYAML(r, "", applyOptions(opts))
}

func parseYAML(r io.Reader, source string, o options) (*Config, error) {
	cfg := newConfig(o)
	cfg.source = source

	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return nil, &ParseError{Source: source, Text: err.Error(), Err: ErrMalformedLine}
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return cfg, nil
		}
		root = root.Content[0]
	}
	root = resolveAlias(root)
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return cfg, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{Source: source, Line: root.Line, Text: root.Value, Err: ErrMalformedLine}
	}
	if err := flattenYAML(cfg, source, "", root); err != nil {
		return nil, err
	}
	return cfg, nil
}

func flattenYAML(cfg *Config, source, prefix string, node *yaml.Node) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := resolveAlias(node.Content[i])
		valueNode := resolveAlias(node.Content[i+1])

		name, ok := normalizeKey(keyNode.Value)
		if !ok || keyNode.Kind != yaml.ScalarNode {
			return &ParseError{Source: source, Line: keyNode.Line, Text: keyNode.Value, Err: ErrMalformedLine}
		}
		key := name
		if prefix != "" {
			key = prefix + layering.Separator + name
		}

		switch valueNode.Kind {
		case yaml.MappingNode:
			if err := flattenYAML(cfg, source, key, valueNode); err != nil {
				return err
			}
		case yaml.SequenceNode:
			values := make([]string, 0, len(valueNode.Content))
			for _, item := range valueNode.Content {
				item = resolveAlias(item)
				if item.Kind != yaml.ScalarNode {
					return &ParseError{Source: source, Line: item.Line, Text: key, Err: ErrMalformedValue}
				}
				values = append(values, scalarValue(item))
			}
			if len(values) > 0 {
				cfg.putValues(key, values)
			}
		default:
			cfg.putValues(key, []string{scalarValue(valueNode)})
		}
	}
	return nil
}

func scalarValue(node *yaml.Node) string {
	if node.Tag == "!!null" {
		return ""
	}
	return node.Value
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}
