package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve is a [kong.ConfigurationLoader] for YAML config files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve, "/path/to/config.yaml")
//
// Nested mappings are flattened by joining keys with hyphens, so both of the
// following set --log-level:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Underscores are accepted in place of hyphens. Scalars are converted to
// strings so that kong parses them with the flag's own decoder. Command-line
// flags override config file values.
func resolve(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc map[string]any

	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, err
	}

	cfg := make(config)
	cfg.flatten("", doc)

	return cfg, nil
}

// config implements [kong.Resolver] over a flattened YAML mapping.
type config map[string]any

func (c config) flatten(prefix string, doc map[string]any) {
	for key, val := range doc {
		name := strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			name = prefix + "-" + name
		}

		switch v := val.(type) {
		case map[string]any:
			c.flatten(name, v)

		case []any:
			items := make([]any, len(v))
			for i, item := range v {
				items[i] = scalar(item)
			}

			c[name] = items

		default:
			c[name] = scalar(v)
		}
	}
}

// scalar renders a YAML scalar in the form kong expects on the command line.
func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		b, err := yaml.Marshal(v)
		if err != nil {
			return ""
		}

		return strings.TrimSpace(string(b))
	}
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver]. A flag of a subcommand is first looked
// up qualified by the command name ("render-jobs"), then unqualified.
func (c config) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if parent != nil && parent.Command != nil {
		if value, ok := c[parent.Command.Name+"-"+flag.Name]; ok {
			return value, nil
		}
	}

	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	return nil, nil
}
