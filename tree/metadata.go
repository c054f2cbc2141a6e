package tree

import (
	"context"
	"io"
	"log/slog"
	"maps"

	"github.com/goccy/go-yaml"
)

// LoadMetadata decodes each reader as a YAML (or JSON) mapping and merges
// them left to right into one metadata document. Nested mappings merge
// recursively; any other value in a later document replaces the earlier one.
func LoadMetadata(ctx context.Context, readers ...io.Reader) (map[string]any, error) {
	meta := make(map[string]any)

	for i, r := range readers {
		data, err := readAll(r)
		if err != nil {
			return nil, err
		}

		var doc any
		if err := yaml.UnmarshalContext(ctx, data, &doc); err != nil {
			return nil, ErrDecode.Wrap(err).With(slog.Int("document", i))
		}

		switch m := doc.(type) {
		case nil:
			continue

		case map[string]any:
			merge(meta, m)

		default:
			return nil, ErrMetadata.With(slog.Int("document", i))
		}
	}

	return meta, nil
}

func merge(dst, src map[string]any) {
	for k, v := range src {
		sub, ok := v.(map[string]any)
		if !ok {
			dst[k] = v

			continue
		}

		if cur, ok := dst[k].(map[string]any); ok {
			merge(cur, sub)

			continue
		}

		dst[k] = maps.Clone(sub)
	}
}
