package tree

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/press/lang"
)

// Keys of the single-entry mappings that spell out non-variable expressions.
const (
	keyLiteral  = "lit"
	keyVariable = "var"
	keyArray    = "array"
	keyGroup    = "group"
)

// decodeExpr converts a decoded YAML value into an expression. A bare string
// is a variable path; any other scalar is a literal.
func decodeExpr(x any) (lang.Expression, error) {
	switch v := x.(type) {
	case nil:
		return nil, nil

	case string:
		return lang.Var(v), nil

	case map[string]any:
		return decodeTagged(v)

	case []any:
		return nil, ErrInvalidExpr.With(
			slog.String("reason", "sequence must be tagged array or group"),
		)

	default:
		return lang.Lit(v), nil
	}
}

// decodeParam converts a format parameter. A bare string is a literal
// specifier rather than a variable path.
func decodeParam(x any) (lang.Expression, error) {
	if s, ok := x.(string); ok {
		return lang.Lit(s), nil
	}

	return decodeExpr(x)
}

func decodeTagged(m map[string]any) (lang.Expression, error) {
	if len(m) != 1 {
		return nil, ErrInvalidExpr.With(
			slog.Int("keys", len(m)),
			slog.String("reason", "tagged expression must have exactly one key"),
		)
	}

	for key, arg := range m {
		switch key {
		case keyLiteral:
			return lang.Lit(arg), nil

		case keyVariable:
			name, ok := arg.(string)
			if !ok {
				return nil, ErrInvalidExpr.With(
					slog.String("key", key),
					slog.String("type", fmt.Sprintf("%T", arg)),
				)
			}

			return lang.Var(name), nil

		case keyArray, keyGroup:
			items, ok := arg.([]any)
			if !ok {
				return nil, ErrInvalidExpr.With(
					slog.String("key", key),
					slog.String("type", fmt.Sprintf("%T", arg)),
				)
			}

			exprs := make([]lang.Expression, len(items))

			for i, item := range items {
				e, err := decodeExpr(item)
				if err != nil {
					return nil, err
				}

				if e == nil {
					e = lang.Literal{Value: lang.Null()}
				}

				exprs[i] = e
			}

			if key == keyArray {
				return lang.ArrayOf(exprs...), nil
			}

			return lang.GroupOf(exprs...), nil

		default:
			return nil, ErrInvalidExpr.With(slog.String("key", key))
		}
	}

	return nil, nil
}

// encodeExpr is the inverse of decodeExpr.
func encodeExpr(e lang.Expression) any {
	switch v := e.(type) {
	case nil:
		return nil

	case lang.Variable:
		return v.Name

	case lang.Literal:
		return map[string]any{keyLiteral: v.Value.Native()}

	case lang.Array:
		return map[string]any{keyArray: encodeExprs(v.Elements)}

	case lang.Group:
		return map[string]any{keyGroup: encodeExprs(v.Values)}

	default:
		return e.String()
	}
}

// encodeParam is the inverse of decodeParam.
func encodeParam(e lang.Expression) any {
	if lit, ok := e.(lang.Literal); ok {
		if s, ok := lit.Value.AsString(); ok {
			return s
		}
	}

	if v, ok := e.(lang.Variable); ok {
		return map[string]any{keyVariable: v.Name}
	}

	return encodeExpr(e)
}

func encodeExprs(exprs []lang.Expression) []any {
	out := make([]any, len(exprs))
	for i, e := range exprs {
		out[i] = encodeExpr(e)
	}

	return out
}

// ParseParam decodes a format parameter written inline, as on a command
// line. Text starting with "{" is a YAML flow mapping spelling out a tagged
// expression, such as {var: page.fmt} or {group: [a, b]}; anything else is a
// literal specifier taken verbatim. An empty string yields no parameter.
func ParseParam(ctx context.Context, s string) (lang.Expression, error) {
	trimmed := strings.TrimSpace(s)

	switch {
	case trimmed == "":
		return nil, nil

	case !strings.HasPrefix(trimmed, "{"):
		return lang.Lit(s), nil
	}

	var x map[string]any
	if err := yaml.UnmarshalContext(ctx, []byte(trimmed), &x); err != nil {
		return nil, ErrInvalidExpr.Wrap(err).With(slog.String("param", s))
	}

	return decodeTagged(x)
}
