package tree

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/press/lang"
)

// Format selects the encoding written by [Encode].
type Format int

const (
	// FormatText writes the indented outline of the tree.
	FormatText Format = iota

	// FormatYAML writes the tree document as YAML.
	FormatYAML

	// FormatJSON writes the tree document as JSON.
	FormatJSON
)

// DefaultFormat is the default encoding.
const DefaultFormat = FormatText

var formatName = [...]string{
	FormatText: "text",
	FormatYAML: "yaml",
	FormatJSON: "json",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatName) {
		return fmt.Sprintf("Format(%d)", int(f))
	}

	return formatName[f]
}

// Formats returns an iterator over the names of all supported formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range formatName {
			if !yield(name) {
				return
			}
		}
	}
}

// ParseFormat returns the format with the given case-insensitive name.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatName {
		if strings.EqualFold(s, name) {
			return Format(f), nil
		}
	}

	return DefaultFormat, ErrInvalidFormat.With(slog.String("format", s))
}

// Decode parses a tree document. JSON documents are accepted as YAML.
func Decode(ctx context.Context, data []byte) (*lang.Root, error) {
	var doc nodeDoc

	err := yaml.UnmarshalContext(ctx, data, &doc, yaml.DisallowUnknownField())
	if err != nil {
		return nil, ErrDecode.Wrap(err).
			With(slog.String("detail", yaml.FormatError(err, false, true)))
	}

	return decodeRoot(&doc)
}

// Encode writes root to w in the given format. Indent controls nesting
// width; zero selects a compact form.
func Encode(
	ctx context.Context,
	w io.Writer,
	root *lang.Root,
	format Format,
	indent int,
) error {
	switch format {
	case FormatText:
		return Print(w, root, indent)

	case FormatYAML:
		return encodeYAML(ctx, w, root, indent)

	case FormatJSON:
		return encodeJSON(w, root, indent)

	default:
		return ErrInvalidFormat.With(slog.String("format", format.String()))
	}
}

func encodeYAML(ctx context.Context, w io.Writer, root *lang.Root, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, encodeNode(root), opts...)
	if err != nil {
		return ErrEncode.Wrap(err)
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}

func encodeJSON(w io.Writer, root *lang.Root, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(encodeNode(root), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(encodeNode(root))
	}

	if err != nil {
		return ErrEncode.Wrap(err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// Print writes an outline of the tree with one node per line, nesting
// bodies by indent spaces (two when indent is zero).
func Print(w io.Writer, root *lang.Root, indent int) error {
	if indent <= 0 {
		indent = 2
	}

	return printNode(w, root, indent, 0)
}

func printNode(w io.Writer, n lang.Node, indent, depth int) error {
	if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", indent*depth), n); err != nil {
		return err
	}

	var body []lang.Node

	switch v := n.(type) {
	case *lang.Root:
		body = v.Body
	case *lang.Iteration:
		body = v.Body
	}

	for _, child := range body {
		if err := printNode(w, child, indent, depth+1); err != nil {
			return err
		}
	}

	return nil
}
