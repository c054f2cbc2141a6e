package tree

import (
	"fmt"
	"log/slog"

	"github.com/ardnew/press/lang"
)

// nodeDoc is the serialized form of a single node. Exactly one of Text, Sub,
// Each, or Root identifies the node kind.
type nodeDoc struct {
	Text     *string   `yaml:"text,omitempty"     json:"text,omitempty"`
	Sub      any       `yaml:"sub,omitempty"      json:"sub,omitempty"`
	Param    any       `yaml:"param,omitempty"    json:"param,omitempty"`
	Indirect bool      `yaml:"indirect,omitempty" json:"indirect,omitempty"`
	Each     any       `yaml:"each,omitempty"     json:"each,omitempty"`
	As       string    `yaml:"as,omitempty"       json:"as,omitempty"`
	Root     *string   `yaml:"root,omitempty"     json:"root,omitempty"`
	Body     []nodeDoc `yaml:"body,omitempty"     json:"body,omitempty"`
}

func (d *nodeDoc) kinds() int {
	n := 0

	for _, set := range []bool{d.Text != nil, d.Sub != nil, d.Each != nil, d.Root != nil} {
		if set {
			n++
		}
	}

	return n
}

// decodeRoot converts a top-level document into a root node.
func decodeRoot(d *nodeDoc) (*lang.Root, error) {
	if d.Root == nil {
		return nil, ErrInvalidNode.With(slog.String("reason", "document has no root"))
	}

	node, err := decodeNode(d, "")
	if err != nil {
		return nil, err
	}

	return node.(*lang.Root), nil
}

func decodeNode(d *nodeDoc, path string) (lang.Node, error) {
	if d.kinds() != 1 {
		return nil, ErrInvalidNode.With(
			slog.String("path", path),
			slog.String("reason", "node must set exactly one of text, sub, each, root"),
		)
	}

	switch {
	case d.Text != nil:
		return &lang.Text{Content: *d.Text}, nil

	case d.Sub != nil:
		expr, err := decodeExpr(d.Sub)
		if err != nil {
			return nil, wrapPath(err, path)
		}

		sub := &lang.Substitution{Expr: expr, Indirect: d.Indirect}

		if d.Param != nil {
			if sub.Param, err = decodeParam(d.Param); err != nil {
				return nil, wrapPath(err, path)
			}
		}

		return sub, nil

	case d.Each != nil:
		seq, err := decodeExpr(d.Each)
		if err != nil {
			return nil, wrapPath(err, path)
		}

		body, err := decodeBody(d.Body, path)
		if err != nil {
			return nil, err
		}

		return &lang.Iteration{Seq: seq, Name: d.As, Body: body}, nil

	default:
		body, err := decodeBody(d.Body, path)
		if err != nil {
			return nil, err
		}

		return &lang.Root{Identity: *d.Root, Body: body}, nil
	}
}

func decodeBody(docs []nodeDoc, path string) ([]lang.Node, error) {
	body := make([]lang.Node, len(docs))

	for i := range docs {
		node, err := decodeNode(&docs[i], fmt.Sprintf("%s/body/%d", path, i))
		if err != nil {
			return nil, err
		}

		body[i] = node
	}

	return body, nil
}

func wrapPath(err error, path string) error {
	if e, ok := err.(*lang.Error); ok {
		return e.With(slog.String("path", path))
	}

	return err
}

// encodeNode is the inverse of decodeNode.
func encodeNode(n lang.Node) nodeDoc {
	switch v := n.(type) {
	case *lang.Text:
		content := v.Content

		return nodeDoc{Text: &content}

	case *lang.Substitution:
		d := nodeDoc{Sub: encodeExpr(v.Expr), Indirect: v.Indirect}
		if v.Param != nil {
			d.Param = encodeParam(v.Param)
		}

		return d

	case *lang.Iteration:
		return nodeDoc{
			Each: encodeExpr(v.Seq),
			As:   v.Name,
			Body: encodeBody(v.Body),
		}

	case *lang.Root:
		identity := v.Identity

		return nodeDoc{Root: &identity, Body: encodeBody(v.Body)}

	default:
		text := n.String()

		return nodeDoc{Text: &text}
	}
}

func encodeBody(nodes []lang.Node) []nodeDoc {
	if len(nodes) == 0 {
		return nil
	}

	docs := make([]nodeDoc, len(nodes))
	for i, n := range nodes {
		docs[i] = encodeNode(n)
	}

	return docs
}
