package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/press/tree"
)

// Fmt reads tree documents and prints them in the chosen format.
type Fmt struct {
	Format string   `default:"${treeFormat}" enum:"${treeFormatEnum}" help:"Output format." short:"f"`
	Indent int      `default:"2"             help:"Indent width (0 selects a compact form)." short:"i"`
	Trees  []string `arg:""                  default:"-" help:"Tree document(s) or '-' for stdin." name:"tree" type:"existingfile"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	format, err := tree.ParseFormat(f.Format)
	if err != nil {
		return err
	}

	roots, err := loadTrees(ctx, f.Trees)
	if err != nil {
		return err
	}

	for _, root := range roots {
		err = tree.Encode(ctx, os.Stdout, root, format, f.Indent)
		if err != nil {
			return ErrWriteOutput.Wrap(err).
				With(slog.String("root", root.Identity), slog.String("format", f.Format))
		}
	}

	return nil
}
