package cmd

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/press/lang"
	"github.com/ardnew/press/log"
	"github.com/ardnew/press/tree"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// inputs is an ordered set of opened input files.
type inputs struct {
	names []string
	files []*os.File
}

// fileKey uniquely identifies a file by its device and inode numbers, which
// collapses symlinks and relative spellings of the same file.
type fileKey struct {
	dev uint64
	ino uint64
}

// openInputs opens each named file once, in order. Every occurrence of "-"
// collapses to a single stdin input placed last, after all regular files.
func openInputs(paths []string) (*inputs, error) {
	var (
		in    inputs
		stdin bool
	)

	seen := make(map[fileKey]struct{}, len(paths))

	for _, path := range paths {
		if path == stdinSource {
			stdin = true

			continue
		}

		file, err := openUnique(path, seen)
		if err != nil {
			return nil, errors.Join(err, in.Close())
		}

		if file != nil {
			in.names = append(in.names, path)
			in.files = append(in.files, file)
		}
	}

	if stdin {
		in.names = append(in.names, stdinSource)
		in.files = append(in.files, os.Stdin)
	}

	return &in, nil
}

// openUnique opens path unless a file with the same device and inode was
// already opened, in which case it returns nil and no error.
func openUnique(path string, seen map[fileKey]struct{}) (*os.File, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, ErrOpenInput.Wrap(err).With(slog.String("file", path))
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, ErrOpenInput.Wrap(err).With(slog.String("file", path))
	}

	if key, ok := makeFileKey(info); ok {
		if _, dup := seen[key]; dup {
			return nil, nil
		}

		seen[key] = struct{}{}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, ErrOpenInput.Wrap(err).With(slog.String("file", path))
	}

	return file, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// All yields each input with its name.
func (in *inputs) All() iter.Seq2[string, io.Reader] {
	return func(yield func(string, io.Reader) bool) {
		for i, f := range in.files {
			if !yield(in.names[i], f) {
				return
			}
		}
	}
}

// Readers returns the inputs in order.
func (in *inputs) Readers() []io.Reader {
	readers := make([]io.Reader, len(in.files))
	for i, f := range in.files {
		readers[i] = f
	}

	return readers
}

// Close closes every input except stdin.
func (in *inputs) Close() error {
	var errs []error

	for _, f := range in.files {
		if f != os.Stdin {
			errs = append(errs, f.Close())
		}
	}

	return errors.Join(errs...)
}

// LoadMetadata merges the named metadata documents. No paths yields an empty
// document.
func LoadMetadata(ctx context.Context, paths []string) (map[string]any, error) {
	in, err := openInputs(paths)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	meta, err := tree.LoadMetadata(ctx, in.Readers()...)
	if err != nil {
		return nil, err
	}

	log.FromContext(ctx).DebugContext(ctx, "metadata loaded",
		slog.Int("documents", len(in.files)),
		slog.Int("keys", len(meta)),
	)

	return meta, nil
}

// loadTrees decodes each named tree document in order.
func loadTrees(ctx context.Context, paths []string) ([]*lang.Root, error) {
	in, err := openInputs(paths)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	logger := log.FromContext(ctx)
	roots := make([]*lang.Root, 0, len(in.files))

	for name, r := range in.All() {
		root, err := tree.Read(ctx, r, tree.WithLogger(logger))
		if err != nil {
			return nil, ErrLoadTree.Wrap(err).With(slog.String("file", name))
		}

		roots = append(roots, root)
	}

	return roots, nil
}

// LanguageOption converts a locale flag into a core option. An empty flag
// leaves locale selection to the environment.
func LanguageOption(s string) ([]lang.Option, error) {
	if s == "" {
		return nil, nil
	}

	tag, err := lang.ParseLocale(s)
	if err != nil {
		return nil, err
	}

	return []lang.Option{lang.WithLocale(tag)}, nil
}
