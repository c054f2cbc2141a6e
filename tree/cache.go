package tree

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/press/lang"
	"github.com/ardnew/press/log"
)

// globalCache stores decoded trees keyed by the xxh3 hash of their source.
// Trees are immutable, so one decoded tree is shared by every reader of the
// same source.
var globalCache sync.Map

// state tracks decoding of one source.
type state struct {
	once sync.Once
	root *lang.Root
	err  error
}

// Option configures [Read].
type Option func(*options)

type options struct {
	logger log.Logger
	cache  bool
}

// WithLogger sets the structured logger for trace-level debugging.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCache enables or disables the shared source cache (enabled by
// default).
func WithCache(enable bool) Option {
	return func(o *options) {
		o.cache = enable
	}
}

// Read reads and decodes a tree document from r.
//
// The reader is drained through an asynchronous read-ahead buffer. Decoded
// trees are cached by source hash, so reading the same document twice
// decodes it once.
func Read(ctx context.Context, r io.Reader, opts ...Option) (*lang.Root, error) {
	o := options{cache: true}
	for _, opt := range opts {
		opt(&o)
	}

	data, err := readAll(r)
	if err != nil {
		return nil, err
	}

	o.logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	if !o.cache {
		return Decode(ctx, data)
	}

	hash := xxh3.Hash(data)
	key := strconv.FormatUint(hash, 36)

	value, hit := globalCache.LoadOrStore(key, new(state))
	entry := value.(*state)

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
	)

	entry.once.Do(func() {
		entry.root, entry.err = Decode(ctx, data)
	})

	if entry.err != nil {
		// Failed decodes are not cached; a later read may succeed with a
		// live context.
		globalCache.CompareAndDelete(key, entry)

		return nil, entry.err
	}

	return entry.root, nil
}

// ClearCache removes all cached trees.
func ClearCache() {
	globalCache.Clear()
}

func readAll(r io.Reader) ([]byte, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("source", "reader"))
	}

	return data, nil
}
