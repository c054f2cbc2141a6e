package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/natefinch/atomic"

	"github.com/ardnew/press/log"
	"github.com/ardnew/press/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file." short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalWithOptions(
		i.flagValues(ktx),
		yaml.Indent(defaultConfigIndent),
	)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	err = atomic.WriteFile(confPath, bytes.NewReader(data))
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.FromContext(ctx).DebugContext(ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// flagValues collects the set global flags, nested by their hyphenated
// prefix so that log-level is written as log: {level: ...}.
func (i *Init) flagValues(ktx *kong.Context) map[string]any {
	values := make(map[string]any)

	prefixIgnore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		val, ok := configValue(ktx.FlagValue(flag))
		if !ok {
			continue
		}

		group, name, nested := strings.Cut(flag.Name, "-")
		if !nested {
			values[flag.Name] = val

			continue
		}

		sub, ok := values[group].(map[string]any)
		if !ok {
			sub = make(map[string]any)
			values[group] = sub
		}

		sub[name] = val
	}

	return values
}

// configValue converts a flag value into YAML data. Empty strings and
// empty slices are omitted.
func configValue(val any) (any, bool) {
	switch v := val.(type) {
	case nil:
		return nil, false

	case bool, int, int64, uint, uint64, float64:
		return v, true

	case string:
		return v, v != ""

	case []string:
		return v, len(v) > 0

	case fmt.Stringer:
		return v.String(), true

	default:
		s := fmt.Sprint(v)

		return s, s != ""
	}
}
