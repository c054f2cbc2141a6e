package cli

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/press/cli/cmd"
	"github.com/ardnew/press/cli/cmd/repl"
	"github.com/ardnew/press/lang"
	"github.com/ardnew/press/log"
	"github.com/ardnew/press/pkg"
	"github.com/ardnew/press/tree"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

// CLI is the top-level command-line interface for press.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Render cmd.Render `cmd:"" help:"Render trees against metadata."`
	Eval   cmd.Eval   `cmd:"" help:"Reduce and format a single path."`
	Fmt    cmd.Fmt    `cmd:"" help:"Print a tree document."`
	Init   cmd.Init   `cmd:"" help:"Initialize configuration file."`
	Repl   repl.Repl  `cmd:"" help:"Evaluate paths interactively."`
}

// Run executes the press CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := pkg.MkdirAll()
	if err != nil {
		return err
	}

	configFilePath := pkg.ConfigPath(baseConfig)

	vars := kong.Vars{
		"version":            pkg.Version,
		"maxDepth":           strconv.Itoa(lang.DefaultMaxDepth),
		"treeFormat":         tree.DefaultFormat.String(),
		"treeFormatEnum":     strings.Join(slices.Collect(tree.Formats()), ","),
		cmd.ConfigIdentifier: configFilePath + ".yaml",
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before kong parses anything so that parse
	// errors are already reported in the requested format.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve, configFilePath+".yaml"),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	ctx = cmd.WithContext(ctx, ktx)
	ctx = log.IntoContext(ctx, log.Default())

	return ktx.Run(ctx, &cli)
}
