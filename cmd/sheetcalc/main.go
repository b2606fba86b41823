package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/midbel/cli"
	"github.com/midbel/sheetcalc/config"
	"github.com/midbel/sheetcalc/formula/builtins"
	"github.com/midbel/sheetcalc/grid"
)

var errFail = errors.New("fail")

var (
	summary = "sheetcalc compiles and evaluates spreadsheet formulas"
	help    = ""
)

var settings = struct {
	File   string
	Config config.Config
	Logger *slog.Logger
}{
	Config: config.Default(),
}

func main() {
	var (
		set  = cli.NewFlagSet("sheetcalc")
		root = prepare()
	)
	root.SetSummary(summary)
	root.SetHelp(help)
	set.StringVar(&settings.File, "c", "", "configuration file")
	if err := set.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			root.Help()
			os.Exit(2)
		}
	}
	if err := configure(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	err := root.Execute(set.Args())
	if err != nil {
		if s, ok := err.(cli.SuggestionError); ok && len(s.Others) > 0 {
			fmt.Fprintln(os.Stderr, "similar command(s)")
			for _, n := range s.Others {
				fmt.Fprintln(os.Stderr, "-", n)
			}
		}
		if !errors.Is(err, errFail) {
			fmt.Fprintln(os.Stderr, failure.Render(err.Error()))
		}
		os.Exit(1)
	}
}

func configure() error {
	if settings.File != "" {
		cfg, err := config.Load(settings.File)
		if err != nil {
			return err
		}
		settings.Config = cfg
	}
	settings.Logger = settings.Config.Logger(os.Stderr)
	return nil
}

func newDocument() (*grid.Document, error) {
	options, err := settings.Config.Options(settings.Logger)
	if err != nil {
		return nil, err
	}
	return grid.New(builtins.Registry(), options...), nil
}

func documentOptions() ([]grid.Option, error) {
	return settings.Config.Options(settings.Logger)
}

func prepare() *cli.CommandTrie {
	root := cli.New()
	root.Register([]string{"tokens"}, &tokensCmd)
	root.Register([]string{"normalize"}, &normalizeCmd)
	root.Register([]string{"parse"}, &parseCmd)
	root.Register([]string{"compile"}, &compileCmd)
	root.Register([]string{"eval"}, &evalCmd)
	root.Register([]string{"functions"}, &functionsCmd)
	root.Register([]string{"run"}, &runCmd)
	root.Register([]string{"pack"}, &packCmd)
	return root
}

var tokensCmd = cli.Command{
	Name:    "tokens",
	Alias:   []string{"scan", "lex"},
	Summary: "print the tokens of a formula",
	Usage:   "tokens [-n] <formula>",
	Handler: &TokensCommand{},
}

var normalizeCmd = cli.Command{
	Name:    "normalize",
	Summary: "print the normalized text and the dependencies of a formula",
	Usage:   "normalize <formula>",
	Handler: &NormalizeCommand{},
}

var parseCmd = cli.Command{
	Name:    "parse",
	Alias:   []string{"ast"},
	Summary: "print the syntax tree of a formula",
	Usage:   "parse [-f] <formula>",
	Handler: &ParseCommand{},
}

var compileCmd = cli.Command{
	Name:    "compile",
	Summary: "compile a formula and print its procedure",
	Usage:   "compile <formula>",
	Handler: &CompileCommand{},
}

var evalCmd = cli.Command{
	Name:    "eval",
	Alias:   []string{"calc"},
	Summary: "evaluate a formula, optionally against a snapshot",
	Usage:   "eval [-f snapshot] [-s sheet] <formula>",
	Handler: &EvalCommand{},
}

var functionsCmd = cli.Command{
	Name:    "functions",
	Alias:   []string{"funcs"},
	Summary: "list the functions available to formulas",
	Usage:   "functions",
	Handler: &FunctionsCommand{},
}

var runCmd = cli.Command{
	Name:    "run",
	Alias:   []string{"print", "show"},
	Summary: "load a snapshot, compute its formulas and print its sheets",
	Usage:   "run [-r] [-s sheet] [-o table|csv] <snapshot>",
	Handler: &RunCommand{},
}

var packCmd = cli.Command{
	Name:    "pack",
	Summary: "build a snapshot from a listing of cells",
	Usage:   "pack [-o file] <listing|file.csv>",
	Handler: &PackCommand{},
}
