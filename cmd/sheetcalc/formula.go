package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/midbel/cli"
	"github.com/midbel/sheetcalc/formula/builtins"
	"github.com/midbel/sheetcalc/formula/op"
	"github.com/midbel/sheetcalc/formula/parse"
	"github.com/midbel/sheetcalc/grid"
	"github.com/midbel/sheetcalc/value"
)

type TokensCommand struct {
	Normalized bool
}

func (c TokensCommand) Run(args []string) error {
	set := cli.NewFlagSet("tokens")
	set.BoolVar(&c.Normalized, "n", false, "read the formula as a normalized formula")
	if err := set.Parse(args); err != nil {
		return err
	}
	mode := parse.ModeFormula
	if c.Normalized {
		mode = parse.ModeNormalized
	}
	tokens, err := parse.Tokenize(set.Arg(0), mode)
	if err != nil {
		return err
	}
	for _, tok := range tokens {
		if tok.Type == op.Space {
			continue
		}
		fmt.Printf("%3d: %s\n", tok.Pos, tok)
	}
	return nil
}

type NormalizeCommand struct{}

func (c NormalizeCommand) Run(args []string) error {
	set := cli.NewFlagSet("normalize")
	if err := set.Parse(args); err != nil {
		return err
	}
	norm, err := parse.NormalizeString(set.Arg(0))
	if err != nil {
		return err
	}
	fmt.Println(norm.Text)
	for i, d := range norm.Deps {
		fmt.Printf("%3d: %s\n", i, d)
	}
	return nil
}

type ParseCommand struct {
	Formula bool
}

func (c ParseCommand) Run(args []string) error {
	set := cli.NewFlagSet("parse")
	set.BoolVar(&c.Formula, "f", false, "print the formula rebuilt from the tree")
	if err := set.Parse(args); err != nil {
		return err
	}
	node, err := parse.ParseString(set.Arg(0))
	if err != nil {
		return err
	}
	if c.Formula {
		fmt.Println(parse.Format(node))
		return nil
	}
	fmt.Println(parse.Dump(node))
	return nil
}

type CompileCommand struct{}

func (c CompileCommand) Run(args []string) error {
	set := cli.NewFlagSet("compile")
	if err := set.Parse(args); err != nil {
		return err
	}
	doc, err := newDocument()
	if err != nil {
		return err
	}
	var (
		compiled = doc.Engine().Compile(set.Arg(0))
		proc     = compiled.Procedure
	)
	fmt.Println("procedure:", proc.Text)
	if proc.BadExpression() {
		fmt.Println("error:", failure.Render(proc.Err.Error()))
		return errFail
	}
	fmt.Println("async:", proc.Async)
	fmt.Println("volatile:", proc.Volatile)
	if len(proc.Symbols) > 0 {
		fmt.Println("symbols:", strings.Join(proc.Symbols, ", "))
	}
	var formats []string
	for _, f := range proc.Formats {
		formats = append(formats, f.String())
	}
	if len(formats) > 0 {
		fmt.Println("formats:", strings.Join(formats, ", "))
	}
	for i, d := range compiled.Deps() {
		fmt.Printf("%3d: %s\n", i, d)
	}
	return nil
}

type EvalCommand struct {
	File  string
	Sheet string
	Debug bool
}

func (c EvalCommand) Run(args []string) error {
	set := cli.NewFlagSet("eval")
	set.StringVar(&c.File, "f", "", "snapshot to evaluate the formula against")
	set.StringVar(&c.Sheet, "s", "", "sheet of the formula")
	set.BoolVar(&c.Debug, "d", false, "print the values of the nodes marked with ?")
	if err := set.Parse(args); err != nil {
		return err
	}
	var (
		doc *grid.Document
		err error
		ctx = context.Background()
	)
	if c.File != "" {
		doc, err = loadDocument(ctx, c.File)
	} else {
		doc, err = newDocument()
		if err == nil {
			_, err = doc.AddSheet(c.Sheet, grid.DefaultSize)
		}
	}
	if err != nil {
		return err
	}
	var trace func(parse.Node, value.Value)
	if c.Debug {
		trace = func(n parse.Node, v value.Value) {
			fmt.Printf("? %s => %s\n", parse.Format(n), render(v))
		}
	}
	val, err := doc.Trace(ctx, c.Sheet, set.Arg(0), trace)
	if err != nil {
		return err
	}
	fmt.Println(render(val))
	return nil
}

type FunctionsCommand struct{}

func (c FunctionsCommand) Run(args []string) error {
	set := cli.NewFlagSet("functions")
	if err := set.Parse(args); err != nil {
		return err
	}
	reg := builtins.Registry()
	for _, name := range reg.Names() {
		fn, _ := reg.Lookup(name)
		var flags []string
		if fn.Async {
			flags = append(flags, "async")
		}
		if fn.Volatile {
			flags = append(flags, "volatile")
		}
		line := fn.Signature()
		if len(flags) > 0 {
			line += " " + muted.Render("["+strings.Join(flags, ",")+"]")
		}
		fmt.Println(line)
	}
	return nil
}
