package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/midbel/cli"
	"github.com/midbel/sheetcalc/csv"
	"github.com/midbel/sheetcalc/formula/builtins"
	"github.com/midbel/sheetcalc/grid"
	"github.com/midbel/sheetcalc/layout"
	"github.com/midbel/sheetcalc/snapshot"
)

func loadDocument(ctx context.Context, file string) (*grid.Document, error) {
	options, err := documentOptions()
	if err != nil {
		return nil, err
	}
	doc, err := snapshot.ReadFile(file, builtins.Registry(), options...)
	if err != nil {
		return nil, err
	}
	if _, err := doc.Recompute(ctx); err != nil {
		return nil, err
	}
	if _, err := doc.Settle(ctx); err != nil {
		return nil, err
	}
	return doc, nil
}

type RunCommand struct {
	Sheet  string
	Raw    bool
	Format string
}

func (c RunCommand) Run(args []string) error {
	set := cli.NewFlagSet("run")
	set.StringVar(&c.Sheet, "s", "", "print only the given sheet")
	set.BoolVar(&c.Raw, "r", false, "print the content of the cells instead of their value")
	set.StringVar(&c.Format, "o", "table", "output format (table, csv)")
	if err := set.Parse(args); err != nil {
		return err
	}
	switch c.Format {
	case "table", "csv":
	default:
		return fmt.Errorf("%s: unsupported output format", c.Format)
	}
	doc, err := loadDocument(context.Background(), set.Arg(0))
	if err != nil {
		return err
	}
	for _, sh := range doc.Sheets() {
		if c.Sheet != "" && sh.Name() != c.Sheet {
			continue
		}
		if c.Format == "csv" {
			if err := csv.Export(os.Stdout, doc, sh.Name(), c.Raw); err != nil {
				return err
			}
			continue
		}
		fmt.Println(title.Render(sh.Name()))
		if c.Raw {
			fmt.Println(renderContents(sh))
			continue
		}
		rows, err := doc.Records(sh.Name())
		if err != nil {
			return err
		}
		fmt.Println(renderSheet(rows))
	}
	return nil
}

type PackCommand struct {
	OutFile string
}

// Run reads a listing where each line gives the content of a cell:
//
//	[sheet!]A1 content
//	%[sheet!]A1 format
//	@name [sheet!]A1:B2
//
// Empty lines and lines starting with # are skipped. Files with a .csv
// extension are imported as a single sheet named after the file.
func (c PackCommand) Run(args []string) error {
	set := cli.NewFlagSet("pack")
	set.StringVar(&c.OutFile, "o", "", "write snapshot to output file")
	if err := set.Parse(args); err != nil {
		return err
	}
	r, err := os.Open(set.Arg(0))
	if err != nil {
		return err
	}
	defer r.Close()

	doc, err := newDocument()
	if err != nil {
		return err
	}
	ext := filepath.Ext(set.Arg(0))
	if ext == ".csv" {
		name := strings.TrimSuffix(filepath.Base(set.Arg(0)), ext)
		_, err = csv.Import(r, doc, name, 0)
	} else {
		err = pack(doc, r)
	}
	if err != nil {
		return err
	}
	if c.OutFile == "" {
		c.OutFile = strings.TrimSuffix(set.Arg(0), ext) + snapshot.Extension
	}
	return snapshot.WriteFile(c.OutFile, doc)
}

const defaultSheet = "Sheet1"

type entry struct {
	kind   byte
	pos    layout.Position
	name   string
	target string
}

func pack(doc *grid.Document, r io.Reader) error {
	var (
		list  []entry
		sizes = make(map[string]layout.Dimension)
		order []string
		scan  = bufio.NewScanner(r)
	)
	for line := 1; scan.Scan(); line++ {
		str := strings.TrimSpace(scan.Text())
		if str == "" || strings.HasPrefix(str, "#") {
			continue
		}
		head, rest, _ := strings.Cut(str, " ")
		rest = strings.TrimSpace(rest)
		if name, ok := strings.CutPrefix(head, "@"); ok {
			list = append(list, entry{kind: '@', name: name, target: rest})
			continue
		}
		var e entry
		if addr, ok := strings.CutPrefix(head, "%"); ok {
			head, e.kind = addr, '%'
		}
		ref, err := layout.ParseReference(head)
		if err != nil || ref.Invalid || ref.IsRange() {
			return fmt.Errorf("line %d: %s: invalid cell address", line, head)
		}
		e.pos = ref.Position()
		e.target = rest
		if e.pos.Sheet == "" {
			e.pos.Sheet = defaultSheet
		}
		if _, ok := sizes[e.pos.Sheet]; !ok {
			order = append(order, e.pos.Sheet)
		}
		sizes[e.pos.Sheet] = sizes[e.pos.Sheet].Max(layout.Dimension{
			Lines:   e.pos.Line,
			Columns: e.pos.Column,
		})
		list = append(list, e)
	}
	if err := scan.Err(); err != nil {
		return err
	}
	for _, name := range order {
		size := sizes[name].Max(grid.DefaultSize)
		if _, err := doc.AddSheet(name, size); err != nil {
			return err
		}
	}
	for _, e := range list {
		var err error
		switch e.kind {
		case '@':
			err = doc.DefineName(e.name, e.target)
		case '%':
			err = doc.SetFormat(e.pos, e.target)
		default:
			err = doc.SetContent(e.pos, e.target)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
