package grid

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/midbel/sheetcalc/format"
	"github.com/midbel/sheetcalc/formula"
	"github.com/midbel/sheetcalc/formula/env"
	"github.com/midbel/sheetcalc/formula/parse"
	"github.com/midbel/sheetcalc/layout"
	"github.com/midbel/sheetcalc/profile"
	"github.com/midbel/sheetcalc/value"
)

const DefaultAsyncTimeout = 30 * time.Second

var DefaultSize = layout.Dimension{
	Lines:   1000,
	Columns: 26,
}

// Document is a workbook: its sheets, the formulas of its cells and the
// state needed to keep their values up to date. A document is owned by a
// single goroutine.
type Document struct {
	ID uuid.UUID

	engine   *formula.Engine
	registry *env.Registry
	sheets   []*Sheet
	names    map[string]layout.Reference

	deps     *dependencies
	dirty    *profile.Tracker
	queue    map[layout.Position]struct{}
	waiting  map[layout.Position]struct{}
	volatile map[layout.Position]struct{}
	pending  []*pendingEval
	epoch    uint64

	artifacts map[uuid.UUID]*artifactState

	logger  *slog.Logger
	formats *format.ValueFormatter
	timeout time.Duration
	shards  int
}

type Option func(*Document)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithAsyncTimeout(timeout time.Duration) Option {
	return func(d *Document) {
		d.timeout = timeout
	}
}

func WithFormatter(vf *format.ValueFormatter) Option {
	return func(d *Document) {
		d.formats = vf
	}
}

func WithShards(n int) Option {
	return func(d *Document) {
		d.shards = n
	}
}

func New(fns *env.Registry, options ...Option) *Document {
	d := Document{
		ID:        uuid.New(),
		registry:  fns,
		names:     make(map[string]layout.Reference),
		deps:      newDependencies(),
		dirty:     profile.NewTracker(),
		queue:     make(map[layout.Position]struct{}),
		waiting:   make(map[layout.Position]struct{}),
		volatile:  make(map[layout.Position]struct{}),
		artifacts: make(map[uuid.UUID]*artifactState),
		logger:    slog.New(slog.DiscardHandler),
		formats:   format.FormatValue(),
		timeout:   DefaultAsyncTimeout,
	}
	for _, o := range options {
		o(&d)
	}
	d.engine = formula.NewEngine(fns,
		formula.WithSymbols(&d),
		formula.WithLogger(d.logger),
		formula.WithShards(d.shards),
	)
	return &d
}

func (d *Document) Engine() *formula.Engine {
	return d.engine
}

// AddSheet creates a new sheet. An empty name gives a generated one and a
// name already in use gets a numeric suffix.
func (d *Document) AddSheet(name string, size layout.Dimension) (*Sheet, error) {
	if name == "" {
		name = fmt.Sprintf("Sheet%d", len(d.sheets)+1)
	}
	if size.Lines <= 0 || size.Columns <= 0 {
		size = DefaultSize
	}
	base := name
	for i := 1; d.hasSheet(name); i++ {
		name = fmt.Sprintf("%s_%03d", base, i)
	}
	sh := newSheet(name, size)
	d.sheets = append(d.sheets, sh)
	d.logger.Debug("sheet added", "sheet", name, "lines", size.Lines, "columns", size.Columns)
	return sh, nil
}

func (d *Document) hasSheet(name string) bool {
	_, err := d.Sheet(name)
	return err == nil
}

// Sheet returns the sheet with the given name. An empty name gives the first
// sheet of the document.
func (d *Document) Sheet(name string) (*Sheet, error) {
	if name == "" && len(d.sheets) > 0 {
		return d.sheets[0], nil
	}
	ix := slices.IndexFunc(d.sheets, func(s *Sheet) bool {
		return s.name == name
	})
	if ix < 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownSheet)
	}
	return d.sheets[ix], nil
}

func (d *Document) Sheets() []*Sheet {
	return slices.Clone(d.sheets)
}

func (d *Document) sheetIndex(name string) int {
	return slices.IndexFunc(d.sheets, func(s *Sheet) bool {
		return s.name == name
	})
}

// RemoveSheet drops a sheet with its cells. Formulas reading it are
// recomputed and give #REF!.
func (d *Document) RemoveSheet(name string) error {
	ix := d.sheetIndex(name)
	if ix < 0 {
		return fmt.Errorf("%s: %w", name, ErrUnknownSheet)
	}
	sh := d.sheets[ix]
	for pos := range sh.cells {
		d.forget(pos)
	}
	d.sheets = slices.Delete(d.sheets, ix, ix+1)
	d.touch(sh.Bounds())
	return nil
}

// SetContent replaces the content of a cell. Content starting with "=" is a
// formula. The cell and its readers are recomputed on the next Recompute.
func (d *Document) SetContent(pos layout.Position, raw string) error {
	sh, pos, err := d.locate(pos)
	if err != nil {
		return err
	}
	d.cancel(pos)
	cell := sh.cells[pos]
	if cell == nil {
		cell = &Cell{Position: pos}
	}
	cell.Raw = raw
	cell.Computed = ""
	if strings.HasPrefix(raw, "=") {
		c := d.engine.Compile(raw)
		cell.Formula = &c
		cell.Value = value.Blank{}
		cell.State = StateDirty
		d.queue[pos] = struct{}{}
	} else {
		cell.Formula = nil
		cell.Value = parseLiteral(raw)
		cell.State = StateClean
	}
	if raw == "" && cell.Format == "" {
		d.forget(pos)
		delete(sh.cells, pos)
	} else {
		sh.cells[pos] = cell
		d.index(cell)
	}
	d.touch(layout.SingleCell(pos))
	return nil
}

// SetFormat sets the number format of a cell.
func (d *Document) SetFormat(pos layout.Position, pattern string) error {
	sh, pos, err := d.locate(pos)
	if err != nil {
		return err
	}
	cell := sh.cells[pos]
	if cell == nil {
		if pattern == "" {
			return nil
		}
		cell = &Cell{
			Position: pos,
			Value:    value.Blank{},
		}
		sh.cells[pos] = cell
	}
	cell.Format = pattern
	d.touch(layout.SingleCell(pos))
	return nil
}

func (d *Document) Clear(pos layout.Position) error {
	return d.SetContent(pos, "")
}

func (d *Document) Cell(pos layout.Position) (*Cell, error) {
	sh, pos, err := d.locate(pos)
	if err != nil {
		return nil, err
	}
	cell := sh.cells[pos]
	if cell == nil {
		return nil, NoCell(pos)
	}
	return cell, nil
}

// Value returns the last computed value of a cell.
func (d *Document) Value(pos layout.Position) (value.ScalarValue, error) {
	sh, pos, err := d.locate(pos)
	if err != nil {
		return nil, err
	}
	return sh.Value(pos), nil
}

// Display returns the text of the value of a cell formatted with its own
// format or the format computed from its formula.
func (d *Document) Display(pos layout.Position) (string, error) {
	sh, pos, err := d.locate(pos)
	if err != nil {
		return "", err
	}
	cell := sh.cells[pos]
	if cell == nil {
		return "", nil
	}
	if value.IsBlank(cell.Value) {
		return "", nil
	}
	return d.formats.Display(cell.Value, cell.NumberFormat()), nil
}

// Records returns the displayed text of each line of a sheet.
func (d *Document) Records(name string) ([][]string, error) {
	sh, err := d.Sheet(name)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	for line := int64(1); line <= sh.Size.Lines; line++ {
		var (
			row   = make([]string, sh.Size.Columns)
			empty = true
		)
		for col := range row {
			pos := layout.Position{Sheet: sh.name, Line: line, Column: int64(col) + 1}
			row[col], _ = d.Display(pos)
			empty = empty && row[col] == ""
		}
		rows = append(rows, row)
		if empty {
			rows[len(rows)-1] = nil
		}
	}
	for len(rows) > 0 && rows[len(rows)-1] == nil {
		rows = rows[:len(rows)-1]
	}
	for i := range rows {
		if rows[i] == nil {
			rows[i] = make([]string, sh.Size.Columns)
		}
	}
	return rows, nil
}

// DefineName binds a name usable in formulas to a cell or a range. Every
// formula is compiled again since the validity of a bare name depends on the
// names defined.
func (d *Document) DefineName(name, target string) error {
	if !isName(name) || d.registry.IsSymbol(name) {
		return fmt.Errorf("%s: %w", name, ErrName)
	}
	if _, ok := d.registry.Lookup(name); ok {
		return fmt.Errorf("%s: %w", name, ErrName)
	}
	ref, err := layout.ParseReference(strings.TrimPrefix(target, "="))
	if err != nil {
		return err
	}
	if ref.Invalid {
		return fmt.Errorf("%s: %w", target, layout.ErrReference)
	}
	sh, err := d.Sheet(ref.Sheet)
	if err != nil {
		return err
	}
	ref = ref.Qualify(sh.name)
	d.names[strings.ToUpper(name)] = ref
	d.recompile()
	return nil
}

// UndefineName removes a name. Formulas using it become bad expressions.
func (d *Document) UndefineName(name string) {
	name = strings.ToUpper(name)
	if _, ok := d.names[name]; !ok {
		return
	}
	delete(d.names, name)
	d.recompile()
}

// Names returns the defined names with their target.
func (d *Document) Names() map[string]layout.Reference {
	names := make(map[string]layout.Reference, len(d.names))
	for n, r := range d.names {
		names[n] = r
	}
	return names
}

func (d *Document) IsSymbol(name string) bool {
	if _, ok := d.names[strings.ToUpper(name)]; ok {
		return true
	}
	return d.registry.IsSymbol(name)
}

// EvaluateFormula evaluates a formula as if it was written on the given
// sheet, without storing it in any cell.
func (d *Document) EvaluateFormula(ctx context.Context, sheet, text string) (value.Value, error) {
	return d.Trace(ctx, sheet, text, nil)
}

// Trace is EvaluateFormula calling brk with the value of each node marked
// with the debug marker.
func (d *Document) Trace(ctx context.Context, sheet, text string, brk func(parse.Node, value.Value)) (value.Value, error) {
	sh, err := d.Sheet(sheet)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var (
		c = d.engine.Compile(text)
		r = resolver{
			doc:   d,
			sheet: sh.name,
		}
		b = c.Binding(r, d.engine.Functions())
	)
	b.Break = brk
	return c.Procedure.Execute(ctx, b), nil
}

func (d *Document) recompile() {
	d.engine.Reset()
	for _, sh := range d.sheets {
		for pos, cell := range sh.cells {
			if !cell.IsFormula() {
				continue
			}
			d.cancel(pos)
			c := d.engine.Compile(cell.Raw)
			cell.Formula = &c
			cell.State = StateDirty
			d.index(cell)
			d.queue[pos] = struct{}{}
		}
	}
}

func (d *Document) locate(pos layout.Position) (*Sheet, layout.Position, error) {
	sh, err := d.Sheet(pos.Sheet)
	if err != nil {
		return nil, pos, err
	}
	pos.Sheet = sh.name
	if !sh.Size.Contains(pos) {
		return nil, pos, fmt.Errorf("%s: %w", pos, ErrBounds)
	}
	return sh, pos, nil
}

func (d *Document) index(cell *Cell) {
	if !cell.IsFormula() {
		d.deps.remove(cell.Position)
		delete(d.volatile, cell.Position)
		return
	}
	var (
		proc  = cell.Formula.Procedure
		zones = zonesOf(cell.Sheet, proc.Text, cell.Formula.Deps())
	)
	for _, s := range proc.Symbols {
		if ref, ok := d.names[strings.ToUpper(s)]; ok {
			zones = append(zones, ref.Range())
		}
	}
	d.deps.set(cell.Position, zones)
	if cell.volatile() {
		d.volatile[cell.Position] = struct{}{}
	} else {
		delete(d.volatile, cell.Position)
	}
}

func (d *Document) forget(pos layout.Position) {
	d.cancel(pos)
	d.deps.remove(pos)
	delete(d.volatile, pos)
	delete(d.queue, pos)
	delete(d.waiting, pos)
}

func (d *Document) touch(rg layout.Range) {
	d.dirty.Add(rg)
}

func isName(name string) bool {
	if name == "" || layout.IsAddress(name) {
		return false
	}
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case i > 0 && (c >= '0' && c <= '9' || c == '.'):
		default:
			return false
		}
	}
	return !strings.EqualFold(name, "TRUE") && !strings.EqualFold(name, "FALSE")
}
