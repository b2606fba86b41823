package grid

import (
	"context"
	"slices"

	"github.com/midbel/sheetcalc/formula/compile"
	"github.com/midbel/sheetcalc/formula/env"
	"github.com/midbel/sheetcalc/layout"
	"github.com/midbel/sheetcalc/profile"
	"github.com/midbel/sheetcalc/value"
)

// Report summarizes an evaluation pass.
type Report struct {
	Epoch    uint64
	Computed int
	Cycles   int
	Pending  int
}

func (r *Report) merge(other Report) {
	r.Epoch = other.Epoch
	r.Computed += other.Computed
	r.Cycles += other.Cycles
	r.Pending = other.Pending
}

type pendingEval struct {
	pos    layout.Position
	epoch  uint64
	future *compile.Future
	cancel context.CancelFunc
}

// Recompute evaluates every formula affected by the edits made since the
// last pass, dependencies first. Formulas in a cycle get #CYCLE! and are not
// evaluated. Asynchronous formulas are started and their readers wait for
// their result, given by Poll or Settle.
func (d *Document) Recompute(ctx context.Context) (Report, error) {
	return d.recompute(ctx, true)
}

func (d *Document) recompute(ctx context.Context, volatile bool) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{Epoch: d.epoch}, err
	}
	d.epoch++

	var (
		rep     = Report{Epoch: d.epoch}
		touched = profile.NewTracker()
		seeds   = make(map[layout.Position]struct{})
	)
	for rg := range d.dirty.Rectangles() {
		touched.Add(rg)
		for _, p := range d.deps.readers(rg) {
			seeds[p] = struct{}{}
		}
	}
	sets := []map[layout.Position]struct{}{d.queue, d.waiting}
	if volatile {
		sets = append(sets, d.volatile)
	}
	for _, set := range sets {
		for p := range set {
			seeds[p] = struct{}{}
		}
	}
	d.dirty.Reset()
	clear(d.queue)
	clear(d.waiting)

	var (
		nodes, depends = d.affected(seeds)
		list           = components(nodes, depends)
	)
	for i, scc := range list {
		if err := ctx.Err(); err != nil {
			for _, rest := range list[i:] {
				for _, p := range rest {
					d.queue[p] = struct{}{}
				}
			}
			return rep, err
		}
		if len(scc) > 1 || slices.Contains(depends[scc[0]], scc[0]) {
			for _, p := range scc {
				d.fail(p, value.ErrCycle)
				touched.Add(layout.SingleCell(p))
			}
			rep.Cycles += len(scc)
			continue
		}
		pos := scc[0]
		cell := d.cellAt(pos)
		if cell == nil || !cell.IsFormula() {
			continue
		}
		if d.blocked(cell, depends[pos]) {
			cell.State = StateDirty
			d.waiting[pos] = struct{}{}
			continue
		}
		d.evaluate(ctx, cell)
		rep.Computed++
		touched.Add(layout.SingleCell(pos))
	}
	d.outdate(touched)
	for _, p := range d.pending {
		if c := d.cellAt(p.pos); c != nil && c.State == StatePending && c.epoch == p.epoch {
			rep.Pending++
		}
	}
	d.logger.Debug("recompute",
		"epoch", rep.Epoch,
		"dirty", len(nodes),
		"computed", rep.Computed,
		"cycles", rep.Cycles,
		"pending", rep.Pending,
	)
	return rep, nil
}

// Poll commits the results of the asynchronous formulas that are done and
// recomputes their readers. Results of a formula that has been edited or
// evaluated again since they were started are discarded.
func (d *Document) Poll(ctx context.Context) (Report, error) {
	var (
		keep  []*pendingEval
		ready int
	)
	for _, p := range d.pending {
		select {
		case <-p.future.Done():
		default:
			keep = append(keep, p)
			continue
		}
		p.cancel()
		cell := d.cellAt(p.pos)
		if cell == nil || cell.State != StatePending || cell.epoch != p.epoch {
			d.logger.Info("stale result discarded", "cell", p.pos.String(), "epoch", p.epoch)
			continue
		}
		d.commit(cell, p.future.Value())
		d.touch(layout.SingleCell(p.pos))
		ready++
	}
	d.pending = keep
	if ready == 0 {
		return Report{Epoch: d.epoch, Pending: len(d.pending)}, nil
	}
	return d.recompute(ctx, false)
}

// Settle waits for every asynchronous formula and commits their results.
func (d *Document) Settle(ctx context.Context) (Report, error) {
	var total Report
	for len(d.pending) > 0 {
		select {
		case <-d.pending[0].future.Done():
		case <-ctx.Done():
			return total, ctx.Err()
		}
		rep, err := d.Poll(ctx)
		total.merge(rep)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Pending tells whether some asynchronous formulas are still running.
func (d *Document) Pending() bool {
	return len(d.pending) > 0
}

// affected returns the formulas to evaluate: the seeds and, transitively,
// every formula reading one of them. For each of them, depends gives the
// affected formulas it reads.
func (d *Document) affected(seeds map[layout.Position]struct{}) ([]layout.Position, map[layout.Position][]layout.Position) {
	var (
		seen    = make(map[layout.Position]struct{})
		depends = make(map[layout.Position][]layout.Position)
		queue   []layout.Position
	)
	for p := range seeds {
		if c := d.cellAt(p); c == nil || !c.IsFormula() {
			continue
		}
		seen[p] = struct{}{}
		queue = append(queue, p)
	}
	for len(queue) > 0 {
		x := queue[0]
		queue = queue[1:]
		for _, y := range d.deps.readers(layout.SingleCell(x)) {
			depends[y] = append(depends[y], x)
			if _, ok := seen[y]; ok {
				continue
			}
			seen[y] = struct{}{}
			queue = append(queue, y)
		}
	}
	nodes := make([]layout.Position, 0, len(seen))
	for p := range seen {
		nodes = append(nodes, p)
	}
	slices.SortFunc(nodes, d.compare)
	for _, list := range depends {
		slices.SortFunc(list, d.compare)
	}
	return nodes, depends
}

func (d *Document) compare(a, b layout.Position) int {
	if a.Sheet != b.Sheet {
		return d.sheetIndex(a.Sheet) - d.sheetIndex(b.Sheet)
	}
	return comparePositions(a, b)
}

// blocked tells whether a formula reads a cell whose value is not known yet.
func (d *Document) blocked(cell *Cell, depends []layout.Position) bool {
	for _, p := range depends {
		c := d.cellAt(p)
		if c != nil && (c.State == StateDirty || c.State == StatePending) {
			return true
		}
	}
	for _, p := range d.pending {
		c := d.cellAt(p.pos)
		if c == nil || c.State != StatePending {
			continue
		}
		if d.deps.reads(cell.Position, layout.SingleCell(p.pos)) {
			return true
		}
	}
	return false
}

func (d *Document) evaluate(ctx context.Context, cell *Cell) {
	d.cancel(cell.Position)

	var (
		proc = cell.Formula.Procedure
		res  = resolver{doc: d, sheet: cell.Sheet}
		fns  = d.engine.Functions()
	)
	cell.State = StateComputing
	ctx = env.WithPosition(ctx, cell.Position)
	if proc.Async && !proc.BadExpression() {
		var (
			frozen      = freeze(res, cell.Formula.Deps(), proc.Symbols)
			actx, abort = context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		)
		cell.State = StatePending
		cell.epoch = d.epoch
		d.pending = append(d.pending, &pendingEval{
			pos:    cell.Position,
			epoch:  d.epoch,
			future: proc.Start(actx, cell.Formula.Binding(frozen, fns)),
			cancel: abort,
		})
		return
	}
	d.commit(cell, proc.Execute(ctx, cell.Formula.Binding(res, fns)))
}

func (d *Document) commit(cell *Cell, val value.Value) {
	v := toScalar(val)
	cell.Value = v
	cell.epoch = d.epoch
	cell.State = StateClean
	if value.IsError(v) {
		cell.State = StateError
	}
	cell.Computed = cell.Formula.Procedure.Format(d.depFormat(cell))
}

func (d *Document) fail(pos layout.Position, err value.Error) {
	cell := d.cellAt(pos)
	if cell == nil {
		return
	}
	d.cancel(pos)
	cell.Value = err
	cell.State = StateError
	cell.Computed = ""
	cell.epoch = d.epoch
}

func (d *Document) depFormat(cell *Cell) func(int) string {
	deps := cell.Formula.Deps()
	return func(i int) string {
		if i < 0 || i >= len(deps) {
			return ""
		}
		ref, err := deps[i].Reference()
		if err != nil || ref.Invalid {
			return ""
		}
		ref = ref.Qualify(cell.Sheet)
		if c := d.cellAt(ref.Position()); c != nil {
			return c.NumberFormat()
		}
		return ""
	}
}

// cancel stops the asynchronous evaluations of a cell. Their results are
// discarded by Poll.
func (d *Document) cancel(pos layout.Position) {
	for _, p := range d.pending {
		if p.pos == pos {
			p.cancel()
		}
	}
}

func (d *Document) cellAt(pos layout.Position) *Cell {
	sh, err := d.Sheet(pos.Sheet)
	if err != nil || pos.Sheet == "" {
		return nil
	}
	return sh.cells[pos]
}

// components returns the strongly connected components of the graph in an
// order where a component comes after the components it depends on.
func components(nodes []layout.Position, depends map[layout.Position][]layout.Position) [][]layout.Position {
	type frame struct {
		node layout.Position
		next int
	}
	var (
		index   = make(map[layout.Position]int)
		low     = make(map[layout.Position]int)
		onStack = make(map[layout.Position]bool)
		stack   []layout.Position
		list    [][]layout.Position
		count   int
	)
	enter := func(p layout.Position) {
		index[p] = count
		low[p] = count
		count++
		stack = append(stack, p)
		onStack[p] = true
	}
	for _, root := range nodes {
		if _, ok := index[root]; ok {
			continue
		}
		enter(root)
		calls := []frame{{node: root}}
		for len(calls) > 0 {
			top := &calls[len(calls)-1]
			edges := depends[top.node]
			if top.next < len(edges) {
				w := edges[top.next]
				top.next++
				if _, ok := index[w]; !ok {
					enter(w)
					calls = append(calls, frame{node: w})
				} else if onStack[w] {
					low[top.node] = min(low[top.node], index[w])
				}
				continue
			}
			v := top.node
			calls = calls[:len(calls)-1]
			if n := len(calls); n > 0 {
				p := calls[n-1].node
				low[p] = min(low[p], low[v])
			}
			if low[v] != index[v] {
				continue
			}
			var scc []layout.Position
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Reverse(scc)
			list = append(list, scc)
		}
	}
	return list
}
