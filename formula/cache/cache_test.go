package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/midbel/sheetcalc/formula/compile"
	"github.com/midbel/sheetcalc/formula/env"
	"github.com/midbel/sheetcalc/formula/parse"
	"github.com/midbel/sheetcalc/value"
)

func testRegistry() *env.Registry {
	reg := env.New()
	reg.Register(env.Function{
		Name: "TWICE",
		Params: []env.Param{
			{Name: "value", Types: env.TypeNumber},
		},
		Impl: func(_ context.Context, args []value.Value) value.Value {
			f, err := value.CastToFloat(args[0])
			if err != nil {
				return value.ErrValue
			}
			return f * 2
		},
	})
	return reg.Freeze()
}

func TestGetOrCompile(t *testing.T) {
	reg := testRegistry()
	c := New(reg, reg, WithShards(4))

	n1, _ := parse.NormalizeString("=TWICE(1)+2")
	n2, _ := parse.NormalizeString("=TWICE(10) + 20")
	if n1.Text != n2.Text {
		t.Fatalf("normalized text mismatched! %s - %s", n1.Text, n2.Text)
	}
	p1 := c.GetOrCompile(n1.Text)
	p2 := c.GetOrCompile(n2.Text)
	if p1 != p2 {
		t.Errorf("same normalized text should give the same procedure")
	}
	if c.Len() != 1 {
		t.Errorf("cache size mismatched! want 1 - got %d", c.Len())
	}

	ctx := context.Background()
	got1 := p1.Execute(ctx, compile.Binding{Deps: n1.Deps, Functions: reg})
	got2 := p2.Execute(ctx, compile.Binding{Deps: n2.Deps, Functions: reg})
	if got1 != value.Float(4) || got2 != value.Float(40) {
		t.Errorf("results mismatched! want 4 and 40 - got %v and %v", got1, got2)
	}
}

func TestBadExpression(t *testing.T) {
	reg := testRegistry()
	c := New(reg, reg)
	proc := c.GetOrCompile("NOPE(|N 0|)")
	if !proc.BadExpression() {
		t.Fatalf("expected bad expression")
	}
	if again, ok := c.Lookup("NOPE(|N 0|)"); !ok || again != proc {
		t.Errorf("bad expression should be cached")
	}
}

func TestConcurrentCompile(t *testing.T) {
	reg := testRegistry()
	c := New(reg, reg)

	var (
		wg    sync.WaitGroup
		procs = make([]*compile.Procedure, 32)
	)
	for i := range procs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			procs[i] = c.GetOrCompile("TWICE(|0|)*|N 0|")
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(procs); i++ {
		if procs[i] != procs[0] {
			t.Fatalf("concurrent requests should converge on one procedure")
		}
	}
}

func TestReset(t *testing.T) {
	reg := testRegistry()
	c := New(reg, reg)
	c.GetOrCompile("|0|+|1|")
	c.GetOrCompile("|0|*|1|")
	if c.Len() != 2 {
		t.Fatalf("cache size mismatched! want 2 - got %d", c.Len())
	}
	c.Reset()
	if c.Len() != 0 {
		t.Errorf("cache should be empty after reset - got %d", c.Len())
	}
	if _, ok := c.Lookup("|0|+|1|"); ok {
		t.Errorf("procedure should not be found after reset")
	}
}
