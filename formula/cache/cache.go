package cache

import (
	"log/slog"
	"sync"

	"github.com/dchest/siphash"
	"golang.org/x/sync/singleflight"

	"github.com/midbel/sheetcalc/formula/compile"
	"github.com/midbel/sheetcalc/formula/env"
)

const DefaultShards = 16

const (
	k0 = 0x736f6d6570736575
	k1 = 0x646f72616e646f6d
)

// Cache memoizes compiled procedures by normalized text.
//
// Concurrent requests for a key that is not cached yet share a single
// compilation. A procedure is stored only once fully built so readers never
// see a partial one.
type Cache struct {
	fns    env.Table
	syms   env.Symbols
	logger *slog.Logger

	group  singleflight.Group
	shards []*shard
}

type shard struct {
	mu    sync.RWMutex
	procs map[string]*compile.Procedure
}

type Option func(*Cache)

func WithShards(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.shards = makeShards(n)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(fns env.Table, syms env.Symbols, options ...Option) *Cache {
	c := Cache{
		fns:    fns,
		syms:   syms,
		logger: slog.New(slog.DiscardHandler),
		shards: makeShards(DefaultShards),
	}
	for _, o := range options {
		o(&c)
	}
	return &c
}

func makeShards(n int) []*shard {
	list := make([]*shard, n)
	for i := range list {
		list[i] = &shard{
			procs: make(map[string]*compile.Procedure),
		}
	}
	return list
}

// GetOrCompile returns the procedure of the normalized text, compiling it on
// first use. Bad expressions are cached like any other procedure.
func (c *Cache) GetOrCompile(text string) *compile.Procedure {
	s := c.shardOf(text)
	s.mu.RLock()
	proc, ok := s.procs[text]
	s.mu.RUnlock()
	if ok {
		return proc
	}
	res, _, _ := c.group.Do(text, func() (any, error) {
		s.mu.RLock()
		proc, ok := s.procs[text]
		s.mu.RUnlock()
		if ok {
			return proc, nil
		}
		proc = compile.Compile(text, c.fns, c.syms)
		if proc.BadExpression() {
			c.logger.Debug("bad expression compiled", "formula", text, "err", proc.Err)
		} else {
			c.logger.Debug("formula compiled", "formula", text, "deps", proc.Deps, "async", proc.Async)
		}
		s.mu.Lock()
		s.procs[text] = proc
		s.mu.Unlock()
		return proc, nil
	})
	return res.(*compile.Procedure)
}

// Lookup returns the procedure of text without compiling it.
func (c *Cache) Lookup(text string) (*compile.Procedure, bool) {
	s := c.shardOf(text)
	s.mu.RLock()
	defer s.mu.RUnlock()
	proc, ok := s.procs[text]
	return proc, ok
}

// Reset drops every cached procedure.
func (c *Cache) Reset() {
	for _, s := range c.shards {
		s.mu.Lock()
		clear(s.procs)
		s.mu.Unlock()
	}
	c.logger.Debug("procedure cache reset")
}

func (c *Cache) Len() int {
	var n int
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.procs)
		s.mu.RUnlock()
	}
	return n
}

func (c *Cache) shardOf(text string) *shard {
	h := siphash.Hash(k0, k1, []byte(text))
	return c.shards[h%uint64(len(c.shards))]
}
