package transcript

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"whosaid/internal/logger"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Cache is a read-through cache of parsed transcripts keyed by film id. An
// entry lives until the process exits; failed loads are not remembered.
// Skipped-record notes are kept with the entry so every run sees them.
type Cache struct {
	parser *Parser

	mu      sync.RWMutex
	entries map[int]Result
	group   singleflight.Group
	parses  atomic.Int64
}

func NewCache(parser *Parser) *Cache {
	if parser == nil {
		parser = NewParser(Options{})
	}
	return &Cache{parser: parser, entries: make(map[int]Result)}
}

// Load returns the lines of film, parsing the file at most once per id even
// under concurrent callers.
func (c *Cache) Load(ctx context.Context, film Film) ([]DialogueLine, error) {
	res, err := c.load(ctx, film)
	if err != nil {
		return nil, err
	}
	return res.Lines, nil
}

func (c *Cache) load(ctx context.Context, film Film) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if res, ok := c.lookup(film.ID); ok {
		return res, nil
	}
	ch := c.group.DoChan(strconv.Itoa(film.ID), func() (any, error) {
		if res, ok := c.lookup(film.ID); ok {
			return res, nil
		}
		c.parses.Add(1)
		res, err := c.parser.ParseFile(film.Path, film.Label)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[film.ID] = res
		c.mu.Unlock()
		logger.Debugf("transcript cache filled film=%d label=%q lines=%d skipped=%d", film.ID, film.Label, len(res.Lines), len(res.Skipped))
		return cloneResult(res), nil
	})
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case out := <-ch:
		if out.Err != nil {
			return Result{}, out.Err
		}
		res := out.Val.(Result)
		if out.Shared {
			res = cloneResult(res)
		}
		return res, nil
	}
}

// LoadSet loads films concurrently and returns them in the given order.
func (c *Cache) LoadSet(ctx context.Context, films []Film) (Set, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	out := make(Set, len(films))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, film := range films {
		group.Go(func() error {
			res, err := c.load(groupCtx, film)
			if err != nil {
				return err
			}
			out[i] = FilmLines{Film: film.Label, Lines: res.Lines, Skipped: res.Skipped}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Len reports how many films are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(id int) (Result, bool) {
	c.mu.RLock()
	res, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok {
		return Result{}, false
	}
	return cloneResult(res), true
}

func cloneResult(res Result) Result {
	return Result{Lines: slices.Clone(res.Lines), Skipped: slices.Clone(res.Skipped)}
}
