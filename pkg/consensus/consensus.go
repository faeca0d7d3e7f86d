// Package consensus runs HitFilter and LCAReducer over many hit groups.
// Groups are independent, so they are processed by concurrent workers
// that share only read-only configuration.
package consensus

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/gnames/gnlca/pkg/ent/hit"
	"github.com/gnames/gnlca/pkg/hitfilter"
	"github.com/gnames/gnlca/pkg/lca"
	"golang.org/x/sync/errgroup"
)

// Option configures Pipeline.
type Option func(*Pipeline)

// OptJobsNumber sets the number of workers. Values below 1 are ignored.
func OptJobsNumber(i int) Option {
	return func(p *Pipeline) {
		if i > 0 {
			p.jobsNum = i
		}
	}
}

// OptRetainIdentity attaches the supporting percent identity to
// assignments.
func OptRetainIdentity(b bool) Option {
	return func(p *Pipeline) {
		p.retainIdentity = b
	}
}

// OptProgress sets a callback that receives the number of processed
// groups. It is called from a single goroutine.
func OptProgress(fn func(int)) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// Pipeline filters and reduces hit groups.
type Pipeline struct {
	filter         *hitfilter.Filter
	schema         hit.Schema
	jobsNum        int
	retainIdentity bool
	progress       func(int)
}

// New creates a Pipeline.
func New(f *hitfilter.Filter, schema hit.Schema, opts ...Option) *Pipeline {
	res := &Pipeline{
		filter:  f,
		schema:  schema,
		jobsNum: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Process returns the consensus of one group.
func (p *Pipeline) Process(g hit.Group) lca.Assignment {
	return lca.Reduce(p.filter.Apply(g), p.schema, p.retainIdentity)
}

type job struct {
	idx   int
	group hit.Group
}

type result struct {
	idx        int
	assignment lca.Assignment
}

// Run processes all groups and returns one assignment per group in the
// order of the input.
func (p *Pipeline) Run(
	ctx context.Context,
	groups []hit.Group,
) ([]lca.Assignment, error) {
	chIn := make(chan job)
	chOut := make(chan result)
	res := make([]lca.Assignment, len(groups))

	g, ctx := errgroup.WithContext(ctx)
	var wg sync.WaitGroup

	for range p.jobsNum {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return p.worker(ctx, chIn, chOut)
		})
	}

	g.Go(func() error {
		return p.collect(ctx, chOut, res)
	})

	go func() {
		wg.Wait()
		close(chOut)
	}()

	g.Go(func() error {
		defer close(chIn)
		for i, v := range groups {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case chIn <- job{idx: i, group: v}:
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, CancelledError(err)
		}
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) worker(
	ctx context.Context,
	chIn <-chan job,
	chOut chan<- result,
) error {
	for j := range chIn {
		r := result{idx: j.idx, assignment: p.Process(j.group)}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chOut <- r:
		}
	}
	return nil
}

func (p *Pipeline) collect(
	ctx context.Context,
	chOut <-chan result,
	res []lca.Assignment,
) error {
	var count int
	for r := range chOut {
		res[r.idx] = r.assignment
		count++
		if p.progress != nil {
			p.progress(count)
		}
	}
	return ctx.Err()
}
