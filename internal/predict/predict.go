// Package predict forecasts the path of one body on a private copy of a
// tree, in the background, while the caller keeps stepping the original.
package predict

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/systree/internal/logging"
	"github.com/san-kum/systree/internal/systree"
)

// Predictor owns a forked tree holding a single owner's bodies and fills a
// time-indexed future for them. Reads are safe while the worker runs.
type Predictor struct {
	owner string
	steps int

	mu     sync.RWMutex
	future map[int64]systree.Snapshot
	times  []int64

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Start forks tree for owner and steps the fork up to steps times. The fork
// is taken before Start returns, so the caller may keep using tree.
func Start(ctx context.Context, tree *systree.Tree, owner string, steps int) *Predictor {
	fork := tree.CloneRetaining(owner)

	ctx, cancel := context.WithCancel(ctx)
	p := &Predictor{
		owner:  owner,
		steps:  steps,
		future: make(map[int64]systree.Snapshot),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.run(gctx, fork) })
	go func() {
		p.err = g.Wait()
		cancel()
		close(p.done)
	}()
	return p
}

func (p *Predictor) run(ctx context.Context, fork *systree.Tree) error {
	log := logging.FromContext(ctx).With("owner", p.owner)
	if fork.Count() == 0 {
		log.Debug("nothing to forecast")
		return nil
	}
	for i := 0; i < p.steps; i++ {
		if err := ctx.Err(); err != nil {
			log.Debug("forecast stopped", "steps", i, "error", err)
			return err
		}
		p.record(fork.Step())
	}
	log.Debug("forecast done", "steps", p.steps, "samples", p.Len())
	return nil
}

func (p *Predictor) record(reports []systree.Report) {
	if len(reports) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range reports {
		if r.Body.Owner != p.owner {
			continue
		}
		if _, ok := p.future[r.Time]; !ok {
			p.times = append(p.times, r.Time)
		}
		p.future[r.Time] = r.Body
	}
}

func (p *Predictor) Owner() string { return p.owner }

// At returns the predicted snapshot at exactly time t.
func (p *Predictor) At(t int64) (systree.Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.future[t]
	return s, ok
}

// Path returns every prediction made so far in time order.
func (p *Predictor) Path() []systree.Report {
	p.mu.RLock()
	times := append([]int64(nil), p.times...)
	out := make([]systree.Report, 0, len(times))
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	for _, t := range times {
		out = append(out, systree.Report{Time: t, Body: p.future[t]})
	}
	p.mu.RUnlock()
	return out
}

func (p *Predictor) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.times)
}

// Horizon returns the latest predicted time, or false if nothing is known yet.
func (p *Predictor) Horizon() (int64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.times) == 0 {
		return 0, false
	}
	h := p.times[0]
	for _, t := range p.times[1:] {
		if t > h {
			h = t
		}
	}
	return h, true
}

func (p *Predictor) Done() <-chan struct{} { return p.done }

// Wait blocks until the worker stops and returns why it stopped.
func (p *Predictor) Wait() error {
	<-p.done
	return p.err
}

func (p *Predictor) Cancel() { p.cancel() }

// All predicts every owner concurrently, at most limit at a time, and
// returns their paths once all have finished.
func All(ctx context.Context, tree *systree.Tree, owners []string, steps, limit int) (map[string][]systree.Report, error) {
	forks := make([]*systree.Tree, len(owners))
	for i, owner := range owners {
		forks[i] = tree.CloneRetaining(owner)
	}

	paths := make([][]systree.Report, len(owners))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range owners {
		g.Go(func() error {
			p := &Predictor{owner: owners[i], steps: steps, future: make(map[int64]systree.Snapshot)}
			if err := p.run(gctx, forks[i]); err != nil {
				return err
			}
			paths[i] = p.Path()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]systree.Report, len(owners))
	for i, owner := range owners {
		out[owner] = paths[i]
	}
	return out, nil
}
