// Package taskpool implements the fixed-size worker pool with
// predecessor-based task dependency scheduling (spec.md 4.4), grounded on
// original_source's index/ThreadMemoize.{h,cpp} (worker memoization)
// generalized into a full dependency-ordered scheduler, and wired to
// golang.org/x/sync/errgroup for worker lifecycle and
// golang.org/x/sync/singleflight to collapse duplicate concurrent compiles
// of the same package.
package taskpool

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// TaskID identifies a task. The workspace engine's compilation tasks use
// the package full name itself; tasks not tied to a package can use a
// fresh uuid from NewTaskID.
type TaskID string

// NewTaskID mints a task id for non-package tasks.
func NewTaskID() TaskID {
	return TaskID(uuid.NewString())
}

// Func is the unit of work submitted to the pool. The task counts as
// complete as soon as Func returns, whether or not it returned an error;
// the worker records the error and closes the task's done channel.
type Func func(ctx context.Context) error

type task struct {
	id           TaskID
	predecessors []TaskID
	fn           Func
	done         chan struct{}
	err          error
}

// Pool is a fixed worker-count pool where a task becomes runnable once all
// its declared predecessors have completed.
type Pool struct {
	workers int
	sf      singleflight.Group

	mu      sync.Mutex
	tasks   map[TaskID]*task
	ready   chan *task
	wg      sync.WaitGroup
	started bool
	eg      *errgroup.Group
	egCtx   context.Context
}

// New returns a pool with the given worker count (at least 1).
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		tasks:   make(map[TaskID]*task),
		ready:   make(chan *task, 1024),
	}
}

// start lazily boots the errgroup workers on first Submit.
func (p *Pool) start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	eg, egCtx := errgroup.WithContext(ctx)
	p.eg = eg
	p.egCtx = egCtx
	for i := 0; i < p.workers; i++ {
		eg.Go(func() error {
			for {
				select {
				case <-egCtx.Done():
					return nil
				case t, ok := <-p.ready:
					if !ok {
						return nil
					}
					t.err = t.fn(egCtx)
					close(t.done)
					p.wg.Done()
				}
			}
		})
	}
}

// Submit registers a task. It will not be dispatched to a worker until all
// its predecessors' done channels have closed.
func (p *Pool) Submit(ctx context.Context, id TaskID, predecessors []TaskID, fn Func) {
	p.start(ctx)

	p.mu.Lock()
	t := &task{id: id, predecessors: predecessors, fn: fn, done: make(chan struct{})}
	p.tasks[id] = t
	preds := make([]*task, 0, len(predecessors))
	for _, pid := range predecessors {
		if pt, ok := p.tasks[pid]; ok {
			preds = append(preds, pt)
		}
	}
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		for _, pt := range preds {
			select {
			case <-pt.done:
			case <-ctx.Done():
			}
		}
		select {
		case p.ready <- t:
		case <-ctx.Done():
			t.err = ctx.Err()
			close(t.done)
			p.wg.Done()
		}
	}()
}

// SubmitDeduped behaves like Submit but collapses concurrent submissions
// sharing the same dedupeKey (e.g. two capability queries both wanting to
// freshen the same upstream package) into a single in-flight execution.
func (p *Pool) SubmitDeduped(ctx context.Context, id TaskID, predecessors []TaskID, dedupeKey string, fn Func) {
	p.Submit(ctx, id, predecessors, func(ctx context.Context) error {
		return p.Dedupe(dedupeKey, func() error { return fn(ctx) })
	})
}

// Dedupe runs fn, collapsing concurrent callers sharing the same key into a
// single execution whose result is shared by every caller. Unlike
// SubmitDeduped, it runs fn on the calling goroutine rather than scheduling
// it onto the worker pool, so it is safe to call from code that already
// recurses (a caller waiting inside Dedupe never ties up a worker slot,
// so it cannot starve a nested Dedupe/Submit call of workers).
func (p *Pool) Dedupe(key string, fn func() error) error {
	_, err, _ := p.sf.Do(key, func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// WaitUntilAllTasksComplete blocks until every submitted task has reported
// completion.
func (p *Pool) WaitUntilAllTasksComplete() error {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.tasks {
		if t.err != nil {
			return t.err
		}
	}
	return nil
}

// TaskCompleted reports whether the named task has finished.
func (p *Pool) TaskCompleted(id TaskID) bool {
	p.mu.Lock()
	t, ok := p.tasks[id]
	p.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Close waits for running workers to observe cancellation of the context
// passed to the first Submit call. The caller is expected to cancel that
// context before calling Close.
func (p *Pool) Close() {
	p.mu.Lock()
	started := p.started
	eg := p.eg
	p.mu.Unlock()
	if started {
		_ = eg.Wait()
	}
}
