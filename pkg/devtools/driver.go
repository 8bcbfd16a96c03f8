package devtools

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// Driver confines a Runtime to one goroutine. Other goroutines hand it work
// through Do or Dispatch; the work runs on the goroutine executing Run.
type Driver struct {
	rt     *reactive.Runtime
	logger *slog.Logger

	tasks chan task
	done  chan struct{}
	once  sync.Once
}

type task struct {
	fn    func(*reactive.Runtime)
	errCh chan error
}

// NewDriver creates a driver for rt. queue is the capacity of the task
// queue used by Dispatch.
func NewDriver(rt *reactive.Runtime, logger *slog.Logger, queue int) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		rt:     rt,
		logger: logger.With("component", "driver", "runtime", rt.ID()),
		tasks:  make(chan task, queue),
		done:   make(chan struct{}),
	}
}

// Run executes queued tasks until ctx is cancelled or Close is called.
func (d *Driver) Run(ctx context.Context) error {
	d.logger.Debug("driver started")
	defer d.logger.Debug("driver stopped")
	for {
		select {
		case <-ctx.Done():
			d.Close()
			return ctx.Err()
		case <-d.done:
			return nil
		case t := <-d.tasks:
			err := d.exec(t.fn)
			if t.errCh != nil {
				t.errCh <- err
			} else if err != nil {
				d.logger.Error("dispatched task failed", "error", err)
			}
		}
	}
}

// exec runs fn, converting a panic from a derive function or effect body
// into an error so one bad task does not take the owner goroutine down.
func (d *Driver) exec(fn func(*reactive.Runtime)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = errors.FromError(e, "S003")
				return
			}
			err = errors.New("S003").WithDetailf("%v", r)
		}
	}()
	fn(d.rt)
	return nil
}

// Do runs fn on the driver goroutine and waits for it to finish.
func (d *Driver) Do(ctx context.Context, fn func(*reactive.Runtime)) error {
	t := task{fn: fn, errCh: make(chan error, 1)}
	select {
	case d.tasks <- t:
	case <-d.done:
		return errors.New("S002")
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-t.errCh:
		return err
	case <-d.done:
		return errors.New("S002")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch queues fn without waiting. It reports false when the driver is
// stopped or the queue is full.
func (d *Driver) Dispatch(fn func(*reactive.Runtime)) bool {
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.tasks <- task{fn: fn}:
		return true
	case <-d.done:
		return false
	default:
		d.logger.Warn("dispatch queue full, discarding task")
		return false
	}
}

// Snapshot returns the runtime's graph, taken on the driver goroutine.
func (d *Driver) Snapshot(ctx context.Context) (reactive.Graph, error) {
	var g reactive.Graph
	err := d.Do(ctx, func(rt *reactive.Runtime) {
		g = rt.Snapshot()
	})
	return g, err
}

// Close stops Run. Pending tasks are discarded.
func (d *Driver) Close() {
	d.once.Do(func() { close(d.done) })
}

// Runtime returns the driven runtime. Only touch it from inside a task.
func (d *Driver) Runtime() *reactive.Runtime {
	return d.rt
}
