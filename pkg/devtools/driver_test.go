package devtools

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startDriver(t *testing.T, rt *reactive.Runtime) *Driver {
	t.Helper()
	d := NewDriver(rt, discardLogger(), 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return d
}

func TestDriverDo(t *testing.T) {
	rt := reactive.NewRuntime(reactive.WithLogger(discardLogger()))
	d := startDriver(t, rt)
	ctx := context.Background()

	var s *reactive.Signal[int]
	if err := d.Do(ctx, func(rt *reactive.Runtime) {
		s = reactive.NewSignal(1, reactive.WithRuntime(rt))
	}); err != nil {
		t.Fatalf("Do error: %v", err)
	}

	var got int
	if err := d.Do(ctx, func(*reactive.Runtime) {
		s.Set(41)
		got = s.Get() + 1
	}); err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestDriverRecoversPanics(t *testing.T) {
	rt := reactive.NewRuntime(reactive.WithLogger(discardLogger()))
	d := startDriver(t, rt)
	ctx := context.Background()

	err := d.Do(ctx, func(*reactive.Runtime) { panic("effect exploded") })
	if !errors.HasCode(err, "S003") {
		t.Errorf("expected S003, got %v", err)
	}

	err = d.Do(ctx, func(rt *reactive.Runtime) {
		var c *reactive.Computed[int]
		c = reactive.NewComputed(func() int { return c.Get() }, reactive.WithRuntime(rt))
		c.Get()
	})
	if !errors.HasCode(err, "R003") {
		t.Errorf("coded panics should keep their code, got %v", err)
	}

	if err := d.Do(ctx, func(*reactive.Runtime) {}); err != nil {
		t.Errorf("driver should keep running after a panic: %v", err)
	}
}

func TestDriverDispatch(t *testing.T) {
	rt := reactive.NewRuntime(reactive.WithLogger(discardLogger()))
	d := startDriver(t, rt)

	ran := make(chan struct{})
	if !d.Dispatch(func(*reactive.Runtime) { close(ran) }) {
		t.Fatal("Dispatch should queue the task")
	}
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatched task did not run")
	}
}

func TestDriverClosed(t *testing.T) {
	rt := reactive.NewRuntime()
	d := NewDriver(rt, discardLogger(), 1)
	d.Close()
	d.Close()

	if err := d.Do(context.Background(), func(*reactive.Runtime) {}); !errors.HasCode(err, "S002") {
		t.Errorf("expected S002 from a stopped driver, got %v", err)
	}
	if d.Dispatch(func(*reactive.Runtime) {}) {
		t.Error("Dispatch should fail on a stopped driver")
	}
	if err := d.Run(context.Background()); err != nil {
		t.Errorf("Run on a closed driver should return nil, got %v", err)
	}
}

func TestDriverDoHonorsContext(t *testing.T) {
	rt := reactive.NewRuntime()
	d := NewDriver(rt, discardLogger(), 0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Do(ctx, func(*reactive.Runtime) {}); err != context.DeadlineExceeded {
		t.Errorf("expected DeadlineExceeded without a running driver, got %v", err)
	}
}
