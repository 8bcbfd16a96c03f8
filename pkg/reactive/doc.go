// Package reactive provides the fine-grained reactive core: signals,
// computeds and effects with automatic dependency tracking.
//
// Dependencies are discovered at runtime. Reading a Signal or Computed while
// an Effect or Computed is evaluating records a dependency edge; writing a
// Signal synchronously re-runs everything that read it.
//
// # Core Types
//
// Signal[T] is a mutable reactive cell:
//
//	count := reactive.NewSignal(0)
//	value := count.Get()  // Read (tracked when a dependent is active)
//	count.Set(5)          // Write (notifies dependents before returning)
//	count.Update(func(n int) int { return n + 1 })
//	count.Peek()          // Read without tracking
//
// Computed[T] is a lazily recomputed, memoized derivation:
//
//	doubled := reactive.NewComputed(func() int { return count.Get() * 2 })
//	doubled.Get() // Recomputes only if a dependency changed since the last read
//
// A Computed never recomputes eagerly. When a dependency changes it is only
// marked dirty and its own dependents are notified; the recomputation happens
// on the next read. A Computed always notifies its dependents after an
// upstream change, even when the recomputed value turns out to be the same.
// Signals, by contrast, only notify when the written value differs.
//
// Effect runs side effects and re-runs when anything it read changes:
//
//	e := reactive.CreateEffect(func() reactive.Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return func() { /* runs before the next run and on Dispose */ }
//	})
//	defer e.Dispose()
//
// # Propagation
//
// Propagation is push-based and depth-first. A Set performs its entire
// fan-out inline: if an effect writes another signal, that nested fan-out
// completes before the outer one continues. RunBatched exists for API
// compatibility and runs its argument immediately; there is no coalescing.
//
// Panics raised by derive functions and effect bodies are not recovered. They
// reach the caller of the Get or Set that triggered them, cutting the current
// fan-out short. Tracking state is always restored on the way out.
//
// # Threading
//
// A Runtime is not safe for concurrent use. Every signal, computed and effect
// belongs to one Runtime and must only be touched from the goroutine that
// owns it. The package-level functions use the Default runtime.
package reactive
