package reactive

// Signal is a mutable reactive cell.
// Reading a Signal's value while an Effect or Computed is evaluating
// subscribes that dependent to the Signal; writing a different value
// synchronously notifies every subscribed dependent.
type Signal[T any] struct {
	rt     *Runtime
	handle Handle

	// value is the current signal value.
	value T

	// equal decides whether a write is a change. nil means identity.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T, opts ...Option) *Signal[T] {
	o := applyOptions(opts)
	s := &Signal[T]{
		rt:    o.runtime,
		value: initial,
	}
	s.handle = o.runtime.register(KindSignal, o.name, nil)
	return s
}

// Get returns the current value and subscribes the active dependent, if any.
func (s *Signal[T]) Get() T {
	s.rt.track(s.handle)
	return s.value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	return s.value
}

// Set stores value and notifies dependents if it differs from the current
// value. Dependents run before Set returns. It reports whether the value
// changed.
func (s *Signal[T]) Set(value T) bool {
	if s.equals(s.value, value) {
		return false
	}
	s.value = value
	s.rt.markStale(s.handle)
	s.rt.fanOut(s.handle)
	return true
}

// Update sets the value to fn(current).
func (s *Signal[T]) Update(fn func(T) T) bool {
	return s.Set(fn(s.value))
}

// Unsubscribe removes the dependent identified by h. Removing a dependent
// that is not subscribed is a no-op.
func (s *Signal[T]) Unsubscribe(h Handle) {
	s.rt.unlink(s.handle, h)
}

// WithEquals replaces the change check used by Set. Returning true from fn
// suppresses the notification.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// Handle returns the signal's node handle.
func (s *Signal[T]) Handle() Handle {
	return s.handle
}

// Release detaches the signal from every dependent and removes it from the
// graph. The signal keeps working as a plain value afterwards.
func (s *Signal[T]) Release() {
	s.rt.release(s.handle)
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return identical(a, b)
}
