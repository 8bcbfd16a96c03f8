package reactive

// RunBatched runs action immediately.
//
// It performs no deferral or deduplication: every Set inside action notifies
// its dependents before returning, exactly as it would outside. Callers must
// not assume otherwise.
func RunBatched(action func()) {
	action()
}

// Untracked runs fn on the Default runtime without tracking reads as
// dependencies.
//
// Note: For single signal reads, use signal.Peek() instead which is more
// efficient and clearer in intent.
func Untracked(fn func()) {
	Default().Untracked(fn)
}

// UntrackedGet reads a signal's value without creating a dependency.
func UntrackedGet[T any](s *Signal[T]) T {
	return s.Peek()
}
