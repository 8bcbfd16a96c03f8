package reactive

// NodeInfo describes a graph node in observer callbacks.
type NodeInfo struct {
	Runtime string
	Handle  Handle
	Kind    Kind
	Name    string
}

// Observer receives notifications about graph activity. Callbacks run
// synchronously on the runtime's goroutine, strictly nested: every Begin call
// is matched by its End call even when a derive function or effect body
// panics, in which case panicked is true.
type Observer interface {
	// BeginFanOut is called before a source notifies its dependents.
	BeginFanOut(source NodeInfo, dependents int)
	EndFanOut(source NodeInfo, panicked bool)

	// BeginRun is called before an effect or invalidator body runs.
	BeginRun(dependent NodeInfo)
	EndRun(dependent NodeInfo, panicked bool)

	// Recomputed is called after a Computed successfully recomputed.
	Recomputed(computed NodeInfo)

	// Reentered is called when a run was skipped because the dependent was
	// already running.
	Reentered(dependent NodeInfo)
}

// NopObserver ignores every notification. Embed it to implement a subset of
// Observer.
type NopObserver struct{}

func (NopObserver) BeginFanOut(NodeInfo, int) {}
func (NopObserver) EndFanOut(NodeInfo, bool)  {}
func (NopObserver) BeginRun(NodeInfo)         {}
func (NopObserver) EndRun(NodeInfo, bool)     {}
func (NopObserver) Recomputed(NodeInfo)       {}
func (NopObserver) Reentered(NodeInfo)        {}

// Observers combines several observers into one. Begin callbacks are
// delivered in order and End callbacks in reverse order.
func Observers(obs ...Observer) Observer {
	list := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	switch len(list) {
	case 0:
		return NopObserver{}
	case 1:
		return list[0]
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) BeginFanOut(source NodeInfo, dependents int) {
	for _, o := range m {
		o.BeginFanOut(source, dependents)
	}
}

func (m multiObserver) EndFanOut(source NodeInfo, panicked bool) {
	for i := len(m) - 1; i >= 0; i-- {
		m[i].EndFanOut(source, panicked)
	}
}

func (m multiObserver) BeginRun(dependent NodeInfo) {
	for _, o := range m {
		o.BeginRun(dependent)
	}
}

func (m multiObserver) EndRun(dependent NodeInfo, panicked bool) {
	for i := len(m) - 1; i >= 0; i-- {
		m[i].EndRun(dependent, panicked)
	}
}

func (m multiObserver) Recomputed(computed NodeInfo) {
	for _, o := range m {
		o.Recomputed(computed)
	}
}

func (m multiObserver) Reentered(dependent NodeInfo) {
	for _, o := range m {
		o.Reentered(dependent)
	}
}
