package reactive

// Option configures a Signal, Computed or Effect at construction.
type Option func(*options)

type options struct {
	runtime *Runtime
	name    string
}

// WithRuntime binds the primitive to rt instead of the Default runtime.
func WithRuntime(rt *Runtime) Option {
	return func(o *options) {
		o.runtime = rt
	}
}

// WithName labels the primitive in logs, snapshots and observer events.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.runtime == nil {
		o.runtime = Default()
	}
	return o
}
