package errors

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Runtime (R001-R099)
	"R001": {
		Category:   CategoryRuntime,
		Message:    "Effect re-entered while running",
		Suggestion: "An effect wrote a signal it depends on; the nested run was skipped",
	},
	"R002": {
		Category:   CategoryRuntime,
		Message:    "Nil function passed to reactive constructor",
		Suggestion: "Pass a non-nil derive function or effect body",
	},
	"R003": {
		Category:   CategoryRuntime,
		Message:    "Computed read itself while computing",
		Suggestion: "Break the cycle: a derive function must not read its own Computed",
	},

	// Config (C001-C099)
	"C001": {
		Category:   CategoryConfig,
		Message:    "Config file not found",
		Suggestion: "Create reactive.json or run without --config to use defaults",
	},
	"C002": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
	},
	"C003": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
	},

	// Server (S001-S099)
	"S001": {
		Category: CategoryServer,
		Message:  "Devtools server failed",
	},
	"S002": {
		Category: CategoryServer,
		Message:  "Runtime driver stopped",
	},
	"S003": {
		Category: CategoryServer,
		Message:  "Runtime task panicked",
	},

	// CLI (X001-X099)
	"X001": {
		Category:   CategoryCLI,
		Message:    "Unknown scenario",
		Suggestion: "Run 'reactive demo --list' to see available scenarios",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
