// Package errors provides coded, structured diagnostics for the reactive
// runtime and its tooling.
//
// Every diagnostic carries a short code (e.g. "R001") that maps to a
// registered template with a category, a one-line message and a longer
// detail. Codes let log pipelines and tests match a failure without parsing
// free-form text.
//
// # Code ranges
//
//   - R0xx: reactive runtime (re-entrant effects, misuse of constructors)
//   - C0xx: configuration files
//   - S0xx: devtools server
//
// # Usage
//
//	err := errors.New("R001").
//	    WithDetail("effect \"autosave\" was notified while its body was running").
//	    WithSuggestion("Avoid writing a signal that the same effect reads")
//
//	fmt.Println(err.Format())
package errors
