// Package errors provides structured, actionable errors for filtersync.
//
// Each error has a unique code (e.g., "F001") that maps to a short message,
// a detailed explanation and a documentation URL:
//
//	err := errors.New(errors.CodeScopeMissing).
//	    WithSuggestion("Call scope.Provide(ctx, engine) in the parent view")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR F001: No active filter scope
//	//
//	//   The filter accessor was called with a context that has no provider. ...
//	//
//	//   Hint: Call scope.Provide(ctx, engine) in the parent view
//	//
//	//   Learn more: https://vango.dev/docs/filtersync/errors/F001
//
// A FilterError matches any other FilterError with the same code under
// errors.Is, so callers can compare against package-level sentinels.
package errors
