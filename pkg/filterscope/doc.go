// Package filterscope hands a filter engine to nested consumers through a
// context.Context instead of explicit parameters.
//
// A consumer calling Use outside any provider gets an F001 error rather than
// a silently detached state. Call sites that must render without a provider
// use Boundary, which returns an inert handle.
package filterscope
