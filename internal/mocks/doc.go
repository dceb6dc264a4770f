// Package mocks provides shared mock implementations of the store and auth
// interfaces for testing. Tests that only need one mock with trivial behavior
// may still define it inline; these live here so handler and job tests do not
// each reimplement an in-memory store.
//
// Every mock follows the same pattern: optional Fn fields override individual
// methods, and a small in-memory default implementation backs the rest.
package mocks
