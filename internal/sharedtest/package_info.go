// Package sharedtest provides helpers that may be used by tests in all relay packages, most notably
// an in-memory transport.
//
// Non-test code should never import this package.
package sharedtest
