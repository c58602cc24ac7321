// Package application contains the process-level plumbing shared by the relay executables: command
// line parsing, the optional HTTP server and the signal-driven run loop.
package application
