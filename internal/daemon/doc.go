// Package daemon assembles and runs the recording pipeline. It is the
// only package that knows the full object graph; everything below it
// receives its collaborators explicitly.
package daemon
