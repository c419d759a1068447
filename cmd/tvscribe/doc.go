// Command tvscribe is the operator CLI for the tvscribed daemon. It
// edits the recording schedule, searches the transcript catalog, and
// bootstraps configuration. All commands work directly against the
// shared SQLite database; the daemon picks up schedule edits on its
// next reload.
package main
