// Package transcribe wraps the external speech recognition CLI.
//
// The engine contract is deliberately small: given an audio file, return an
// ordered list of utterances with offsets relative to the excerpt start.
// Workers convert those to absolute timestamps using the segment start time
// carried on the task. CLI flag differences are settled once at startup via
// Probe rather than per call.
package transcribe
