// Package queue provides the bounded in-memory task queue between channel
// watchers and the transcription dispatch loop.
//
// The queue deliberately drops work when full: a slow consumer must never
// stall a channel's live segmenter, so producers make a non-blocking offer
// and handle rejection themselves (the watcher removes the converted audio
// and retries the raw segment on its next scan).
package queue
