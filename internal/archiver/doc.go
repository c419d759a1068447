// Package archiver ingests one channel's live stream into raw segments and
// turns finished segments into queued analysis tasks.
//
// Each channel gets a Supervisor that keeps an external ffmpeg segment
// muxer alive with backoff restarts, and a Watcher that detects completed
// segments by size stabilization, converts them to mono 16 kHz audio,
// stamps them with the filename-derived start time, and makes a
// non-blocking offer to the shared bounded queue. Successful enqueue also
// schedules best-effort replication of the raw segment to object storage.
//
// The queue-full policy is deliberately lossy: the converted audio is
// dropped and the raw segment retried on the next scan, so a slow consumer
// never stalls the live segmenter.
package archiver
