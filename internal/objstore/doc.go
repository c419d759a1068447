// Package objstore replicates raw segments to S3-compatible object storage.
//
// A nil Client means replication is disabled; the watcher and retention
// sweeper both check for that before touching remote state. Upload keys are
// <channel>/<segment filename>, optionally under a configured prefix, so a
// segment is never uploaded twice under different keys.
package objstore
