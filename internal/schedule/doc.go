// Package schedule turns daily recording windows into a global on/off
// switch for stream ingestion.
package schedule
