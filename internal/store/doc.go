// Package store persists transcripts and schedule intervals in SQLite.
//
// The Store manages database connections, schema migrations, transcript
// batch inserts, retention queries, keyword search, and interval CRUD.
// Timestamps are stored as RFC 3339 UTC strings so lexicographic comparison
// in SQL matches chronological order.
//
// The deleted flag on transcripts is one-way: the retention sweeper sets it
// after the backing files are gone and nothing ever clears it.
package store
