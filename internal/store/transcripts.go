package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const transcriptColumns = "id, channel_id, start_time, end_time, text, segment_filename, offset_secs, duration_secs, deleted"

// InsertTranscripts persists a batch of records in a single transaction.
func (s *Store) InsertTranscripts(ctx context.Context, records []TranscriptRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transcripts (
        channel_id, start_time, end_time, text, segment_filename, offset_secs, duration_secs, deleted
    ) VALUES (?, ?, ?, ?, ?, ?, ?, 0)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		if _, err := stmt.ExecContext(ctx,
			record.ChannelID,
			record.StartTime.UTC().Format(time.RFC3339Nano),
			record.EndTime.UTC().Format(time.RFC3339Nano),
			record.Text,
			record.SegmentFilename,
			record.OffsetSecs,
			record.DurationSecs,
		); err != nil {
			return fmt.Errorf("insert transcript: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit inserts: %w", err)
	}
	return nil
}

// TranscriptsOlderThan returns live records whose end time falls before the
// cutoff, ordered oldest first.
func (s *Store) TranscriptsOlderThan(ctx context.Context, cutoff time.Time) ([]TranscriptRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+transcriptColumns+" FROM transcripts WHERE deleted = 0 AND end_time < ? ORDER BY end_time",
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("query old transcripts: %w", err)
	}
	defer rows.Close()

	return collectTranscripts(rows)
}

// MarkTranscriptsDeleted flips the one-way deleted flag for the given ids.
func (s *Store) MarkTranscriptsDeleted(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE transcripts SET deleted = 1 WHERE id IN ("+placeholders+")",
		args...,
	); err != nil {
		return fmt.Errorf("mark transcripts deleted: %w", err)
	}
	return nil
}

// SearchTranscripts returns live records whose text contains the keyword,
// ordered by start time.
func (s *Store) SearchTranscripts(ctx context.Context, keyword string, limit int) ([]TranscriptRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+transcriptColumns+" FROM transcripts WHERE deleted = 0 AND text LIKE ? ORDER BY start_time LIMIT ?",
		"%"+keyword+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search transcripts: %w", err)
	}
	defer rows.Close()

	return collectTranscripts(rows)
}

// CountTranscripts reports live and deleted record totals.
func (s *Store) CountTranscripts(ctx context.Context) (live, deleted int64, err error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(CASE WHEN deleted = 0 THEN 1 END), COUNT(CASE WHEN deleted = 1 THEN 1 END) FROM transcripts")
	if err := row.Scan(&live, &deleted); err != nil {
		return 0, 0, fmt.Errorf("count transcripts: %w", err)
	}
	return live, deleted, nil
}

func collectTranscripts(rows *sql.Rows) ([]TranscriptRecord, error) {
	var records []TranscriptRecord
	for rows.Next() {
		record, err := scanTranscript(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcripts: %w", err)
	}
	return records, nil
}

func scanTranscript(scanner interface{ Scan(dest ...any) error }) (*TranscriptRecord, error) {
	var (
		record   TranscriptRecord
		startRaw string
		endRaw   string
		deleted  int64
	)
	if err := scanner.Scan(
		&record.ID,
		&record.ChannelID,
		&startRaw,
		&endRaw,
		&record.Text,
		&record.SegmentFilename,
		&record.OffsetSecs,
		&record.DurationSecs,
		&deleted,
	); err != nil {
		return nil, fmt.Errorf("scan transcript: %w", err)
	}

	var err error
	if record.StartTime, err = parseTimestamp(startRaw); err != nil {
		return nil, err
	}
	if record.EndTime, err = parseTimestamp(endRaw); err != nil {
		return nil, err
	}
	record.Deleted = deleted != 0
	return &record, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}
