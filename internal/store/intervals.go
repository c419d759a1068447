package store

import (
	"context"
	"fmt"
)

// Intervals returns every configured schedule interval ordered by id.
func (s *Store) Intervals(ctx context.Context) ([]ScheduleInterval, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, start_time, end_time FROM schedule_intervals ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query intervals: %w", err)
	}
	defer rows.Close()

	var intervals []ScheduleInterval
	for rows.Next() {
		var (
			interval ScheduleInterval
			startRaw string
			endRaw   string
		)
		if err := rows.Scan(&interval.ID, &startRaw, &endRaw); err != nil {
			return nil, fmt.Errorf("scan interval: %w", err)
		}
		if interval.Start, err = ParseTimeOfDay(startRaw); err != nil {
			return nil, err
		}
		if interval.End, err = ParseTimeOfDay(endRaw); err != nil {
			return nil, err
		}
		intervals = append(intervals, interval)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intervals: %w", err)
	}
	return intervals, nil
}

// AddInterval inserts a new daily window and returns its id.
func (s *Store) AddInterval(ctx context.Context, start, end TimeOfDay) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO schedule_intervals (start_time, end_time) VALUES (?, ?)",
		start.String(), end.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert interval: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// UpdateInterval rewrites an existing window.
func (s *Store) UpdateInterval(ctx context.Context, interval ScheduleInterval) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE schedule_intervals SET start_time = ?, end_time = ? WHERE id = ?",
		interval.Start.String(), interval.End.String(), interval.ID,
	)
	if err != nil {
		return fmt.Errorf("update interval: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("interval %d not found", interval.ID)
	}
	return nil
}

// DeleteInterval removes a window by id.
func (s *Store) DeleteInterval(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM schedule_intervals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete interval: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("interval %d not found", id)
	}
	return nil
}
