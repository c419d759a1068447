package store

import (
	"fmt"
	"time"
)

// TranscriptRecord is one persisted utterance with absolute timestamps.
// Records are immutable once written except for the one-way deleted flag
// set by the retention sweeper.
type TranscriptRecord struct {
	ID              int64
	ChannelID       string
	StartTime       time.Time
	EndTime         time.Time
	Text            string
	SegmentFilename string
	OffsetSecs      float64
	DurationSecs    float64
	Deleted         bool
}

// ScheduleInterval is a recurring daily window during which ingestion is
// active. End earlier than start means the window wraps past midnight.
type ScheduleInterval struct {
	ID    int64
	Start TimeOfDay
	End   TimeOfDay
}

// TimeOfDay is a clock time expressed as seconds since midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	var hour, minute, second int
	switch n, _ := fmt.Sscanf(value, "%d:%d:%d", &hour, &minute, &second); n {
	case 2, 3:
	default:
		return 0, fmt.Errorf("parse time of day %q: want HH:MM or HH:MM:SS", value)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, fmt.Errorf("time of day %q out of range", value)
	}
	return TimeOfDay(hour*3600 + minute*60 + second), nil
}

// TimeOfDayFrom extracts the clock time of t in its own location.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// Clock splits the value into hour, minute, and second components.
func (t TimeOfDay) Clock() (hour, minute, second int) {
	v := int(t)
	return v / 3600, (v % 3600) / 60, v % 60
}

// String renders the value as HH:MM:SS.
func (t TimeOfDay) String() string {
	hour, minute, second := t.Clock()
	return fmt.Sprintf("%02d:%02d:%02d", hour, minute, second)
}
