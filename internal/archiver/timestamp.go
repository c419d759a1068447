package archiver

import (
	"fmt"
	"strings"
	"time"
)

// segmentTimeLayout matches the strftime pattern the segmenter writes:
// <channel>_YYYYMMDDTHHMMSS.ts
const segmentTimeLayout = "20060102T150405"

// SegmentStartTime parses the absolute start time encoded in a raw segment
// filename. The encoded clock time is interpreted in loc and normalized to
// UTC.
func SegmentStartTime(filename string, loc *time.Location) (time.Time, error) {
	stem := filename
	if idx := strings.LastIndexByte(stem, '.'); idx >= 0 {
		stem = stem[:idx]
	}
	idx := strings.IndexByte(stem, '_')
	if idx < 0 || idx == len(stem)-1 {
		return time.Time{}, fmt.Errorf("segment name %q has no timestamp", filename)
	}
	raw := stem[idx+1:]

	if loc == nil {
		loc = time.UTC
	}
	parsed, err := time.ParseInLocation(segmentTimeLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse segment timestamp %q: %w", raw, err)
	}
	return parsed.UTC(), nil
}

// SegmentFilename builds the raw segment name for a channel and start time.
func SegmentFilename(channelID string, start time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("%s_%s.ts", channelID, start.In(loc).Format(segmentTimeLayout))
}
