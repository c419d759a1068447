package archiver

import (
	"testing"
	"time"
)

func TestSegmentStartTimeUTC(t *testing.T) {
	got, err := SegmentStartTime("itv_20260825T143236.ts", time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2026, 8, 25, 14, 32, 36, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestSegmentStartTimeNormalizesZone(t *testing.T) {
	baku, err := time.LoadLocation("Asia/Baku")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	got, err := SegmentStartTime("itv_20260825T140000.ts", baku)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// Baku is UTC+4; the wall clock 14:00 is 10:00 UTC.
	want := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC result, got %v", got.Location())
	}
}

func TestSegmentStartTimeRejectsGarbage(t *testing.T) {
	for _, name := range []string{"noseparator.ts", "itv_.ts", "itv_notatime.ts"} {
		if _, err := SegmentStartTime(name, time.UTC); err == nil {
			t.Fatalf("%q: expected error", name)
		}
	}
}

func TestSegmentFilenameRoundTrip(t *testing.T) {
	start := time.Date(2026, 8, 25, 14, 32, 36, 0, time.UTC)
	name := SegmentFilename("itv", start, time.UTC)
	if name != "itv_20260825T143236.ts" {
		t.Fatalf("unexpected name %q", name)
	}
	parsed, err := SegmentStartTime(name, time.UTC)
	if err != nil || !parsed.Equal(start) {
		t.Fatalf("round trip failed: %v %v", parsed, err)
	}
}

func TestHeaderArgs(t *testing.T) {
	args := headerArgs(map[string]string{
		"User-Agent": "Mozilla/5.0",
		"Referer":    "https://example.com/",
		"X-Token":    "abc",
		"Empty":      "",
	})

	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %v", args)
	}
	if args[0] != "-user_agent" || args[1] != "Mozilla/5.0" {
		t.Fatalf("user agent flag missing: %v", args)
	}
	if args[2] != "-headers" {
		t.Fatalf("headers flag missing: %v", args)
	}
	if args[3] != "Referer: https://example.com/\r\nX-Token: abc\r\n" {
		t.Fatalf("unexpected headers blob %q", args[3])
	}
}

func TestHeaderArgsEmpty(t *testing.T) {
	if args := headerArgs(nil); args != nil {
		t.Fatalf("expected nil args, got %v", args)
	}
}
