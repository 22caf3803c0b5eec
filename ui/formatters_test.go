package ui

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/cine-cli/cine/domain"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{61.4, "01:01"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{5400.25, "1:30:00"},
		{-5, "00:00"},
	}

	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestCreateScrubber(t *testing.T) {
	bar := CreateScrubber(30, 60, 10)
	if !strings.HasPrefix(bar, "[white]00:30") {
		t.Errorf("scrubber should start with the position: %q", bar)
	}
	if !strings.HasSuffix(bar, "01:00") {
		t.Errorf("scrubber should end with the duration: %q", bar)
	}
	if got := strings.Count(bar, "▓"); got != 5 {
		t.Errorf("filled cells = %d, want 5", got)
	}
	if got := strings.Count(bar, "░"); got != 5 {
		t.Errorf("empty cells = %d, want 5", got)
	}
}

func TestCreateScrubberClampsOverrun(t *testing.T) {
	bar := CreateScrubber(90, 60, 10)
	if got := strings.Count(bar, "▓"); got != 10 {
		t.Errorf("filled cells = %d, want full bar", got)
	}
}

func TestCreateScrubberZeroDuration(t *testing.T) {
	bar := CreateScrubber(0, 0, 10)
	if got := strings.Count(bar, "░"); got != 10 {
		t.Errorf("empty cells = %d, want 10 when duration unknown", got)
	}
}

func TestFormatTransportBar(t *testing.T) {
	bar := FormatTransportBar("Pause", true, false, true)
	if !strings.Contains(bar, "Pause (SPACE)") {
		t.Errorf("transport bar missing play title: %q", bar)
	}
	if !strings.Contains(bar, "[darkgray]⏪") {
		t.Errorf("disabled rewind should be dimmed: %q", bar)
	}
	if !strings.Contains(bar, "[white]⏩") {
		t.Errorf("enabled forward should be bright: %q", bar)
	}
}

func TestFormatAssetInfoTruncatesTitle(t *testing.T) {
	asset := domain.NewAsset("/movies/a-very-long-movie-title-that-never-ends.mp4")
	asset.Size = 2 * 1024 * 1024

	info := FormatAssetInfo(asset, 20)
	// The source line keeps the full path; only the title line truncates.
	titleLine := strings.SplitN(info, "\n", 2)[0]
	if strings.Contains(titleLine, asset.Name) {
		t.Errorf("long title should be truncated: %q", titleLine)
	}
	if !strings.HasSuffix(titleLine, "...") {
		t.Errorf("truncated title should carry an ellipsis: %q", titleLine)
	}
	if !strings.Contains(info, "2.0 MB") {
		t.Errorf("info should include the file size: %q", info)
	}
}

func TestFormatAssetInfoTruncatesMultiByteTitleCleanly(t *testing.T) {
	asset := domain.NewAsset("/movies/længere-titler-med-æøå-tegn-overalt-i-navnet.mkv")

	info := FormatAssetInfo(asset, 20)
	if !utf8.ValidString(info) {
		t.Fatalf("truncation split a rune, info is not valid UTF-8: %q", info)
	}
	titleLine := strings.SplitN(info, "\n", 2)[0]
	if !strings.HasSuffix(titleLine, "...") {
		t.Errorf("long multi-byte title should be truncated: %q", titleLine)
	}
}
