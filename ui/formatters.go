package ui

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/cine-cli/cine/domain"
)

// FormatTimestamp converts seconds to H:MM:SS, or MM:SS under an hour.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}

// CreateScrubber renders the timeline as a progress bar with the current and
// total time on either side.
func CreateScrubber(position, duration float64, width int) string {
	progress := 0.0
	if duration > 0 {
		progress = position / duration
		if progress > 1 {
			progress = 1
		}
	}

	filledWidth := int(progress * float64(width))
	var bar string
	for i := 0; i < width; i++ {
		if i < filledWidth {
			bar += "[lightgreen]▓"
		} else {
			bar += "[darkgray]░"
		}
	}
	return fmt.Sprintf("[white]%s %s[white] %s",
		FormatTimestamp(position), bar, FormatTimestamp(duration))
}

// FormatTransportBar renders the three transport controls. Disabled controls
// are dimmed; the play/pause control carries its current title.
func FormatTransportBar(playTitle string, playEnabled, rewindEnabled, forwardEnabled bool) string {
	color := func(enabled bool) string {
		if enabled {
			return "[white]"
		}
		return "[darkgray]"
	}
	return fmt.Sprintf("%s⏪ Rewind (b)   %s%s (SPACE)   %s⏩ Forward (f)",
		color(rewindEnabled), color(playEnabled), playTitle, color(forwardEnabled))
}

// FormatAssetInfo creates the info block for the opened movie file.
func FormatAssetInfo(asset *domain.Asset, maxTitleWidth int) string {
	title := asset.Name
	if maxTitleWidth > 3 {
		title = runewidth.Truncate(title, maxTitleWidth, "...")
	}
	sizeStr := "unknown size"
	if asset.Size > 0 {
		sizeStr = fmt.Sprintf("%.1f MB", float64(asset.Size)/1024/1024)
	}
	return fmt.Sprintf(`[lightgreen]%s
[darkgray][source] %s
[darkgray][size] %s

[gray]  SPACE (play/pause)
[gray]  f/b (forward/rewind)
[gray]  ←/→ (scrub) | gg/G (start/end)
[gray]  +/- (volume)
[gray]  q or ESC to exit`,
		title, asset.Path, sizeStr)
}

// CreateVolumeText renders the volume readout as a percentage.
func CreateVolumeText(volume float64) string {
	return fmt.Sprintf("[darkgray][v-] [white]%3.0f%% [darkgray][v+]", volume*100)
}
