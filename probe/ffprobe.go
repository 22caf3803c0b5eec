package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cine-cli/cine/domain"
)

// FFProbe resolves asset facts by running ffprobe with JSON output. The
// binary path is configurable so packaged installs can ship their own.
type FFProbe struct {
	// Binary is the ffprobe executable name or path. Empty means "ffprobe".
	Binary string
}

// NewFFProbe builds a prober around the given ffprobe binary.
func NewFFProbe(binary string) *FFProbe {
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFProbe{Binary: binary}
}

// Available reports whether the ffprobe binary can be found.
func (p *FFProbe) Available() bool {
	_, err := exec.LookPath(p.Binary)
	return err == nil
}

// ffprobeOutput mirrors the parts of ffprobe's -print_format json output that
// the facts are derived from.
type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  *ffprobeFormat  `json:"format"`
}

type ffprobeStream struct {
	Index     int               `json:"index"`
	CodecType string            `json:"codec_type"`
	CodecName string            `json:"codec_name"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Tags      map[string]string `json:"tags"`
}

type ffprobeFormat struct {
	FormatName string            `json:"format_name"`
	Duration   string            `json:"duration"`
	Tags       map[string]string `json:"tags"`
}

// Probe runs ffprobe against the asset and derives the three facts. Each fact
// fails independently when the section of the output it depends on is absent.
func (p *FFProbe) Probe(ctx context.Context, asset *domain.Asset) *Result {
	out, err := p.run(ctx, asset.Path)
	if err != nil {
		// The whole pass failed: no fact can be resolved.
		probeErr := fmt.Errorf("probing %s: %w", asset.Name, err)
		return &Result{
			Playable:  BoolFact{Err: probeErr},
			Protected: BoolFact{Err: probeErr},
			Tracks:    TracksFact{Err: probeErr},
		}
	}
	return parseResult(asset, out)
}

func (p *FFProbe) run(ctx context.Context, path string) (*ffprobeOutput, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
	cmd := exec.CommandContext(ctx, p.Binary, args...)
	data, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", p.Binary, err)
	}

	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing %s output: %w", p.Binary, err)
	}
	logrus.WithFields(logrus.Fields{
		"path":    path,
		"streams": len(out.Streams),
	}).Debug("probe finished")
	return &out, nil
}

// parseResult derives the fact set from a successful ffprobe run.
func parseResult(asset *domain.Asset, out *ffprobeOutput) *Result {
	res := &Result{}

	if out.Format == nil {
		res.Playable.Err = fmt.Errorf("probing %s: no container format reported", asset.Name)
		res.Protected.Err = res.Playable.Err
	} else {
		res.Playable.Value = out.Format.FormatName != "" && len(out.Streams) > 0
		res.Protected.Value = isProtected(out)
		if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
			res.DurationHint = d
		}
	}

	if out.Streams == nil {
		res.Tracks.Err = fmt.Errorf("probing %s: no stream list reported", asset.Name)
	} else {
		res.Tracks.Value = parseTracks(out.Streams)
	}

	return res
}

func parseTracks(streams []ffprobeStream) []domain.Track {
	tracks := make([]domain.Track, 0, len(streams))
	for _, s := range streams {
		tracks = append(tracks, domain.Track{
			Index:    s.Index,
			Type:     trackType(s.CodecType),
			Codec:    s.CodecName,
			Width:    s.Width,
			Height:   s.Height,
			Language: s.Tags["language"],
		})
	}
	return tracks
}

func trackType(codecType string) domain.TrackType {
	switch codecType {
	case "video":
		return domain.TrackVideo
	case "audio":
		return domain.TrackAudio
	case "subtitle":
		return domain.TrackSubtitle
	default:
		return domain.TrackUnknown
	}
}

// isProtected detects DRM / encryption markers: an encrypted format name or
// per-stream encryption tags.
func isProtected(out *ffprobeOutput) bool {
	if out.Format != nil {
		if strings.Contains(out.Format.FormatName, "crypt") {
			return true
		}
		if v := out.Format.Tags["encryption"]; v != "" && v != "none" {
			return true
		}
	}
	for _, s := range out.Streams {
		if v := s.Tags["encryption"]; v != "" && v != "none" {
			return true
		}
		if strings.HasSuffix(s.CodecName, "_encrypted") {
			return true
		}
	}
	return false
}
