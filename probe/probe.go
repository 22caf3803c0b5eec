// Package probe resolves the capability facts of a media asset before any
// playback item is built: whether it is playable, whether it carries
// protected content, and which tracks it exposes.
package probe

import (
	"context"

	"github.com/samber/lo"

	"github.com/cine-cli/cine/domain"
)

// Prober resolves asset facts. Probe blocks and is expected to run on a
// worker goroutine; the result must be redispatched onto the UI-owning
// context before it is consumed.
type Prober interface {
	Probe(ctx context.Context, asset *domain.Asset) *Result
}

// BoolFact is one asynchronously-resolved boolean fact about an asset. Err is
// non-nil when the fact could not be determined; Value is then meaningless.
type BoolFact struct {
	Value bool
	Err   error
}

// TracksFact is the resolved track list of an asset.
type TracksFact struct {
	Value []domain.Track
	Err   error
}

// Result is the outcome of a single probing pass. The three facts resolve
// independently; any one of them failing makes the whole pass unusable.
type Result struct {
	Playable  BoolFact
	Protected BoolFact
	Tracks    TracksFact

	// DurationHint is the container duration in seconds, 0 if the probe
	// could not determine it. Informational only; the engine reports the
	// authoritative duration once the item is ready.
	DurationHint float64
}

// FirstErr returns the error of the first fact that failed to resolve, nil if
// every requested fact resolved.
func (r *Result) FirstErr() error {
	for _, err := range []error{r.Playable.Err, r.Protected.Err, r.Tracks.Err} {
		if err != nil {
			return err
		}
	}
	return nil
}

// HasVideo reports whether the resolved track list contains at least one
// video track. Only meaningful when Tracks resolved.
func (r *Result) HasVideo() bool {
	return lo.SomeBy(r.Tracks.Value, func(t domain.Track) bool {
		return t.Type == domain.TrackVideo
	})
}

// VideoTracks returns the resolved video tracks.
func (r *Result) VideoTracks() []domain.Track {
	return lo.Filter(r.Tracks.Value, func(t domain.Track, _ int) bool {
		return t.Type == domain.TrackVideo
	})
}
