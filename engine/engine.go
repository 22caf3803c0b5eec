// Package engine defines the playback engine abstraction the controller
// drives. An Engine owns at most one Item at a time and reports state changes
// through explicit subscriptions rather than callbacks wired at construction,
// so a torn-down subscriber can guarantee it never hears from the engine
// again.
package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/cine-cli/cine/domain"
)

// Event identifies an observable engine signal.
type Event int

const (
	// EventRate fires whenever the playback rate changes.
	EventRate Event = iota
	// EventItemStatus fires whenever the current item's status changes.
	EventItemStatus
	// EventSurfaceReady fires once with the current readiness value at
	// subscription time, then again on every change.
	EventSurfaceReady
)

// Token identifies a single subscription. The zero token is never issued.
type Token uint64

// ErrClosed is returned by operations on an engine that has been closed.
var ErrClosed = errors.New("engine: closed")

// Item is a playback item derived from a probed asset. The engine owns its
// status and duration; both start unset and are filled in once the engine has
// loaded the underlying media.
type Item struct {
	mu       sync.Mutex
	asset    *domain.Asset
	status   domain.ItemStatus
	duration Time
	err      error
}

// NewItem builds a playback item for the given asset with status unknown.
func NewItem(asset *domain.Asset) *Item {
	return &Item{asset: asset}
}

// Asset returns the asset this item was built from.
func (i *Item) Asset() *domain.Asset {
	return i.asset
}

// Status returns the item's current readiness status.
func (i *Item) Status() domain.ItemStatus {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.status
}

// Duration returns the item's duration. The value is only meaningful once
// Status is StatusReady.
func (i *Item) Duration() Time {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.duration
}

// Err returns the failure that moved the item to StatusFailed, nil otherwise.
func (i *Item) Err() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.err
}

// MarkReady is called by the engine when the media finished loading.
func (i *Item) MarkReady(duration Time) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.status = domain.StatusReady
	i.duration = duration
}

// MarkFailed is called by the engine when loading the media failed.
func (i *Item) MarkFailed(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.status = domain.StatusFailed
	i.err = err
}

// Engine is the playback engine handle. Implementations deliver every
// subscription callback on the dispatcher they were constructed with, and
// must stop delivering to a token as soon as Unsubscribe for it returns.
type Engine interface {
	// SetItem installs item as the engine's current item, replacing any
	// previous one. A nil item clears the engine.
	SetItem(item *Item) error

	// CurrentItem returns the installed item, nil if none.
	CurrentItem() *Item

	// Rate returns the current playback rate (1.0 is normal forward play,
	// 0 is paused, negative values play backward).
	Rate() float64

	// SetRate sets the playback rate.
	SetRate(rate float64) error

	// Volume returns the current volume in [0, 1].
	Volume() float64

	// SetVolume sets the volume.
	SetVolume(volume float64) error

	// CurrentTime returns the current playback position.
	CurrentTime() Time

	// SeekTo moves the playhead to exactly t, with zero tolerance on both
	// sides of the target.
	SeekTo(t Time) error

	// AttachSurface creates the engine's visual surface, hidden until the
	// surface signals readiness through EventSurfaceReady.
	AttachSurface() error

	// SurfaceReady reports whether the attached surface is ready to
	// display frames. False when no surface is attached.
	SurfaceReady() bool

	// Subscribe registers fn for ev and returns a cancellation token.
	Subscribe(ev Event, fn func()) (Token, error)

	// AddPeriodicTimeObserver invokes fn with the current position at the
	// given cadence while an item is installed.
	AddPeriodicTimeObserver(interval time.Duration, fn func(Time)) (Token, error)

	// Unsubscribe cancels the subscription identified by tok. Once it
	// returns, the callback for tok will not run again.
	Unsubscribe(tok Token)

	// Close releases the engine. All subscriptions are implicitly
	// cancelled; live callbacks are allowed to finish first.
	Close() error
}
