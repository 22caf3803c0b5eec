// Package playback binds a playback engine to a set of UI sinks: it loads an
// asset, derives UI state from engine observations, and exposes the transport
// operations.
package playback

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/cine-cli/cine/dispatch"
	"github.com/cine-cli/cine/domain"
	"github.com/cine-cli/cine/engine"
	"github.com/cine-cli/cine/probe"
)

const (
	// tickInterval is the cadence of the periodic time observer feeding
	// the scrubber.
	tickInterval = 100 * time.Millisecond

	// rateStep is the fast-forward/rewind escalation step.
	rateStep = 2.0

	titlePlay  = "Play"
	titlePause = "Pause"
)

// Controller owns a single engine handle for the lifetime of one document.
// All methods must be called on the dispatcher's context; the engine delivers
// every observation callback there as well.
type Controller struct {
	eng    engine.Engine
	prober probe.Prober
	sinks  Sinks
	disp   dispatch.Dispatcher
	log    *logrus.Entry

	closed *atomic.Bool

	tokens    []engine.Token
	timeToken engine.Token

	surfaceAttached bool
	surfaceVisible  bool
}

// New builds a controller around an engine handle and registers the rate and
// item-status observations. The engine starts with no item, so the initial
// derived state is "unknown": transport disabled, no error shown.
func New(eng engine.Engine, prober probe.Prober, sinks Sinks, disp dispatch.Dispatcher) (*Controller, error) {
	c := &Controller{
		eng:    eng,
		prober: prober,
		sinks:  sinks,
		disp:   disp,
		log:    logrus.WithField("component", "playback"),
		closed: atomic.NewBool(false),
	}

	rateTok, err := eng.Subscribe(engine.EventRate, c.rateChanged)
	if err != nil {
		return nil, err
	}
	c.tokens = append(c.tokens, rateTok)

	statusTok, err := eng.Subscribe(engine.EventItemStatus, c.statusChanged)
	if err != nil {
		return nil, err
	}
	c.tokens = append(c.tokens, statusTok)

	c.applyStatus(domain.StatusUnknown)
	c.rateChanged()
	return c, nil
}

// Load starts the asynchronous probing pass for the asset. Probing runs on
// its own goroutine; the completion is redispatched onto the controller's
// context before any state is touched.
func (c *Controller) Load(ctx context.Context, asset *domain.Asset) {
	c.sinks.Loading.Start()
	c.log.WithField("asset", asset.Name).Info("loading asset")

	go func() {
		res := c.prober.Probe(ctx, asset)
		c.disp.Async(func() {
			c.assetLoaded(asset, res)
		})
	}()
}

// assetLoaded applies the ordered post-probing policy: validate every fact,
// reject unplayable or protected assets, attach a surface when video tracks
// exist, then install the playback item and the periodic time observer.
func (c *Controller) assetLoaded(asset *domain.Asset, res *probe.Result) {
	if c.closed.Load() {
		return
	}

	if err := res.FirstErr(); err != nil {
		c.log.WithError(err).Warn("asset facts did not resolve")
		c.sinks.Loading.Stop()
		c.sinks.Errors.Present(err)
		return
	}

	if !res.Playable.Value || res.Protected.Value {
		c.log.WithFields(logrus.Fields{
			"playable":  res.Playable.Value,
			"protected": res.Protected.Value,
		}).Warn("asset rejected")
		c.sinks.Loading.Stop()
		c.sinks.Unplayable.Show()
		return
	}

	if res.HasVideo() {
		if err := c.eng.AttachSurface(); err != nil {
			c.sinks.Loading.Stop()
			c.sinks.Errors.Present(err)
			return
		}
		c.surfaceAttached = true
		c.sinks.Surface.Attach()

		readyTok, err := c.eng.Subscribe(engine.EventSurfaceReady, c.surfaceReadyChanged)
		if err != nil {
			c.sinks.Loading.Stop()
			c.sinks.Errors.Present(err)
			return
		}
		c.tokens = append(c.tokens, readyTok)
	} else {
		c.sinks.NoVideo.Show()
	}

	// Audio-only assets still play: the item is installed regardless of
	// whether a surface exists.
	item := engine.NewItem(asset)
	if err := c.eng.SetItem(item); err != nil {
		c.sinks.Loading.Stop()
		c.sinks.Errors.Present(err)
		return
	}

	timeTok, err := c.eng.AddPeriodicTimeObserver(tickInterval, c.timeTicked)
	if err != nil {
		c.sinks.Loading.Stop()
		c.sinks.Errors.Present(err)
		return
	}
	c.timeToken = timeTok
}

// rateChanged re-derives the play/pause title. The title reads "Pause" only
// during normal forward playback.
func (c *Controller) rateChanged() {
	if c.closed.Load() {
		return
	}
	if c.eng.Rate() == 1.0 {
		c.sinks.PlayPause.SetTitle(titlePause)
	} else {
		c.sinks.PlayPause.SetTitle(titlePlay)
	}
}

// statusChanged re-derives transport enablement from the item status alone.
func (c *Controller) statusChanged() {
	if c.closed.Load() {
		return
	}
	status := domain.StatusUnknown
	item := c.eng.CurrentItem()
	if item != nil {
		status = item.Status()
	}
	c.applyStatus(status)

	switch status {
	case domain.StatusReady:
		c.sinks.Scrubber.SetDuration(c.Duration())
		if !c.surfaceAttached {
			// Nothing left to wait for on audio-only assets.
			c.sinks.Loading.Stop()
		}
	case domain.StatusFailed:
		c.sinks.Loading.Stop()
		var err error
		if item != nil {
			err = item.Err()
		}
		c.log.WithError(err).Error("item failed")
		c.sinks.Errors.Present(err)
	}
}

func (c *Controller) applyStatus(status domain.ItemStatus) {
	enabled := status == domain.StatusReady
	c.sinks.PlayPause.SetEnabled(enabled)
	c.sinks.FastForward.SetEnabled(enabled)
	c.sinks.Rewind.SetEnabled(enabled)
}

// surfaceReadyChanged reveals the surface on the first true readiness value.
// Later firings while already visible are no-ops.
func (c *Controller) surfaceReadyChanged() {
	if c.closed.Load() {
		return
	}
	if !c.eng.SurfaceReady() || c.surfaceVisible {
		return
	}
	c.surfaceVisible = true
	c.sinks.Loading.Stop()
	c.sinks.Surface.Reveal()
}

// timeTicked forwards the playhead to the scrubber. A tick arriving after
// teardown began is a no-op rather than a fault.
func (c *Controller) timeTicked(t engine.Time) {
	if c.closed.Load() {
		return
	}
	c.sinks.Scrubber.SetPosition(t.Seconds())
}

// TogglePlayPause starts normal forward playback, rewinding to the start
// first when the playhead sits at the end, or pauses if already playing.
func (c *Controller) TogglePlayPause() {
	if c.closed.Load() {
		return
	}
	if c.eng.Rate() != 1.0 {
		if d := c.Duration(); d > 0 && c.CurrentTime() >= d {
			c.seek(0)
		}
		c.setRate(1.0)
	} else {
		c.setRate(0)
	}
}

// Pause stops playback without toggling. Already-paused playback is left
// alone.
func (c *Controller) Pause() {
	if c.closed.Load() {
		return
	}
	if c.eng.Rate() != 0 {
		c.setRate(0)
	}
}

// FastForward escalates the forward rate: 2.0 first, then +2.0 per press,
// unbounded.
func (c *Controller) FastForward() {
	if c.closed.Load() {
		return
	}
	rate := c.eng.Rate()
	if rate < rateStep {
		c.setRate(rateStep)
	} else {
		c.setRate(rate + rateStep)
	}
}

// Rewind mirrors FastForward in the negative direction.
func (c *Controller) Rewind() {
	if c.closed.Load() {
		return
	}
	rate := c.eng.Rate()
	if rate > -rateStep {
		c.setRate(-rateStep)
	} else {
		c.setRate(rate - rateStep)
	}
}

func (c *Controller) setRate(rate float64) {
	if err := c.eng.SetRate(rate); err != nil {
		c.log.WithError(err).Warn("set rate")
	}
}

// SetCurrentTime seeks to the given position in seconds, frame-accurate. The
// seek target is built with the timescale of the current item's duration,
// falling back to the default granularity when no item is ready yet.
func (c *Controller) SetCurrentTime(seconds float64) {
	if c.closed.Load() {
		return
	}
	c.seek(seconds)
}

func (c *Controller) seek(seconds float64) {
	scale := engine.DefaultTimescale
	if item := c.eng.CurrentItem(); item != nil {
		if s := item.Duration().Scale; s > 0 {
			scale = s
		}
	}
	if err := c.eng.SeekTo(engine.FromSeconds(seconds, scale)); err != nil {
		c.log.WithError(err).Warn("seek")
	}
}

// CurrentTime returns the playhead position in seconds.
func (c *Controller) CurrentTime() float64 {
	if c.closed.Load() {
		return 0
	}
	return c.eng.CurrentTime().Seconds()
}

// Duration returns the asset duration in seconds, or 0 while no item exists
// or the item has not reached ready. Recomputed on every call so the value
// always reflects the current item and status.
func (c *Controller) Duration() float64 {
	if c.closed.Load() {
		return 0
	}
	item := c.eng.CurrentItem()
	if item == nil || item.Status() != domain.StatusReady {
		return 0
	}
	return item.Duration().Seconds()
}

// Volume returns the engine volume, 0 once the engine is released.
func (c *Controller) Volume() float64 {
	if c.closed.Load() {
		return 0
	}
	return c.eng.Volume()
}

// SetVolume passes the volume through to the engine.
func (c *Controller) SetVolume(v float64) {
	if c.closed.Load() {
		return
	}
	if err := c.eng.SetVolume(v); err != nil {
		c.log.WithError(err).Warn("set volume")
	}
}

// Close tears the controller down in order: pause the engine, remove the
// periodic time observer, release the remaining observations, then release
// the engine handle. After Close returns no subscription callback runs again.
func (c *Controller) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.log.Info("closing controller")

	if err := c.eng.SetRate(0); err != nil {
		c.log.WithError(err).Warn("pause on close")
	}
	if c.timeToken != 0 {
		c.eng.Unsubscribe(c.timeToken)
		c.timeToken = 0
	}
	for _, tok := range c.tokens {
		c.eng.Unsubscribe(tok)
	}
	c.tokens = nil

	return c.eng.Close()
}
