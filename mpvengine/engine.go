// Package mpvengine implements the engine abstraction on top of libmpv via
// go-mpv. Video renders into mpv's own window; the engine translates mpv
// events and observed properties into engine subscriptions delivered on the
// application dispatcher.
package mpvengine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wildeyedskies/go-mpv/mpv"
	"go.uber.org/atomic"

	"github.com/cine-cli/cine/dispatch"
	"github.com/cine-cli/cine/domain"
	"github.com/cine-cli/cine/engine"
)

// Options configures the underlying mpv instance.
type Options struct {
	// HardwareDecoding enables hwdec=auto.
	HardwareDecoding bool
	// InitialVolume is the startup volume in [0, 1].
	InitialVolume float64
}

type subscription struct {
	event engine.Event
	fn    func()
}

type timeObserver struct {
	stop chan struct{}
	done chan struct{}
}

// Engine drives a single mpv instance. At most one item is installed at a
// time; installing a new one replaces the previous item.
type Engine struct {
	m    *mpv.Mpv
	disp dispatch.Dispatcher
	log  *logrus.Entry

	closed    *atomic.Bool
	nextToken *atomic.Uint64
	pumpDone  chan struct{}

	mu           sync.Mutex
	subs         map[engine.Token]*subscription
	timers       map[engine.Token]*timeObserver
	item         *engine.Item
	rate         float64
	surfaceUp    bool
	surfaceReady bool
}

// New creates and initializes the mpv instance and starts its event pump.
// The engine starts paused, with video disabled until AttachSurface is
// called.
func New(disp dispatch.Dispatcher, opts Options) (*Engine, error) {
	m := mpv.Create()

	m.SetOptionString("video", "no")
	m.SetOptionString("keep-open", "yes")
	m.SetOptionString("pause", "yes")
	m.SetOptionString("idle", "yes")
	m.SetOptionString("input-default-bindings", "no")
	m.SetOptionString("osc", "no")
	if opts.HardwareDecoding {
		m.SetOptionString("hwdec", "auto")
	}

	m.ObserveProperty(0, "pause", mpv.FORMAT_FLAG)
	m.ObserveProperty(0, "speed", mpv.FORMAT_DOUBLE)
	m.ObserveProperty(0, "play-dir", mpv.FORMAT_STRING)

	if err := m.Initialize(); err != nil {
		m.TerminateDestroy()
		return nil, fmt.Errorf("initializing mpv: %w", err)
	}

	e := &Engine{
		m:         m,
		disp:      disp,
		log:       logrus.WithField("component", "mpvengine"),
		closed:    atomic.NewBool(false),
		nextToken: atomic.NewUint64(0),
		pumpDone:  make(chan struct{}),
		subs:      make(map[engine.Token]*subscription),
		timers:    make(map[engine.Token]*timeObserver),
	}

	if opts.InitialVolume > 0 {
		if err := e.SetVolume(opts.InitialVolume); err != nil {
			e.log.WithError(err).Warn("initial volume")
		}
	}

	go e.pump()
	return e, nil
}

// pump drains mpv's event queue until shutdown.
func (e *Engine) pump() {
	defer close(e.pumpDone)
	for {
		ev := e.m.WaitEvent(1)
		if ev == nil {
			if e.closed.Load() {
				return
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}
		switch ev.Event_Id {
		case mpv.EVENT_SHUTDOWN:
			return
		case mpv.EVENT_FILE_LOADED:
			e.fileLoaded()
		case mpv.EVENT_END_FILE:
			e.endFile()
		case mpv.EVENT_VIDEO_RECONFIG:
			e.videoReconfig()
		case mpv.EVENT_PROPERTY_CHANGE:
			e.propertyChanged()
		}
		if e.closed.Load() {
			return
		}
	}
}

func (e *Engine) fileLoaded() {
	duration := e.propertyFloat("duration")

	e.mu.Lock()
	item := e.item
	e.mu.Unlock()
	if item == nil {
		return
	}
	item.MarkReady(engine.FromSeconds(duration, engine.DefaultTimescale))
	e.fire(engine.EventItemStatus)
}

func (e *Engine) endFile() {
	e.mu.Lock()
	item := e.item
	e.mu.Unlock()
	if item == nil {
		return
	}
	// An end-file before the file ever loaded means the load failed. After
	// a successful load it is plain end-of-media: keep-open pauses, and
	// the pause shows up as a rate change through propertyChanged.
	if item.Status() == domain.StatusUnknown {
		item.MarkFailed(errors.New("mpvengine: media failed to load"))
		e.fire(engine.EventItemStatus)
	}
}

func (e *Engine) videoReconfig() {
	e.mu.Lock()
	changed := e.surfaceUp && !e.surfaceReady
	if changed {
		e.surfaceReady = true
	}
	e.mu.Unlock()
	if changed {
		e.fire(engine.EventSurfaceReady)
	}
}

// propertyChanged re-reads the observed properties and re-derives the
// effective rate: 0 while paused, signed speed otherwise.
func (e *Engine) propertyChanged() {
	paused := e.propertyFlag("pause")
	speed := e.propertyFloat("speed")

	rate := 0.0
	if !paused {
		rate = speed
		if e.propertyString("play-dir") == "-" {
			rate = -rate
		}
	}

	e.applyRate(rate)
}

// applyRate records the effective rate and fires the rate event when it
// changed.
func (e *Engine) applyRate(rate float64) {
	e.mu.Lock()
	changed := rate != e.rate
	e.rate = rate
	e.mu.Unlock()
	if changed {
		e.fire(engine.EventRate)
	}
}

func (e *Engine) propertyFloat(name string) float64 {
	v, err := e.m.GetProperty(name, mpv.FORMAT_DOUBLE)
	if err != nil {
		return 0
	}
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return f
}

func (e *Engine) propertyFlag(name string) bool {
	v, err := e.m.GetProperty(name, mpv.FORMAT_FLAG)
	if err != nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		return false
	}
	return b
}

func (e *Engine) propertyString(name string) string {
	v, err := e.m.GetProperty(name, mpv.FORMAT_STRING)
	if err != nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// fire schedules every subscriber of ev on the dispatcher. The subscription
// is re-checked at run time so a token cancelled in between stays silent.
func (e *Engine) fire(ev engine.Event) {
	e.mu.Lock()
	var pending []engine.Token
	for tok, sub := range e.subs {
		if sub.event == ev {
			pending = append(pending, tok)
		}
	}
	e.mu.Unlock()

	for _, tok := range pending {
		tok := tok
		e.disp.Async(func() {
			e.mu.Lock()
			sub, ok := e.subs[tok]
			e.mu.Unlock()
			if ok && !e.closed.Load() {
				sub.fn()
			}
		})
	}
}

// SetItem installs the item, replacing any previous one. A nil item stops
// playback and clears the engine.
func (e *Engine) SetItem(item *engine.Item) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	e.mu.Lock()
	e.item = item
	e.mu.Unlock()

	if item == nil {
		return e.m.Command([]string{"stop"})
	}
	if err := e.m.Command([]string{"loadfile", item.Asset().Path}); err != nil {
		return fmt.Errorf("loading %s: %w", item.Asset().Name, err)
	}
	return nil
}

// CurrentItem returns the installed item, nil if none.
func (e *Engine) CurrentItem() *engine.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.item
}

// Rate returns the effective playback rate.
func (e *Engine) Rate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rate
}

// SetRate maps the requested rate onto mpv: 0 pauses, positive rates play
// forward at |rate|, negative rates flip the play direction. The effective
// rate is recorded as soon as mpv accepts the request rather than waiting for
// a property event: a direction-only change (2.0 to -2.0) leaves pause and
// speed untouched, so no event would ever arrive for it.
func (e *Engine) SetRate(rate float64) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	if rate == 0 {
		if err := e.m.SetPropertyString("pause", "yes"); err != nil {
			return fmt.Errorf("pausing: %w", err)
		}
		e.applyRate(0)
		return nil
	}

	dir := "+"
	speed := rate
	if rate < 0 {
		dir = "-"
		speed = -rate
	}
	if err := e.m.SetPropertyString("play-dir", dir); err != nil {
		return fmt.Errorf("setting play direction: %w", err)
	}
	if err := e.m.SetProperty("speed", mpv.FORMAT_DOUBLE, speed); err != nil {
		return fmt.Errorf("setting speed: %w", err)
	}
	if err := e.m.SetPropertyString("pause", "no"); err != nil {
		return fmt.Errorf("resuming: %w", err)
	}
	e.applyRate(rate)
	return nil
}

// Volume returns the current volume in [0, 1].
func (e *Engine) Volume() float64 {
	if e.closed.Load() {
		return 0
	}
	return e.propertyFloat("volume") / 100
}

// SetVolume sets the volume from a [0, 1] value.
func (e *Engine) SetVolume(volume float64) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	return e.m.SetProperty("volume", mpv.FORMAT_DOUBLE, volume*100)
}

// CurrentTime returns the playhead position.
func (e *Engine) CurrentTime() engine.Time {
	if e.closed.Load() {
		return engine.ZeroTime
	}
	return engine.FromSeconds(e.propertyFloat("time-pos"), engine.DefaultTimescale)
}

// SeekTo seeks to exactly t.
func (e *Engine) SeekTo(t engine.Time) error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	return e.m.Command([]string{"seek", fmt.Sprintf("%.6f", t.Seconds()), "absolute+exact"})
}

// AttachSurface enables mpv's video output. The surface counts as ready once
// the first video reconfiguration arrives.
func (e *Engine) AttachSurface() error {
	if e.closed.Load() {
		return engine.ErrClosed
	}
	e.mu.Lock()
	e.surfaceUp = true
	e.mu.Unlock()

	if err := e.m.SetPropertyString("video", "auto"); err != nil {
		return fmt.Errorf("enabling video: %w", err)
	}
	return e.m.SetPropertyString("force-window", "yes")
}

// SurfaceReady reports whether the surface has displayed its first frame
// configuration.
func (e *Engine) SurfaceReady() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surfaceReady
}

// Subscribe registers fn for ev. Surface-readiness subscriptions fire once
// immediately with the current value.
func (e *Engine) Subscribe(ev engine.Event, fn func()) (engine.Token, error) {
	if e.closed.Load() {
		return 0, engine.ErrClosed
	}
	tok := engine.Token(e.nextToken.Inc())
	e.mu.Lock()
	e.subs[tok] = &subscription{event: ev, fn: fn}
	e.mu.Unlock()

	if ev == engine.EventSurfaceReady {
		e.disp.Async(func() {
			e.mu.Lock()
			_, ok := e.subs[tok]
			e.mu.Unlock()
			if ok && !e.closed.Load() {
				fn()
			}
		})
	}
	return tok, nil
}

// AddPeriodicTimeObserver starts a ticker that reports the playhead position
// at the given cadence.
func (e *Engine) AddPeriodicTimeObserver(interval time.Duration, fn func(engine.Time)) (engine.Token, error) {
	if e.closed.Load() {
		return 0, engine.ErrClosed
	}
	tok := engine.Token(e.nextToken.Inc())
	obs := &timeObserver{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	e.mu.Lock()
	e.timers[tok] = obs
	e.mu.Unlock()

	go func() {
		defer close(obs.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-obs.stop:
				return
			case <-ticker.C:
				if e.closed.Load() {
					return
				}
				t := e.CurrentTime()
				e.disp.Async(func() {
					e.mu.Lock()
					_, ok := e.timers[tok]
					e.mu.Unlock()
					if ok && !e.closed.Load() {
						fn(t)
					}
				})
			}
		}
	}()
	return tok, nil
}

// Unsubscribe cancels the subscription or time observer identified by tok.
func (e *Engine) Unsubscribe(tok engine.Token) {
	e.mu.Lock()
	delete(e.subs, tok)
	obs, isTimer := e.timers[tok]
	if isTimer {
		delete(e.timers, tok)
	}
	e.mu.Unlock()

	if isTimer {
		close(obs.stop)
		<-obs.done
	}
}

// Close shuts mpv down and waits for the event pump to exit.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	e.mu.Lock()
	timers := e.timers
	e.timers = make(map[engine.Token]*timeObserver)
	e.subs = make(map[engine.Token]*subscription)
	e.item = nil
	e.mu.Unlock()

	for _, obs := range timers {
		close(obs.stop)
		<-obs.done
	}

	e.m.Command([]string{"quit"})
	<-e.pumpDone
	e.m.TerminateDestroy()
	return nil
}
