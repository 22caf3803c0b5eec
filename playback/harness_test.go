package playback

import (
	"context"
	"testing"
	"time"

	"github.com/cine-cli/cine/domain"
	"github.com/cine-cli/cine/engine"
	"github.com/cine-cli/cine/probe"
)

// chanDispatcher queues redispatched work; tests pump it explicitly so the
// probe completion runs at a known point on the test goroutine.
type chanDispatcher struct {
	fns chan func()
}

func newChanDispatcher() *chanDispatcher {
	return &chanDispatcher{fns: make(chan func(), 16)}
}

func (d *chanDispatcher) Async(fn func()) {
	d.fns <- fn
}

// pump runs the next queued function, waiting for it if necessary.
func (d *chanDispatcher) pump(t *testing.T) {
	t.Helper()
	select {
	case fn := <-d.fns:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatched work")
	}
}

// fakeEngine implements engine.Engine with synchronous callback delivery: the
// test goroutine is the UI-owning context.
type fakeEngine struct {
	item         *engine.Item
	rate         float64
	volume       float64
	current      engine.Time
	surfaceUp    bool
	surfaceReady bool
	closed       bool

	nextTok engine.Token
	subs    map[engine.Token]fakeSub
	timers  map[engine.Token]func(engine.Time)

	seeks []engine.Time
	ops   []string // teardown ordering: pause, unsub-time, unsub, close
}

type fakeSub struct {
	event engine.Event
	fn    func()
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		subs:   make(map[engine.Token]fakeSub),
		timers: make(map[engine.Token]func(engine.Time)),
	}
}

func (f *fakeEngine) SetItem(item *engine.Item) error {
	f.item = item
	return nil
}

func (f *fakeEngine) CurrentItem() *engine.Item { return f.item }

func (f *fakeEngine) Rate() float64 { return f.rate }

func (f *fakeEngine) SetRate(rate float64) error {
	if rate == 0 {
		f.ops = append(f.ops, "pause")
	}
	changed := f.rate != rate
	f.rate = rate
	if changed {
		f.fire(engine.EventRate)
	}
	return nil
}

func (f *fakeEngine) Volume() float64 { return f.volume }

func (f *fakeEngine) SetVolume(v float64) error {
	f.volume = v
	return nil
}

func (f *fakeEngine) CurrentTime() engine.Time { return f.current }

func (f *fakeEngine) SeekTo(t engine.Time) error {
	f.seeks = append(f.seeks, t)
	f.current = t
	return nil
}

func (f *fakeEngine) AttachSurface() error {
	f.surfaceUp = true
	return nil
}

func (f *fakeEngine) SurfaceReady() bool { return f.surfaceReady }

func (f *fakeEngine) Subscribe(ev engine.Event, fn func()) (engine.Token, error) {
	f.nextTok++
	tok := f.nextTok
	f.subs[tok] = fakeSub{event: ev, fn: fn}
	if ev == engine.EventSurfaceReady {
		fn()
	}
	return tok, nil
}

func (f *fakeEngine) AddPeriodicTimeObserver(_ time.Duration, fn func(engine.Time)) (engine.Token, error) {
	f.nextTok++
	tok := f.nextTok
	f.timers[tok] = fn
	return tok, nil
}

func (f *fakeEngine) Unsubscribe(tok engine.Token) {
	if _, ok := f.timers[tok]; ok {
		f.ops = append(f.ops, "unsub-time")
		delete(f.timers, tok)
		return
	}
	if _, ok := f.subs[tok]; ok {
		f.ops = append(f.ops, "unsub")
		delete(f.subs, tok)
	}
}

func (f *fakeEngine) Close() error {
	f.ops = append(f.ops, "close")
	f.closed = true
	return nil
}

// fire delivers an event to all current subscribers synchronously.
func (f *fakeEngine) fire(ev engine.Event) {
	for _, sub := range f.subs {
		if sub.event == ev {
			sub.fn()
		}
	}
}

// markReady moves the current item to ready with the given duration.
func (f *fakeEngine) markReady(seconds float64, scale int32) {
	f.item.MarkReady(engine.FromSeconds(seconds, scale))
	f.fire(engine.EventItemStatus)
}

// markFailed moves the current item to failed.
func (f *fakeEngine) markFailed(err error) {
	f.item.MarkFailed(err)
	f.fire(engine.EventItemStatus)
}

// setSurfaceReady flips readiness and notifies subscribers.
func (f *fakeEngine) setSurfaceReady() {
	f.surfaceReady = true
	f.fire(engine.EventSurfaceReady)
}

// tick invokes every periodic time observer with the given position.
func (f *fakeEngine) tick(seconds float64) {
	for _, fn := range f.timers {
		fn(engine.FromSeconds(seconds, engine.DefaultTimescale))
	}
}

// Fake sinks.

type fakeLoading struct {
	running    bool
	startCalls int
	stopCalls  int
}

func (f *fakeLoading) Start() { f.running = true; f.startCalls++ }
func (f *fakeLoading) Stop()  { f.running = false; f.stopCalls++ }
func (f *fakeLoading) Hide()  { f.running = false }

type fakeIndicator struct{ visible bool }

func (f *fakeIndicator) Show() { f.visible = true }
func (f *fakeIndicator) Hide() { f.visible = false }

type fakeSurface struct {
	attached    bool
	revealCalls int
}

func (f *fakeSurface) Attach() { f.attached = true }
func (f *fakeSurface) Reveal() { f.revealCalls++ }

type fakeButton struct {
	enabled bool
	title   string
}

func (f *fakeButton) SetEnabled(enabled bool) { f.enabled = enabled }
func (f *fakeButton) SetTitle(title string)   { f.title = title }

type fakeScrubber struct {
	duration  float64
	positions []float64
}

func (f *fakeScrubber) SetDuration(seconds float64) { f.duration = seconds }
func (f *fakeScrubber) SetPosition(seconds float64) { f.positions = append(f.positions, seconds) }

type fakePresenter struct{ errs []error }

func (f *fakePresenter) Present(err error) { f.errs = append(f.errs, err) }

type fakeSinkSet struct {
	loading    *fakeLoading
	unplayable *fakeIndicator
	noVideo    *fakeIndicator
	surface    *fakeSurface
	playPause  *fakeButton
	forward    *fakeButton
	rewind     *fakeButton
	scrubber   *fakeScrubber
	errors     *fakePresenter
}

func newFakeSinks() *fakeSinkSet {
	return &fakeSinkSet{
		loading:    &fakeLoading{},
		unplayable: &fakeIndicator{},
		noVideo:    &fakeIndicator{},
		surface:    &fakeSurface{},
		playPause:  &fakeButton{},
		forward:    &fakeButton{},
		rewind:     &fakeButton{},
		scrubber:   &fakeScrubber{},
		errors:     &fakePresenter{},
	}
}

func (s *fakeSinkSet) sinks() Sinks {
	return Sinks{
		Loading:     s.loading,
		Unplayable:  s.unplayable,
		NoVideo:     s.noVideo,
		Surface:     s.surface,
		PlayPause:   s.playPause,
		FastForward: s.forward,
		Rewind:      s.rewind,
		Scrubber:    s.scrubber,
		Errors:      s.errors,
	}
}

// fixedProber returns a canned result.
type fixedProber struct {
	result *probe.Result
}

func (p *fixedProber) Probe(_ context.Context, _ *domain.Asset) *probe.Result {
	return p.result
}

// Canned results.

func playableResult(tracks ...domain.Track) *probe.Result {
	return &probe.Result{
		Playable:  probe.BoolFact{Value: true},
		Protected: probe.BoolFact{Value: false},
		Tracks:    probe.TracksFact{Value: tracks},
	}
}

func videoTrack() domain.Track {
	return domain.Track{Index: 0, Type: domain.TrackVideo, Codec: "h264", Width: 1920, Height: 1080}
}

func audioTrack() domain.Track {
	return domain.Track{Index: 1, Type: domain.TrackAudio, Codec: "aac"}
}
