package ui

import (
	"github.com/cine-cli/cine/playback"
)

// The adapters below implement the controller's sink interfaces on top of the
// App. Every sink method is invoked on the application's dispatch queue, so
// they mutate App state directly and schedule a redraw.

type loadingSink struct{ app *App }

func (s loadingSink) Start() {
	s.app.loading = true
	s.app.redraw()
}

func (s loadingSink) Stop() {
	s.app.loading = false
	s.app.redraw()
}

func (s loadingSink) Hide() {
	s.app.loading = false
	s.app.redraw()
}

type unplayableSink struct{ app *App }

func (s unplayableSink) Show() {
	s.app.unplayable = true
	s.app.redraw()
}

func (s unplayableSink) Hide() {
	s.app.unplayable = false
	s.app.redraw()
}

type noVideoSink struct{ app *App }

func (s noVideoSink) Show() {
	s.app.noVideo = true
	s.app.redraw()
}

func (s noVideoSink) Hide() {
	s.app.noVideo = false
	s.app.redraw()
}

type surfaceSink struct{ app *App }

func (s surfaceSink) Attach() {
	s.app.surfaceAttached = true
	s.app.redraw()
}

func (s surfaceSink) Reveal() {
	s.app.surfaceRevealed = true
	s.app.redraw()
}

type buttonKind int

const (
	buttonPlayPause buttonKind = iota
	buttonFastForward
	buttonRewind
)

type buttonSink struct {
	app  *App
	kind buttonKind
}

func (s buttonSink) SetEnabled(enabled bool) {
	switch s.kind {
	case buttonPlayPause:
		s.app.playEnabled = enabled
	case buttonFastForward:
		s.app.forwardEnabled = enabled
	case buttonRewind:
		s.app.rewindEnabled = enabled
	}
	s.app.redraw()
}

func (s buttonSink) SetTitle(title string) {
	if s.kind == buttonPlayPause {
		s.app.playTitle = title
		s.app.redraw()
	}
}

type scrubberSink struct{ app *App }

func (s scrubberSink) SetDuration(seconds float64) {
	s.app.duration = seconds
	s.app.redraw()
}

func (s scrubberSink) SetPosition(seconds float64) {
	s.app.position = seconds
	s.app.redraw()
}

type errorSink struct{ app *App }

func (s errorSink) Present(err error) {
	s.app.presentError(err)
}

// Sinks returns the full capability-set backed by this App.
func (a *App) Sinks() playback.Sinks {
	return playback.Sinks{
		Loading:     loadingSink{a},
		Unplayable:  unplayableSink{a},
		NoVideo:     noVideoSink{a},
		Surface:     surfaceSink{a},
		PlayPause:   buttonSink{a, buttonPlayPause},
		FastForward: buttonSink{a, buttonFastForward},
		Rewind:      buttonSink{a, buttonRewind},
		Scrubber:    scrubberSink{a},
		Errors:      errorSink{a},
	}
}
