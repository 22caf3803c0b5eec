package playback

// The controller writes into UI elements through the narrow sink interfaces
// below. Sinks are opaque: the controller never reads state back out of them,
// and every write happens on the dispatcher the controller was built with.

// ActivityIndicator is the loading spinner shown while an asset loads.
type ActivityIndicator interface {
	Start()
	Stop()
	Hide()
}

// Indicator is a static text indicator ("unplayable", "no video") that is
// hidden until revealed.
type Indicator interface {
	Show()
	Hide()
}

// SurfaceContainer hosts the engine's visual surface. Attach installs the
// surface hidden; Reveal makes it visible once the surface is ready.
type SurfaceContainer interface {
	Attach()
	Reveal()
}

// Button is a transport control with an enabled flag and a title.
type Button interface {
	SetEnabled(enabled bool)
	SetTitle(title string)
}

// Scrubber is the timeline control, periodically fed the current position.
type Scrubber interface {
	SetDuration(seconds float64)
	SetPosition(seconds float64)
}

// ErrorPresenter surfaces a terminal load error to the user, modally,
// attached to the document's window.
type ErrorPresenter interface {
	Present(err error)
}

// Sinks is the full capability-set of UI elements the controller drives.
type Sinks struct {
	Loading     ActivityIndicator
	Unplayable  Indicator
	NoVideo     Indicator
	Surface     SurfaceContainer
	PlayPause   Button
	FastForward Button
	Rewind      Button
	Scrubber    Scrubber
	Errors      ErrorPresenter
}
