// Package ui renders the playback state with tview and routes key presses to
// the playback controller through the application's dispatch queue.
package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/cine-cli/cine/config"
	"github.com/cine-cli/cine/dispatch"
	"github.com/cine-cli/cine/domain"
	"github.com/cine-cli/cine/playback"
)

const errorPageName = "error"

// App is the terminal front end: a surface panel (video renders in the
// engine's own window; the panel mirrors its state), a scrubber, a transport
// bar and a status line.
type App struct {
	tviewApp *tview.Application
	cfg      *config.Config
	queue    dispatch.Dispatcher
	keys     *KeyBindingManager
	log      *logrus.Entry

	ctrl    *playback.Controller
	asset   *domain.Asset
	stopped *atomic.Bool

	pages        *tview.Pages
	rootFlex     *tview.Flex
	infoView     *tview.TextView
	surfaceView  *tview.TextView
	scrubberView *tview.TextView
	transportBar *tview.TextView
	statusBar    *tview.TextView

	// Presentation state, mutated only on the dispatch queue.
	loading         bool
	unplayable      bool
	noVideo         bool
	surfaceAttached bool
	surfaceRevealed bool
	playTitle       string
	playEnabled     bool
	forwardEnabled  bool
	rewindEnabled   bool
	position        float64
	duration        float64
	volume          float64
}

// NewApp creates the application shell. The playback controller is attached
// later via Bind, once the document has been opened against this app's sinks.
func NewApp(cfg *config.Config, queue dispatch.Dispatcher) *App {
	a := &App{
		tviewApp:  tview.NewApplication(),
		cfg:       cfg,
		queue:     queue,
		keys:      NewKeyBindingManager(),
		log:       logrus.WithField("component", "ui"),
		playTitle: "Play",
		stopped:   atomic.NewBool(false),
		volume:    cfg.Player.Volume,
	}
	a.createLayout()
	return a
}

// Bind attaches the controller and the opened asset, and wires keybindings.
func (a *App) Bind(ctrl *playback.Controller, asset *domain.Asset) {
	a.ctrl = ctrl
	a.asset = asset
	a.setupKeybindings()
	a.redraw()
}

// Run starts the tview event loop and blocks until Stop.
func (a *App) Run() error {
	return a.tviewApp.Run()
}

// Stop stops the application
func (a *App) Stop() {
	a.stopped.Store(true)
	if a.tviewApp != nil {
		a.tviewApp.Stop()
	}
}

// createLayout sets up the UI layout
func (a *App) createLayout() {
	a.infoView = tview.NewTextView().SetDynamicColors(true)
	a.infoView.SetBorder(false)

	a.surfaceView = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.surfaceView.SetBorder(true).SetTitle(" screen ")

	a.scrubberView = tview.NewTextView().SetDynamicColors(true)
	a.scrubberView.SetBorder(false)

	a.transportBar = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.transportBar.SetBorder(false)

	a.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false).
		SetWrap(true)
	a.statusBar.SetBorder(false)

	a.rootFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.infoView, 9, 0, false).
		AddItem(a.surfaceView, 0, 1, true).
		AddItem(a.scrubberView, 1, 0, false).
		AddItem(a.transportBar, 1, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.pages = tview.NewPages().AddPage("main", a.rootFlex, true, true)

	a.tviewApp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if a.keys.HandleKey(event) {
			return nil
		}
		return event
	})
	a.tviewApp.SetRoot(a.pages, true)
}

// setupKeybindings registers the transport keybindings
func (a *App) setupKeybindings() {
	step := a.cfg.Player.SeekStepSeconds

	a.keys.RegisterKeyBinding(KeyAction{
		name:    "toggle",
		handler: a.onQueue(func() { a.ctrl.TogglePlayPause() }),
	}, nil, []rune{' '})

	a.keys.RegisterKeyBinding(KeyAction{
		name:    "fastForward",
		handler: a.onQueue(func() { a.ctrl.FastForward() }),
	}, nil, []rune{'f'})

	a.keys.RegisterKeyBinding(KeyAction{
		name:    "rewind",
		handler: a.onQueue(func() { a.ctrl.Rewind() }),
	}, nil, []rune{'b'})

	a.keys.RegisterKeyBinding(KeyAction{
		name: "seekForward",
		handler: a.onQueue(func() {
			a.ctrl.SetCurrentTime(a.ctrl.CurrentTime() + step)
		}),
	}, []tcell.Key{tcell.KeyRight}, nil)

	a.keys.RegisterKeyBinding(KeyAction{
		name: "seekBack",
		handler: a.onQueue(func() {
			a.ctrl.SetCurrentTime(a.ctrl.CurrentTime() - step)
		}),
	}, []tcell.Key{tcell.KeyLeft}, nil)

	a.keys.RegisterKeyBinding(KeyAction{
		name: "volumeUp",
		handler: a.onQueue(func() {
			a.ctrl.SetVolume(a.ctrl.Volume() + 0.05)
			a.volume = a.ctrl.Volume()
			a.redraw()
		}),
	}, nil, []rune{'+'})

	a.keys.RegisterKeyBinding(KeyAction{
		name: "volumeDown",
		handler: a.onQueue(func() {
			a.ctrl.SetVolume(a.ctrl.Volume() - 0.05)
			a.volume = a.ctrl.Volume()
			a.redraw()
		}),
	}, nil, []rune{'-'})

	a.keys.RegisterKeyBinding(KeyAction{
		name:    "seekEnd",
		handler: a.onQueue(func() { a.ctrl.SetCurrentTime(a.ctrl.Duration()) }),
	}, nil, []rune{'G'})

	a.keys.RegisterSequence("gg", KeyAction{
		name:    "seekStart",
		handler: a.onQueue(func() { a.ctrl.SetCurrentTime(0) }),
	})

	a.keys.RegisterKeyBinding(KeyAction{
		name:    "quit",
		handler: func() { a.Stop() },
	}, []tcell.Key{tcell.KeyEscape}, []rune{'q'})
}

// onQueue wraps a controller call so key handlers, which run on tview's event
// loop, execute it on the UI-owning dispatch queue.
func (a *App) onQueue(fn func()) func() {
	return func() {
		a.queue.Async(fn)
	}
}

// redraw recomputes the rendered strings on the dispatch queue and hands the
// finished text to tview.
func (a *App) redraw() {
	if a.stopped.Load() {
		return
	}
	info := ""
	if a.asset != nil {
		info = FormatAssetInfo(a.asset, a.cfg.UI.MaxTitleWidth)
	}
	surface := a.surfaceText()
	scrubber := CreateScrubber(a.position, a.duration, a.cfg.UI.ScrubberWidth)
	transport := FormatTransportBar(a.playTitle, a.playEnabled, a.rewindEnabled, a.forwardEnabled)
	status := a.statusText()

	a.tviewApp.QueueUpdateDraw(func() {
		a.infoView.SetText(info)
		a.surfaceView.SetText(surface)
		a.scrubberView.SetText(scrubber)
		a.transportBar.SetText(transport)
		a.statusBar.SetText(status)
	})
}

func (a *App) surfaceText() string {
	switch {
	case a.unplayable:
		return "\n[red]Unplayable"
	case a.noVideo:
		return "\n[yellow]No video: audio only"
	case a.surfaceRevealed:
		return "\n[lightgreen]▶ playing in video window"
	case a.surfaceAttached:
		return "\n[darkgray]preparing video..."
	default:
		return ""
	}
}

func (a *App) statusText() string {
	if a.loading {
		return "[yellow]Loading..."
	}
	return CreateVolumeText(a.volume)
}

// presentError shows a modal sheet with the error, attached to the main page.
func (a *App) presentError(err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	a.log.WithError(err).Error("presenting load failure")
	if a.stopped.Load() {
		return
	}

	a.tviewApp.QueueUpdateDraw(func() {
		modal := tview.NewModal().
			SetText("Cannot open movie\n\n" + msg).
			AddButtons([]string{"OK"}).
			SetDoneFunc(func(int, string) {
				a.pages.RemovePage(errorPageName)
			})
		a.pages.AddPage(errorPageName, modal, true, true)
	})
}
