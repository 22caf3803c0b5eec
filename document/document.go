// Package document models the single-document lifecycle around one playback
// controller: open builds the asset and starts loading, close tears the
// controller down, save is deliberately unsupported.
package document

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/cine-cli/cine/dispatch"
	"github.com/cine-cli/cine/domain"
	"github.com/cine-cli/cine/engine"
	"github.com/cine-cli/cine/playback"
	"github.com/cine-cli/cine/probe"
)

// ErrSaveNotSupported is returned by every save attempt. Documents are
// read-only playback sessions; nothing is ever written.
var ErrSaveNotSupported = errors.New("document: saving is not supported")

// Deps are the collaborators a document wires into its controller.
type Deps struct {
	Engine     engine.Engine
	Prober     probe.Prober
	Sinks      playback.Sinks
	Dispatcher dispatch.Dispatcher
}

// Document is one open media file bound to one controller.
type Document struct {
	asset *domain.Asset
	ctrl  *playback.Controller
	log   *logrus.Entry
}

// Open validates the file, builds the controller and starts the asset load.
func Open(ctx context.Context, path string, deps Deps) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("opening %s: is a directory", path)
	}

	asset := domain.NewAsset(path)
	asset.Size = info.Size()

	ctrl, err := playback.New(deps.Engine, deps.Prober, deps.Sinks, deps.Dispatcher)
	if err != nil {
		return nil, fmt.Errorf("building controller for %s: %w", path, err)
	}

	d := &Document{
		asset: asset,
		ctrl:  ctrl,
		log:   logrus.WithField("component", "document"),
	}
	d.log.WithField("path", path).Info("document opened")
	ctrl.Load(ctx, asset)
	return d, nil
}

// Asset returns the document's asset reference.
func (d *Document) Asset() *domain.Asset {
	return d.asset
}

// Controller returns the document's playback controller.
func (d *Document) Controller() *playback.Controller {
	return d.ctrl
}

// Save always fails with ErrSaveNotSupported and never writes any data.
func (d *Document) Save(path string) error {
	return ErrSaveNotSupported
}

// Close tears the controller down. Safe to call more than once.
func (d *Document) Close() error {
	d.log.WithField("path", d.asset.Path).Info("document closing")
	return d.ctrl.Close()
}
