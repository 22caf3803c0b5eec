// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cine-cli/cine/config"
	"github.com/cine-cli/cine/device"
	"github.com/cine-cli/cine/dispatch"
	"github.com/cine-cli/cine/document"
	"github.com/cine-cli/cine/mpvengine"
	"github.com/cine-cli/cine/probe"
	"github.com/cine-cli/cine/ui"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagVolume  float64
	flagHWDec   bool
	flagFFProbe string
	flagDebug   bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "cine <movie-file>",
	Short: "Play a movie file from the terminal",
	Long: `Cine opens a single local movie file and plays it through mpv,
with transport controls (play/pause, fast-forward, rewind, scrub) in the terminal.`,
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              playRun,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Float64Var(&flagVolume, "volume", -1, "Initial volume (0..1)")
	rootCmd.PersistentFlags().BoolVar(&flagHWDec, "hwdec", false, "Enable hardware decoding")
	rootCmd.PersistentFlags().StringVar(&flagFFProbe, "ffprobe", "", "Path to the ffprobe binary")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagVolume >= 0 {
		cfg.Player.Volume = flagVolume
	}
	if flagHWDec {
		cfg.Player.HardwareDecoding = true
	}
	if flagFFProbe != "" {
		cfg.Player.FFProbePath = flagFFProbe
	}
	if flagDebug {
		cfg.Logs.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := logrus.ParseLevel(cfg.Logs.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
	return nil
}

// playRun wires the engine, prober, UI and document together and runs the
// application until the user quits.
func playRun(cmd *cobra.Command, args []string) error {
	path := args[0]

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	queue := dispatch.NewQueue()
	defer queue.Close()

	eng, err := mpvengine.New(queue, mpvengine.Options{
		HardwareDecoding: cfg.Player.HardwareDecoding,
		InitialVolume:    cfg.Player.Volume,
	})
	if err != nil {
		return fmt.Errorf("starting playback engine: %w", err)
	}

	prober := probe.NewFFProbe(cfg.Player.FFProbePath)
	if !prober.Available() {
		eng.Close()
		return fmt.Errorf("ffprobe not found (looked for %q)", prober.Binary)
	}

	app := ui.NewApp(cfg, queue)

	doc, err := document.Open(ctx, path, document.Deps{
		Engine:     eng,
		Prober:     prober,
		Sinks:      app.Sinks(),
		Dispatcher: queue,
	})
	if err != nil {
		eng.Close()
		return err
	}
	app.Bind(doc.Controller(), doc.Asset())

	monitor := device.NewMonitor(ctx, func() {
		queue.Async(func() {
			doc.Controller().Pause()
		})
	})
	monitor.Start()

	runErr := app.Run()

	closeDone := make(chan error, 1)
	queue.Async(func() {
		closeDone <- doc.Close()
	})
	if err := <-closeDone; err != nil {
		logrus.WithError(err).Warn("closing document")
	}
	return runErr
}
