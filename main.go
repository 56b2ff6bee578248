// ABOUTME: Entry point for the beatline step sequencer
// ABOUTME: Parses CLI flags, wires the engine, and starts the TUI
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/beatline/beatline-go/internal/config"
	"github.com/beatline/beatline-go/internal/project"
	"github.com/beatline/beatline-go/internal/ui"
	"github.com/beatline/beatline-go/internal/version"
	"github.com/beatline/beatline-go/pkg/audio/synth"
	"github.com/beatline/beatline-go/pkg/engine"
	"github.com/beatline/beatline-go/pkg/music"
	"github.com/beatline/beatline-go/pkg/timeline"
)

var (
	projectPath = flag.String("project", "", "Project file to open (.beatline)")
	sampleRate  = flag.Int("sample-rate", 0, "Sample rate override (22050-192000)")
	bufferSize  = flag.Int("buffer", 0, "Buffer size override (power of two, 64-4096)")
	device      = flag.String("device", "", "Preferred output device name")
	listDevices = flag.Bool("list-devices", false, "List output devices and exit")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, play headless until interrupted")
	logFile     = flag.String("log-file", "beatline.log", "Log file path")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}

	useTUI := !*noTUI

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file, the terminal belongs to the grid.
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	settings := loadSettings()

	bank := synth.NewBank()
	bank.Lock()
	bank.LoadDefaults(settings.Audio.SampleRate)
	bank.Unlock()

	tl := openTimeline(settings)

	eng, err := engine.New(engine.Settings{
		SampleRate:      settings.Audio.SampleRate,
		BufferSize:      settings.Audio.BufferSize,
		MasterVolume:    settings.Audio.MasterVolume,
		PreferredDevice: settings.Audio.PreferredDevice,
	}, tl, bank)
	if err != nil {
		log.Fatalf("Failed to create audio engine: %v", err)
	}
	if err := eng.Start(); err != nil {
		log.Fatalf("Failed to start audio output: %v", err)
	}
	defer func() { _ = eng.Close() }()

	if *listDevices {
		devices, err := eng.Devices()
		if err != nil {
			log.Fatalf("Failed to enumerate devices: %v", err)
		}
		for _, d := range devices {
			marker := " "
			if d.IsDefault {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, d.Name)
		}
		return
	}

	if useTUI {
		if err := ui.Run(tl, eng, settings.Keyboard); err != nil {
			log.Fatalf("TUI error: %v", err)
		}
	} else {
		runHeadless(tl)
	}

	saveProject(tl, eng)
}

// loadSettings reads the user settings file and applies flag overrides.
func loadSettings() *config.Settings {
	path, err := config.DefaultPath()
	if err != nil {
		log.Printf("Warning: %v, using factory settings", err)
		return config.NewSettings()
	}
	settings, corrections, err := config.Load(path)
	if err != nil {
		log.Printf("Warning: %v, using factory settings", err)
		settings = config.NewSettings()
	}
	for _, c := range corrections {
		log.Printf("Settings repaired: %s", c)
	}

	if *sampleRate != 0 {
		settings.Audio.SampleRate = *sampleRate
	}
	if *bufferSize != 0 {
		settings.Audio.BufferSize = *bufferSize
	}
	if *device != "" {
		settings.Audio.PreferredDevice = *device
	}
	if fixed := settings.Sanitize(); len(fixed) != 0 {
		for _, c := range fixed {
			log.Printf("Flag override repaired: %s", c)
		}
	}
	return settings
}

// openTimeline loads the requested project or seeds the default kit.
func openTimeline(settings *config.Settings) *timeline.Timeline {
	if *projectPath != "" {
		p, err := project.Load(*projectPath)
		if err != nil {
			log.Fatalf("Failed to open project: %v", err)
		}
		log.Printf("Opened project %q (%d segments)", p.Metadata.Name, len(p.Segments))
		return p.ToTimeline()
	}
	return defaultTimeline(settings)
}

// defaultTimeline builds a starter arrangement: a basic rock beat on the
// first three kit pieces plus empty rows for the rest.
func defaultTimeline(settings *config.Settings) *timeline.Timeline {
	length := settings.Defaults.PatternLength

	kick := music.NewPattern("Kick", "kick", length)
	for _, i := range []int{0, 4, 8, 12} {
		kick.SetStep(i, music.StepWithVelocity(1.0))
	}
	snare := music.NewPattern("Snare", "snare", length)
	for _, i := range []int{4, 12} {
		snare.SetStep(i, music.StepWithVelocity(0.9))
	}
	hihat := music.NewPattern("Hi-Hat", "hihat", length)
	for _, i := range []int{2, 6, 10, 14} {
		hihat.SetStep(i, music.StepWithVelocity(0.7))
	}

	patterns := []*music.Pattern{kick, snare, hihat}
	for _, name := range []string{"crash", "open_hihat", "clap", "rimshot", "tom"} {
		patterns = append(patterns, music.NewPattern(name, name, length))
	}

	ts, err := music.NewTimeSignature(settings.Defaults.TimeSignature[0], settings.Defaults.TimeSignature[1])
	if err != nil {
		ts = music.FourFour()
	}

	tl := timeline.New()
	tl.Lock()
	tl.AddSegment(timeline.NewSegment("Default Beat", patterns, 0, 4, ts, settings.Defaults.BPM))
	tl.Unlock()
	return tl
}

// saveProject writes the arrangement back when a project path was given.
func saveProject(tl *timeline.Timeline, eng *engine.AudioEngine) {
	if *projectPath == "" {
		return
	}
	p := project.New("Untitled Project")
	if existing, err := project.Load(*projectPath); err == nil {
		p.Metadata = existing.Metadata
	}
	tl.Lock()
	p.FromTimeline(tl)
	tl.Unlock()
	p.GlobalVolume = eng.MasterVolume()
	if err := p.Save(*projectPath); err != nil {
		log.Printf("Failed to save project: %v", err)
	} else {
		log.Printf("Saved project to %s", *projectPath)
	}
}

// runHeadless plays the timeline until the process is interrupted.
func runHeadless(tl *timeline.Timeline) {
	tl.Lock()
	tl.Play()
	tl.Unlock()
	log.Printf("Playing headless; Ctrl-C to stop")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	tl.Lock()
	tl.Stop()
	tl.Unlock()
}
