// ABOUTME: Audio engine tying the timeline, sample bank, and output together
// ABOUTME: Owns the render callback; master volume is lock-free atomic
package engine

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync/atomic"

	"github.com/beatline/beatline-go/pkg/audio"
	"github.com/beatline/beatline-go/pkg/audio/output"
	"github.com/beatline/beatline-go/pkg/audio/synth"
	"github.com/beatline/beatline-go/pkg/timeline"
)

// ErrInvalidSettings indicates engine settings outside the supported range.
var ErrInvalidSettings = errors.New("invalid engine settings")

// ErrOutputUnavailable indicates no backend could open a playback stream.
var ErrOutputUnavailable = errors.New("audio output unavailable")

// Settings configures the audio engine.
type Settings struct {
	SampleRate      int
	BufferSize      int // frames per render callback
	MasterVolume    float32
	PreferredDevice string
}

// DefaultSettings returns the standard 44.1kHz configuration.
func DefaultSettings() Settings {
	return Settings{
		SampleRate:   44100,
		BufferSize:   512,
		MasterVolume: 1.0,
	}
}

// Validate checks the settings against the engine's supported ranges.
func (s Settings) Validate() error {
	if s.SampleRate < 22050 || s.SampleRate > 192000 {
		return fmt.Errorf("%w: sample rate %d outside 22050-192000", ErrInvalidSettings, s.SampleRate)
	}
	if s.BufferSize < 64 || s.BufferSize > 4096 || s.BufferSize&(s.BufferSize-1) != 0 {
		return fmt.Errorf("%w: buffer size %d must be a power of two in 64-4096", ErrInvalidSettings, s.BufferSize)
	}
	if s.MasterVolume < 0 || s.MasterVolume > 2 {
		return fmt.Errorf("%w: master volume %v outside 0-2", ErrInvalidSettings, s.MasterVolume)
	}
	return nil
}

// AudioEngine renders the shared timeline through an output backend.
//
// The render path is split by thread: the timeline and sample bank are
// shared and locked once per buffer; the sequencer and wasPlaying flag are
// audio-thread-private; master volume crosses threads as atomic float32
// bits. Rendering never returns errors and never panics — anything missing
// or inconsistent renders as silence.
type AudioEngine struct {
	settings Settings
	timeline *timeline.Timeline
	bank     *synth.Bank
	seq      *Sequencer

	out        output.Output
	malgoOut   *output.Malgo // retained for device enumeration, nil when on oto
	deviceName string

	masterVolume atomic.Uint32 // float32 bits
	wasPlaying   bool          // audio-thread-private transition edge detector
}

// New creates an engine over a shared timeline and sample bank. The output
// device is not opened until Start.
func New(settings Settings, tl *timeline.Timeline, bank *synth.Bank) (*AudioEngine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if tl == nil || bank == nil {
		return nil, fmt.Errorf("%w: timeline and bank are required", ErrInvalidSettings)
	}
	e := &AudioEngine{
		settings:   settings,
		timeline:   tl,
		bank:       bank,
		seq:        NewSequencer(),
		deviceName: settings.PreferredDevice,
	}
	e.SetMasterVolume(settings.MasterVolume)
	return e, nil
}

// Start opens the output device and begins rendering. Malgo is tried first
// (it honors the preferred device); if it fails, oto on the system default
// is the fallback.
func (e *AudioEngine) Start() error {
	cfg := output.Config{
		SampleRate: e.settings.SampleRate,
		BufferSize: e.settings.BufferSize,
		DeviceName: e.deviceName,
	}

	m := output.NewMalgo()
	if err := m.Start(cfg, e.renderBuffer); err == nil {
		e.out = m
		e.malgoOut = m
		return nil
	} else {
		log.Printf("Malgo backend failed (%v), falling back to oto", err)
	}

	o := output.NewOto()
	if err := o.Start(cfg, e.renderBuffer); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputUnavailable, err)
	}
	e.out = o
	e.malgoOut = nil
	return nil
}

// Close stops rendering and releases the output device.
func (e *AudioEngine) Close() error {
	if e.out == nil {
		return nil
	}
	err := e.out.Close()
	e.out = nil
	e.malgoOut = nil
	return err
}

// Devices lists playback devices. Requires the malgo backend; on oto the
// list is empty.
func (e *AudioEngine) Devices() ([]output.Device, error) {
	if e.malgoOut == nil {
		return nil, nil
	}
	return e.malgoOut.Devices()
}

// SwitchDevice reopens the output on a named device. An empty name selects
// the system default.
func (e *AudioEngine) SwitchDevice(name string) error {
	if err := e.Close(); err != nil {
		log.Printf("Warning: closing output for device switch: %v", err)
	}
	e.deviceName = name
	return e.Start()
}

// FallbackToDefault reopens the output on the system default device.
func (e *AudioEngine) FallbackToDefault() error {
	return e.SwitchDevice("")
}

// SetMasterVolume sets the output gain, clamped to [0, 2].
func (e *AudioEngine) SetMasterVolume(v float32) {
	if v < 0 {
		v = 0
	}
	if v > 2 {
		v = 2
	}
	e.masterVolume.Store(math.Float32bits(v))
}

// MasterVolume returns the output gain.
func (e *AudioEngine) MasterVolume() float32 {
	return math.Float32frombits(e.masterVolume.Load())
}

// SampleRate returns the engine's sample rate.
func (e *AudioEngine) SampleRate() int {
	return e.settings.SampleRate
}

// renderBuffer fills one mono buffer. Called from the output backend's
// realtime thread; the buffer arrives zeroed. The shared timeline is locked
// exactly once for the whole buffer, the bank only while voices read from
// it.
func (e *AudioEngine) renderBuffer(out []float32) {
	delta := audio.BufferDuration(len(out), e.settings.SampleRate)

	e.timeline.Lock()

	playing := e.timeline.IsPlaying()
	if playing && !e.wasPlaying {
		// Playback just started (or resumed): align the step position with
		// the transport before rendering the first buffer.
		if seg := e.timeline.CurrentSegment(); seg != nil {
			e.seq.SyncToTimeline(e.timeline.Position(), seg.StartTime, seg.BPM,
				e.settings.SampleRate, seg.Patterns)
		} else {
			e.seq.Reset()
		}
	} else if !playing && e.wasPlaying {
		// Stopped or paused from the UI thread: cut all voices.
		e.seq.Reset()
	}
	e.wasPlaying = playing

	if playing {
		if e.timeline.AdvancePosition(delta) {
			if seg := e.timeline.CurrentSegment(); seg != nil {
				e.bank.Lock()
				e.seq.ProcessPatterns(seg.Patterns, out, e.bank, seg.BPM, e.settings.SampleRate)
				e.bank.Unlock()
			}
			// Gaps between segments render silence but time keeps moving.
		} else {
			// Reached the end of the arrangement inside this buffer.
			e.seq.Reset()
			e.wasPlaying = false
		}
	}

	e.timeline.Unlock()

	vol := e.MasterVolume()
	for i, s := range out {
		s *= vol
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[i] = s
	}
}
