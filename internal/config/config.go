// ABOUTME: Application settings with validation and self-repair
// ABOUTME: Persisted as JSON under the user config directory
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/beatline/beatline-go/pkg/music"
)

// ErrInvalidSettings indicates a settings value outside its allowed range.
var ErrInvalidSettings = errors.New("invalid settings")

// AudioSettings configures the audio engine and device handling.
type AudioSettings struct {
	SampleRate          int     `json:"sample_rate"`
	BufferSize          int     `json:"buffer_size"`
	MasterVolume        float32 `json:"master_volume"`
	PreferredDevice     string  `json:"preferred_device,omitempty"`
	EnableMonitoring    bool    `json:"enable_device_monitoring"`
	AutoFallback        bool    `json:"auto_fallback"`
	LastKnownGoodDevice string  `json:"last_known_good_device,omitempty"`
}

// DefaultSettings seeds new projects.
type DefaultSettings struct {
	BPM            float32 `json:"default_bpm"`
	TimeSignature  [2]int  `json:"default_time_signature"`
	PatternLength  int     `json:"default_pattern_length"`
}

// KeyboardSettings maps transport actions to keys in the TUI.
type KeyboardSettings struct {
	PlayPause  string `json:"play_pause"`
	Stop       string `json:"stop"`
	ToggleStep string `json:"toggle_step"`
}

// Settings is the full persisted configuration.
type Settings struct {
	Audio    AudioSettings    `json:"audio"`
	Defaults DefaultSettings  `json:"defaults"`
	Keyboard KeyboardSettings `json:"keyboard"`
}

// NewSettings returns the factory configuration.
func NewSettings() *Settings {
	return &Settings{
		Audio: AudioSettings{
			SampleRate:   44100,
			BufferSize:   512,
			MasterVolume: 1.0,
			AutoFallback: true,
		},
		Defaults: DefaultSettings{
			BPM:           120,
			TimeSignature: [2]int{4, 4},
			PatternLength: 16,
		},
		Keyboard: KeyboardSettings{
			PlayPause:  " ",
			Stop:       "s",
			ToggleStep: "enter",
		},
	}
}

// Validate reports the first out-of-range value, wrapping ErrInvalidSettings.
func (s *Settings) Validate() error {
	a := s.Audio
	if a.SampleRate < 22050 || a.SampleRate > 192000 {
		return fmt.Errorf("%w: sample rate %d outside 22050-192000", ErrInvalidSettings, a.SampleRate)
	}
	if a.BufferSize < 64 || a.BufferSize > 4096 || a.BufferSize&(a.BufferSize-1) != 0 {
		return fmt.Errorf("%w: buffer size %d must be a power of two in 64-4096", ErrInvalidSettings, a.BufferSize)
	}
	if a.MasterVolume < 0 || a.MasterVolume > 2 {
		return fmt.Errorf("%w: master volume %v outside 0-2", ErrInvalidSettings, a.MasterVolume)
	}

	d := s.Defaults
	if d.BPM < 60 || d.BPM > 300 {
		return fmt.Errorf("%w: default BPM %v outside 60-300", ErrInvalidSettings, d.BPM)
	}
	if _, err := music.NewTimeSignature(d.TimeSignature[0], d.TimeSignature[1]); err != nil {
		return fmt.Errorf("%w: default time signature: %v", ErrInvalidSettings, err)
	}
	if d.PatternLength < 4 || d.PatternLength > 64 {
		return fmt.Errorf("%w: default pattern length %d outside 4-64", ErrInvalidSettings, d.PatternLength)
	}
	return nil
}

// Sanitize replaces every out-of-range value with its factory default and
// returns a description of each correction. A settings file damaged by hand
// editing loads with corrections rather than failing.
func (s *Settings) Sanitize() []string {
	var corrections []string
	factory := NewSettings()

	if s.Audio.SampleRate < 22050 || s.Audio.SampleRate > 192000 {
		corrections = append(corrections,
			fmt.Sprintf("sample rate %d reset to %d", s.Audio.SampleRate, factory.Audio.SampleRate))
		s.Audio.SampleRate = factory.Audio.SampleRate
	}
	if s.Audio.BufferSize < 64 || s.Audio.BufferSize > 4096 || s.Audio.BufferSize&(s.Audio.BufferSize-1) != 0 {
		corrections = append(corrections,
			fmt.Sprintf("buffer size %d reset to %d", s.Audio.BufferSize, factory.Audio.BufferSize))
		s.Audio.BufferSize = factory.Audio.BufferSize
	}
	if s.Audio.MasterVolume < 0 || s.Audio.MasterVolume > 2 {
		corrections = append(corrections,
			fmt.Sprintf("master volume %v reset to %v", s.Audio.MasterVolume, factory.Audio.MasterVolume))
		s.Audio.MasterVolume = factory.Audio.MasterVolume
	}
	if s.Defaults.BPM < 60 || s.Defaults.BPM > 300 {
		corrections = append(corrections,
			fmt.Sprintf("default BPM %v reset to %v", s.Defaults.BPM, factory.Defaults.BPM))
		s.Defaults.BPM = factory.Defaults.BPM
	}
	if _, err := music.NewTimeSignature(s.Defaults.TimeSignature[0], s.Defaults.TimeSignature[1]); err != nil {
		corrections = append(corrections,
			fmt.Sprintf("default time signature %d/%d reset to 4/4",
				s.Defaults.TimeSignature[0], s.Defaults.TimeSignature[1]))
		s.Defaults.TimeSignature = factory.Defaults.TimeSignature
	}
	if s.Defaults.PatternLength < 4 || s.Defaults.PatternLength > 64 {
		corrections = append(corrections,
			fmt.Sprintf("default pattern length %d reset to %d", s.Defaults.PatternLength, factory.Defaults.PatternLength))
		s.Defaults.PatternLength = factory.Defaults.PatternLength
	}
	if s.Keyboard.PlayPause == "" {
		s.Keyboard.PlayPause = factory.Keyboard.PlayPause
		corrections = append(corrections, "play/pause key reset")
	}
	if s.Keyboard.Stop == "" {
		s.Keyboard.Stop = factory.Keyboard.Stop
		corrections = append(corrections, "stop key reset")
	}
	if s.Keyboard.ToggleStep == "" {
		s.Keyboard.ToggleStep = factory.Keyboard.ToggleStep
		corrections = append(corrections, "toggle-step key reset")
	}
	return corrections
}

// DefaultPath returns the settings file location under the user config
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, "beatline", "settings.json"), nil
}

// Load reads and sanitizes settings from a file. A missing file returns the
// factory settings without error.
func Load(path string) (*Settings, []string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewSettings(), nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read settings: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	corrections := s.Sanitize()
	return &s, corrections, nil
}

// Save writes settings as pretty-printed JSON, creating parent directories.
func (s *Settings) Save(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
