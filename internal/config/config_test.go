// ABOUTME: Settings validation, sanitization, and persistence tests
// ABOUTME: Round-trips through JSON files in t.TempDir
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFactorySettingsValidate(t *testing.T) {
	if err := NewSettings().Validate(); err != nil {
		t.Errorf("factory settings should validate, got %v", err)
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cases := map[string]func(*Settings){
		"low_sample_rate": func(s *Settings) { s.Audio.SampleRate = 8000 },
		"odd_buffer":      func(s *Settings) { s.Audio.BufferSize = 500 },
		"huge_buffer":     func(s *Settings) { s.Audio.BufferSize = 8192 },
		"loud_volume":     func(s *Settings) { s.Audio.MasterVolume = 3 },
		"slow_bpm":        func(s *Settings) { s.Defaults.BPM = 20 },
		"bad_signature":   func(s *Settings) { s.Defaults.TimeSignature = [2]int{4, 3} },
		"short_pattern":   func(s *Settings) { s.Defaults.PatternLength = 2 },
	}
	for name, corrupt := range cases {
		s := NewSettings()
		corrupt(s)
		if err := s.Validate(); !errors.Is(err, ErrInvalidSettings) {
			t.Errorf("%s: err = %v, want ErrInvalidSettings", name, err)
		}
	}
}

func TestSanitizeRepairsEverything(t *testing.T) {
	s := NewSettings()
	s.Audio.SampleRate = 1
	s.Audio.BufferSize = 7
	s.Audio.MasterVolume = -4
	s.Defaults.BPM = 999
	s.Defaults.TimeSignature = [2]int{0, 5}
	s.Defaults.PatternLength = 1000
	s.Keyboard.PlayPause = ""

	corrections := s.Sanitize()
	if len(corrections) != 7 {
		t.Errorf("got %d corrections, want 7: %v", len(corrections), corrections)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("sanitized settings should validate, got %v", err)
	}
}

func TestSanitizeLeavesValidSettingsAlone(t *testing.T) {
	s := NewSettings()
	s.Audio.SampleRate = 48000
	s.Defaults.BPM = 140

	if corrections := s.Sanitize(); len(corrections) != 0 {
		t.Errorf("valid settings produced corrections: %v", corrections)
	}
	if s.Audio.SampleRate != 48000 || s.Defaults.BPM != 140 {
		t.Error("sanitize must not touch valid values")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	s := NewSettings()
	s.Audio.SampleRate = 48000
	s.Audio.PreferredDevice = "USB Interface"
	s.Defaults.BPM = 140
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, corrections, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(corrections) != 0 {
		t.Errorf("clean file produced corrections: %v", corrections)
	}
	if loaded.Audio.SampleRate != 48000 || loaded.Audio.PreferredDevice != "USB Interface" {
		t.Errorf("audio settings lost: %+v", loaded.Audio)
	}
	if loaded.Defaults.BPM != 140 {
		t.Errorf("default BPM lost: %v", loaded.Defaults.BPM)
	}
}

func TestLoadMissingFileReturnsFactory(t *testing.T) {
	s, corrections, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("missing file should not error, got %v", err)
	}
	if len(corrections) != 0 {
		t.Errorf("unexpected corrections: %v", corrections)
	}
	if s.Audio.SampleRate != 44100 {
		t.Error("missing file should yield factory settings")
	}
}

func TestLoadSanitizesDamagedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	damaged := `{"audio":{"sample_rate":1,"buffer_size":512,"master_volume":1},
		"defaults":{"default_bpm":120,"default_time_signature":[4,4],"default_pattern_length":16},
		"keyboard":{"play_pause":" ","stop":"s","toggle_step":"enter"}}`
	if err := os.WriteFile(path, []byte(damaged), 0644); err != nil {
		t.Fatal(err)
	}

	s, corrections, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(corrections) != 1 {
		t.Errorf("corrections = %v, want the sample rate repair", corrections)
	}
	if s.Audio.SampleRate != 44100 {
		t.Errorf("sample rate = %d, want repaired 44100", s.Audio.SampleRate)
	}
}

func TestSaveRejectsInvalidSettings(t *testing.T) {
	s := NewSettings()
	s.Audio.MasterVolume = 10
	if err := s.Save(filepath.Join(t.TempDir(), "settings.json")); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("err = %v, want ErrInvalidSettings", err)
	}
}
