// ABOUTME: Sample data type and the named sample bank
// ABOUTME: Bank is shared with the audio callback under an explicit lock
package synth

import (
	"sort"
	"sync"
)

// Sample is a mono buffer of float32 audio in [-1, 1].
type Sample struct {
	Data       []float32
	SampleRate int
	Channels   int
}

// NewSample wraps pre-rendered audio data.
func NewSample(data []float32, sampleRate int) *Sample {
	return &Sample{Data: data, SampleRate: sampleRate, Channels: 1}
}

// Len returns the sample length in frames.
func (s *Sample) Len() int {
	return len(s.Data)
}

// Duration returns the sample length in seconds.
func (s *Sample) Duration() float64 {
	if s.SampleRate == 0 {
		return 0
	}
	return float64(len(s.Data)) / float64(s.SampleRate)
}

// Bank maps sample names to rendered audio. Like the timeline it is shared
// between the UI thread and the audio callback and guarded by its own lock;
// methods do not lock themselves. The audio callback holds the lock for one
// buffer at a time while voices read sample data.
type Bank struct {
	mu      sync.Mutex
	samples map[string]*Sample
}

// NewBank returns an empty sample bank.
func NewBank() *Bank {
	return &Bank{samples: make(map[string]*Sample)}
}

// Lock acquires the bank lock.
func (b *Bank) Lock() { b.mu.Lock() }

// Unlock releases the bank lock.
func (b *Bank) Unlock() { b.mu.Unlock() }

// Add stores a sample under a name, replacing any existing entry.
func (b *Bank) Add(name string, s *Sample) {
	b.samples[name] = s
}

// Get returns the sample for a name, or nil when unknown. Callers treat nil
// as "render silence", never as an error.
func (b *Bank) Get(name string) *Sample {
	return b.samples[name]
}

// Remove deletes a sample by name.
func (b *Bank) Remove(name string) {
	delete(b.samples, name)
}

// Names returns the sample names in sorted order.
func (b *Bank) Names() []string {
	names := make([]string, 0, len(b.samples))
	for name := range b.samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of samples in the bank.
func (b *Bank) Len() int {
	return len(b.samples)
}

// DefaultKitNames lists the built-in drum kit in display order.
var DefaultKitNames = []string{
	"kick", "snare", "hihat", "crash", "open_hihat", "clap", "rimshot", "tom",
}

// LoadDefaults synthesizes the built-in eight-piece drum kit at the given
// sample rate. Generation is deterministic: the same rate always yields the
// same audio.
func (b *Bank) LoadDefaults(sampleRate int) {
	sr := float32(sampleRate)
	b.Add("kick", NewSample(generateKick(sr, 0.5), sampleRate))
	b.Add("snare", NewSample(generateSnare(sr, 0.3), sampleRate))
	b.Add("hihat", NewSample(generateHihat(sr, 0.1), sampleRate))
	b.Add("crash", NewSample(generateCrash(sr, 2.0), sampleRate))
	b.Add("open_hihat", NewSample(generateOpenHihat(sr, 0.4), sampleRate))
	b.Add("clap", NewSample(generateClap(sr, 0.25), sampleRate))
	b.Add("rimshot", NewSample(generateRimshot(sr, 0.15), sampleRate))
	b.Add("tom", NewSample(generateTom(sr, 0.6), sampleRate))
}
