// ABOUTME: Step sequencer and voice pool for the audio callback
// ABOUTME: Audio-thread-private state; never touched by the UI thread
package engine

import (
	"github.com/beatline/beatline-go/pkg/audio/synth"
	"github.com/beatline/beatline-go/pkg/music"
)

// voiceCount is the polyphony limit. 16 voices covers a dense 8-pattern
// kit with room for long tails like crash cymbals.
const voiceCount = 16

// voice plays one triggered sample from start to finish.
type voice struct {
	sampleName     string
	samplePosition int
	velocity       float32
	active         bool
}

// trigger starts the voice on a sample at the given velocity.
func (v *voice) trigger(sampleName string, velocity float32) {
	v.sampleName = sampleName
	v.samplePosition = 0
	v.velocity = velocity
	v.active = true
}

// Sequencer owns the step position and voice pool. It lives entirely on the
// audio thread: the UI never reads or writes it, so it needs no lock. The
// voices array is fixed-size to keep the render path allocation-free.
type Sequencer struct {
	currentStep    int
	samplesPerStep int
	sampleCounter  int
	loopLength     int
	voices         [voiceCount]voice
}

// NewSequencer returns a sequencer at step zero with a 16-step loop.
func NewSequencer() *Sequencer {
	return &Sequencer{loopLength: 16, samplesPerStep: 1}
}

// CurrentStep returns the step the sequencer is on.
func (s *Sequencer) CurrentStep() int {
	return s.currentStep
}

// SamplesPerStep returns the current step length in frames.
func (s *Sequencer) SamplesPerStep() int {
	return s.samplesPerStep
}

// ActiveVoices returns the number of voices currently sounding.
func (s *Sequencer) ActiveVoices() int {
	n := 0
	for i := range s.voices {
		if s.voices[i].active {
			n++
		}
	}
	return n
}

// updateTiming derives the step length in frames from tempo and sample
// rate. 16th-note steps: at 120 BPM and 44100 Hz that is 44100/8 = 5512
// frames. The division truncates; the sub-frame remainder is accepted
// drift, inaudible at audio rates.
func (s *Sequencer) updateTiming(bpm float32, sampleRate int) {
	stepsPerSecond := bpm / 60.0 * 4.0
	sps := int(float32(sampleRate) / stepsPerSecond)
	if sps < 1 {
		sps = 1
	}
	s.samplesPerStep = sps
}

// Reset silences all voices and rewinds to step zero.
func (s *Sequencer) Reset() {
	for i := range s.voices {
		s.voices[i].active = false
	}
	s.currentStep = 0
	s.sampleCounter = 0
}

// SyncToTimeline aligns the step position with a timeline position inside a
// segment. The loop length is derived from the segment's patterns and the
// step timing from bpm and sampleRate, so the wrap point and step width are
// the resumed segment's own, not whatever the previous buffer rendered.
// At 120 BPM, one second into a 16-step segment is step 8.
func (s *Sequencer) SyncToTimeline(position, segmentStart float64, bpm float32, sampleRate int, patterns []*music.Pattern) {
	s.updateTiming(bpm, sampleRate)
	s.loopLength = loopLengthFor(patterns)
	elapsed := position - segmentStart
	if elapsed < 0 {
		elapsed = 0
	}
	stepsPerSecond := float64(bpm) / 60.0 * 4.0
	s.currentStep = int(elapsed*stepsPerSecond) % s.loopLength
	s.sampleCounter = 0
}

// loopLengthFor returns the loop length the patterns define: the longest
// pattern wins, 16 when there are none.
func loopLengthFor(patterns []*music.Pattern) int {
	loopLength := 0
	for _, p := range patterns {
		if p.Len() > loopLength {
			loopLength = p.Len()
		}
	}
	if loopLength == 0 {
		loopLength = 16
	}
	return loopLength
}

// ProcessPatterns renders one buffer of the given patterns into out,
// additively. The loop length follows the longest pattern (16 when none
// have steps). Steps shorter than the loop simply rest on the extra steps.
// Unknown sample names and empty patterns render silence, never errors.
func (s *Sequencer) ProcessPatterns(patterns []*music.Pattern, out []float32, bank *synth.Bank, bpm float32, sampleRate int) {
	s.updateTiming(bpm, sampleRate)

	loopLength := loopLengthFor(patterns)
	s.loopLength = loopLength
	if s.currentStep >= loopLength {
		s.currentStep %= loopLength
	}
	// A tempo increase between buffers can leave the counter past the new,
	// shorter step; advance immediately instead of rendering a negative chunk.
	if s.sampleCounter >= s.samplesPerStep {
		s.sampleCounter = 0
		s.currentStep = (s.currentStep + 1) % s.loopLength
	}

	rendered := 0
	for rendered < len(out) {
		if s.sampleCounter == 0 {
			s.triggerStep(patterns)
		}

		n := s.samplesPerStep - s.sampleCounter
		if remaining := len(out) - rendered; n > remaining {
			n = remaining
		}

		s.mixVoices(out[rendered:rendered+n], bank)

		rendered += n
		s.sampleCounter += n
		if s.sampleCounter >= s.samplesPerStep {
			s.sampleCounter = 0
			s.currentStep = (s.currentStep + 1) % s.loopLength
		}
	}
}

// triggerStep starts a voice for every pattern with an active step at the
// current position.
func (s *Sequencer) triggerStep(patterns []*music.Pattern) {
	for _, p := range patterns {
		if s.currentStep >= p.Len() {
			continue
		}
		step := p.Steps[s.currentStep]
		if !step.Active {
			continue
		}
		if v := s.allocateVoice(); v != nil {
			v.trigger(p.SampleName, step.Velocity)
		}
	}
}

// allocateVoice returns the first free voice, or nil when the pool is
// exhausted. A full pool drops the trigger; playing voices are never
// stolen.
func (s *Sequencer) allocateVoice() *voice {
	for i := range s.voices {
		if !s.voices[i].active {
			return &s.voices[i]
		}
	}
	return nil
}

// mixVoices adds every active voice's next frames into out. A voice whose
// sample is missing from the bank, or that reaches the end of its data,
// deactivates silently.
func (s *Sequencer) mixVoices(out []float32, bank *synth.Bank) {
	for i := range s.voices {
		v := &s.voices[i]
		if !v.active {
			continue
		}
		sample := bank.Get(v.sampleName)
		if sample == nil {
			v.active = false
			continue
		}
		for j := range out {
			if v.samplePosition >= sample.Len() {
				v.active = false
				break
			}
			out[j] += sample.Data[v.samplePosition] * v.velocity
			v.samplePosition++
		}
	}
}
