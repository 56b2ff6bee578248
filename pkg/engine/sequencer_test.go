// ABOUTME: Sequencer timing, triggering, and voice lifecycle tests
// ABOUTME: Uses impulse samples so frame positions can be checked exactly
package engine

import (
	"testing"

	"github.com/beatline/beatline-go/pkg/audio/synth"
	"github.com/beatline/beatline-go/pkg/music"
)

const (
	testRate = 44100
	testBPM  = 120
)

// impulseBank returns a bank with a two-frame impulse under each name, so
// tests can assert exact trigger positions in the rendered output.
func impulseBank(names ...string) *synth.Bank {
	b := synth.NewBank()
	for _, name := range names {
		b.Add(name, synth.NewSample([]float32{1.0, 0.5}, testRate))
	}
	return b
}

func kickPattern(steps ...int) *music.Pattern {
	p := music.NewPattern("kick_pattern", "kick", 16)
	for _, i := range steps {
		p.SetStep(i, music.StepWithVelocity(1.0))
	}
	return p
}

func TestStepTiming(t *testing.T) {
	s := NewSequencer()
	s.updateTiming(testBPM, testRate)

	// 120 BPM = 8 sixteenth steps per second; 44100/8 truncates to 5512.
	if s.SamplesPerStep() != 5512 {
		t.Errorf("SamplesPerStep = %d, want 5512", s.SamplesPerStep())
	}

	s.updateTiming(60, testRate)
	if s.SamplesPerStep() != 11025 {
		t.Errorf("at 60 BPM SamplesPerStep = %d, want 11025", s.SamplesPerStep())
	}
}

func TestSyncToTimeline(t *testing.T) {
	s := NewSequencer()
	patterns := []*music.Pattern{kickPattern(0)}

	// One second into a segment at 120 BPM is step 8.
	s.SyncToTimeline(1.0, 0.0, testBPM, testRate, patterns)
	if s.CurrentStep() != 8 {
		t.Errorf("CurrentStep = %d, want 8", s.CurrentStep())
	}
	// Step timing is derived at sync time, not left over from rendering.
	if s.SamplesPerStep() != 5512 {
		t.Errorf("SamplesPerStep = %d, want 5512", s.SamplesPerStep())
	}

	// The step wraps at the loop length.
	s.SyncToTimeline(2.5, 0.0, testBPM, testRate, patterns)
	if s.CurrentStep() != 4 {
		t.Errorf("CurrentStep = %d, want 4 (20 mod 16)", s.CurrentStep())
	}

	// Segment start offsets the elapsed time.
	s.SyncToTimeline(10.5, 10.0, testBPM, testRate, patterns)
	if s.CurrentStep() != 4 {
		t.Errorf("CurrentStep = %d, want 4", s.CurrentStep())
	}

	// A position before the segment clamps to step zero.
	s.SyncToTimeline(1.0, 5.0, testBPM, testRate, patterns)
	if s.CurrentStep() != 0 {
		t.Errorf("CurrentStep = %d, want 0", s.CurrentStep())
	}
}

func TestSyncUsesSegmentLoopLength(t *testing.T) {
	s := NewSequencer()

	// A fresh sequencer has never rendered this segment; the wrap point
	// must come from the segment's own 12-step patterns, not a stale 16.
	waltz := []*music.Pattern{music.NewPattern("waltz", "snare", 12)}
	s.SyncToTimeline(2.5, 0.0, testBPM, testRate, waltz)
	if s.CurrentStep() != 8 {
		t.Errorf("CurrentStep = %d, want 8 (20 mod 12)", s.CurrentStep())
	}

	// Rendering right after the sync keeps that alignment.
	bank := impulseBank("snare")
	out := make([]float32, 64)
	s.ProcessPatterns(waltz, out, bank, testBPM, testRate)
	if s.CurrentStep() != 8 {
		t.Errorf("CurrentStep after render = %d, want 8", s.CurrentStep())
	}

	// Moving between segments of different lengths re-wraps each time.
	s.ProcessPatterns([]*music.Pattern{kickPattern(0)}, out, bank, testBPM, testRate)
	s.SyncToTimeline(2.5, 0.0, testBPM, testRate, waltz)
	if s.CurrentStep() != 8 {
		t.Errorf("CurrentStep = %d, want 8 after returning to the 12-step segment", s.CurrentStep())
	}
}

func TestTriggersLandOnStepBoundaries(t *testing.T) {
	s := NewSequencer()
	bank := impulseBank("kick")
	patterns := []*music.Pattern{kickPattern(0, 4)}

	sps := 5512
	out := make([]float32, 6*sps)
	s.ProcessPatterns(patterns, out, bank, testBPM, testRate)

	if out[0] != 1.0 || out[1] != 0.5 {
		t.Errorf("step 0 impulse = [%v %v], want [1 0.5]", out[0], out[1])
	}
	if out[4*sps] != 1.0 || out[4*sps+1] != 0.5 {
		t.Errorf("step 4 impulse = [%v %v], want [1 0.5]", out[4*sps], out[4*sps+1])
	}
	// Everywhere else is silence.
	for i, v := range out {
		if i <= 1 || i == 4*sps || i == 4*sps+1 {
			continue
		}
		if v != 0 {
			t.Fatalf("unexpected audio at frame %d: %v", i, v)
		}
	}
}

func TestTriggersSurviveBufferBoundaries(t *testing.T) {
	bank := impulseBank("kick")
	patterns := []*music.Pattern{kickPattern(0, 4)}
	sps := 5512

	// Render in one pass and in awkward 480-frame chunks; output must match.
	whole := make([]float32, 6*sps)
	NewSequencer().ProcessPatterns(patterns, whole, bank, testBPM, testRate)

	chunked := make([]float32, 6*sps)
	s := NewSequencer()
	for off := 0; off < len(chunked); {
		n := 480
		if off+n > len(chunked) {
			n = len(chunked) - off
		}
		s.ProcessPatterns(patterns, chunked[off:off+n], bank, testBPM, testRate)
		off += n
	}

	for i := range whole {
		if whole[i] != chunked[i] {
			t.Fatalf("chunked render diverges at frame %d: %v vs %v", i, whole[i], chunked[i])
		}
	}
}

func TestVelocityScalesOutput(t *testing.T) {
	s := NewSequencer()
	bank := impulseBank("kick")
	p := music.NewPattern("kick_pattern", "kick", 16)
	p.SetStep(0, music.StepWithVelocity(0.25))

	out := make([]float32, 64)
	s.ProcessPatterns([]*music.Pattern{p}, out, bank, testBPM, testRate)

	if out[0] != 0.25 {
		t.Errorf("velocity-scaled output = %v, want 0.25", out[0])
	}
}

func TestUnknownSampleRendersSilence(t *testing.T) {
	s := NewSequencer()
	bank := synth.NewBank() // empty: every name is unknown
	patterns := []*music.Pattern{kickPattern(0)}

	out := make([]float32, 1024)
	s.ProcessPatterns(patterns, out, bank, testBPM, testRate)

	for i, v := range out {
		if v != 0 {
			t.Fatalf("expected silence at frame %d, got %v", i, v)
		}
	}
	if s.ActiveVoices() != 0 {
		t.Errorf("voices on a missing sample should deactivate, %d active", s.ActiveVoices())
	}
}

func TestShortPatternRestsOnExtraSteps(t *testing.T) {
	s := NewSequencer()
	bank := impulseBank("kick", "snare")

	short := music.NewPattern("short", "snare", 4)
	short.SetStep(0, music.StepWithVelocity(1.0))
	long := kickPattern(8)

	sps := 5512
	out := make([]float32, 10*sps)
	s.ProcessPatterns([]*music.Pattern{short, long}, out, bank, testBPM, testRate)

	if out[0] != 1.0 {
		t.Error("short pattern should trigger at step 0")
	}
	// Steps 4-7 are past the short pattern's length: no snare retrigger.
	for i := 4 * sps; i < 8*sps; i++ {
		if out[i] != 0 {
			t.Fatalf("short pattern retriggered at frame %d", i)
		}
	}
	if out[8*sps] != 1.0 {
		t.Error("long pattern should trigger at step 8")
	}
}

func TestVoiceLifecycle(t *testing.T) {
	s := NewSequencer()
	bank := impulseBank("kick")
	patterns := []*music.Pattern{kickPattern(0)}

	out := make([]float32, 64)
	s.ProcessPatterns(patterns, out, bank, testBPM, testRate)

	// The two-frame impulse finished inside the buffer.
	if s.ActiveVoices() != 0 {
		t.Errorf("voice should deactivate at end of sample, %d active", s.ActiveVoices())
	}

	s.Reset()
	if s.CurrentStep() != 0 || s.ActiveVoices() != 0 {
		t.Error("Reset should rewind and silence everything")
	}
}

func TestPoolExhaustionDropsTriggers(t *testing.T) {
	s := NewSequencer()
	// A sample long enough that voices stay active across many steps.
	bank := synth.NewBank()
	bank.Add("kick", synth.NewSample(make([]float32, testRate*10), testRate))

	// 20 patterns all triggering at step 0: four more than the pool holds.
	// The extra triggers are dropped; playing voices are never stolen.
	var patterns []*music.Pattern
	for i := 0; i < voiceCount+4; i++ {
		patterns = append(patterns, kickPattern(0))
	}

	out := make([]float32, 64)
	s.ProcessPatterns(patterns, out, bank, testBPM, testRate)

	if s.ActiveVoices() != voiceCount {
		t.Errorf("ActiveVoices = %d, want %d (pool limit)", s.ActiveVoices(), voiceCount)
	}
	// Every surviving voice started at cursor 0 and advanced together: none
	// was restarted by a later trigger.
	for i := range s.voices {
		if s.voices[i].samplePosition != 64 {
			t.Errorf("voice %d position = %d, want 64", i, s.voices[i].samplePosition)
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	bank := synth.NewBank()
	bank.LoadDefaults(testRate)
	patterns := []*music.Pattern{kickPattern(0, 4, 8, 12)}

	a := make([]float32, 8192)
	NewSequencer().ProcessPatterns(patterns, a, bank, testBPM, testRate)
	b := make([]float32, 8192)
	NewSequencer().ProcessPatterns(patterns, b, bank, testBPM, testRate)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("renders diverge at frame %d", i)
		}
	}
}

func TestEmptyPatternListDefaultsLoopLength(t *testing.T) {
	s := NewSequencer()
	bank := synth.NewBank()

	out := make([]float32, 1024)
	s.ProcessPatterns(nil, out, bank, testBPM, testRate)

	for _, v := range out {
		if v != 0 {
			t.Fatal("no patterns should render silence")
		}
	}
}
