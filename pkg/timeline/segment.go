// ABOUTME: Timeline segment type with derived duration
// ABOUTME: A time-ranged placement of patterns with its own tempo and meter
package timeline

import (
	"github.com/beatline/beatline-go/pkg/music"
	"github.com/google/uuid"
)

// Segment places a set of patterns on the timeline with its own loop count,
// BPM, and time signature. Duration is always derived from those three; the
// Set* mutators keep it in sync.
type Segment struct {
	ID            string              `json:"id"`
	StartTime     float64             `json:"start_time"` // seconds from timeline start
	Duration      float64             `json:"duration"`   // derived, seconds
	PatternID     string              `json:"pattern_id"` // display name
	Patterns      []*music.Pattern    `json:"patterns"`   // independent copies, never shared between segments
	LoopCount     int                 `json:"loop_count"`
	TimeSignature music.TimeSignature `json:"time_signature"`
	BPM           float32             `json:"bpm"`
}

// NewSegment creates a segment with a fresh ID and a duration derived from
// the loop count, time signature, and BPM. The segment takes ownership of
// the pattern slice.
func NewSegment(patternID string, patterns []*music.Pattern, startTime float64, loopCount int, ts music.TimeSignature, bpm float32) *Segment {
	if loopCount < 1 {
		loopCount = 1
	}
	s := &Segment{
		ID:            uuid.New().String(),
		StartTime:     startTime,
		PatternID:     patternID,
		Patterns:      patterns,
		LoopCount:     loopCount,
		TimeSignature: ts,
		BPM:           bpm,
	}
	s.updateDuration()
	return s
}

// updateDuration recomputes the derived duration:
// (beats per loop * loop count) / (BPM / 60).
func (s *Segment) updateDuration() {
	totalBeats := float64(s.TimeSignature.Numerator) * float64(s.LoopCount)
	beatsPerSecond := float64(s.BPM) / 60.0
	s.Duration = totalBeats / beatsPerSecond
}

// EndTime returns the exclusive end of the segment.
func (s *Segment) EndTime() float64 {
	return s.StartTime + s.Duration
}

// ContainsTime reports whether t falls in [StartTime, EndTime).
func (s *Segment) ContainsTime(t float64) bool {
	return t >= s.StartTime && t < s.EndTime()
}

// SetLoopCount sets the loop count (minimum 1) and updates the duration.
func (s *Segment) SetLoopCount(loopCount int) {
	if loopCount < 1 {
		loopCount = 1
	}
	s.LoopCount = loopCount
	s.updateDuration()
}

// SetBPM sets the tempo, clamped to the 60-300 playable range, and updates
// the duration.
func (s *Segment) SetBPM(bpm float32) {
	if bpm < 60 {
		bpm = 60
	}
	if bpm > 300 {
		bpm = 300
	}
	s.BPM = bpm
	s.updateDuration()
}

// SetTimeSignature sets the meter and updates the duration.
func (s *Segment) SetTimeSignature(ts music.TimeSignature) {
	s.TimeSignature = ts
	s.updateDuration()
}

// Clone returns a deep copy with a fresh ID; pattern data is copied, not
// shared.
func (s *Segment) Clone() *Segment {
	patterns := make([]*music.Pattern, len(s.Patterns))
	for i, p := range s.Patterns {
		patterns[i] = p.Clone()
	}
	return &Segment{
		ID:            uuid.New().String(),
		StartTime:     s.StartTime,
		Duration:      s.Duration,
		PatternID:     s.PatternID,
		Patterns:      patterns,
		LoopCount:     s.LoopCount,
		TimeSignature: s.TimeSignature,
		BPM:           s.BPM,
	}
}
