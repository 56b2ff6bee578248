// ABOUTME: Timeline of segments with transport state machine
// ABOUTME: The single object shared between the UI thread and audio callback
package timeline

import (
	"math"
	"sort"
	"sync"
)

// PlaybackState is the transport state of the timeline.
type PlaybackState int

const (
	Stopped PlaybackState = iota
	Playing
	Paused
)

// String returns the transport state name.
func (s PlaybackState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "unknown"
}

// Timeline is an ordered collection of segments plus the playback cursor.
//
// It is shared between the UI thread and the audio callback and guarded by
// its own lock: callers hold Lock/Unlock around any group of operations that
// must be consistent. The audio callback takes the lock exactly once per
// buffer; UI edits take it per interaction. Methods themselves do not lock.
type Timeline struct {
	mu sync.Mutex

	segments      []*Segment
	position      float64 // current playback position in seconds
	playbackState PlaybackState
}

// New returns an empty, stopped timeline.
func New() *Timeline {
	return &Timeline{}
}

// Lock acquires the timeline lock.
func (t *Timeline) Lock() { t.mu.Lock() }

// Unlock releases the timeline lock.
func (t *Timeline) Unlock() { t.mu.Unlock() }

// Segments returns the segment slice, sorted by start time. Callers must
// hold the lock and must not retain the slice past unlock.
func (t *Timeline) Segments() []*Segment {
	return t.segments
}

// TotalDuration returns the largest segment end time, or 0 when empty.
func (t *Timeline) TotalDuration() float64 {
	total := 0.0
	for _, s := range t.segments {
		total = math.Max(total, s.EndTime())
	}
	return total
}

// AddSegment inserts a segment in chronological order and returns its ID.
func (t *Timeline) AddSegment(s *Segment) string {
	i := sort.Search(len(t.segments), func(i int) bool {
		return t.segments[i].StartTime >= s.StartTime
	})
	t.segments = append(t.segments, nil)
	copy(t.segments[i+1:], t.segments[i:])
	t.segments[i] = s
	return s.ID
}

// RemoveSegment removes and returns the segment with the given ID, or nil.
func (t *Timeline) RemoveSegment(id string) *Segment {
	for i, s := range t.segments {
		if s.ID == id {
			t.segments = append(t.segments[:i], t.segments[i+1:]...)
			return s
		}
	}
	return nil
}

// GetSegment returns the segment with the given ID, or nil. The returned
// pointer stays valid for mutation while the caller holds the lock.
func (t *Timeline) GetSegment(id string) *Segment {
	for _, s := range t.segments {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// CurrentSegment returns the first segment containing the playback position.
// Overlapping segments are allowed; first match by start-time order wins.
func (t *Timeline) CurrentSegment() *Segment {
	for _, s := range t.segments {
		if s.ContainsTime(t.position) {
			return s
		}
	}
	return nil
}

// MoveSegment changes a segment's start time (floored at 0) and re-sorts.
// Returns false if no segment has the given ID.
func (t *Timeline) MoveSegment(id string, newStartTime float64) bool {
	s := t.GetSegment(id)
	if s == nil {
		return false
	}
	s.StartTime = math.Max(0, newStartTime)
	t.sortSegments()
	return true
}

// DuplicateSegment deep-copies a segment to a new start time and returns the
// new segment's ID, or "" if the source does not exist.
func (t *Timeline) DuplicateSegment(id string, newStartTime float64) string {
	src := t.GetSegment(id)
	if src == nil {
		return ""
	}
	dup := src.Clone()
	dup.StartTime = math.Max(0, newStartTime)
	return t.AddSegment(dup)
}

// SplitSegment cuts a segment at splitTime, partitioning the loop count
// proportionally by elapsed duration (each half keeps at least one loop).
// Returns the second half's ID, or "" when splitTime is outside the segment.
func (t *Timeline) SplitSegment(id string, splitTime float64) string {
	src := t.GetSegment(id)
	if src == nil {
		return ""
	}
	if splitTime <= src.StartTime || splitTime >= src.EndTime() {
		return ""
	}

	firstDuration := splitTime - src.StartTime
	secondDuration := src.EndTime() - splitTime
	ratio := firstDuration / src.Duration

	firstLoops := int(math.Round(float64(src.LoopCount) * ratio))
	if firstLoops < 1 {
		firstLoops = 1
	}
	secondLoops := int(math.Round(float64(src.LoopCount) * (1 - ratio)))
	if secondLoops < 1 {
		secondLoops = 1
	}

	second := src.Clone()
	second.StartTime = splitTime
	second.LoopCount = secondLoops
	// Keep the partitioned durations rather than re-deriving, so the halves
	// stay exactly adjacent even when the ratio rounds.
	second.Duration = secondDuration

	src.LoopCount = firstLoops
	src.Duration = firstDuration

	return t.AddSegment(second)
}

// Play starts or resumes playback without moving the position.
func (t *Timeline) Play() {
	t.playbackState = Playing
}

// Pause halts playback, retaining the position.
func (t *Timeline) Pause() {
	t.playbackState = Paused
}

// Stop halts playback and rewinds to the start. Stop always rewinds, even
// from Paused.
func (t *Timeline) Stop() {
	t.playbackState = Stopped
	t.position = 0
}

// Seek moves the position, clamped to [0, TotalDuration], in any state.
func (t *Timeline) Seek(position float64) {
	t.position = math.Min(math.Max(0, position), t.TotalDuration())
}

// Position returns the playback position in seconds.
func (t *Timeline) Position() float64 {
	return t.position
}

// State returns the transport state.
func (t *Timeline) State() PlaybackState {
	return t.playbackState
}

// AdvancePosition moves the cursor forward while playing. It is the single
// entry point the audio callback uses to move time, called exactly once per
// buffer with that buffer's duration. Reaching the end stops (and rewinds)
// the timeline and returns false; false is also returned when not playing.
func (t *Timeline) AdvancePosition(deltaTime float64) bool {
	if t.playbackState != Playing {
		return false
	}
	t.position += deltaTime
	if t.position >= t.TotalDuration() {
		t.Stop()
		return false
	}
	return true
}

// IsPlaying reports whether the transport is in the Playing state.
func (t *Timeline) IsPlaying() bool {
	return t.playbackState == Playing
}

// IsEmpty reports whether the timeline has no segments.
func (t *Timeline) IsEmpty() bool {
	return len(t.segments) == 0
}

// SetGlobalBPM applies one tempo to every segment, updating durations.
func (t *Timeline) SetGlobalBPM(bpm float32) {
	for _, s := range t.segments {
		s.SetBPM(bpm)
	}
}

// AverageBPM returns the mean tempo across segments, or 120 when empty.
func (t *Timeline) AverageBPM() float32 {
	if len(t.segments) == 0 {
		return 120
	}
	var sum float32
	for _, s := range t.segments {
		sum += s.BPM
	}
	return sum / float32(len(t.segments))
}

func (t *Timeline) sortSegments() {
	sort.SliceStable(t.segments, func(i, j int) bool {
		return t.segments[i].StartTime < t.segments[j].StartTime
	})
}
