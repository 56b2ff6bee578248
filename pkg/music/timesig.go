// ABOUTME: Time signature value type and musical step math
// ABOUTME: Computes beat/step relationships used by sequencer timing
package music

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTimeSignature is returned when a time signature fails validation.
var ErrInvalidTimeSignature = errors.New("invalid time signature")

// TimeSignature describes beats per measure and the note value of one beat.
type TimeSignature struct {
	Numerator   int `json:"numerator"`   // beats per measure (1-32)
	Denominator int `json:"denominator"` // note value for one beat (1, 2, 4, 8, 16, 32)
}

// NewTimeSignature validates and creates a time signature.
func NewTimeSignature(numerator, denominator int) (TimeSignature, error) {
	if numerator < 1 || numerator > 32 {
		return TimeSignature{}, fmt.Errorf("%w: numerator %d must be 1-32", ErrInvalidTimeSignature, numerator)
	}
	if denominator < 1 || denominator > 32 || denominator&(denominator-1) != 0 {
		return TimeSignature{}, fmt.Errorf("%w: denominator %d must be a power of 2 (1, 2, 4, 8, 16, 32)", ErrInvalidTimeSignature, denominator)
	}
	return TimeSignature{Numerator: numerator, Denominator: denominator}, nil
}

// Common time signature presets.
func FourFour() TimeSignature   { return TimeSignature{4, 4} }
func ThreeFour() TimeSignature  { return TimeSignature{3, 4} }
func FiveFour() TimeSignature   { return TimeSignature{5, 4} }
func SixEight() TimeSignature   { return TimeSignature{6, 8} }
func SevenEight() TimeSignature { return TimeSignature{7, 8} }
func NineEight() TimeSignature  { return TimeSignature{9, 8} }
func TwelveEight() TimeSignature {
	return TimeSignature{12, 8}
}

// StepsPerBeat returns how many steps of a loop fall on one beat.
// For 4/4 with 16 steps: 16/4 = 4 steps per beat.
func (ts TimeSignature) StepsPerBeat(loopLength int) float64 {
	return float64(loopLength) / float64(ts.Numerator)
}

// OptimalLoopLength returns the loop length that gives baseSubdivision steps
// per beat. Base subdivision is typically 4 (16th notes) or 8 (8th notes).
func (ts TimeSignature) OptimalLoopLength(baseSubdivision int) int {
	return ts.Numerator * baseSubdivision
}

// BeatForStep returns the 0-based beat index a step falls on.
func (ts TimeSignature) BeatForStep(step, loopLength int) int {
	spb := ts.StepsPerBeat(loopLength)
	return int(math.Floor(float64(step)/spb)) % ts.Numerator
}

// IsBeatBoundary reports whether a step lands exactly on a beat.
func (ts TimeSignature) IsBeatBoundary(step, loopLength int) bool {
	spb := ts.StepsPerBeat(loopLength)
	return math.Abs(math.Mod(float64(step), spb)) < 0.001
}

// IsDownbeat reports whether a step is the first beat of the measure.
func (ts TimeSignature) IsDownbeat(step, loopLength int) bool {
	return ts.IsBeatBoundary(step, loopLength) && ts.BeatForStep(step, loopLength) == 0
}

// String returns the display form, e.g. "4/4".
func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator)
}

// StepLabel returns a 1-indexed musical label for a step. Detailed patterns
// (4+ steps per beat) get "beat.subdivision" like "1.3"; coarser patterns get
// just the beat number.
func (ts TimeSignature) StepLabel(step, loopLength int) string {
	spb := ts.StepsPerBeat(loopLength)
	beat := int(math.Floor(float64(step)/spb)) + 1
	subdivision := int(math.Floor(math.Mod(float64(step), spb))) + 1

	if spb >= 4.0 {
		return fmt.Sprintf("%d.%d", beat, subdivision)
	}
	return fmt.Sprintf("%d", beat)
}
