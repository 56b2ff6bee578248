// ABOUTME: Musical value types for the step sequencer
// ABOUTME: Time signatures, steps, and patterns with no playback state
// Package music provides the musical value types used by the sequencer:
//
//   - TimeSignature: validated beats-per-measure/note-value pair with
//     beat and downbeat math for arbitrary loop lengths
//   - Step: one on/off slot with a velocity
//   - Pattern: a named step sequence bound to a single sample name
//
// Everything here is plain data, safe to copy and serialize. Mutating
// operations are bounds-checked and never panic on out-of-range input.
package music
