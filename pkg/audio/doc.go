// ABOUTME: Audio fundamentals package providing shared helpers
// ABOUTME: Float32 mono conversions used by the output backends
// Package audio provides small helpers shared across the audio path.
//
// The engine works in mono float32 throughout; this package holds the
// conversions at the edges:
//   - F32ToInt16 for backends that only take 16-bit PCM
//   - BufferDuration for turning frame counts into seconds
package audio
