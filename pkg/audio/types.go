// ABOUTME: Audio type definitions
// ABOUTME: Float32 mono PCM helpers shared by output backends
package audio

// F32ToInt16 converts a float32 sample in [-1, 1] to int16, clamping
// out-of-range input.
func F32ToInt16(s float32) int16 {
	if s > 1 {
		s = 1
	}
	if s < -1 {
		s = -1
	}
	return int16(s * 32767)
}

// BufferDuration returns the duration in seconds of a mono frame count at
// the given sample rate.
func BufferDuration(frames, sampleRate int) float64 {
	return float64(frames) / float64(sampleRate)
}
