// ABOUTME: Package docs for the audio engine
// ABOUTME: Describes the render path and the thread ownership rules
// Package engine renders the shared timeline into audio. The AudioEngine
// owns the per-buffer render callback; the Sequencer inside it tracks step
// position and the voice pool.
//
// Thread ownership is strict. The timeline and sample bank are shared with
// the UI thread and locked once per buffer. The sequencer is private to the
// audio thread. Master volume is the only other crossing point, stored as
// atomic float32 bits.
//
// The render path degrades to silence rather than failing: unknown samples,
// empty patterns, and gaps between segments all produce zero output, and
// nothing in the callback returns an error or panics.
package engine
