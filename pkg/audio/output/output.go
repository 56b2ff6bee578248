// ABOUTME: Audio output interface definition
// ABOUTME: Pull-based backends that invoke a render callback per buffer
package output

import "errors"

// ErrNoDevice indicates no usable playback device was found.
var ErrNoDevice = errors.New("no audio output device available")

// Config describes the stream an output backend should open. Playback is
// always mono float32.
type Config struct {
	SampleRate int
	BufferSize int // frames per render callback, power of two
	DeviceName string
}

// RenderFunc fills one buffer of mono float32 audio. The backend calls it
// from its realtime thread; implementations must not block or allocate.
type RenderFunc func(out []float32)

// Device identifies a playback device for enumeration and selection.
type Device struct {
	Name      string
	IsDefault bool
}

// Output represents an audio output backend driving a render callback.
type Output interface {
	// Start opens the device and begins pulling buffers from render.
	Start(cfg Config, render RenderFunc) error

	// Close stops playback and releases device resources.
	Close() error
}
