// ABOUTME: Package docs for the output backends
// ABOUTME: Describes the pull model and backend selection
// Package output wraps the platform audio backends behind a small pull-based
// interface: the hardware asks for a buffer, the backend invokes the render
// callback, and whatever it writes goes to the speaker.
//
// Malgo (miniaudio) is the primary backend because its device callback maps
// directly onto the pull model and it can enumerate and select devices. Oto
// is the fallback: it only pulls through an io.Reader, so a thin adapter
// turns reads into render calls.
package output
