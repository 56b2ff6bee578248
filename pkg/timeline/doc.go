// ABOUTME: Timeline data model and transport state machine
// ABOUTME: Segments sorted by start time, shared UI/audio-thread object
// Package timeline holds the arrangement a composition plays from: an
// ordered collection of pattern segments plus the transport state and
// playback cursor.
//
// A Timeline is shared between the UI thread and the audio callback. It
// carries its own lock; callers bracket related operations with
// Lock/Unlock. The audio callback holds the lock for exactly one buffer's
// worth of work, so long-running UI work under the lock can audibly stall
// playback — keep edits short.
package timeline
