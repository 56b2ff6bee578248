// ABOUTME: Package docs for the drum synthesis layer
// ABOUTME: Describes the built-in kit and the bank locking discipline
// Package synth renders the built-in drum kit procedurally and stores the
// results in a named sample bank.
//
// There are no sample files on disk: every drum is synthesized at startup
// from sine sweeps, exponential envelopes, and deterministic xorshift noise,
// so the kit sounds identical on every run and at every sample rate change.
//
// The Bank follows the same locking discipline as the timeline: it carries
// its own lock, callers bracket access with Lock/Unlock, and methods never
// lock themselves.
package synth
