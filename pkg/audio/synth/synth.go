// ABOUTME: Procedural drum synthesis for the built-in kit
// ABOUTME: Envelopes, sine sweeps, and xorshift noise through simple filters
package synth

import (
	"math"
)

// noiseGen is a small deterministic xorshift PRNG. Not cryptographic; it
// only needs to sound like white noise and produce the same kit every run.
type noiseGen struct {
	state uint32
}

func newNoiseGen(seed uint32) *noiseGen {
	if seed == 0 {
		seed = 1
	}
	return &noiseGen{state: seed}
}

// next returns a white-noise sample in [-1, 1).
func (g *noiseGen) next() float32 {
	x := g.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	g.state = x
	return (float32(x)/float32(math.MaxUint32) - 0.5) * 2.0
}

// clamp1 keeps generated audio inside [-1, 1] so the kit can never clip.
func clamp1(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

func sineAt(freq, t float32) float32 {
	return float32(math.Sin(2 * math.Pi * float64(freq) * float64(t)))
}

func expDecay(t, rate float32) float32 {
	return float32(math.Exp(float64(-t * rate)))
}

// generateKick renders a sine sweep from 60 Hz downward with a fast
// exponential decay.
func generateKick(sampleRate float32, duration float32) []float32 {
	n := int(sampleRate * duration)
	data := make([]float32, 0, n)
	for i := 0; i < n; i++ {
		t := float32(i) / sampleRate
		freq := 60.0 * max32(1.0-t*5.0, 0.1)
		envelope := expDecay(t, 15.0)
		data = append(data, clamp1(sineAt(freq, t)*envelope*0.8))
	}
	return data
}

// generateSnare mixes white noise with a 200 Hz tonal component.
func generateSnare(sampleRate float32, duration float32) []float32 {
	n := int(sampleRate * duration)
	rng := newNoiseGen(0x5eed0002)
	data := make([]float32, 0, n)
	for i := 0; i < n; i++ {
		t := float32(i) / sampleRate
		envelope := expDecay(t, 20.0)
		tone := sineAt(200, t) * 0.3
		data = append(data, clamp1((rng.next()*0.7+tone)*envelope*0.6))
	}
	return data
}

// generateHihat is filtered noise with a very fast decay. The one-tap
// high-pass (noise minus most of the previous output) brightens it.
func generateHihat(sampleRate float32, duration float32) []float32 {
	n := int(sampleRate * duration)
	rng := newNoiseGen(0x5eed0003)
	data := make([]float32, 0, n)
	for i := 0; i < n; i++ {
		t := float32(i) / sampleRate
		envelope := expDecay(t, 30.0)
		noise := rng.next()
		if i > 0 {
			noise -= data[i-1] * 0.9
		}
		data = append(data, clamp1(noise*envelope*0.4))
	}
	return data
}

// generateCrash layers high sine partials over two-tap filtered noise with a
// long decay.
func generateCrash(sampleRate float32, duration float32) []float32 {
	n := int(sampleRate * duration)
	rng := newNoiseGen(0x5eed0004)
	data := make([]float32, 0, n)
	for i := 0; i < n; i++ {
		t := float32(i) / sampleRate
		envelope := expDecay(t, 1.5)
		metallic := sineAt(5000, t)*0.1 + sineAt(7000, t)*0.08 + sineAt(9000, t)*0.06

		noise := rng.next()
		if i > 2 {
			noise -= data[i-1]*0.7 + data[i-2]*0.2
		} else if i > 0 {
			noise -= data[i-1] * 0.7
		}

		data = append(data, clamp1((noise*0.7+metallic)*envelope*0.5))
	}
	return data
}

// generateOpenHihat is brighter, longer filtered noise than the closed hat.
func generateOpenHihat(sampleRate float32, duration float32) []float32 {
	n := int(sampleRate * duration)
	rng := newNoiseGen(0x5eed0005)
	data := make([]float32, 0, n)
	for i := 0; i < n; i++ {
		t := float32(i) / sampleRate
		envelope := expDecay(t, 8.0)
		noise := rng.next()
		if i > 1 {
			noise -= data[i-1]*0.8 + data[i-2]*0.1
		} else if i > 0 {
			noise -= data[i-1] * 0.8
		}
		data = append(data, clamp1(noise*envelope*0.6))
	}
	return data
}

// generateClap stacks three short noise bursts before the main decay, the
// classic multi-transient hand-clap shape.
func generateClap(sampleRate float32, duration float32) []float32 {
	n := int(sampleRate * duration)
	rng := newNoiseGen(0x5eed0006)
	data := make([]float32, 0, n)
	for i := 0; i < n; i++ {
		t := float32(i) / sampleRate

		var envelope float32
		switch {
		case t < 0.01:
			envelope = expDecay(t, 200.0)
		case t > 0.015 && t < 0.025:
			envelope = expDecay(t-0.015, 200.0)
		case t > 0.03 && t < 0.04:
			envelope = expDecay(t-0.03, 200.0)
		case t > 0.045:
			envelope = expDecay(t-0.045, 15.0)
		}

		noise := rng.next() * 0.8
		if i > 2 {
			noise += -data[i-1]*0.3 + data[i-2]*0.1
		}

		data = append(data, clamp1(noise*envelope*0.7))
	}
	return data
}

// generateRimshot is a 2 kHz click with a little noise and a sharp decay.
func generateRimshot(sampleRate float32, duration float32) []float32 {
	n := int(sampleRate * duration)
	rng := newNoiseGen(0x5eed0007)
	data := make([]float32, 0, n)
	for i := 0; i < n; i++ {
		t := float32(i) / sampleRate
		envelope := expDecay(t, 40.0)

		click := sineAt(2000, t) * 0.5
		noise := rng.next() * 0.3

		filtered := click + noise
		if i > 0 {
			filtered -= data[i-1] * 0.7
		}

		data = append(data, clamp1(filtered*envelope*0.7))
	}
	return data
}

// generateTom is a pitched drum: 80 Hz fundamental bending down, two
// overtones, and a touch of noise.
func generateTom(sampleRate float32, duration float32) []float32 {
	n := int(sampleRate * duration)
	rng := newNoiseGen(0x5eed0008)
	data := make([]float32, 0, n)
	for i := 0; i < n; i++ {
		t := float32(i) / sampleRate
		envelope := expDecay(t, 6.0)

		freq := 80.0 * max32(1.0-t*2.0, 0.3)
		tone := sineAt(freq, t)
		overtone1 := sineAt(freq*1.5, t) * 0.3
		overtone2 := sineAt(freq*2.2, t) * 0.15
		noise := rng.next() * 0.1

		data = append(data, clamp1((tone+overtone1+overtone2+noise)*envelope*0.6))
	}
	return data
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
