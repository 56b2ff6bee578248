// ABOUTME: Oto-based audio output backend
// ABOUTME: Adapts oto's io.Reader pull into render callback invocations
package output

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"

	"github.com/ebitengine/oto/v3"
)

// Oto is the fallback backend. Oto pulls audio through an io.Reader, so a
// renderReader adapter converts each Read into render callback invocations.
// No device selection: oto always plays on the system default.
type Oto struct {
	otoCtx *oto.Context
	player *oto.Player
	ready  bool
}

// NewOto creates an unopened oto output.
func NewOto() *Oto {
	return &Oto{}
}

// Start opens the default device and begins pulling from render. DeviceName
// in cfg is ignored; oto cannot select devices.
func (o *Oto) Start(cfg Config, render RenderFunc) error {
	if o.otoCtx != nil {
		// oto allows one context per process and no reinitialization.
		return fmt.Errorf("oto output already started")
	}
	if cfg.DeviceName != "" {
		log.Printf("Warning: oto cannot select devices, ignoring %q", cfg.DeviceName)
	}

	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	o.otoCtx = ctx
	o.player = ctx.NewPlayer(&renderReader{
		render: render,
		buf:    make([]float32, cfg.BufferSize),
		bytes:  make([]byte, cfg.BufferSize*4),
	})
	o.player.Play()
	o.ready = true

	log.Printf("Audio output started: %dHz mono float32, %d-frame buffers (oto)",
		cfg.SampleRate, cfg.BufferSize)
	return nil
}

// Close stops playback. The oto context itself cannot be torn down; it is
// suspended instead.
func (o *Oto) Close() error {
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.otoCtx != nil {
		o.otoCtx.Suspend()
		o.ready = false
	}
	return nil
}

// renderReader turns io.Reader pulls into render callback invocations,
// rendering whole buffers and emitting float32 little-endian bytes. Both
// buffers are allocated once at Start; Read runs on oto's pull path and
// must not allocate.
type renderReader struct {
	render RenderFunc
	buf    []float32
	bytes  []byte
	pend   []byte // unconsumed tail of bytes
}

func (r *renderReader) Read(p []byte) (int, error) {
	if len(r.pend) == 0 {
		for i := range r.buf {
			r.buf[i] = 0
		}
		if r.render != nil {
			r.render(r.buf)
		}
		for i, s := range r.buf {
			binary.LittleEndian.PutUint32(r.bytes[i*4:], math.Float32bits(s))
		}
		r.pend = r.bytes
	}
	n := copy(p, r.pend)
	r.pend = r.pend[n:]
	return n, nil
}
