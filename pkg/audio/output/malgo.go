// ABOUTME: Malgo-based audio output backend
// ABOUTME: Pulls float32 buffers from the render callback via miniaudio
package output

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"
)

// Malgo drives playback through the miniaudio device callback. It is the
// primary backend: the hardware pulls buffers, and device enumeration and
// selection are supported.
type Malgo struct {
	mu       sync.Mutex
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	render   RenderFunc
	scratch  []float32 // reused across callbacks, grown on demand
	ready    bool
}

// NewMalgo creates an unopened malgo output.
func NewMalgo() *Malgo {
	return &Malgo{}
}

// Devices lists the available playback devices.
func (m *Malgo) Devices() ([]Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureContext(); err != nil {
		return nil, err
	}
	infos, err := m.malgoCtx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate playback devices: %w", err)
	}
	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, Device{
			Name:      info.Name(),
			IsDefault: info.IsDefault != 0,
		})
	}
	return devices, nil
}

// Start opens the device described by cfg and begins pulling buffers from
// render. An empty DeviceName selects the system default; a named device
// that cannot be found falls back to the default with a log line rather
// than failing.
func (m *Malgo) Start(cfg Config, render RenderFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		if err := m.closeDevice(); err != nil {
			return fmt.Errorf("failed to close old device: %w", err)
		}
	}
	if err := m.ensureContext(); err != nil {
		return err
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = 1
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(cfg.BufferSize)
	deviceConfig.Alsa.NoMMap = 1

	if cfg.DeviceName != "" {
		if id, ok := m.findDeviceID(cfg.DeviceName); ok {
			deviceConfig.Playback.DeviceID = id.Pointer()
		} else {
			log.Printf("Device %q not found, using system default", cfg.DeviceName)
		}
	}

	m.render = render
	m.scratch = make([]float32, cfg.BufferSize)

	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		m.dataCallback(pOutputSample, frameCount)
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start device: %w", err)
	}

	m.device = device
	m.ready = true
	log.Printf("Audio output started: %dHz mono float32, %d-frame buffers (malgo)",
		cfg.SampleRate, cfg.BufferSize)
	return nil
}

// dataCallback is invoked by miniaudio on its realtime thread. It renders
// into the reused scratch buffer and writes float32 little-endian bytes.
// The scratch is sized to the configured period at Start; a device handing
// us a larger period forces a one-time regrow, which is logged because it
// means the render path allocated.
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	n := int(frameCount)
	if n > len(m.scratch) {
		log.Printf("Warning: device period %d exceeds configured %d frames, regrowing scratch", n, len(m.scratch))
		m.scratch = make([]float32, n)
	}
	buf := m.scratch[:n]
	for i := range buf {
		buf[i] = 0
	}

	if m.render != nil {
		m.render(buf)
	}

	for i, s := range buf {
		binary.LittleEndian.PutUint32(pOutput[i*4:], math.Float32bits(s))
	}
}

// Close stops playback and releases the device and context.
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.closeDevice(); err != nil {
		return err
	}
	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
	return nil
}

// ensureContext lazily creates the malgo context (must hold m.mu).
func (m *Malgo) ensureContext() error {
	if m.malgoCtx != nil {
		return nil
	}
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	m.malgoCtx = ctx
	return nil
}

// findDeviceID resolves a device name, case-insensitively, to its ID
// (must hold m.mu with the context initialized).
func (m *Malgo) findDeviceID(name string) (malgo.DeviceID, bool) {
	infos, err := m.malgoCtx.Devices(malgo.Playback)
	if err != nil {
		log.Printf("Warning: device enumeration failed: %v", err)
		return malgo.DeviceID{}, false
	}
	for _, info := range infos {
		if strings.EqualFold(info.Name(), name) {
			return info.ID, true
		}
	}
	return malgo.DeviceID{}, false
}

// closeDevice stops and uninitializes the device (must hold m.mu).
func (m *Malgo) closeDevice() error {
	if m.device != nil {
		if err := m.device.Stop(); err != nil {
			log.Printf("Warning: device stop error: %v", err)
		}
		m.device.Uninit()
		m.device = nil
		m.ready = false
	}
	return nil
}
