// ABOUTME: Audio output interface tests
// ABOUTME: Verifies backend interface compliance and the render pump
package output

import (
	"io"
	"testing"
)

func TestMalgoImplementsOutput(t *testing.T) {
	var _ Output = (*Malgo)(nil)
}

func TestOtoImplementsOutput(t *testing.T) {
	var _ Output = (*Oto)(nil)
}

func TestNewBackends(t *testing.T) {
	if NewMalgo() == nil {
		t.Fatal("NewMalgo returned nil")
	}
	if NewOto() == nil {
		t.Fatal("NewOto returned nil")
	}
}

func TestRenderReaderPullsWholeBuffers(t *testing.T) {
	calls := 0
	r := &renderReader{
		render: func(out []float32) {
			calls++
			for i := range out {
				out[i] = 0.5
			}
		},
		buf:   make([]float32, 4),
		bytes: make([]byte, 16),
	}

	// One buffer is 16 bytes; reading it in two halves should only invoke
	// the render callback once.
	first := make([]byte, 8)
	n, err := r.Read(first)
	if err != nil || n != 8 {
		t.Fatalf("first read: n=%d err=%v", n, err)
	}
	second := make([]byte, 8)
	n, err = r.Read(second)
	if err != nil || n != 8 {
		t.Fatalf("second read: n=%d err=%v", n, err)
	}
	if calls != 1 {
		t.Errorf("render called %d times for one buffer, want 1", calls)
	}

	// The next read starts a new buffer.
	if _, err := io.ReadFull(r, make([]byte, 16)); err != nil {
		t.Fatalf("full buffer read: %v", err)
	}
	if calls != 2 {
		t.Errorf("render called %d times after second buffer, want 2", calls)
	}
}

func TestRenderReaderDoesNotAllocate(t *testing.T) {
	r := &renderReader{
		render: func(out []float32) {
			for i := range out {
				out[i] = 0.25
			}
		},
		buf:   make([]float32, 64),
		bytes: make([]byte, 256),
	}
	p := make([]byte, 256)

	allocs := testing.AllocsPerRun(100, func() {
		if _, err := io.ReadFull(r, p); err != nil {
			t.Fatal(err)
		}
	})
	if allocs != 0 {
		t.Errorf("Read allocated %v times per buffer, want 0", allocs)
	}
}

func TestRenderReaderZeroesBetweenRenders(t *testing.T) {
	r := &renderReader{
		render: nil, // no renderer: output is silence
		buf:    make([]float32, 2),
		bytes:  make([]byte, 8),
	}
	out := make([]byte, 8)
	if _, err := io.ReadFull(r, out); err != nil {
		t.Fatalf("read: %v", err)
	}
	for i, b := range out {
		if b != 0 {
			t.Fatalf("byte %d = %d, want silence", i, b)
		}
	}
}
