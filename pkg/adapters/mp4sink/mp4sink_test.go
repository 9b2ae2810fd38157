package mp4sink

import (
	"bytes"
	"testing"
)

func TestSink_WritesFragmentedMP4(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	if err := s.Begin(320, 240, 1, 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		payload := []byte{byte(i), 1, 2, 3}
		if err := s.WritePacket(payload, int64(i), 1, i == 0); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	if err := s.Finish(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := buf.Bytes()
	for _, box := range []string{"ftyp", "moov", "moof", "mdat", "vp08"} {
		if !bytes.Contains(data, []byte(box)) {
			t.Errorf("expected %s box in output", box)
		}
	}
}

func TestSink_PayloadIsCopied(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	if err := s.Begin(320, 240, 1, 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := []byte{1, 2, 3, 4}
	if err := s.WritePacket(payload, 0, 1, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payload[0] = 99 // caller reuses its buffer

	if err := s.Finish(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bytes.Contains(buf.Bytes(), []byte{99, 2, 3, 4}) {
		t.Error("sink must not alias the caller's buffer")
	}
}

func TestSink_ZeroDurationNegativeGap(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	if err := s.Begin(320, 240, 1, 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A zero-duration sample followed by an earlier timestamp: the
	// duration fallback must not wrap around.
	if err := s.WritePacket([]byte{1, 2, 3}, 5, 0, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.WritePacket([]byte{4, 5, 6}, 4, 1, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Finish(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bytes.Contains(buf.Bytes(), []byte{0xff, 0xff, 0xff, 0xff}) {
		t.Error("expected no wrapped sample duration in output")
	}
}

func TestSink_CallOrder(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	if err := s.WritePacket([]byte{1}, 0, 1, true); err == nil {
		t.Error("expected error for WritePacket before Begin")
	}
	if err := s.Finish(); err == nil {
		t.Error("expected error for Finish before Begin")
	}

	if err := s.Begin(320, 240, 1, 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Begin(320, 240, 1, 30); err == nil {
		t.Error("expected error for double Begin")
	}
	// A stream with no frames cannot be finalized.
	if err := s.Finish(); err == nil {
		t.Error("expected error for empty stream")
	}
}
