package ivfsink

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func writeStream(t *testing.T, frames int) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "out.ivf")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()

	s := New(f)
	if err := s.Begin(320, 240, 1, 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < frames; i++ {
		payload := []byte{byte(i), 1, 2, 3}
		if err := s.WritePacket(payload, int64(i), 1, i == 0); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	if err := s.Finish(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return data
}

func TestSink_Header(t *testing.T) {
	data := writeStream(t, 3)

	if string(data[0:4]) != "DKIF" {
		t.Errorf("signature %q, want DKIF", data[0:4])
	}
	if string(data[8:12]) != "VP80" {
		t.Errorf("fourcc %q, want VP80", data[8:12])
	}
	if w := binary.LittleEndian.Uint16(data[12:]); w != 320 {
		t.Errorf("width %d, want 320", w)
	}
	if h := binary.LittleEndian.Uint16(data[14:]); h != 240 {
		t.Errorf("height %d, want 240", h)
	}
	// Rate over scale, inverted from the seconds-per-tick time base.
	if rate := binary.LittleEndian.Uint32(data[16:]); rate != 30 {
		t.Errorf("rate %d, want 30", rate)
	}
	if scale := binary.LittleEndian.Uint32(data[20:]); scale != 1 {
		t.Errorf("scale %d, want 1", scale)
	}
	// The frame count is patched in on Finish.
	if n := binary.LittleEndian.Uint32(data[24:]); n != 3 {
		t.Errorf("frame count %d, want 3", n)
	}
}

func TestSink_FrameHeaders(t *testing.T) {
	data := writeStream(t, 2)

	offset := fileHeaderSize
	for i := 0; i < 2; i++ {
		size := binary.LittleEndian.Uint32(data[offset:])
		pts := binary.LittleEndian.Uint64(data[offset+4:])
		if size != 4 {
			t.Errorf("frame %d: size %d, want 4", i, size)
		}
		if pts != uint64(i) {
			t.Errorf("frame %d: pts %d", i, pts)
		}
		if data[offset+frameHeaderSize] != byte(i) {
			t.Errorf("frame %d: wrong payload byte", i)
		}
		offset += frameHeaderSize + int(size)
	}
	if offset != len(data) {
		t.Errorf("trailing bytes: offset %d, file %d", offset, len(data))
	}
}

func TestSink_CallOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ivf")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()

	s := New(f)
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
	if err := s.Begin(0, 240, 1, 30); err == nil {
		t.Error("expected error for zero width")
	}
}
