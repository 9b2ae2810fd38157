// Package ivfsink writes compressed frames into an IVF container. IVF
// is the minimal framing used by codec test tooling: a 32-byte file
// header followed by a 12-byte header per frame.
package ivfsink

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/user/vp8session/pkg/ports"
)

const (
	fileHeaderSize  = 32
	frameHeaderSize = 12
	headerVersion   = 0
)

var signature = [4]byte{'D', 'K', 'I', 'F'}

// Sink implements ports.PacketSink for IVF output. The frame count in
// the file header is only known at the end, so Finish seeks back and
// patches the header in place.
type Sink struct {
	w      io.WriteSeeker
	fourCC [4]byte

	began  bool
	frames uint32
}

// New creates an IVF sink writing VP8 frames to w.
func New(w io.WriteSeeker) *Sink {
	return &Sink{w: w, fourCC: [4]byte{'V', 'P', '8', '0'}}
}

// Begin writes the file header. The frame count field is written as
// zero and patched on Finish.
func (s *Sink) Begin(width, height, timebaseNum, timebaseDen int) error {
	if s.began {
		return fmt.Errorf("ivfsink: Begin called twice")
	}
	if width <= 0 || height <= 0 || timebaseNum <= 0 || timebaseDen <= 0 {
		return fmt.Errorf("ivfsink: invalid stream parameters %dx%d tb %d/%d",
			width, height, timebaseNum, timebaseDen)
	}

	var hdr [fileHeaderSize]byte
	copy(hdr[0:], signature[:])
	binary.LittleEndian.PutUint16(hdr[4:], headerVersion)
	binary.LittleEndian.PutUint16(hdr[6:], fileHeaderSize)
	copy(hdr[8:], s.fourCC[:])
	binary.LittleEndian.PutUint16(hdr[12:], uint16(width))
	binary.LittleEndian.PutUint16(hdr[14:], uint16(height))
	// IVF stores the time base inverted relative to the session's
	// seconds-per-tick convention: rate first, then scale.
	binary.LittleEndian.PutUint32(hdr[16:], uint32(timebaseDen))
	binary.LittleEndian.PutUint32(hdr[20:], uint32(timebaseNum))
	binary.LittleEndian.PutUint32(hdr[24:], 0) // frame count, patched later
	binary.LittleEndian.PutUint32(hdr[28:], 0) // unused

	if _, err := s.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("ivfsink: write header: %w", err)
	}
	s.began = true
	return nil
}

// WritePacket appends one frame with its presentation timestamp.
// Keyframe marking is implicit in the VP8 payload, so the flag is
// accepted but not stored.
func (s *Sink) WritePacket(payload []byte, pts, duration int64, keyframe bool) error {
	if !s.began {
		return fmt.Errorf("ivfsink: WritePacket before Begin")
	}

	var hdr [frameHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(len(payload)))
	binary.LittleEndian.PutUint64(hdr[4:], uint64(pts))
	if _, err := s.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("ivfsink: write frame header: %w", err)
	}
	if _, err := s.w.Write(payload); err != nil {
		return fmt.Errorf("ivfsink: write frame payload: %w", err)
	}
	s.frames++
	return nil
}

// Finish patches the frame count into the file header and seeks back
// to the end.
func (s *Sink) Finish() error {
	if !s.began {
		return fmt.Errorf("ivfsink: Finish before Begin")
	}

	if _, err := s.w.Seek(24, io.SeekStart); err != nil {
		return fmt.Errorf("ivfsink: seek to frame count: %w", err)
	}
	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], s.frames)
	if _, err := s.w.Write(count[:]); err != nil {
		return fmt.Errorf("ivfsink: patch frame count: %w", err)
	}
	if _, err := s.w.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("ivfsink: seek to end: %w", err)
	}
	return nil
}

var _ ports.PacketSink = (*Sink)(nil)
