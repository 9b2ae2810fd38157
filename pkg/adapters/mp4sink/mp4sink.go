// Package mp4sink writes compressed frames into a fragmented MP4
// container with a vp08 sample entry.
package mp4sink

import (
	"fmt"
	"io"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/vp8session/pkg/ports"
)

type sample struct {
	data     []byte
	pts      int64
	duration int64
	keyframe bool
}

// Sink implements ports.PacketSink. Samples accumulate in memory and
// the container is assembled on Finish: the sample table needs every
// duration before the moov can be written.
type Sink struct {
	w io.Writer

	width  int
	height int
	// timescale is ticks per second derived from the stream time base.
	timescale uint32

	began   bool
	samples []sample
}

// New creates an MP4 sink writing to w.
func New(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Begin records the stream parameters. The container timescale is the
// inverse of the per-tick time base.
func (s *Sink) Begin(width, height, timebaseNum, timebaseDen int) error {
	if s.began {
		return fmt.Errorf("mp4sink: Begin called twice")
	}
	if width <= 0 || height <= 0 || timebaseNum <= 0 || timebaseDen <= 0 {
		return fmt.Errorf("mp4sink: invalid stream parameters %dx%d tb %d/%d",
			width, height, timebaseNum, timebaseDen)
	}
	s.width = width
	s.height = height
	s.timescale = uint32(timebaseDen / timebaseNum)
	if s.timescale == 0 {
		s.timescale = 1
	}
	s.began = true
	return nil
}

// WritePacket buffers one frame. The payload is copied; callers may
// reuse their buffer.
func (s *Sink) WritePacket(payload []byte, pts, duration int64, keyframe bool) error {
	if !s.began {
		return fmt.Errorf("mp4sink: WritePacket before Begin")
	}
	s.samples = append(s.samples, sample{
		data:     append([]byte(nil), payload...),
		pts:      pts,
		duration: duration,
		keyframe: keyframe,
	})
	return nil
}

// Finish assembles the init segment and a single fragment and writes
// the whole container.
func (s *Sink) Finish() error {
	if !s.began {
		return fmt.Errorf("mp4sink: Finish before Begin")
	}
	if len(s.samples) == 0 {
		return fmt.Errorf("mp4sink: no frames to write")
	}

	trackID := uint32(1)

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(s.timescale, "video", "en")

	trak := init.Moov.Trak

	vppC := &mp4.VppCBox{
		Version:           1,
		Profile:           0,
		Level:             10,
		BitDepth:          8,
		ChromaSubsampling: 1, // 4:2:0 colocated
	}
	vp08 := mp4.CreateVisualSampleEntryBox("vp08", uint16(s.width), uint16(s.height), vppC)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(vp08)

	trak.Tkhd.Width = mp4.Fixed32(s.width << 16)
	trak.Tkhd.Height = mp4.Fixed32(s.height << 16)

	frag, err := mp4.CreateFragment(1, trackID)
	if err != nil {
		return fmt.Errorf("mp4sink: create fragment: %w", err)
	}

	for i, smp := range s.samples {
		dur := uint32(smp.duration)
		if dur == 0 {
			// Invisible frames carry zero duration; fall back to the gap
			// to the next sample so the edit timeline stays monotonic. A
			// non-positive gap stays zero rather than wrapping.
			if i < len(s.samples)-1 {
				if gap := s.samples[i+1].pts - smp.pts; gap > 0 {
					dur = uint32(gap)
				}
			} else {
				dur = 1
			}
		}

		flags := mp4.NonSyncSampleFlags
		if smp.keyframe {
			flags = mp4.SyncSampleFlags
		}

		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: flags,
				Size:  uint32(len(smp.data)),
				Dur:   dur,
			},
			DecodeTime: uint64(smp.pts),
			Data:       smp.data,
		})
	}

	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "vp08", "mp41"})
	if err := ftyp.Encode(s.w); err != nil {
		return fmt.Errorf("mp4sink: encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(s.w); err != nil {
		return fmt.Errorf("mp4sink: encode moov: %w", err)
	}
	if err := frag.Encode(s.w); err != nil {
		return fmt.Errorf("mp4sink: encode fragment: %w", err)
	}
	return nil
}

var _ ports.PacketSink = (*Sink)(nil)
