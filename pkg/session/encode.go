package session

import (
	"fmt"

	"github.com/ideamans/go-l10n"

	"github.com/user/vp8session/pkg/codec"
	"github.com/user/vp8session/pkg/ports"
)

// RescaleTimestamp converts an engine-tick timestamp into the caller's
// time base. Deterministic and pure; the inverse mapping is
// pts * ticksPerSecond * Num / Den, accurate to within one tick.
func RescaleTimestamp(ts int64, tb codec.Rational) int64 {
	round := int64(1000000)*int64(tb.Num)/2 - 1
	return (ts*int64(tb.Den) + round) / int64(tb.Num) / ticksPerSecond
}

// toEngineTicks converts a caller timestamp into engine ticks.
func toEngineTicks(ts int64, tb codec.Rational) int64 {
	return ts * ticksPerSecond * int64(tb.Num) / int64(tb.Den)
}

// pickCompressMode resolves the engine quality mode for this frame from
// the encoding deadline, the frame duration and the deprecated mode
// override, then propagates a configuration change to the engine if the
// mode differs from the active one.
func (s *Session) pickCompressMode(duration, deadline uint64) error {
	// Best quality when no deadline is given.
	newMode := ports.ModeBestQuality

	if deadline != 0 {
		// Convert the duration from the stream time base to microseconds.
		durationUs := duration * 1000000 *
			uint64(s.cfg.Timebase.Num) / uint64(s.cfg.Timebase.Den)

		// A deadline longer than the frame's display time leaves room
		// for good quality; otherwise encode in real time.
		if deadline > durationUs {
			newMode = ports.ModeGoodQuality
		} else {
			newMode = ports.ModeRealTime
		}
	}

	switch codec.EncodingMode(s.deprecatedMode) {
	case codec.EncodingBestQuality:
		newMode = ports.ModeBestQuality
	case codec.EncodingGoodQuality:
		newMode = ports.ModeGoodQuality
	case codec.EncodingRealTime:
		newMode = ports.ModeRealTime
	}

	if s.cfg.Pass == codec.PassFirst {
		newMode = ports.ModeFirstPass
	} else if s.cfg.Pass == codec.PassLast {
		if newMode == ports.ModeBestQuality {
			newMode = ports.ModeSecondPassBest
		} else {
			newMode = ports.ModeSecondPass
		}
	}

	if s.engineCfg.Mode != newMode {
		s.engineCfg.Mode = newMode
		s.logger.Debug(l10n.F("Compression mode changed to %d", int(newMode)))
		if err := s.engine.ChangeConfig(s.engineCfg); err != nil {
			return fmt.Errorf("%w: %v", codec.ErrEngineFailure, err)
		}
	}
	return nil
}

// Encode submits one raw frame, or drains lagged output when img is
// nil. pts and duration are in the session time base; deadline is a
// soft per-frame time budget in microseconds consumed only by mode
// selection. Compressed output is appended to the packet queue, which
// must be fully drained via NextPacket before the next Encode call
// overwrites the scratch buffer.
func (s *Session) Encode(img *codec.Image, pts int64, duration uint64, flags codec.FrameFlags, deadline uint64) error {
	var res error

	if img != nil {
		res = codec.ValidateImage(img, s.cfg.Width, s.cfg.Height)
	}

	if err := s.pickCompressMode(duration, deadline); err != nil {
		return err
	}
	s.packets = s.packets[:0]

	if ((flags&codec.FlagNoUpdateGolden != 0) && (flags&codec.FlagForceGolden != 0)) ||
		((flags&codec.FlagNoUpdateAltRef != 0) && (flags&codec.FlagForceAltRef != 0)) {
		return &codec.FieldError{Field: "frame flags", Detail: "conflicting"}
	}

	if flags&(codec.FlagNoRefLast|codec.FlagNoRefGolden|codec.FlagNoRefAltRef) != 0 {
		ref := ports.RefAll
		if flags&codec.FlagNoRefLast != 0 {
			ref ^= ports.RefLast
		}
		if flags&codec.FlagNoRefGolden != 0 {
			ref ^= ports.RefGolden
		}
		if flags&codec.FlagNoRefAltRef != 0 {
			ref ^= ports.RefAltRef
		}
		if err := s.engine.UseAsReference(ref); err != nil {
			return fmt.Errorf("%w: %v", codec.ErrEngineFailure, err)
		}
	}

	if flags&(codec.FlagNoUpdateLast|codec.FlagNoUpdateGolden|codec.FlagNoUpdateAltRef|
		codec.FlagForceGolden|codec.FlagForceAltRef) != 0 {
		upd := ports.RefAll
		if flags&codec.FlagNoUpdateLast != 0 {
			upd ^= ports.RefLast
		}
		if flags&codec.FlagNoUpdateGolden != 0 {
			upd ^= ports.RefGolden
		}
		if flags&codec.FlagNoUpdateAltRef != 0 {
			upd ^= ports.RefAltRef
		}
		if err := s.engine.UpdateReference(upd); err != nil {
			return fmt.Errorf("%w: %v", codec.ErrEngineFailure, err)
		}
	}

	if flags&codec.FlagNoUpdateEntropy != 0 {
		if err := s.engine.UpdateEntropy(false); err != nil {
			return fmt.Errorf("%w: %v", codec.ErrEngineFailure, err)
		}
	}

	// Fixed keyframe intervals are handled here rather than by the
	// engine's automatic placement.
	if s.cfg.KFMode == codec.KeyframeAuto && s.cfg.KFMinDist == s.cfg.KFMaxDist {
		s.fixedKFCounter++
		if s.fixedKFCounter > s.cfg.KFMinDist {
			flags |= codec.FlagForceKeyframe
			s.fixedKFCounter = 0
		}
	}

	if res == nil {
		if img != nil {
			submitFlags := s.nextFrameFlags
			if flags&codec.FlagForceKeyframe != 0 {
				submitFlags |= ports.SubmitKeyframe
			}

			ts := toEngineTicks(pts, s.cfg.Timebase)
			endTs := toEngineTicks(pts+int64(duration), s.cfg.Timebase)

			if err := s.engine.ReceiveRawFrame(submitFlags, codec.ToFrameBuffer(img), ts, endTs); err != nil {
				res = fmt.Errorf("%w: %v", codec.ErrEngineFailure, err)
			}
			s.nextFrameFlags = 0
		}

		if err := s.drainCompressed(img == nil); err != nil {
			return err
		}
	}

	return res
}

// drainCompressed pulls compressed units from the engine into the
// scratch buffer: a bounded producer/consumer pull that stops when the
// engine has no more output or when remaining headroom drops below half
// the buffer's capacity.
func (s *Session) drainCompressed(flush bool) error {
	cursor := 0
	remaining := len(s.scratch)
	half := len(s.scratch) / 2

	for more := true; more && remaining >= half; {
		unit, err := s.engine.CompressedData(s.scratch[cursor:], flush)
		if err != nil {
			return fmt.Errorf("%w: %v", codec.ErrEngineFailure, err)
		}
		more = unit != nil
		if unit == nil || unit.Size == 0 {
			continue
		}

		s.appendPacket(unit, s.scratch[cursor:cursor+unit.Size])
		cursor += unit.Size
		remaining -= unit.Size
	}
	return nil
}

// appendPacket rescales and classifies one compressed unit and appends
// it to the bounded packet queue.
func (s *Session) appendPacket(unit *ports.CompressedUnit, payload []byte) {
	pkt := codec.Packet{
		Kind:    codec.PacketFrame,
		Payload: payload,
	}

	if unit.Stats {
		pkt.Kind = codec.PacketStats
	} else {
		delta := unit.EndTimestamp - unit.Timestamp
		pkt.PTS = RescaleTimestamp(unit.Timestamp, s.cfg.Timebase)
		pkt.Duration = RescaleTimestamp(delta, s.cfg.Timebase)

		if unit.Keyframe {
			pkt.Flags |= codec.PacketKeyframe
		}
		if unit.Dropped {
			pkt.Flags |= codec.PacketDropped
		}
		if !unit.Shown {
			// Schedule the invisible frame directly after the last
			// displayed one: a decoder keying presentation off pts then
			// processes it immediately. Invisible frames have no
			// duration.
			pkt.Flags |= codec.PacketInvisible
			pkt.PTS = RescaleTimestamp(s.engine.LastTimestampSeen(), s.cfg.Timebase) + 1
			pkt.Duration = 0
		}
	}

	if len(s.packets) == cap(s.packets) {
		s.logger.Warn(l10n.T("Packet queue full, dropping packet"))
		return
	}
	s.packets = append(s.packets, pkt)
}

// PacketIterator is an opaque cursor over the packets produced by one
// Encode call. The zero value starts at the first packet.
type PacketIterator struct {
	pos int
}

// NextPacket returns the next pending packet, or false when the queue
// for the last Encode call is exhausted. Packets reference the scratch
// buffer and must be consumed before the next Encode call.
func (s *Session) NextPacket(it *PacketIterator) (*codec.Packet, bool) {
	if it.pos >= len(s.packets) {
		return nil, false
	}
	pkt := &s.packets[it.pos]
	it.pos++
	return pkt, true
}
