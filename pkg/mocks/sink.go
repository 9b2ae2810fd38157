package mocks

import (
	"github.com/user/vp8session/pkg/ports"
)

// PacketSink is a mock implementation of ports.PacketSink. It records
// every written packet for inspection.
type PacketSink struct {
	BeginFunc       func(width, height, timebaseNum, timebaseDen int) error
	WritePacketFunc func(payload []byte, pts, duration int64, keyframe bool) error
	FinishFunc      func() error

	Written []WrittenPacket
}

// WrittenPacket is one recorded WritePacket call.
type WrittenPacket struct {
	Payload  []byte
	PTS      int64
	Duration int64
	Keyframe bool
}

func (m *PacketSink) Begin(width, height, timebaseNum, timebaseDen int) error {
	if m.BeginFunc != nil {
		return m.BeginFunc(width, height, timebaseNum, timebaseDen)
	}
	return nil
}

func (m *PacketSink) WritePacket(payload []byte, pts, duration int64, keyframe bool) error {
	m.Written = append(m.Written, WrittenPacket{
		Payload:  append([]byte(nil), payload...),
		PTS:      pts,
		Duration: duration,
		Keyframe: keyframe,
	})
	if m.WritePacketFunc != nil {
		return m.WritePacketFunc(payload, pts, duration, keyframe)
	}
	return nil
}

func (m *PacketSink) Finish() error {
	if m.FinishFunc != nil {
		return m.FinishFunc()
	}
	return nil
}

var _ ports.PacketSink = (*PacketSink)(nil)
