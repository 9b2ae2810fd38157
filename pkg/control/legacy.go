package control

import (
	"github.com/user/vp8session/pkg/codec"
	"github.com/user/vp8session/pkg/session"
)

// Legacy command identifiers intercepted by the compatibility adapter.
// They never reach the main dispatcher table.
const (
	// IDLegacyFlush requests an immediate drain of lagged output. The
	// original single-call API flushed by setting this flag and then
	// polling for data instead of calling encode.
	IDLegacyFlush ID = 1000 + iota
	// IDLegacyFrameType defers a force-keyframe request into the next
	// encode call.
	IDLegacyFrameType
)

// LegacyFlush is the payload for IDLegacyFlush.
type LegacyFlush struct{}

// ControlID implements Command.
func (LegacyFlush) ControlID() ID { return IDLegacyFlush }

// LegacyFrameType is the payload for IDLegacyFrameType.
type LegacyFrameType struct{}

// ControlID implements Command.
func (LegacyFrameType) ControlID() ID { return IDLegacyFrameType }

// LegacyAPI adapts the deprecated single-call surface onto a session
// and the standard dispatcher. It owns the one-bit deferred
// force-keyframe state; its two intercepted commands are the only
// writers of that bit.
type LegacyAPI struct {
	sess       *session.Session
	dispatcher *Dispatcher
	forceKey   bool
}

// NewLegacyAPI wraps a session for callers of the deprecated API.
func NewLegacyAPI(sess *session.Session, dispatcher *Dispatcher) *LegacyAPI {
	if dispatcher == nil {
		dispatcher = NewDispatcher()
	}
	return &LegacyAPI{sess: sess, dispatcher: dispatcher}
}

// Control handles one legacy control call: the two special-cased
// identifiers are intercepted, everything else forwards to the
// dispatcher table.
func (a *LegacyAPI) Control(cmd Command) error {
	switch cmd.ControlID() {
	case IDLegacyFlush:
		return a.sess.Encode(nil, 0, 0, 0, 0)
	case IDLegacyFrameType:
		a.forceKey = true
		return nil
	}
	return a.dispatcher.Dispatch(a.sess, cmd)
}

// Encode forwards to the session, folding a deferred force-keyframe
// request into this frame's flags.
func (a *LegacyAPI) Encode(img *codec.Image, pts int64, duration uint64, flags codec.FrameFlags, deadline uint64) error {
	if a.forceKey {
		flags |= codec.FlagForceKeyframe
	}
	a.forceKey = false
	return a.sess.Encode(img, pts, duration, flags, deadline)
}

// NextPacket forwards to the session's packet iterator.
func (a *LegacyAPI) NextPacket(it *session.PacketIterator) (*codec.Packet, bool) {
	return a.sess.NextPacket(it)
}
