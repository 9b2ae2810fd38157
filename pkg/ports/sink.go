package ports

// PacketSink consumes finished compressed packets and writes them to a
// container. Implementations may buffer; nothing is guaranteed to reach
// the underlying writer until Finish.
type PacketSink interface {
	// Begin starts a stream. The time base (num/den) is the caller's
	// declared tick duration; packet timestamps are in those ticks.
	Begin(width, height, timebaseNum, timebaseDen int) error

	// WritePacket appends one compressed frame.
	WritePacket(payload []byte, pts, duration int64, keyframe bool) error

	// Finish flushes the container.
	Finish() error
}
