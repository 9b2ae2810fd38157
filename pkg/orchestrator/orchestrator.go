// Package orchestrator coordinates a complete encode run: raw frames
// in, compressed container out.
package orchestrator

import (
	"errors"
	"fmt"
	"io"

	"github.com/ideamans/go-l10n"

	"github.com/user/vp8session/pkg/codec"
	"github.com/user/vp8session/pkg/ports"
	"github.com/user/vp8session/pkg/session"
)

// FrameSource produces raw pictures in presentation order. Next
// returns io.EOF when the input is exhausted.
type FrameSource interface {
	Next() (*codec.Image, error)
}

// Config contains all configuration for one encode run.
type Config struct {
	Global codec.GlobalConfig

	// Extra overrides the usage-preset tuning configuration when set.
	Extra *codec.ExtraConfig

	// DeadlineUs is the per-frame soft deadline in microseconds fed to
	// mode selection. Zero selects best quality.
	DeadlineUs uint64

	// StatsOut receives first-pass statistics records when the global
	// configuration selects the first pass. Ignored otherwise.
	StatsOut io.Writer
}

// Orchestrator wires a frame source, a session and a packet sink
// together and runs the encode loop.
type Orchestrator struct {
	factory ports.EngineFactory
	sink    ports.PacketSink
	logger  ports.Logger
}

// New creates a new Orchestrator.
func New(factory ports.EngineFactory, sink ports.PacketSink, logger ports.Logger) *Orchestrator {
	return &Orchestrator{
		factory: factory,
		sink:    sink,
		logger:  logger,
	}
}

// RunResult summarizes one encode run.
type RunResult struct {
	FramesIn     int
	FramesOut    int
	Keyframes    int
	Invisible    int
	Dropped      int
	BytesOut     int64
	StatsRecords int
}

// Run encodes every frame from source and finalizes the sink. Frames
// are stamped one time-base tick apart.
func (o *Orchestrator) Run(source FrameSource, config Config) (RunResult, error) {
	opts := []session.Option{session.WithLogger(o.logger)}
	if config.Extra != nil {
		opts = append(opts, session.WithExtraConfig(*config.Extra))
	}

	sess, err := session.Open(config.Global, o.factory, opts...)
	if err != nil {
		o.logger.Error(l10n.F("Failed to open session: %s", err))
		return RunResult{}, fmt.Errorf("open session: %w", err)
	}
	defer sess.Close()

	tb := config.Global.Timebase
	if err := o.sink.Begin(config.Global.Width, config.Global.Height, tb.Num, tb.Den); err != nil {
		return RunResult{}, fmt.Errorf("begin output: %w", err)
	}

	var result RunResult
	var pts int64

	for {
		img, err := source.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("read frame: %w", err)
		}

		o.logger.Debug(l10n.F("Encoding frame %d", result.FramesIn))
		if err := sess.Encode(img, pts, 1, 0, config.DeadlineUs); err != nil {
			o.logger.Error(l10n.F("Failed to encode frame: %s", err))
			return result, fmt.Errorf("encode frame %d: %w", result.FramesIn, err)
		}
		result.FramesIn++
		pts++

		if err := o.consumePackets(sess, config, &result); err != nil {
			return result, err
		}
	}

	// Drain lagged output. Each flush call may surface several frames;
	// stop once a flush produces nothing.
	o.logger.Debug(l10n.T("Flushing lagged frames"))
	for {
		if err := sess.Encode(nil, 0, 0, 0, config.DeadlineUs); err != nil {
			return result, fmt.Errorf("flush: %w", err)
		}
		before := result.FramesOut + result.StatsRecords
		if err := o.consumePackets(sess, config, &result); err != nil {
			return result, err
		}
		if result.FramesOut+result.StatsRecords == before {
			break
		}
	}

	if err := o.sink.Finish(); err != nil {
		o.logger.Error(l10n.F("Failed to write output: %s", err))
		return result, fmt.Errorf("finish output: %w", err)
	}

	if config.Global.Pass == codec.PassFirst {
		o.logger.Info(l10n.F("First pass produced %d stats records", result.StatsRecords))
	}
	o.logger.Info(l10n.F("Encoded %d frames, %d bytes", result.FramesOut, result.BytesOut))
	return result, nil
}

// consumePackets drains the session's packet queue into the sink and
// the stats writer.
func (o *Orchestrator) consumePackets(sess *session.Session, config Config, result *RunResult) error {
	var it session.PacketIterator
	for {
		pkt, ok := sess.NextPacket(&it)
		if !ok {
			return nil
		}

		if pkt.Kind == codec.PacketStats {
			result.StatsRecords++
			if config.StatsOut != nil {
				if _, err := config.StatsOut.Write(pkt.Payload); err != nil {
					return fmt.Errorf("write stats: %w", err)
				}
			}
			continue
		}

		keyframe := pkt.Flags&codec.PacketKeyframe != 0
		if err := o.sink.WritePacket(pkt.Payload, pkt.PTS, pkt.Duration, keyframe); err != nil {
			return fmt.Errorf("write packet: %w", err)
		}

		result.FramesOut++
		result.BytesOut += int64(len(pkt.Payload))
		if keyframe {
			result.Keyframes++
		}
		if pkt.Flags&codec.PacketInvisible != 0 {
			result.Invisible++
		}
		if pkt.Flags&codec.PacketDropped != 0 {
			result.Dropped++
		}
	}
}
