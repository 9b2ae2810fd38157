// Package session implements the session-control layer of the encoder:
// lifecycle, configuration changes, per-frame mode selection and
// packetization of the compressor engine's output.
package session

import (
	"fmt"

	"github.com/ideamans/go-l10n"

	"github.com/user/vp8session/pkg/codec"
	"github.com/user/vp8session/pkg/ports"
)

const (
	// ticksPerSecond is the engine's fixed internal timestamp rate.
	ticksPerSecond = 10000000

	// maxLaggedFrames bounds the packet queue, sized to the maximum
	// number of lagged frames allowed.
	maxLaggedFrames = 64

	// minScratchSize is the floor for the compressed-output scratch
	// buffer.
	minScratchSize = 4096

	// noModeSet marks that the deprecated encoding-mode override has
	// not been used.
	noModeSet = -1
)

// Session owns one encoding stream: the active configuration, the
// compressor engine handle, the output scratch buffer and the bounded
// packet queue. A Session is not safe for concurrent use; the caller
// serializes access.
type Session struct {
	cfg       codec.GlobalConfig
	extra     codec.ExtraConfig
	engineCfg ports.EngineConfig
	engine    ports.CompressorEngine

	scratch []byte
	packets []codec.Packet

	nextFrameFlags ports.SubmitFlags
	fixedKFCounter int
	deprecatedMode int
	previewPP      ports.PostProcFlags

	logger ports.Logger
}

// Option configures a Session at open time.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger ports.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithExtraConfig overrides the usage-preset extra configuration.
func WithExtraConfig(extra codec.ExtraConfig) Option {
	return func(s *Session) {
		s.extra = extra
	}
}

// Open validates cfg, resolves the extra configuration from the usage
// preset table, and constructs the compressor engine. The scratch
// buffer is sized for two uncompressed pictures, which bounds worst
// case output for the whole lag window.
func Open(cfg codec.GlobalConfig, factory ports.EngineFactory, opts ...Option) (*Session, error) {
	s := &Session{
		cfg:            cfg,
		extra:          codec.DefaultExtraConfig(codec.Usage(cfg.Usage)),
		deprecatedMode: noModeSet,
		logger:         nopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := codec.Validate(&s.cfg, &s.extra); err != nil {
		return nil, err
	}
	s.engineCfg = codec.ApplyConfig(&s.cfg, &s.extra)

	engine, err := factory(s.engineCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codec.ErrEngineConstruct, err)
	}
	if engine == nil {
		return nil, codec.ErrEngineConstruct
	}
	s.engine = engine

	size := cfg.Width * cfg.Height * 3 / 2 * 2
	if size < minScratchSize {
		size = minScratchSize
	}
	s.scratch = make([]byte, size)
	s.packets = make([]codec.Packet, 0, maxLaggedFrames)

	s.logger.Debug(l10n.F("Session opened: %dx%d, %d kbit/s", cfg.Width, cfg.Height, cfg.RCTargetBitrate))
	return s, nil
}

// Close releases the engine and the session buffers. The session must
// not be used afterwards; a double close is a caller error.
func (s *Session) Close() error {
	err := s.engine.Close()
	s.engine = nil
	s.scratch = nil
	s.packets = nil
	s.logger.Debug(l10n.T("Session closed"))
	return err
}

// Reconfigure replaces the global configuration. Width and height
// changes and lag-in-frames increases are rejected outright; on any
// rejection the previously active configuration remains in effect.
func (s *Session) Reconfigure(cfg codec.GlobalConfig) error {
	if cfg.Width != s.cfg.Width || cfg.Height != s.cfg.Height {
		return &codec.FieldError{Field: "g_w, g_h", Detail: "cannot change after initialization"}
	}

	// The limit is not increasing past the initial lag_in_frames, but
	// only the last successful configuration is tracked, so the check
	// is stricter than it needs to be.
	if cfg.LagInFrames > s.cfg.LagInFrames {
		return &codec.FieldError{Field: "g_lag_in_frames", Detail: "cannot increase"}
	}

	if err := codec.Validate(&cfg, &s.extra); err != nil {
		return err
	}

	engineCfg := codec.ApplyConfig(&cfg, &s.extra)
	if err := s.engine.ChangeConfig(engineCfg); err != nil {
		return fmt.Errorf("%w: %v", codec.ErrEngineFailure, err)
	}

	s.cfg = cfg
	s.engineCfg = engineCfg
	s.logger.Debug(l10n.T("Configuration updated"))
	return nil
}

// SetExtraConfig replaces the engine-tuning configuration, validated
// against the current global configuration.
func (s *Session) SetExtraConfig(extra codec.ExtraConfig) error {
	if err := codec.Validate(&s.cfg, &extra); err != nil {
		return err
	}

	engineCfg := codec.ApplyConfig(&s.cfg, &extra)
	if err := s.engine.ChangeConfig(engineCfg); err != nil {
		return fmt.Errorf("%w: %v", codec.ErrEngineFailure, err)
	}

	s.extra = extra
	s.engineCfg = engineCfg
	return nil
}

// UpdateExtraConfig applies mutate to a copy of the current extra
// configuration and installs the result through the usual validation
// path. Used by the control surface's single-knob setters.
func (s *Session) UpdateExtraConfig(mutate func(*codec.ExtraConfig)) error {
	extra := s.extra
	mutate(&extra)
	return s.SetExtraConfig(extra)
}

// Config returns the active global configuration.
func (s *Session) Config() codec.GlobalConfig {
	return s.cfg
}

// ExtraConfig returns the active extra configuration.
func (s *Session) ExtraConfig() codec.ExtraConfig {
	return s.extra
}

// SetDeprecatedMode installs the legacy encoding-mode override. It
// replaces the deadline-derived mode for every following frame.
func (s *Session) SetDeprecatedMode(mode codec.EncodingMode) error {
	if mode < codec.EncodingBestQuality || mode > codec.EncodingRealTime {
		return &codec.FieldError{Field: "encoding_mode", Detail: "out of range"}
	}
	s.deprecatedMode = int(mode)
	return nil
}

// ForceNextKeyframe requests that the next submitted frame be encoded
// as a keyframe.
func (s *Session) ForceNextKeyframe() {
	s.nextFrameFlags |= ports.SubmitKeyframe
}

// SetPreviewPostProc stores the post-processing settings applied to
// preview frames.
func (s *Session) SetPreviewPostProc(pp ports.PostProcFlags) {
	s.previewPP = pp
}

// PreviewFrame returns the engine's reconstruction of the last encoded
// frame with the stored post-processing applied.
func (s *Session) PreviewFrame() (*ports.FrameBuffer, error) {
	return s.engine.PreviewFrame(s.previewPP)
}

// UseReference restricts the reference slots the next frame may use.
func (s *Session) UseReference(mask ports.RefMask) error {
	return s.engine.UseAsReference(mask)
}

// UpdateReference restricts the reference slots the next frame updates.
func (s *Session) UpdateReference(mask ports.RefMask) error {
	return s.engine.UpdateReference(mask)
}

// UpdateEntropy toggles entropy-context updates. Applied to the engine
// immediately, independent of frame submission.
func (s *Session) UpdateEntropy(update bool) error {
	return s.engine.UpdateEntropy(update)
}

// SetReferenceFrame overwrites the contents of one reference slot.
func (s *Session) SetReferenceFrame(slot ports.RefMask, img *codec.Image) error {
	return s.engine.SetReference(slot, codec.ToFrameBuffer(img))
}

// CopyReferenceFrame copies one reference slot into img's planes.
func (s *Session) CopyReferenceFrame(slot ports.RefMask, img *codec.Image) error {
	return s.engine.CopyReference(slot, codec.ToFrameBuffer(img))
}

// SetROIMap installs a region-of-interest map on the engine.
func (s *Session) SetROIMap(roi ports.ROIMap) error {
	return s.engine.SetROIMap(roi)
}

// SetActiveMap installs a static active-block map on the engine.
func (s *Session) SetActiveMap(active ports.ActiveMap) error {
	return s.engine.SetActiveMap(active)
}

// SetScaleMode changes the engine's spatial scaling mode. On success
// the next frame is forced to be a keyframe so the scale change takes
// effect in the bitstream.
func (s *Session) SetScaleMode(horizontal, vertical ports.ScalingMode) error {
	if err := s.engine.SetInternalSize(horizontal, vertical); err != nil {
		return fmt.Errorf("%w: %v", codec.ErrInvalidParam, err)
	}
	s.nextFrameFlags |= ports.SubmitKeyframe
	return nil
}

// LastQuantizer returns the quantizer index of the last encoded frame
// in native units.
func (s *Session) LastQuantizer() int {
	return s.engine.Quantizer()
}

// LastQuantizer64 returns the last quantizer rescaled to the legacy
// 64-step range.
func (s *Session) LastQuantizer64() int {
	return codec.ReverseQuantizer(s.engine.Quantizer())
}

// nopLogger discards everything. Default until WithLogger is applied.
type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (n nopLogger) WithComponent(string) ports.Logger {
	return n
}
